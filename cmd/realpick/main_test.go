package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/realpick/internal/config"
	"github.com/verte-zerg/realpick/internal/model"
	"github.com/verte-zerg/realpick/internal/quizerr"
	"github.com/verte-zerg/realpick/internal/store"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv(dsnEnv, "")
	return dir
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestResolveQuizConfigPrecedence(t *testing.T) {
	isolateEnv(t)
	o := newOptions()
	cmd := newRootCmdWith(o)
	require.NoError(t, cmd.ParseFlags([]string{"--real-filtered", "/flag/r", "--show-names"}))

	file := config.QuizConfig{
		RealFiltered:   strPtr("/file/r"),
		RealUnfiltered: strPtr("/file/u"),
		ShowNames:      boolPtr(false),
		RequireConsent: boolPtr(true),
		Extensions:     &[]string{"png"},
	}
	cfg := resolveQuizConfig(cmd, o, file)
	assert.Equal(t, "/flag/r", cfg.Dirs[model.RealFiltered])
	assert.Equal(t, "/file/u", cfg.Dirs[model.RealUnfiltered])
	assert.Equal(t, filepath.Join(defaultImageRoot, "synthetic-filtered"), cfg.Dirs[model.SyntheticFiltered])
	assert.True(t, cfg.ShowNames)
	assert.True(t, cfg.RequireConsent)
	assert.Equal(t, []string{"png"}, cfg.Extensions)
	assert.Equal(t, defaultViewer, cfg.Viewer)
}

func TestResolveSinkConfigDSN(t *testing.T) {
	isolateEnv(t)

	o := newOptions()
	cmd := newRootCmdWith(o)
	require.NoError(t, cmd.ParseFlags(nil))
	cfg := resolveSinkConfig(cmd, o, config.SinkConfig{})
	assert.Equal(t, config.DefaultDBPath(), cfg.SQLitePath)
	assert.Empty(t, cfg.DBDSN)
	assert.Equal(t, defaultCSVPath, cfg.CSVPath)

	t.Setenv(dsnEnv, "/env/realpick.db")
	cfg = resolveSinkConfig(cmd, o, config.SinkConfig{DBDSN: strPtr("/file/realpick.db")})
	assert.Equal(t, "/env/realpick.db", cfg.DBDSN)

	o = newOptions()
	cmd = newRootCmdWith(o)
	require.NoError(t, cmd.ParseFlags([]string{"--db-dsn", "/flag/realpick.db", "--backend", "csv", "--backend", "yaml"}))
	cfg = resolveSinkConfig(cmd, o, config.SinkConfig{Backends: &[]string{"sheets"}, YAMLPath: strPtr("out.yaml")})
	assert.Equal(t, "/flag/realpick.db", cfg.DBDSN)
	assert.Equal(t, []string{"csv", "yaml"}, cfg.Backends)
	assert.Equal(t, "out.yaml", cfg.YAMLPath)
}

func TestResolveSinkConfigPostgresHasNoDefaultDSN(t *testing.T) {
	isolateEnv(t)
	o := newOptions()
	cmd := newRootCmdWith(o)
	require.NoError(t, cmd.ParseFlags([]string{"--backend", "db", "--db-driver", "postgres"}))
	cfg := resolveSinkConfig(cmd, o, config.SinkConfig{})
	assert.Empty(t, cfg.DBDSN)
}

func TestResolveSinkConfigKeepsSQLitePathApartFromDSN(t *testing.T) {
	isolateEnv(t)
	o := newOptions()
	cmd := newRootCmdWith(o)
	require.NoError(t, cmd.ParseFlags([]string{"--backend", "sqlite"}))
	cfg := resolveSinkConfig(cmd, o, config.SinkConfig{
		DBDriver:   strPtr("postgres"),
		DBDSN:      strPtr("postgres://user@db.example/results"),
		SQLitePath: strPtr("/file/local.db"),
	})
	assert.Equal(t, "/file/local.db", cfg.SQLitePath)
	assert.Equal(t, "postgres://user@db.example/results", cfg.DBDSN)
}

func writeImages(t *testing.T, root string, counts map[model.Category]int) []string {
	t.Helper()
	var args []string
	for _, cat := range model.Categories {
		dir := filepath.Join(root, string(cat))
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for i := 0; i < counts[cat]; i++ {
			name := filepath.Join(dir, string(rune('a'+i))+".png")
			require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
		}
		args = append(args, "--"+categoryFlags[cat], dir)
	}
	return args
}

func TestCheckCommand(t *testing.T) {
	dir := isolateEnv(t)
	args := writeImages(t, filepath.Join(dir, "images"), map[model.Category]int{
		model.RealFiltered:        3,
		model.RealUnfiltered:      2,
		model.SyntheticFiltered:   3,
		model.SyntheticUnfiltered: 3,
	})

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"check"}, args...))
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "questions: 2")
	assert.Contains(t, out.String(), "real-unfiltered")
}

func TestCheckCommandMissingDirectory(t *testing.T) {
	dir := isolateEnv(t)
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"check", "--real-filtered", filepath.Join(dir, "missing")})
	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, quizerr.ErrConfiguration))
}

func TestHistoryCommand(t *testing.T) {
	dir := isolateEnv(t)
	dbPath := filepath.Join(dir, "history.db")
	ctx := context.Background()
	st, err := store.Open(ctx, store.DriverSQLite, dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Persist(ctx, model.SessionRecord{
		ID:             "s-1",
		StartedAt:      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		SubmittedAt:    time.Date(2025, 3, 1, 10, 5, 0, 0, time.UTC),
		Participant:    model.ParticipantMetadata{Name: "Ana", Age: 34},
		TotalCorrect:   1,
		TotalQuestions: 2,
		Questions: []model.QuestionResult{
			{Index: 0, Chosen: "u1", ChosenCategory: model.RealUnfiltered, Correct: "u1", IsCorrect: true},
			{Index: 1, Chosen: "f2", ChosenCategory: model.SyntheticFiltered, Correct: "u2"},
		},
	}))
	require.NoError(t, st.Close())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"history", "--db-dsn", dbPath})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Sessions: 1")
	assert.Contains(t, out.String(), "Hardest Questions")
	assert.Contains(t, out.String(), "synthetic-filtered")

	cmd = newRootCmd()
	out.Reset()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"history", "--db-dsn", dbPath, "--session", "s-1"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "wrong")
	assert.Contains(t, out.String(), "f2")
}

func TestHistoryRejectsBadSince(t *testing.T) {
	isolateEnv(t)
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"history", "--since", "yesterday"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, quizerr.ErrValidation))
}

func TestConfigTemplateLoads(t *testing.T) {
	isolateEnv(t)
	path := config.DefaultConfigPath()
	require.NoError(t, ensureConfigFile(path))
	_, err := config.LoadConfig(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[quiz]\nshow-names = true\n"), 0o644))
	require.NoError(t, ensureConfigFile(path))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Quiz.ShowNames)
	assert.True(t, *cfg.Quiz.ShowNames)
}

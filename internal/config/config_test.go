package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Quiz.RealUnfiltered)
	assert.Nil(t, cfg.Sink.Backends)
}

func TestLoadConfigDecodesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[quiz]
real-unfiltered = "imgs/real"
extensions = [".png", ".JPG"]
require-consent = true

[sink]
backends = ["sqlite", "csv"]
sqlite-path = "local.db"
db-driver = "postgres"
csv-path = "out.csv"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Quiz.RealUnfiltered)
	assert.Equal(t, "imgs/real", *cfg.Quiz.RealUnfiltered)
	assert.Nil(t, cfg.Quiz.RealFiltered)
	require.NotNil(t, cfg.Quiz.Extensions)
	assert.Equal(t, []string{".png", ".JPG"}, *cfg.Quiz.Extensions)
	require.NotNil(t, cfg.Quiz.RequireConsent)
	assert.True(t, *cfg.Quiz.RequireConsent)
	require.NotNil(t, cfg.Sink.Backends)
	assert.Equal(t, []string{"sqlite", "csv"}, *cfg.Sink.Backends)
	require.NotNil(t, cfg.Sink.CSVPath)
	assert.Equal(t, "out.csv", *cfg.Sink.CSVPath)
	require.NotNil(t, cfg.Sink.SQLitePath)
	assert.Equal(t, "local.db", *cfg.Sink.SQLitePath)
	require.NotNil(t, cfg.Sink.DBDriver)
	assert.Equal(t, "postgres", *cfg.Sink.DBDriver)
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[quiz]\nreal-fitlered = \"x\"\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quiz.real-fitlered")
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")

	assert.Equal(t, filepath.Join("/cfg", "realpick", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "realpick", "realpick.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/state", "realpick", "realpick.log"), DefaultLogPath())
}

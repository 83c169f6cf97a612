// Package main provides the CLI entrypoint for realpick.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/realpick/internal/config"
	"github.com/verte-zerg/realpick/internal/imageset"
	"github.com/verte-zerg/realpick/internal/logging"
	"github.com/verte-zerg/realpick/internal/model"
	"github.com/verte-zerg/realpick/internal/question"
	"github.com/verte-zerg/realpick/internal/quizerr"
	"github.com/verte-zerg/realpick/internal/session"
	"github.com/verte-zerg/realpick/internal/sink"
	"github.com/verte-zerg/realpick/internal/stats"
	"github.com/verte-zerg/realpick/internal/store"
	"github.com/verte-zerg/realpick/internal/tui"
)

const defaultHistoryTop = 10

var version = "dev"

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(newOptions())
}

func newRootCmdWith(o *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "realpick",
		Short:        "Terminal test: pick the real image out of four",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuizCmd(cmd, o)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
	addDBFlags(rootCmd, o)
	addImageFlags(rootCmd, o)
	addQuizFlags(rootCmd, o)

	rootCmd.AddCommand(newCheckCmd(o))
	rootCmd.AddCommand(newHistoryCmd(o))
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

func loadFileConfig() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, quizerr.Configuration("failed to load config: %v", err)
	}
	return fileCfg, nil
}

// loadImageSet reads the category directories and logs what was found.
func loadImageSet(cfg model.QuizConfig, logger *zap.Logger) (*imageset.Set, error) {
	set, err := imageset.Load(cfg.Dirs, imageset.FilterForExtensions(cfg.Extensions))
	if err != nil {
		return nil, err
	}
	fields := []zap.Field{zap.Int("questions", set.Len())}
	counts := set.Counts()
	for _, cat := range model.Categories {
		fields = append(fields, zap.Int(string(cat), counts[cat]))
	}
	logger.Debug("image set loaded", fields...)
	return set, nil
}

func runQuizCmd(cmd *cobra.Command, o *options) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	quizCfg := resolveQuizConfig(cmd, o, fileCfg.Quiz)
	sinkCfg := resolveSinkConfig(cmd, o, fileCfg.Sink)

	logger, err := logging.New(o.verbose, config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	set, err := loadImageSet(quizCfg, logger)
	if err != nil {
		logger.Error("image set not loaded", zap.Error(err))
		return err
	}

	consent, err := readConsent(quizCfg.ConsentFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := sink.Open(ctx, sinkCfg, logger)
	if err != nil {
		return quizerr.Configuration("failed to open result backends: %v", err)
	}
	defer func() {
		if cerr := results.Close(); cerr != nil {
			logger.Warn("failed to close result backends", zap.Error(cerr))
		}
	}()
	logger.Info("quiz ready",
		zap.Int("questions", set.Len()),
		zap.Strings("backends", results.Names()),
	)

	sess := session.New(question.NewBuilder(set), session.Options{RequireConsent: quizCfg.RequireConsent})
	m := tui.NewModel(ctx, tui.Options{
		Session:   sess,
		Sink:      results,
		Logger:    logger,
		ShowNames: quizCfg.ShowNames,
		Viewer:    quizCfg.Viewer,
		Consent:   consent,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if sess.Phase() == session.PhaseResult && !sess.Saved() {
		return quizerr.Persistence(nil, "session %s was scored but not saved", sess.ID())
	}
	return nil
}

func readConsent(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", quizerr.Configuration("failed to read consent file %s: %v", path, err)
	}
	return string(data), nil
}

func newCheckCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the image directories and print question counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheckCmd(cmd, o)
		},
	}
	addImageFlags(cmd, o)
	return cmd
}

func runCheckCmd(cmd *cobra.Command, o *options) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	quizCfg := resolveQuizConfig(cmd, o, fileCfg.Quiz)
	logger, err := logging.New(o.verbose, "")
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	set, err := loadImageSet(quizCfg, logger)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	counts := set.Counts()
	for _, cat := range model.Categories {
		if _, err := fmt.Fprintf(out, "%-21s %5d  %s\n", cat, counts[cat], quizCfg.Dirs[cat]); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintf(out, "questions: %d\n", set.Len()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

type historyFlags struct {
	since   string
	last    int
	top     int
	session string
}

func newHistoryCmd(o *options) *cobra.Command {
	var hf historyFlags
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryCmd(cmd, o, hf)
		},
	}
	cmd.Flags().StringVar(&hf.since, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&hf.last, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&hf.top, "top", defaultHistoryTop, "number of hardest questions to list (0 for all)")
	cmd.Flags().StringVar(&hf.session, "session", "", "show the answers of one session")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, o *options, hf historyFlags) error {
	var since *time.Time
	if hf.since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", hf.since, time.Local)
		if err != nil {
			return quizerr.Validation("invalid --since value: %v", err)
		}
		since = &parsed
	}
	if hf.last < 0 {
		return quizerr.Validation("--last must be >= 0")
	}

	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	sinkCfg := resolveSinkConfig(cmd, o, fileCfg.Sink)
	driver, err := store.ParseDriver(sinkCfg.DBDriver)
	if err != nil {
		return quizerr.Configuration("%v", err)
	}
	dsn := sink.DatabaseDSN(sinkCfg, driver)
	if dsn == "" {
		return quizerr.Configuration("--db-dsn is required for %s", driver)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(ctx, driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		_ = st.Close()
	}()

	out := cmd.OutOrStdout()
	if hf.session != "" {
		answers, err := st.ListAnswers(ctx, hf.session)
		if err != nil {
			return fmt.Errorf("failed to load answers: %w", err)
		}
		return stats.RenderAnswers(out, answers)
	}

	report, err := stats.BuildReport(ctx, st, model.HistoryConfig{Since: since, Last: hf.last})
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return renderReport(out, report, hf.top, stats.TerminalWidth())
}

func renderReport(w io.Writer, report stats.Report, top, width int) error {
	if err := stats.RenderSummary(w, report.Sessions, width); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderQuestionTable(w, report.Questions, top); err != nil {
		return err
	}
	return stats.RenderWrongPicks(w, report.WrongPicks)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# realpick configuration
# Uncomment a value to enable it. CLI flags override config values.

[quiz]
# real-filtered = %q
# real-unfiltered = %q
# synthetic-filtered = %q
# synthetic-unfiltered = %q
# extensions = [".png", ".jpg", ".jpeg", ".webp"]
# require-consent = false   # Ask for consent before the test starts
# consent-file = ""         # Markdown shown on the start screen
# show-names = false        # File names may reveal the category
# viewer = %q

[sink]
# backends = ["sqlite"]     # sqlite, postgres, db, csv, yaml, parquet, sheets
# sqlite-path = %q
# db-driver = "sqlite"      # Used by the "db" backend and "realpick history"
# db-dsn = ""               # Postgres URL, or a SQLite file overriding sqlite-path; env %s
# csv-path = %q
# csv-answers-path = ""     # Optional per-question rows
# yaml-path = ""
# parquet-dir = ""          # One file per session
# sheets-spreadsheet-id = ""
# sheets-range = "Results!A1"
# sheets-credentials = ""   # Service account JSON; default credentials otherwise
`,
		filepath.Join(defaultImageRoot, string(model.RealFiltered)),
		filepath.Join(defaultImageRoot, string(model.RealUnfiltered)),
		filepath.Join(defaultImageRoot, string(model.SyntheticFiltered)),
		filepath.Join(defaultImageRoot, string(model.SyntheticUnfiltered)),
		defaultViewer,
		config.DefaultDBPath(),
		dsnEnv,
		defaultCSVPath,
	)
}

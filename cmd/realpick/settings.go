package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/realpick/internal/config"
	"github.com/verte-zerg/realpick/internal/model"
	"github.com/verte-zerg/realpick/internal/store"
)

const (
	defaultImageRoot = "images"
	defaultViewer    = "xdg-open"
	defaultCSVPath   = "results.csv"
	dsnEnv           = "REALPICK_DB_DSN"
)

var categoryFlags = map[model.Category]string{
	model.RealFiltered:        "real-filtered",
	model.RealUnfiltered:      "real-unfiltered",
	model.SyntheticFiltered:   "synthetic-filtered",
	model.SyntheticUnfiltered: "synthetic-unfiltered",
}

// options holds raw flag values before config merging.
type options struct {
	dirs           map[model.Category]*string
	extensions     []string
	requireConsent bool
	consentFile    string
	showNames      bool
	viewer         string

	backends   []string
	sqlitePath string
	dbDriver   string
	dbDSN      string
	csvPath    string

	verbose bool
}

func newOptions() *options {
	o := &options{dirs: map[model.Category]*string{}}
	for _, cat := range model.Categories {
		dir := filepath.Join(defaultImageRoot, string(cat))
		o.dirs[cat] = &dir
	}
	return o
}

func addImageFlags(cmd *cobra.Command, o *options) {
	for _, cat := range model.Categories {
		cmd.Flags().StringVar(o.dirs[cat], categoryFlags[cat], *o.dirs[cat], "directory with "+string(cat)+" images")
	}
	cmd.Flags().StringSliceVar(&o.extensions, "ext", nil, "allowed image extensions, e.g. png,jpg (default: all files)")
}

func addQuizFlags(cmd *cobra.Command, o *options) {
	cmd.Flags().BoolVar(&o.requireConsent, "require-consent", false, "require explicit consent before the test starts")
	cmd.Flags().StringVar(&o.consentFile, "consent-file", "", "markdown file shown on the start screen")
	cmd.Flags().BoolVar(&o.showNames, "show-names", false, "show candidate file names")
	cmd.Flags().StringVar(&o.viewer, "viewer", defaultViewer, "command used to open an image")
	cmd.Flags().StringSliceVar(&o.backends, "backend", nil, "result backend: sqlite, postgres, db, csv, yaml, parquet, sheets (repeatable)")
	cmd.Flags().StringVar(&o.csvPath, "csv-path", "", "csv results file (default "+defaultCSVPath+")")
}

func addDBFlags(cmd *cobra.Command, o *options) {
	cmd.PersistentFlags().StringVar(&o.sqlitePath, "sqlite-path", "", "sqlite database file (default "+config.DefaultDBPath()+")")
	cmd.PersistentFlags().StringVar(&o.dbDriver, "db-driver", string(store.DriverSQLite), "database driver: sqlite or postgres")
	cmd.PersistentFlags().StringVar(&o.dbDSN, "db-dsn", "", "database path (sqlite) or connection string (postgres)")
}

func resolveQuizConfig(cmd *cobra.Command, o *options, file config.QuizConfig) model.QuizConfig {
	fileDirs := map[model.Category]*string{
		model.RealFiltered:        file.RealFiltered,
		model.RealUnfiltered:      file.RealUnfiltered,
		model.SyntheticFiltered:   file.SyntheticFiltered,
		model.SyntheticUnfiltered: file.SyntheticUnfiltered,
	}
	cfg := model.QuizConfig{Dirs: map[model.Category]string{}}
	for _, cat := range model.Categories {
		dir := *o.dirs[cat]
		applyStringConfig(cmd, categoryFlags[cat], &dir, fileDirs[cat])
		cfg.Dirs[cat] = expandHome(dir)
	}
	cfg.Extensions = o.extensions
	applySliceConfig(cmd, "ext", &cfg.Extensions, file.Extensions)

	cfg.RequireConsent = o.requireConsent
	applyBoolConfig(cmd, "require-consent", &cfg.RequireConsent, file.RequireConsent)
	cfg.ConsentFile = o.consentFile
	applyStringConfig(cmd, "consent-file", &cfg.ConsentFile, file.ConsentFile)
	cfg.ConsentFile = expandHome(cfg.ConsentFile)
	cfg.ShowNames = o.showNames
	applyBoolConfig(cmd, "show-names", &cfg.ShowNames, file.ShowNames)
	cfg.Viewer = o.viewer
	applyStringConfig(cmd, "viewer", &cfg.Viewer, file.Viewer)
	return cfg
}

func resolveSinkConfig(cmd *cobra.Command, o *options, file config.SinkConfig) model.SinkConfig {
	cfg := model.SinkConfig{
		Backends:   o.backends,
		SQLitePath: o.sqlitePath,
		DBDriver:   o.dbDriver,
		DBDSN:      o.dbDSN,
		CSVPath:    o.csvPath,
	}
	applySliceConfig(cmd, "backend", &cfg.Backends, file.Backends)
	applyStringConfig(cmd, "sqlite-path", &cfg.SQLitePath, file.SQLitePath)
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = config.DefaultDBPath()
	}
	applyStringConfig(cmd, "db-driver", &cfg.DBDriver, file.DBDriver)
	if !cmd.Flags().Changed("db-dsn") {
		if env := strings.TrimSpace(os.Getenv(dsnEnv)); env != "" {
			cfg.DBDSN = env
		} else if file.DBDSN != nil {
			cfg.DBDSN = *file.DBDSN
		}
	}
	applyStringConfig(cmd, "csv-path", &cfg.CSVPath, file.CSVPath)
	if cfg.CSVPath == "" {
		cfg.CSVPath = defaultCSVPath
	}
	cfg.CSVAnswersPath = derefString(file.CSVAnswersPath)
	cfg.YAMLPath = derefString(file.YAMLPath)
	cfg.ParquetDir = derefString(file.ParquetDir)
	cfg.SheetsSpreadsheetID = derefString(file.SheetsSpreadsheetID)
	cfg.SheetsRange = derefString(file.SheetsRange)
	cfg.SheetsCredentials = derefString(file.SheetsCredentials)

	for _, p := range []*string{&cfg.SQLitePath, &cfg.CSVPath, &cfg.CSVAnswersPath, &cfg.YAMLPath, &cfg.ParquetDir, &cfg.SheetsCredentials} {
		*p = expandHome(*p)
	}
	if driver, err := store.ParseDriver(cfg.DBDriver); err == nil && driver == store.DriverSQLite {
		cfg.DBDSN = expandHome(cfg.DBDSN)
	}
	return cfg
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applySliceConfig(cmd *cobra.Command, name string, target, value *[]string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), (*value)...)
}

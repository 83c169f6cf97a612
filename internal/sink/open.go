package sink

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/verte-zerg/realpick/internal/model"
	"github.com/verte-zerg/realpick/internal/store"
)

// Backend names accepted in configuration.
const (
	BackendDB       = "db"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendCSV      = "csv"
	BackendYAML     = "yaml"
	BackendParquet  = "parquet"
	BackendSheets   = "sheets"
)

// Open builds a fan-out sink for the configured backends. The caller closes it.
func Open(ctx context.Context, cfg model.SinkConfig, logger *zap.Logger) (*Multi, error) {
	backends := cfg.Backends
	if len(backends) == 0 {
		backends = []string{BackendSQLite}
	}
	var sinks []Named
	fail := func(err error) (*Multi, error) {
		_ = NewMulti(logger, sinks...).Close()
		return nil, err
	}
	seen := map[string]bool{}
	for _, raw := range backends {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		s, err := openBackend(ctx, name, cfg)
		if err != nil {
			return fail(fmt.Errorf("backend %s: %w", name, err))
		}
		sinks = append(sinks, Named{Name: name, Sink: s})
	}
	return NewMulti(logger, sinks...), nil
}

// DatabaseDSN returns the connection string for driver. A SQLite database
// without an explicit db-dsn falls back to sqlite-path.
func DatabaseDSN(cfg model.SinkConfig, driver store.Driver) string {
	if cfg.DBDSN == "" && driver == store.DriverSQLite {
		return cfg.SQLitePath
	}
	return cfg.DBDSN
}

func openStore(ctx context.Context, driver store.Driver, dsn string) (ResultSink, error) {
	st, err := store.Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func openBackend(ctx context.Context, name string, cfg model.SinkConfig) (ResultSink, error) {
	switch name {
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite-path is required")
		}
		return openStore(ctx, store.DriverSQLite, cfg.SQLitePath)
	case BackendPostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("db-dsn is required")
		}
		return openStore(ctx, store.DriverPostgres, cfg.DBDSN)
	case BackendDB:
		driver, err := store.ParseDriver(cfg.DBDriver)
		if err != nil {
			return nil, err
		}
		return openStore(ctx, driver, DatabaseDSN(cfg, driver))
	case BackendCSV:
		if cfg.CSVPath == "" {
			return nil, fmt.Errorf("csv-path is required")
		}
		return &CSV{Path: cfg.CSVPath, AnswersPath: cfg.CSVAnswersPath}, nil
	case BackendYAML:
		if cfg.YAMLPath == "" {
			return nil, fmt.Errorf("yaml-path is required")
		}
		return &YAML{Path: cfg.YAMLPath}, nil
	case BackendParquet:
		if cfg.ParquetDir == "" {
			return nil, fmt.Errorf("parquet-dir is required")
		}
		return &Parquet{Dir: cfg.ParquetDir}, nil
	case BackendSheets:
		var opts []option.ClientOption
		if cfg.SheetsCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.SheetsCredentials))
		}
		sh, err := NewSheets(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsRange, opts...)
		if err != nil {
			return nil, err
		}
		return sh, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Quiz QuizConfig `toml:"quiz"`
	Sink SinkConfig `toml:"sink"`
}

// QuizConfig maps image set and session settings.
type QuizConfig struct {
	RealFiltered        *string   `toml:"real-filtered"`
	RealUnfiltered      *string   `toml:"real-unfiltered"`
	SyntheticFiltered   *string   `toml:"synthetic-filtered"`
	SyntheticUnfiltered *string   `toml:"synthetic-unfiltered"`
	Extensions          *[]string `toml:"extensions"`
	RequireConsent      *bool     `toml:"require-consent"`
	ConsentFile         *string   `toml:"consent-file"`
	ShowNames           *bool     `toml:"show-names"`
	Viewer              *string   `toml:"viewer"`
}

// SinkConfig maps result backend settings.
type SinkConfig struct {
	Backends            *[]string `toml:"backends"`
	SQLitePath          *string   `toml:"sqlite-path"`
	DBDriver            *string   `toml:"db-driver"`
	DBDSN               *string   `toml:"db-dsn"`
	CSVPath             *string   `toml:"csv-path"`
	CSVAnswersPath      *string   `toml:"csv-answers-path"`
	YAMLPath            *string   `toml:"yaml-path"`
	ParquetDir          *string   `toml:"parquet-dir"`
	SheetsSpreadsheetID *string   `toml:"sheets-spreadsheet-id"`
	SheetsRange         *string   `toml:"sheets-range"`
	SheetsCredentials   *string   `toml:"sheets-credentials"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

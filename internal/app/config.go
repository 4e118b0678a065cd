// Package app wires the proverb bot: configuration, dataset loading,
// database bootstrap, and the telebot handlers feeding the dispatcher.
package app

import (
	"fmt"
	"strings"

	coreconfig "github.com/m3rciful/proverbbot/core/config"
	coredatabase "github.com/m3rciful/proverbbot/core/database"
)

// Dataset sources.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// DatasetConfig selects where proverbs are loaded from.
type DatasetConfig struct {
	Source string `yaml:"source" envconfig:"DATASET_SOURCE"`
	// Path is the JSON file read by the file source and by seeding.
	Path string `yaml:"path" envconfig:"DATASET_PATH"`
	// SeedOnStart inserts the JSON dataset into Postgres before loading it.
	SeedOnStart bool `yaml:"seed_on_start" envconfig:"DATASET_SEED_ON_START"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Dataset  DatasetConfig       `yaml:"dataset"`
	// SkipMigrations leaves the schema alone on start; use `proverbbot migrate` instead.
	SkipMigrations bool `yaml:"skip_migrations" envconfig:"SKIP_MIGRATIONS"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads path, overlays the environment, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.ReadFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDatabase reads only what the migrate and seed commands need; the bot
// token is not required.
func LoadDatabase(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.ReadFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := normalizeDataset(&cfg.Dataset); err != nil {
		return nil, err
	}
	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the core config, the dataset selection and, when a
// database is needed, the connection settings.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}
	if err := normalizeDataset(&cfg.Dataset); err != nil {
		return err
	}
	if cfg.Dataset.Source == SourcePostgres || cfg.Database.Enabled() {
		if err := cfg.Database.Validate(); err != nil {
			return err
		}
	}
	if cfg.Dataset.SeedOnStart && !cfg.Database.Enabled() {
		return fmt.Errorf("dataset.seed_on_start requires a database")
	}
	return nil
}

func normalizeDataset(ds *DatasetConfig) error {
	ds.Source = strings.ToLower(strings.TrimSpace(ds.Source))
	ds.Path = strings.TrimSpace(ds.Path)
	switch ds.Source {
	case "":
		if ds.Path != "" {
			ds.Source = SourceFile
		} else {
			ds.Source = SourceEmbedded
		}
	case SourceEmbedded, SourcePostgres:
	case SourceFile:
		if ds.Path == "" {
			return fmt.Errorf("dataset.path is required for the file source")
		}
	default:
		return fmt.Errorf("dataset.source must be %s, %s or %s", SourceEmbedded, SourceFile, SourcePostgres)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths for the pipeline.
type PathsConfig struct {
	StoreDir   string `yaml:"store_dir" envconfig:"STORE_DIR" validate:"required"`
	IndexDir   string `yaml:"index_dir" envconfig:"INDEX_DIR" validate:"required"`
	PanelFile  string `yaml:"panel_file" envconfig:"PANEL_FILE"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
}

// PipelineConfig contains the index-construction defaults the CLI flags
// can override.
type PipelineConfig struct {
	WeightBasis string `yaml:"weight_basis" envconfig:"WEIGHT_BASIS" validate:"oneof=fiscal calendar"`
	IndexKind   string `yaml:"index_kind" envconfig:"INDEX_KIND" validate:"oneof=price qty"`
	Limit       int    `yaml:"limit" envconfig:"LIMIT" validate:"min=0"`
	Workers     int    `yaml:"workers" envconfig:"WORKERS" validate:"min=1"`
	MetricsAddr string `yaml:"metrics_addr" envconfig:"METRICS_ADDR"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/vapeidx.log",
		},
		Paths: PathsConfig{
			StoreDir:   "data/interim/store_monthly",
			IndexDir:   "data/processed/store_vape_indexes",
			ReportsDir: "data/reports",
		},
		Pipeline: PipelineConfig{
			WeightBasis: "fiscal",
			IndexKind:   "price",
			Workers:     1,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables with the VAPEIDX prefix, in increasing priority.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
		// Unmarshal over the defaults so absent keys keep their values.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configFile, err)
		}
	}

	if err := envconfig.Process("VAPEIDX", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration contract.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// configFilePath returns the YAML config location, overridable via
// VAPEIDX_CONFIG_FILE.
func configFilePath() string {
	if path := os.Getenv("VAPEIDX_CONFIG_FILE"); path != "" {
		return path
	}
	return filepath.Join(".", "config.yaml")
}

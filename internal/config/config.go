package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Config is the process configuration, read from PRAXIS_* environment
// variables.
type Config struct {
	DBPath   string `envconfig:"DB"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Actor    string `envconfig:"ACTOR" default:"system"`
}

// Load reads the configuration from the environment. An unset DB path
// defaults to ~/.praxis/praxis.db.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("praxis", &cfg); err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".praxis", "praxis.db")
	}
	return &cfg, nil
}

// SlogLevel maps the configured log level to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

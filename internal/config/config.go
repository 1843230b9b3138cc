// Package config provides configuration management for taskrun.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the taskrun user configuration. It covers the runner's
// own behavior, never Runfile semantics: shell selection always follows the
// Runfile and command-line flags.
type Config struct {
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
}

// HistoryConfig holds run-history settings.
type HistoryConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Record runs in the local database
	DBPath     string `yaml:"db_path"`     // Database path (overrides default)
	MaxEntries int    `yaml:"max_entries"` // Runs kept before pruning (0 = unlimited)
}

// LogConfig holds structured-logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			Enabled:    true,
			DBPath:     "", // Use default from paths
			MaxEntries: 10000,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads the configuration from the default location.
func Load() (*Config, error) {
	return LoadFromFile(DefaultPaths().ConfigFile())
}

// LoadFromFile reads the configuration from path, merging over defaults.
// A missing file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the default location.
func (c *Config) Save() error {
	return c.SaveToFile(DefaultPaths().ConfigFile())
}

// SaveToFile writes the configuration as YAML to path.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("invalid log.level %q (want debug, info, warn, or error)", c.Log.Level)
	}
	if c.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must not be negative")
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// Package config loads storygoal settings from defaults, YAML files,
// STORYGOAL_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/HendryAvila/storygoal/internal/store"
)

// Output formats accepted by the CLI.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
	OutputText = "text"
)

// OutputFormats lists the valid values for Config.Output.
func OutputFormats() []string {
	return []string{OutputJSON, OutputYAML, OutputText}
}

// Config is the fully resolved configuration.
type Config struct {
	// DataDir holds the database when DBPath is empty.
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
	// DBPath points at an explicit database file.
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
	// BusyTimeout is how long a write waits on a locked database.
	BusyTimeout time.Duration `yaml:"busy_timeout" mapstructure:"busy_timeout"`
	// Output is the default CLI output format.
	Output string    `yaml:"output" mapstructure:"output"`
	Log    LogConfig `yaml:"log" mapstructure:"log"`
}

// LogConfig controls the diagnostic logger. Logs never go to stdout.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	// File enables a rotating log file in addition to stderr.
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
}

// HomeEnv overrides the directory holding config.yaml and the database.
const HomeEnv = "STORYGOAL_HOME"

// HomeDir returns $STORYGOAL_HOME or ~/.storygoal.
func HomeDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".storygoal"), nil
}

// Default returns the built-in configuration.
func Default() Config {
	dir, err := HomeDir()
	if err != nil {
		dir = ".storygoal"
	}
	return Config{
		DataDir:     dir,
		BusyTimeout: store.DefaultBusyTimeout,
		Output:      OutputJSON,
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Validate checks values that viper cannot type-check.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if !slices.Contains(OutputFormats(), cfg.Output) {
		return fmt.Errorf("output must be one of %s, got %q",
			strings.Join(OutputFormats(), ", "), cfg.Output)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.BusyTimeout < 0 {
		return fmt.Errorf("busy_timeout must not be negative, got %s", cfg.BusyTimeout)
	}
	if cfg.Log.MaxSizeMB < 0 || cfg.Log.MaxBackups < 0 || cfg.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	if cfg.DBPath == "" && cfg.DataDir == "" {
		return fmt.Errorf("one of data_dir or db_path is required")
	}
	return nil
}

// StoreConfig maps the resolved settings onto the store.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		DataDir:     c.DataDir,
		Path:        c.DBPath,
		BusyTimeout: c.BusyTimeout,
	}
}

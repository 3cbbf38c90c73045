package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// STORYGOAL_LOG_LEVEL for log.level.
const EnvPrefix = "STORYGOAL"

// NewViper returns a viper instance with defaults and environment binding
// applied. Callers bind flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("db_path", "")
	v.SetDefault("busy_timeout", d.BusyTimeout.String())
	v.SetDefault("output", d.Output)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", false)
}

// Load resolves configuration in order of increasing precedence:
// defaults, the global config.yaml under HomeDir, explicitFile (when set),
// STORYGOAL_* environment variables, then any flags bound to v.
//
// A missing global file is not an error; a missing explicitFile is.
func Load(v *viper.Viper, explicitFile string) (*Config, error) {
	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if explicitFile != "" {
		if _, err := os.Stat(explicitFile); err != nil {
			return nil, fmt.Errorf("config file %s: %w", explicitFile, err)
		}
		v.SetConfigFile(explicitFile)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", explicitFile, err)
		}
	}
	return unmarshalAndValidate(v)
}

// GlobalConfigPath is config.yaml inside HomeDir.
func GlobalConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return fmt.Errorf("read global config: %w", err)
	}
	return nil
}

func isConfigNotFoundError(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}

func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

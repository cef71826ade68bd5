package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime settings. Values come from
// ~/.config/eventloom/config.yaml when present, overridden by
// EVENTLOOM_* environment variables, with defaults below.
type Config struct {
	DBPath             string `mapstructure:"db_path"`
	ReevaluateInterval time.Duration
	DispatcherBuffer   int `mapstructure:"dispatcher_buffer"`

	ReevaluateIntervalSec int `mapstructure:"reevaluate_interval_sec"`
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "eventloom.db"
	}
	return filepath.Join(home, ".local", "share", "eventloom", "eventloom.db")
}

// DefaultConfigDir returns the directory searched for config.yaml.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "eventloom")
}

func Load() (Config, error) {
	return load(DefaultConfigDir())
}

func load(dir string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetDefault("db_path", defaultDBPath())
	v.SetDefault("reevaluate_interval_sec", 60)
	v.SetDefault("dispatcher_buffer", 64)

	v.SetEnvPrefix("EVENTLOOM")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; defaults and env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: reading %s: %w", dir, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.ReevaluateIntervalSec <= 0 {
		return Config{}, fmt.Errorf("config: reevaluate_interval_sec must be positive, got %d", cfg.ReevaluateIntervalSec)
	}
	if cfg.DispatcherBuffer <= 0 {
		return Config{}, fmt.Errorf("config: dispatcher_buffer must be positive, got %d", cfg.DispatcherBuffer)
	}
	cfg.ReevaluateInterval = time.Duration(cfg.ReevaluateIntervalSec) * time.Second
	return cfg, nil
}

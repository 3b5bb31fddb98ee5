// Package config loads reel settings from defaults, an optional YAML file
// and REEL_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. REEL_DATABASE_PATH.
const EnvPrefix = "REEL"

// Config holds runtime settings.
type Config struct {
	DatabasePath string        `mapstructure:"database_path"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	LogLevel     string        `mapstructure:"log_level"`
	LogFormat    string        `mapstructure:"log_format"`

	// MetricsTextfile, if set, receives the Prometheus text exposition of the
	// run's counters when a command finishes.
	MetricsTextfile string `mapstructure:"metrics_textfile"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DatabasePath: "reel.db",
		FetchTimeout: 2 * time.Minute,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply. A named file that does not exist is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("database_path", d.DatabasePath)
	v.SetDefault("fetch_timeout", d.FetchTimeout)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("metrics_textfile", d.MetricsTextfile)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return errors.New("config: database_path must not be empty")
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("config: fetch_timeout must not be negative, got %s", c.FetchTimeout)
	}
	return nil
}

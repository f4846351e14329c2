// Package config loads console settings from the environment, with an
// optional config file for workstation setups.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// BackendURL is the bills backend base URL. When empty the console runs
	// in demo mode against a seeded in-memory backend.
	BackendURL string
	// APIToken is the bearer token for the backend, usually a JWT issued at
	// login. Left empty in demo mode.
	APIToken string

	RequestTimeout time.Duration
	LogLevel       string
	ExportDir      string
}

// Load reads settings from the environment, falling back to an optional
// console.yaml next to the binary. Environment wins over the file.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("console")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend_url", "")
	v.SetDefault("api_token", "")
	v.SetDefault("request_timeout", "15s")
	v.SetDefault("log_level", "info")
	v.SetDefault("export_dir", ".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	cfg := Config{
		BackendURL:     strings.TrimRight(v.GetString("backend_url"), "/"),
		APIToken:       strings.TrimSpace(v.GetString("api_token")),
		RequestTimeout: v.GetDuration("request_timeout"),
		LogLevel:       v.GetString("log_level"),
		ExportDir:      v.GetString("export_dir"),
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	return cfg, nil
}

// DemoMode reports whether the console should run against the in-memory
// backend instead of HTTP.
func (c Config) DemoMode() bool { return c.BackendURL == "" }

// Package config provides engine configuration management with support for
// environment variables, an optional YAML config file, and programmatic overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the engine configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Logger LoggerConfig `yaml:"logger"`
	Server ServerConfig `yaml:"server"`
	Sync   SyncConfig   `yaml:"sync"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `yaml:"environment"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "pretty"; empty auto-detects from environment
}

// ServerConfig holds backend connection configuration.
type ServerConfig struct {
	// URL is the PackZen backend base URL, e.g. "https://packzen.example.com".
	URL string `yaml:"url"`
	// SessionToken is attached as a bearer token on every request.
	SessionToken string `yaml:"session_token"`
	// CSRFToken is attached on mutating requests.
	CSRFToken string `yaml:"csrf_token"`
}

// SyncConfig holds change-feed and refresh configuration.
type SyncConfig struct {
	// RefreshMinInterval gates silent refreshes; refreshes requested more
	// often than this are skipped. Default 5s, matching the product behavior.
	RefreshMinInterval time.Duration `yaml:"refresh_min_interval"`
	// ReconnectMinBackoff is the initial delay before a feed reconnect attempt.
	ReconnectMinBackoff time.Duration `yaml:"reconnect_min_backoff"`
	// ReconnectMaxBackoff caps the doubling reconnect delay.
	ReconnectMaxBackoff time.Duration `yaml:"reconnect_max_backoff"`
}

// Load builds configuration with precedence:
// 1. Environment variables (highest).
// 2. YAML config file at path (if path is non-empty and the file exists).
// 3. Defaults.
//
// CLI flag overrides are applied by the caller after Load.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	loadEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Sync: SyncConfig{
			RefreshMinInterval:  5 * time.Second,
			ReconnectMinBackoff: time.Second,
			ReconnectMaxBackoff: 30 * time.Second,
		},
	}
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Config file is optional.
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) {
	setString(&cfg.App.Environment, "PACKZEN_ENV")
	setString(&cfg.Logger.Level, "PACKZEN_LOG_LEVEL")
	setString(&cfg.Logger.Format, "PACKZEN_LOG_FORMAT")
	setString(&cfg.Server.URL, "PACKZEN_SERVER_URL")
	setString(&cfg.Server.SessionToken, "PACKZEN_SESSION_TOKEN")
	setString(&cfg.Server.CSRFToken, "PACKZEN_CSRF_TOKEN")
	setDuration(&cfg.Sync.RefreshMinInterval, "PACKZEN_REFRESH_MIN_INTERVAL")
	setDuration(&cfg.Sync.ReconnectMinBackoff, "PACKZEN_RECONNECT_MIN_BACKOFF")
	setDuration(&cfg.Sync.ReconnectMaxBackoff, "PACKZEN_RECONNECT_MAX_BACKOFF")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return
	}
	// Bare numbers are treated as seconds.
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Second
	}
}

// Validate checks the configuration for consistency.
// Server.URL may be empty at load time; it is re-checked when a gateway is built.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	if c.Server.URL != "" {
		u, err := url.Parse(c.Server.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid server URL: %q", c.Server.URL)
		}
	}

	if c.Sync.RefreshMinInterval <= 0 {
		return fmt.Errorf("refresh_min_interval must be positive, got %s", c.Sync.RefreshMinInterval)
	}
	if c.Sync.ReconnectMinBackoff <= 0 || c.Sync.ReconnectMaxBackoff < c.Sync.ReconnectMinBackoff {
		return fmt.Errorf("reconnect backoff bounds invalid: min=%s max=%s",
			c.Sync.ReconnectMinBackoff, c.Sync.ReconnectMaxBackoff)
	}
	return nil
}

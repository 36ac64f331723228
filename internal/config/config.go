package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Fetch     FetchConfig     `toml:"fetch"`
	DevServer DevServerConfig `toml:"devserver"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

// FetchConfig holds settings for fetching verification posts and blog feeds.
type FetchConfig struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	FeedBaseURL    string `toml:"feed_base_url"`
}

// DevServerConfig holds settings for the local development backend.
type DevServerConfig struct {
	Port int `toml:"port"`
	// AllowHTTPFetch lets the dev server fetch the verification post itself
	// when the client supplies no title/body hints.
	AllowHTTPFetch bool `toml:"allow_http_fetch"`
}

const defaultConfigContent = `[api]
base_url = "http://localhost:8000"   # Backend endpoint (or set PLOG_API_BASE_URL)

[fetch]
timeout_seconds = 15
feed_base_url = "https://rss.blog.naver.com"

[devserver]
port = 8000
allow_http_fetch = false
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Validate explicitly-set values before applying defaults, so that
	// explicitly writing "port = 0" is an error rather than silently
	// being replaced with the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
// This catches cases like "port = 0" which would otherwise be silently
// replaced by the default value.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("devserver", "port") {
		if cfg.DevServer.Port < 1 || cfg.DevServer.Port > 65535 {
			return fmt.Errorf("invalid devserver.port %d: must be between 1 and 65535", cfg.DevServer.Port)
		}
	}
	if md.IsDefined("fetch", "timeout_seconds") {
		if cfg.Fetch.TimeoutSeconds < 1 {
			return fmt.Errorf("invalid fetch.timeout_seconds %d: must be >= 1", cfg.Fetch.TimeoutSeconds)
		}
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000"
	}
	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = 15
	}
	if cfg.Fetch.FeedBaseURL == "" {
		cfg.Fetch.FeedBaseURL = "https://rss.blog.naver.com"
	}
	if cfg.DevServer.Port == 0 {
		cfg.DevServer.Port = 8000
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PLOG_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	if cfg.DevServer.Port < 1 || cfg.DevServer.Port > 65535 {
		return fmt.Errorf("invalid devserver.port %d: must be between 1 and 65535", cfg.DevServer.Port)
	}

	if cfg.Fetch.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid fetch.timeout_seconds %d: must be >= 1", cfg.Fetch.TimeoutSeconds)
	}

	return nil
}

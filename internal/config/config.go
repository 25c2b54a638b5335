// Package config provides configuration loading for the favicon service.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is reported by the CLI and in the default user agent.
const Version = "1.4.1"

const product = "favicons"

// Config represents the complete service configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Icon   IconConfig   `yaml:"icon"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the HTTP listeners
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// MetricsAddr serves /metrics on a separate listener (empty = disabled)
	MetricsAddr string `yaml:"metrics_addr"`
	// HomeURL is where requests without a domain are redirected
	HomeURL           string        `yaml:"home_url"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// FetchConfig configures outbound requests
type FetchConfig struct {
	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRedirects int           `yaml:"max_redirects"`
	// Attempts is the total number of tries per URL
	Attempts     int   `yaml:"attempts"`
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// IconConfig configures resolution and presentation
type IconConfig struct {
	// CacheMaxAge is the default advised cache lifetime in seconds
	CacheMaxAge int  `yaml:"cache_max_age"`
	Debug       bool `yaml:"debug"`
	// DefaultPath replaces the embedded default icon (empty = embedded)
	DefaultPath string `yaml:"default_path"`
	// Extractor is "regex" or "html"
	Extractor      string        `yaml:"extractor"`
	ResolveTimeout time.Duration `yaml:"resolve_timeout"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			MetricsAddr:       "",
			HomeURL:           "https://statically.io/favicons/",
			ReadTimeout:       5 * time.Second,
			ReadHeaderTimeout: 2 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       time.Minute,
			ShutdownTimeout:   15 * time.Second,
		},
		Fetch: FetchConfig{
			UserAgent:    product + "/" + Version,
			Timeout:      15 * time.Second,
			MaxRedirects: 2,
			Attempts:     2,
			MaxBodyBytes: 5 << 20,
		},
		Icon: IconConfig{
			CacheMaxAge:    2678400, // 1 month
			Extractor:      "regex",
			ResolveTimeout: 45 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MetricsAddr != "" && c.Server.MetricsAddr == c.Server.Addr {
		return fmt.Errorf("server.metrics_addr must differ from server.addr")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if c.Fetch.UserAgent == "" {
		return fmt.Errorf("fetch.user_agent is required")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if c.Fetch.Attempts < 1 {
		return fmt.Errorf("fetch.attempts must be at least 1")
	}
	if c.Fetch.MaxRedirects < 0 {
		return fmt.Errorf("fetch.max_redirects cannot be negative")
	}
	if c.Fetch.MaxBodyBytes < 0 {
		return fmt.Errorf("fetch.max_body_bytes cannot be negative")
	}
	if c.Icon.CacheMaxAge < 0 {
		return fmt.Errorf("icon.cache_max_age cannot be negative")
	}
	switch c.Icon.Extractor {
	case "regex", "html":
	default:
		return fmt.Errorf("icon.extractor must be regex or html, got %q", c.Icon.Extractor)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

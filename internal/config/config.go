// Package config handles loading and validating the client configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level client configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Paging  PagingConfig  `yaml:"paging"`
	Upload  UploadConfig  `yaml:"upload"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig defines the remote catalog API settings.
type APIConfig struct {
	BaseURL   string          `yaml:"base_url"`
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines client-side throttling of API calls.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// SessionConfig defines where the session token is persisted.
type SessionConfig struct {
	StorePath string `yaml:"store_path"`
}

// PagingConfig defines the fixed page size of each listing view.
type PagingConfig struct {
	MarketPageSize     int `yaml:"market_page_size"`
	MyListingsPageSize int `yaml:"my_listings_page_size"`
}

// UploadConfig defines limits enforced before publishing a listing.
type UploadConfig struct {
	MaxImages     int   `yaml:"max_images"`
	MaxImageBytes int64 `yaml:"max_image_bytes"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	return finish(cfg)
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Validate re-checks cfg after callers have applied overrides.
func (c *Config) Validate() error {
	if err := validate(c); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyAPIDefaults(&cfg.API)
	applySessionDefaults(&cfg.Session)
	applyPagingDefaults(&cfg.Paging)
	applyUploadDefaults(&cfg.Upload)
	applyLoggingDefaults(&cfg.Logging)
}

func applyAPIDefaults(a *APIConfig) {
	if a.BaseURL == "" {
		a.BaseURL = "http://localhost:8080"
	}
	if a.Timeout == 0 {
		a.Timeout = 15 * time.Second
	}
	if a.RateLimit.PerSecond == 0 {
		a.RateLimit.PerSecond = 10
	}
	if a.RateLimit.Burst == 0 {
		a.RateLimit.Burst = 20
	}
}

func applySessionDefaults(s *SessionConfig) {
	if s.StorePath == "" {
		s.StorePath = DefaultSessionPath()
	}
}

func applyPagingDefaults(p *PagingConfig) {
	if p.MarketPageSize == 0 {
		p.MarketPageSize = 8
	}
	if p.MyListingsPageSize == 0 {
		p.MyListingsPageSize = 6
	}
}

func applyUploadDefaults(u *UploadConfig) {
	if u.MaxImages == 0 {
		u.MaxImages = 5
	}
	if u.MaxImageBytes == 0 {
		u.MaxImageBytes = 5 << 20
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "warn"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

// DefaultSessionPath returns ~/.shc/session.yaml, falling back to the working
// directory when no home directory is available.
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".shc", "session.yaml")
	}
	return filepath.Join(home, ".shc", "session.yaml")
}

func validate(cfg *Config) error {
	var errs []error

	if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url must be an absolute URL (got %q)", cfg.API.BaseURL))
	}
	if cfg.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("api.timeout must not be negative"))
	}
	if cfg.API.RateLimit.PerSecond < 0 {
		errs = append(errs, fmt.Errorf("api.rate_limit.per_second must not be negative"))
	}
	if cfg.Paging.MarketPageSize < 1 {
		errs = append(errs, fmt.Errorf("paging.market_page_size must be at least 1"))
	}
	if cfg.Paging.MyListingsPageSize < 1 {
		errs = append(errs, fmt.Errorf("paging.my_listings_page_size must be at least 1"))
	}
	if cfg.Upload.MaxImages < 1 {
		errs = append(errs, fmt.Errorf("upload.max_images must be at least 1"))
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(
			errs,
			fmt.Errorf("logging.format must be one of: text, json (got %q)", cfg.Logging.Format),
		)
	}

	return errors.Join(errs...)
}

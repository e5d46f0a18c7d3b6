// Package config provides configuration management for the user fetcher.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"userfetch/internal/normalizer"
	"userfetch/pkg/utils"
)

// Configuration validation errors.
var (
	ErrNoSources          = errors.New("at least one source is required")
	ErrNoEnabledSources   = errors.New("at least one source must be enabled")
	ErrSourceMissingName  = errors.New("source name is required")
	ErrSourceMissingURL   = errors.New("source url is required")
	ErrSourceInvalidURL   = errors.New("source url must be an absolute http(s) URL")
	ErrDuplicateSource    = errors.New("source names must be unique")
	ErrUnknownAdapter     = errors.New("unknown adapter")
	ErrInvalidTimeout     = errors.New("fetch.timeout_sec must be at least 1")
	ErrInvalidConcurrency = errors.New("fetch.concurrency must be at least 1")
	ErrInvalidBufferSize  = errors.New("fetch.buffer_size_kb must be at least 1")
	ErrInvalidPreviewRows = errors.New("logging.preview_rows must be non-negative")
	ErrInvalidLogLevel    = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Environment variables that override file values.
const (
	EnvOutputPath  = "USERFETCH_OUTPUT_PATH"
	EnvFormat      = "USERFETCH_FORMAT"
	EnvLogLevel    = "USERFETCH_LOG_LEVEL"
	EnvTimeoutSec  = "USERFETCH_TIMEOUT_SEC"
	EnvConcurrency = "USERFETCH_CONCURRENCY"
	EnvStrict      = "USERFETCH_STRICT"
)

// Config represents the complete fetcher configuration.
type Config struct {
	Sources []SourceConfig `yaml:"sources"`
	Output  OutputConfig   `yaml:"output"`
	Logging LoggingConfig  `yaml:"logging"`
	Fetch   FetchConfig    `yaml:"fetch"`
}

// SourceConfig represents one user API endpoint.
// Adapter may be left empty, in which case the built-in host table decides.
type SourceConfig struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Adapter string `yaml:"adapter,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

// FetchConfig controls how endpoints are requested.
type FetchConfig struct {
	TimeoutSec   int  `yaml:"timeout_sec"`
	BufferSizeKb int  `yaml:"buffer_size_kb"`
	Concurrency  int  `yaml:"concurrency"`
	Strict       bool `yaml:"strict"`
}

// OutputConfig defines where and how the aggregate is saved.
// Format is checked when saving, not here, so a bad value never discards fetched data.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	PreviewRows int    `yaml:"preview_rows"`
}

// DefaultConfig returns the built-in configuration with the four known sources.
func DefaultConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			TimeoutSec:   30,
			BufferSizeKb: 1024,
			Concurrency:  4,
		},
		Sources: []SourceConfig{
			{Name: "randomuser", URL: "https://randomuser.me/api/?results=5", Adapter: "results", Enabled: true},
			{Name: "mockaroo", URL: "https://my.api.mockaroo.com/users.json?key=demo", Adapter: "list", Enabled: true},
			{Name: "dummyjson", URL: "https://dummyjson.com/users?limit=5", Adapter: "users", Enabled: true},
			{Name: "reqres", URL: "https://reqres.in/api/users?page=1", Adapter: "data", Enabled: true},
		},
		Logging: LoggingConfig{
			Level:       "info",
			PreviewRows: 10,
		},
	}
}

// Load returns the configuration at path, or the defaults when path is empty.
// A .env file in the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		cfg := DefaultConfig()
		if err := cfg.ApplyEnv(); err != nil {
			return nil, err
		}

		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}

		return cfg, nil
	}

	return LoadConfig(path)
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides values from USERFETCH_* environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := lookupEnv(EnvOutputPath); ok {
		c.Output.Path = v
	}

	if v, ok := lookupEnv(EnvFormat); ok {
		c.Output.Format = v
	}

	if v, ok := lookupEnv(EnvLogLevel); ok {
		c.Logging.Level = strings.ToLower(v)
	}

	if v, ok := lookupEnv(EnvTimeoutSec); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeoutSec, err)
		}

		c.Fetch.TimeoutSec = n
	}

	if v, ok := lookupEnv(EnvConcurrency); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvConcurrency, err)
		}

		c.Fetch.Concurrency = n
	}

	if v, ok := lookupEnv(EnvStrict); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStrict, err)
		}

		c.Fetch.Strict = b
	}

	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}

	v = strings.TrimSpace(v)

	return v, v != ""
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}

	httpHelper := utils.NewHTTPHelper()
	seen := make(map[string]bool, len(c.Sources))
	enabledCount := 0

	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingName, i)
		}

		if seen[src.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateSource, src.Name)
		}

		seen[src.Name] = true

		if src.URL == "" {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingURL, i)
		}

		if !httpHelper.IsValidURL(src.URL) {
			return fmt.Errorf("%w: source[%d] %q", ErrSourceInvalidURL, i, src.URL)
		}

		if src.Adapter != "" {
			if _, err := normalizer.ParseKind(src.Adapter); err != nil {
				return fmt.Errorf("%w %q for source %s (want one of %s)",
					ErrUnknownAdapter, src.Adapter, src.Name, strings.Join(normalizer.KindNames(), ", "))
			}
		}

		if src.Enabled {
			enabledCount++
		}
	}

	if enabledCount == 0 {
		return ErrNoEnabledSources
	}

	if c.Fetch.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Fetch.Concurrency < 1 {
		return ErrInvalidConcurrency
	}

	if c.Fetch.BufferSizeKb < 1 {
		return ErrInvalidBufferSize
	}

	if c.Logging.PreviewRows < 0 {
		return ErrInvalidPreviewRows
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// GetEnabledSources returns only enabled sources, in configuration order.
func (c *Config) GetEnabledSources() []SourceConfig {
	var enabled []SourceConfig

	for _, src := range c.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	return enabled
}

// Routes returns dispatcher routes for sources that name their adapter,
// followed by the built-in host table.
func (c *Config) Routes() []normalizer.Route {
	var routes []normalizer.Route

	for _, src := range c.Sources {
		if src.Adapter == "" {
			continue
		}

		kind, err := normalizer.ParseKind(src.Adapter)
		if err != nil {
			continue
		}

		routes = append(routes, normalizer.Route{Name: src.Name, Pattern: src.URL, Kind: kind})
	}

	return append(routes, normalizer.DefaultRoutes()...)
}

// GetTimeout returns the per-fetch timeout.
func (f *FetchConfig) GetTimeout() time.Duration {
	return time.Duration(f.TimeoutSec) * time.Second
}

// GetBufferLimit returns the maximum response size in bytes.
func (f *FetchConfig) GetBufferLimit() int64 {
	return int64(f.BufferSizeKb) * 1024
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Sources: %d, Enabled: %d, Concurrency: %d, Strict: %t, Output: %s}",
		len(c.Sources),
		len(c.GetEnabledSources()),
		c.Fetch.Concurrency,
		c.Fetch.Strict,
		c.Output.Path,
	)
}

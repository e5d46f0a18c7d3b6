package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"userfetch/internal/normalizer"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// validConfigYAML is a minimal valid configuration.
const validConfigYAML = `
fetch:
  timeout_sec: 10
  concurrency: 2
sources:
  - name: "local-reqres"
    url: "http://127.0.0.1:9000/api/users"
    adapter: "data"
    enabled: true
  - name: "dummyjson"
    url: "https://dummyjson.com/users"
    enabled: false
output:
  path: "./output"
  format: "csv"
logging:
  level: "debug"
`

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Output = OutputConfig{Path: "./out", Format: "json"}

	return cfg
}

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(cfg.Sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(cfg.Sources))
	}

	if cfg.Sources[0].Name != "local-reqres" {
		t.Errorf("Expected first source 'local-reqres', got '%s'", cfg.Sources[0].Name)
	}

	if cfg.Fetch.TimeoutSec != 10 || cfg.Fetch.Concurrency != 2 {
		t.Errorf("Fetch config not applied: %+v", cfg.Fetch)
	}

	// Keys absent from the file keep their defaults
	if cfg.Fetch.BufferSizeKb != 1024 {
		t.Errorf("Expected default buffer_size_kb 1024, got %d", cfg.Fetch.BufferSizeKb)
	}

	if cfg.Logging.PreviewRows != 10 {
		t.Errorf("Expected default preview_rows 10, got %d", cfg.Logging.PreviewRows)
	}

	if cfg.Output.Format != "csv" || cfg.Output.Path != "./output" {
		t.Errorf("Output config not applied: %+v", cfg.Output)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "invalid: yaml: content: [}")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvOutputPath, "/tmp/users-out")
	t.Setenv(EnvFormat, "JSON")
	t.Setenv(EnvLogLevel, "WARN")
	t.Setenv(EnvConcurrency, "1")
	t.Setenv(EnvStrict, "true")

	cfg, err := LoadConfig(createTempConfigFile(t, validConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Output.Path != "/tmp/users-out" {
		t.Errorf("Output.Path = %q, want /tmp/users-out", cfg.Output.Path)
	}

	if cfg.Output.Format != "JSON" {
		t.Errorf("Output.Format = %q, want JSON", cfg.Output.Format)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}

	if cfg.Fetch.Concurrency != 1 || !cfg.Fetch.Strict {
		t.Errorf("Fetch overrides not applied: %+v", cfg.Fetch)
	}
}

func TestLoadConfig_InvalidEnvOverride(t *testing.T) {
	t.Setenv(EnvTimeoutSec, "soon")

	_, err := LoadConfig(createTempConfigFile(t, validConfigYAML))
	if err == nil || !strings.Contains(err.Error(), EnvTimeoutSec) {
		t.Fatalf("Expected %s parse error, got %v", EnvTimeoutSec, err)
	}
}

func TestLoad_DefaultsWithoutPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.GetEnabledSources()) != 4 {
		t.Errorf("Expected 4 enabled default sources, got %d", len(cfg.GetEnabledSources()))
	}
}

func TestDefaultConfig_SourcesDispatch(t *testing.T) {
	cfg := DefaultConfig()
	d := normalizer.NewDispatcher(normalizer.DefaultRoutes()...)

	// Every default source resolves through the host table to the adapter it names.
	for _, src := range cfg.Sources {
		kind, err := d.Resolve(src.URL)
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", src.URL, err)
		}

		if kind.String() != src.Adapter {
			t.Errorf("Source %s resolved to %s, want %s", src.Name, kind, src.Adapter)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: nil},
		{name: "no sources", mutate: func(c *Config) { c.Sources = nil }, wantErr: ErrNoSources},
		{name: "no enabled sources", mutate: func(c *Config) {
			for i := range c.Sources {
				c.Sources[i].Enabled = false
			}
		}, wantErr: ErrNoEnabledSources},
		{name: "missing name", mutate: func(c *Config) { c.Sources[1].Name = "" }, wantErr: ErrSourceMissingName},
		{name: "duplicate name", mutate: func(c *Config) { c.Sources[1].Name = c.Sources[0].Name }, wantErr: ErrDuplicateSource},
		{name: "missing url", mutate: func(c *Config) { c.Sources[2].URL = "" }, wantErr: ErrSourceMissingURL},
		{name: "relative url", mutate: func(c *Config) { c.Sources[2].URL = "dummyjson.com/users" }, wantErr: ErrSourceInvalidURL},
		{name: "unknown adapter", mutate: func(c *Config) { c.Sources[0].Adapter = "xml" }, wantErr: ErrUnknownAdapter},
		{name: "empty adapter allowed", mutate: func(c *Config) { c.Sources[0].Adapter = "" }, wantErr: nil},
		{name: "zero timeout", mutate: func(c *Config) { c.Fetch.TimeoutSec = 0 }, wantErr: ErrInvalidTimeout},
		{name: "zero concurrency", mutate: func(c *Config) { c.Fetch.Concurrency = 0 }, wantErr: ErrInvalidConcurrency},
		{name: "zero buffer", mutate: func(c *Config) { c.Fetch.BufferSizeKb = 0 }, wantErr: ErrInvalidBufferSize},
		{name: "negative preview", mutate: func(c *Config) { c.Logging.PreviewRows = -1 }, wantErr: ErrInvalidPreviewRows},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: ErrInvalidLogLevel},
		{name: "unsupported format is not a config error", mutate: func(c *Config) { c.Output.Format = "xml" }, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}

				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetEnabledSources(t *testing.T) {
	cfg := validConfig()
	cfg.Sources[1].Enabled = false

	enabled := cfg.GetEnabledSources()
	if len(enabled) != 3 {
		t.Fatalf("Expected 3 enabled sources, got %d", len(enabled))
	}

	if enabled[0].Name != "randomuser" || enabled[1].Name != "dummyjson" {
		t.Errorf("Enabled sources out of order: %v, %v", enabled[0].Name, enabled[1].Name)
	}
}

func TestConfig_Routes(t *testing.T) {
	cfg := &Config{
		Sources: []SourceConfig{
			{Name: "mirror", URL: "http://127.0.0.1:9000/people", Adapter: "list", Enabled: true},
			{Name: "auto", URL: "https://dummyjson.com/users", Enabled: true},
		},
	}

	routes := cfg.Routes()
	if len(routes) != 1+len(normalizer.DefaultRoutes()) {
		t.Fatalf("Expected configured route plus defaults, got %d routes", len(routes))
	}

	d := normalizer.NewDispatcher(routes...)

	kind, err := d.Resolve("http://127.0.0.1:9000/people")
	if err != nil || kind != normalizer.KindList {
		t.Errorf("Resolve(mirror) = %v, %v; want list", kind, err)
	}

	kind, err = d.Resolve("https://dummyjson.com/users")
	if err != nil || kind != normalizer.KindUsers {
		t.Errorf("Resolve(auto) = %v, %v; want users", kind, err)
	}
}

func TestFetchConfig_Durations(t *testing.T) {
	f := FetchConfig{TimeoutSec: 5, BufferSizeKb: 2}

	if got := f.GetTimeout(); got != 5*time.Second {
		t.Errorf("GetTimeout() = %v, want 5s", got)
	}

	if got := f.GetBufferLimit(); got != 2048 {
		t.Errorf("GetBufferLimit() = %d, want 2048", got)
	}
}

func TestConfig_String(t *testing.T) {
	s := validConfig().String()
	if !strings.Contains(s, "Sources: 4") || !strings.Contains(s, "Output: ./out") {
		t.Errorf("String() = %s", s)
	}
}

func TestConfig_SaveConfig(t *testing.T) {
	cfg := validConfig()
	path := filepath.Join(t.TempDir(), "saved.yaml")

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig of saved file failed: %v", err)
	}

	if len(loaded.Sources) != len(cfg.Sources) || loaded.Sources[3].URL != cfg.Sources[3].URL {
		t.Errorf("Saved sources differ: %+v", loaded.Sources)
	}

	if loaded.Output != cfg.Output {
		t.Errorf("Saved output differs: %+v", loaded.Output)
	}
}

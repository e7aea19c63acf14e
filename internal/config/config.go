package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iqwerty/iq/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "iq.json"

	// DefaultPort is the default preview server port.
	DefaultPort = 3000

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultTemplatesDir is the default directory for component templates.
	DefaultTemplatesDir = "templates"

	// DefaultStateFile is the default path of the persisted state database.
	DefaultStateFile = "iq.state.db"
)

// Config represents the complete iq.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Host is the host the preview server binds to.
	Host string `json:"host,omitempty"`

	// Port is the preview server port.
	Port int `json:"port,omitempty"`

	// Templates configures where component templates are fetched from.
	Templates TemplatesConfig `json:"templates,omitempty"`

	// State configures global state persistence.
	State StateConfig `json:"state,omitempty"`

	// Dev contains development server settings.
	Dev DevConfig `json:"dev,omitempty"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// TemplatesConfig describes the template sources, tried in order:
// directory, then HTTP base URL, then S3.
type TemplatesConfig struct {
	// Dir is a local directory holding template files.
	Dir string `json:"dir,omitempty"`

	// URL is an HTTP base URL templates are fetched relative to.
	URL string `json:"url,omitempty"`

	// S3 names an object-store bucket holding templates.
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config names an S3 bucket and key prefix for templates.
type S3Config struct {
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty"`
}

// StateConfig contains global state persistence settings.
type StateConfig struct {
	// File is the bbolt database path. Empty disables persistence.
	File string `json:"file,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Watch contains paths watched for changes; edits trigger a reload.
	Watch []string `json:"watch,omitempty"`

	// HotReload enables live page reload on template changes.
	HotReload bool `json:"hotReload,omitempty"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled exposes /metrics on the preview server.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace is the metrics namespace (default: "iq").
	Namespace string `json:"namespace,omitempty"`
}

// Default returns a configuration populated with defaults.
func Default() *Config {
	return &Config{
		Host: DefaultHost,
		Port: DefaultPort,
		Templates: TemplatesConfig{
			Dir: DefaultTemplatesDir,
		},
		State: StateConfig{
			File: DefaultStateFile,
		},
		Dev: DevConfig{
			HotReload: true,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "iq",
		},
	}
}

// Load reads the configuration from dir/iq.json. A missing file is not an
// error: defaults are returned.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.Wrap("E401", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap("E401", fmt.Errorf("%s: %w", path, err))
	}
	cfg.configPath = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find walks up from dir looking for iq.json and loads the first one found.
// If none exists, defaults are returned.
func Find(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap("E401", err)
	}
	for {
		path := filepath.Join(abs, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return Load(abs)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return Default(), nil
		}
		abs = parent
	}
}

// Validate checks the configuration for impossible values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.Newf("E401", "port %d out of range", c.Port)
	}
	if c.Templates.Dir == "" && c.Templates.URL == "" && c.Templates.S3.Bucket == "" {
		return errors.Newf("E401", "no template source configured")
	}
	return nil
}

// Path returns where the configuration was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.configPath
}

// Addr returns the host:port address the preview server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

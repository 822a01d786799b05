/*
PURPOSE:
  Defines the configuration structure and loading logic for Turbine Viewer.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Configure the backend base URL and request timeout.
  - Configure camera defaults for single and comparison views.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Needs to support Environment variables overrides (TURBINE_...).
  - The response cache needs a TTL and a size at which expired entries are swept.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine, internal/viewer
  - Dependencies: gopkg.in/yaml.v3

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default files fall back to defaults silently.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults: 10s timeout, 5 minute cache.

USAGE:
  cfg, err := config.Load("viewer.yaml")

RELATED FILES:
  - internal/cli/root.go
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CameraConfig is the initial camera placement of a viewport.
type CameraConfig struct {
	Position [3]float64 `yaml:"position"`
	Target   [3]float64 `yaml:"target"`
	FOV      float64    `yaml:"fov"`
}

// Config represents the full configuration for Turbine Viewer.
type Config struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`

	// CacheTTL bounds how long monitoring responses are reused.
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	CacheMaxEntries int           `yaml:"cache_max_entries"`

	SingleCamera     CameraConfig `yaml:"single_camera"`
	ComparisonCamera CameraConfig `yaml:"comparison_camera"`

	// MonitorInterval is the refresh period of realtime monitoring.
	MonitorInterval time.Duration `yaml:"monitor_interval"`

	Listen    string `yaml:"listen"`
	OutputDir string `yaml:"output_dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "http://localhost:8849",
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		RetryDelay:      time.Second,
		CacheTTL:        5 * time.Minute,
		CacheMaxEntries: 50,
		SingleCamera: CameraConfig{
			Position: [3]float64{0, 0, 15},
			FOV:      50,
		},
		ComparisonCamera: CameraConfig{
			Position: [3]float64{0, 0, 100},
			FOV:      50,
		},
		MonitorInterval: time.Minute,
		Listen:          "127.0.0.1:8080",
		OutputDir:       ".",
	}
}

// DefaultFiles are searched in order when no path is given.
var DefaultFiles = []string{"viewer.yaml", "turbine_viewer.yaml"}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				break
			}
		}
	}

	if path != "" {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("TURBINE_BASE_URL"); ok {
		cfg.BaseURL = v
	}
	if v, ok := os.LookupEnv("TURBINE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TURBINE_TIMEOUT %q: %w", v, err)
		}
		cfg.Timeout = d
	}
	return nil
}

// Validate checks the fields the client and viewers depend on.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.BaseURL) == "" {
		errs = append(errs, errors.New("base_url must be set"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries))
	}
	if c.CacheMaxEntries < 0 {
		errs = append(errs, fmt.Errorf("cache_max_entries must not be negative, got %d", c.CacheMaxEntries))
	}
	return errors.Join(errs...)
}

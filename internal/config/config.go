// ABOUTME: Configuration loading and parsing for hearthd
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete hearthd configuration
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Alerts      AlertsConfig      `yaml:"alerts"`
	Scopes      ScopesConfig      `yaml:"scopes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PersistenceConfig holds the key-value store configuration
type PersistenceConfig struct {
	Path string `yaml:"path"`
}

// AlertsConfig tunes the alert bridge
type AlertsConfig struct {
	DedupeWindow time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	DedupeWindowRaw string `yaml:"dedupe_window"`

	MaxPerMinute    int     `yaml:"max_per_minute"`
	MaxKeys         int     `yaml:"max_keys"`
	MotionHighScore float64 `yaml:"motion_high_score"`
	MotionLowScore  float64 `yaml:"motion_low_score"`
}

// ScopesConfig selects the active scope and defines extra scopes beyond the
// built-in ones
type ScopesConfig struct {
	Active      string     `yaml:"active"`
	Definitions []ScopeDef `yaml:"definitions"`
}

// ScopeDef is one config-defined scope
type ScopeDef struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	AllowedProviders []string `yaml:"allowed_providers"`
	AllowInternet    bool     `yaml:"allow_internet"`
	AllowLAN         bool     `yaml:"allow_lan"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Logging:     LoggingConfig{Level: "info", Format: "text"},
		Persistence: PersistenceConfig{Path: "hearthd.db"},
		Alerts: AlertsConfig{
			DedupeWindow:    60 * time.Second,
			MaxPerMinute:    10,
			MaxKeys:         256,
			MotionHighScore: 0.8,
			MotionLowScore:  0.5,
		},
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Persistence.Path == "" {
		return fmt.Errorf("persistence.path is required")
	}

	if c.Alerts.MaxPerMinute < 0 {
		return fmt.Errorf("alerts.max_per_minute must not be negative")
	}
	if c.Alerts.MotionLowScore > c.Alerts.MotionHighScore {
		return fmt.Errorf("alerts.motion_low_score must not exceed alerts.motion_high_score")
	}

	for _, def := range c.Scopes.Definitions {
		if def.ID == "" {
			return fmt.Errorf("scope definitions require an id")
		}
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Alerts.DedupeWindowRaw != "" {
		d, err := time.ParseDuration(cfg.Alerts.DedupeWindowRaw)
		if err != nil {
			return fmt.Errorf("parsing dedupe_window %q: %w", cfg.Alerts.DedupeWindowRaw, err)
		}
		cfg.Alerts.DedupeWindow = d
	}
	return nil
}

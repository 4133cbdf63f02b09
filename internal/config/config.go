package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	amerrors "github.com/Aman-CERP/amanlog/internal/errors"
)

// Project config file names, in order of precedence.
const (
	ProjectConfigYAML = ".amanlog.yaml"
	ProjectConfigYML  = ".amanlog.yml"
)

// Config represents the complete amanlog configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// LoggingConfig configures the log facility and its sinks.
type LoggingConfig struct {
	// Dir is the log directory. Empty means ./logs under the working directory.
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`

	// Level is the global minimum level: debug, info, warn or error.
	Level string `yaml:"level" json:"level"`

	// MaxSizeMB is the size at which a log file rotates.
	MaxSizeMB int `yaml:"max_size_mb" json:"max_size_mb"`

	// MaxFiles is the number of rotated files kept per log.
	MaxFiles int `yaml:"max_files" json:"max_files"`

	// RetentionDays is the age after which `amanlog clean` deletes files.
	RetentionDays int `yaml:"retention_days" json:"retention_days"`

	// Console enables the console sink. A pointer so an explicit false in a
	// file overrides the default.
	Console *bool `yaml:"console,omitempty" json:"console,omitempty"`

	// Color is the console color mode: auto, always or never.
	Color string `yaml:"color" json:"color"`

	// DrainTimeout bounds the flush on exit (e.g. "5s").
	DrainTimeout string `yaml:"drain_timeout" json:"drain_timeout"`
}

// NewConfig returns a configuration with all defaults applied.
func NewConfig() *Config {
	console := true
	return &Config{
		Version: 1,
		Logging: LoggingConfig{
			Level:         "info",
			MaxSizeMB:     10,
			MaxFiles:      5,
			RetentionDays: 14,
			Console:       &console,
			Color:         "auto",
			DrainTimeout:  "5s",
		},
	}
}

// ConsoleEnabled reports whether the console sink is on.
func (l LoggingConfig) ConsoleEnabled() bool {
	return l.Console == nil || *l.Console
}

// DrainTimeoutDuration returns the parsed drain timeout, or 0 if unset.
// Validate rejects unparsable values.
func (l LoggingConfig) DrainTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(l.DrainTimeout)
	if err != nil {
		return 0
	}
	return d
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/amanlog/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/amanlog/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "amanlog", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "amanlog", "config.yaml")
	}
	return filepath.Join(home, ".config", "amanlog", "config.yaml")
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	var cfg Config
	if err := readYAML(configPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads configuration for the project in dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/amanlog/config.yaml)
//  3. Project config (.amanlog.yaml in dir)
//  4. Environment variables (LOG_DIR, LOG_LEVEL, LOG_RETENTION_DAYS, LOG_COLOR)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile merges .amanlog.yaml, or .amanlog.yml, from dir.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{ProjectConfigYAML, ProjectConfigYML} {
		path := filepath.Join(dir, name)
		if !fileExists(path) {
			continue
		}
		var parsed Config
		if err := readYAML(path, &parsed); err != nil {
			return err
		}
		c.mergeWith(&parsed)
		return nil
	}
	return nil
}

func readYAML(path string, into *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return amerrors.ConfigError(fmt.Sprintf("failed to read config file %s", path), err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return amerrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path).
			WithSuggestion("Check the YAML syntax of the config file")
	}
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	o := other.Logging
	if o.Dir != "" {
		c.Logging.Dir = o.Dir
	}
	if o.Level != "" {
		c.Logging.Level = o.Level
	}
	if o.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = o.MaxSizeMB
	}
	if o.MaxFiles != 0 {
		c.Logging.MaxFiles = o.MaxFiles
	}
	if o.RetentionDays != 0 {
		c.Logging.RetentionDays = o.RetentionDays
	}
	if o.Console != nil {
		console := *o.Console
		c.Logging.Console = &console
	}
	if o.Color != "" {
		c.Logging.Color = o.Color
	}
	if o.DrainTimeout != "" {
		c.Logging.DrainTimeout = o.DrainTimeout
	}
}

// applyEnvOverrides applies LOG_* environment variable overrides.
// Malformed numeric values are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LOG_DIR"); v != "" {
		c.Logging.Dir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("LOG_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && days > 0 {
			c.Logging.RetentionDays = days
		}
	}
	if v := os.Getenv("LOG_COLOR"); v != "" {
		c.Logging.Color = strings.ToLower(strings.TrimSpace(v))
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return invalid(fmt.Sprintf("logging.level must be 'debug', 'info', 'warn', or 'error', got %q", c.Logging.Level))
	}

	if c.Logging.MaxSizeMB < 0 {
		return invalid(fmt.Sprintf("logging.max_size_mb must be non-negative, got %d", c.Logging.MaxSizeMB))
	}
	if c.Logging.MaxFiles < 0 {
		return invalid(fmt.Sprintf("logging.max_files must be non-negative, got %d", c.Logging.MaxFiles))
	}
	if c.Logging.RetentionDays < 0 {
		return invalid(fmt.Sprintf("logging.retention_days must be non-negative, got %d", c.Logging.RetentionDays))
	}

	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[strings.ToLower(c.Logging.Color)] {
		return invalid(fmt.Sprintf("logging.color must be 'auto', 'always', or 'never', got %q", c.Logging.Color))
	}

	if c.Logging.DrainTimeout != "" {
		d, err := time.ParseDuration(c.Logging.DrainTimeout)
		if err != nil || d < 0 {
			return invalid(fmt.Sprintf("logging.drain_timeout must be a positive duration, got %q", c.Logging.DrainTimeout))
		}
	}

	return nil
}

func invalid(message string) error {
	return amerrors.New(amerrors.ErrCodeConfigInvalid, message, nil).
		WithSuggestion("Fix the value in .amanlog.yaml or the matching LOG_* variable")
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

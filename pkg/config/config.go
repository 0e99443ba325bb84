package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables recognized by LoadFromEnv. Duration values are
// expressed in milliseconds; the deadline is an absolute timestamp in
// milliseconds since the epoch.
const (
	EnvMaxDuration        = "FETCH_RETRY_MAX_DURATION"
	EnvInitialDelay       = "FETCH_RETRY_INITIAL_DELAY"
	EnvBackoffFactor      = "FETCH_RETRY_BACKOFF_FACTOR"
	EnvSocketTimeout      = "FETCH_RETRY_SOCKET_TIMEOUT"
	EnvForceSocketTimeout = "FETCH_RETRY_FORCE_SOCKET_TIMEOUT"
	EnvDeadline           = "FETCH_RETRY_DEADLINE"
	EnvLogLevel           = "FETCH_RETRY_LOG_LEVEL"
	EnvLogFile            = "FETCH_RETRY_LOG_FILE"
)

// Config holds all configuration options for the fetch client
type Config struct {
	// Retry defaults applied when a call does not override them
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RetryConfig holds the environment-derived retry defaults. Explicit
// per-call options always take precedence over these values.
type RetryConfig struct {
	MaxDuration        time.Duration `yaml:"max_duration" json:"max_duration"`
	InitialDelay       time.Duration `yaml:"initial_delay" json:"initial_delay"`
	BackoffFactor      int           `yaml:"backoff_factor" json:"backoff_factor"`
	SocketTimeout      time.Duration `yaml:"socket_timeout" json:"socket_timeout"`
	ForceSocketTimeout bool          `yaml:"force_socket_timeout" json:"force_socket_timeout"`

	// Deadline is an externally imposed execution deadline in milliseconds
	// since the epoch (e.g. a serverless runtime's cutoff). Zero means no
	// deadline is known.
	Deadline int64 `yaml:"deadline" json:"deadline"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with the hard defaults
func DefaultConfig() *Config {
	return &Config{
		Retry: RetryConfig{
			MaxDuration:        60 * time.Second,
			InitialDelay:       100 * time.Millisecond,
			BackoffFactor:      2,
			SocketTimeout:      30 * time.Second,
			ForceSocketTimeout: false,
			Deadline:           0,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv overrides configuration from environment variables. Values
// that do not parse, or that violate the retry invariants, are ignored so
// a bad environment never breaks a call with valid explicit options.
func (c *Config) LoadFromEnv() error {
	if ms, ok := envMillis(EnvMaxDuration); ok {
		c.Retry.MaxDuration = ms
	}
	if ms, ok := envMillis(EnvInitialDelay); ok {
		c.Retry.InitialDelay = ms
	}
	if raw := os.Getenv(EnvBackoffFactor); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 {
			c.Retry.BackoffFactor = v
		}
	}
	if ms, ok := envMillis(EnvSocketTimeout); ok {
		c.Retry.SocketTimeout = ms
	}
	if raw := os.Getenv(EnvForceSocketTimeout); raw != "" {
		c.Retry.ForceSocketTimeout = strings.ToLower(raw) == "true"
	}
	if raw := os.Getenv(EnvDeadline); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			c.Retry.Deadline = v
		}
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv(EnvLogFile); file != "" {
		c.Logging.File = file
	}

	return nil
}

// envMillis reads a non-negative millisecond value from the environment
func envMillis(name string) (time.Duration, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return time.Duration(v) * time.Millisecond, true
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".fetchretry.yaml",
		".fetchretry.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "fetchretry", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "fetchretry", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".fetchretry.yaml"),
		filepath.Join(os.Getenv("HOME"), ".fetchretry.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Retry.MaxDuration < 0 {
		errs = append(errs, errors.New("retry max duration must not be negative"))
	}
	if c.Retry.InitialDelay < 0 {
		errs = append(errs, errors.New("retry initial delay must not be negative"))
	}
	if c.Retry.BackoffFactor < 1 {
		errs = append(errs, errors.New("retry backoff factor must be at least 1"))
	}
	if c.Retry.SocketTimeout < 0 {
		errs = append(errs, errors.New("retry socket timeout must not be negative"))
	}
	if c.Retry.Deadline < 0 {
		errs = append(errs, errors.New("retry deadline must not be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Environment variables > .env file > Config file > Defaults
func Load(configPath string) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".fetchretry.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

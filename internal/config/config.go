// Package config provides configuration types for fleetctl.
//
// Configuration is file-based (fleetctl.yaml) with environment variable
// overrides under the FLEETCTL_ prefix. Everything has a workable default
// except the API base URL.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level configuration for fleetctl.
type Config struct {
	// API configures the admin API endpoint.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Retry configures the default retry policy for idempotent requests.
	Retry RetryConfig `yaml:"retry" mapstructure:"retry"`

	// Session configures local credential storage and background validation.
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// Output configures how command results are rendered.
	Output OutputConfig `yaml:"output" mapstructure:"output"`

	// History configures the local command history database.
	History HistoryConfig `yaml:"history" mapstructure:"history"`

	// Telemetry configures tracing and metrics exposure.
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`

	// LogLevel sets the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// APIConfig configures the admin API endpoint.
type APIConfig struct {
	// BaseURL is the admin API origin, e.g. "https://api.fleetops.example".
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	// Timeout is the per-attempt HTTP timeout (e.g. "30s").
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,duration"`
}

// RetryConfig configures the default retry policy. Mutating requests are
// never retried regardless of these settings.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per request.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts" validate:"omitempty,min=1,max=10"`
	// BaseDelay is the first backoff delay; it doubles per attempt (e.g. "1s").
	BaseDelay string `yaml:"base_delay" mapstructure:"base_delay" validate:"omitempty,duration"`
	// RetryableStatuses lists additional HTTP status codes to retry.
	// 429 is always retried.
	RetryableStatuses []int `yaml:"retryable_statuses" mapstructure:"retryable_statuses" validate:"omitempty,dive,min=400,max=599"`
}

// SessionConfig configures credential storage.
type SessionConfig struct {
	// CredentialsFile is where the token and profile are persisted.
	// Default: ~/.fleetctl/credentials.json.
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
	// CheckInterval is how often a long-running session re-validates its
	// token against the profile endpoint (e.g. "5m").
	CheckInterval string `yaml:"check_interval" mapstructure:"check_interval" validate:"omitempty,duration"`
	// Watch enables reacting to credential changes made by other fleetctl
	// processes. Default: true.
	Watch bool `yaml:"watch" mapstructure:"watch"`
}

// OutputConfig configures result rendering.
type OutputConfig struct {
	// Format is the default output format (table, json, yaml).
	Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=table json yaml"`
}

// HistoryConfig configures the local command history.
type HistoryConfig struct {
	// Enabled controls whether invocations are recorded. Default: true.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// File is the SQLite database path. Default: ~/.fleetctl/history.db.
	File string `yaml:"file" mapstructure:"file"`
	// Keep is how many entries Prune retains. Default: 1000.
	Keep int `yaml:"keep" mapstructure:"keep" validate:"omitempty,min=0"`
}

// TelemetryConfig configures tracing and metrics.
type TelemetryConfig struct {
	// Trace writes request spans to stderr when enabled.
	Trace bool `yaml:"trace" mapstructure:"trace"`
	// MetricsAddr serves Prometheus metrics during long-running commands
	// (e.g. "127.0.0.1:9465"). Empty disables the listener.
	MetricsAddr string `yaml:"metrics_addr" mapstructure:"metrics_addr" validate:"omitempty,hostname_port"`
}

// Default timeouts and intervals applied by SetDefaults.
const (
	DefaultTimeout       = "30s"
	DefaultBaseDelay     = "1s"
	DefaultCheckInterval = "5m"
	DefaultHistoryKeep   = 1000
)

// SetDefaults fills zero-valued optional fields.
func (c *Config) SetDefaults() {
	if c.API.Timeout == "" {
		c.API.Timeout = DefaultTimeout
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelay == "" {
		c.Retry.BaseDelay = DefaultBaseDelay
	}
	if c.Session.CredentialsFile == "" {
		c.Session.CredentialsFile = defaultPath("credentials.json")
	}
	if c.Session.CheckInterval == "" {
		c.Session.CheckInterval = DefaultCheckInterval
	}
	if c.Output.Format == "" {
		c.Output.Format = "table"
	}
	if c.History.File == "" {
		c.History.File = defaultPath("history.db")
	}
	if c.History.Keep == 0 {
		c.History.Keep = DefaultHistoryKeep
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Timeout returns the parsed API timeout.
func (c *APIConfig) ParsedTimeout() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// ParsedBaseDelay returns the parsed backoff base delay.
func (c *RetryConfig) ParsedBaseDelay() time.Duration {
	return parseDuration(c.BaseDelay, time.Second)
}

// ParsedCheckInterval returns the parsed session check interval.
func (c *SessionConfig) ParsedCheckInterval() time.Duration {
	return parseDuration(c.CheckInterval, 5*time.Minute)
}

// parseDuration returns the parsed duration or fallback. Validation has
// already rejected malformed values; the fallback covers the unset case.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// defaultPath resolves a file under ~/.fleetctl, falling back to the
// working directory when the home directory is unknown.
func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".fleetctl", name)
}

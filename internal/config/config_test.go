package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	c := Config{}
	c.API.BaseURL = "https://api.fleetops.example"
	c.SetDefaults()
	return c
}

func TestSetDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()

	if c.API.Timeout != "30s" {
		t.Errorf("API.Timeout = %q", c.API.Timeout)
	}
	if c.Retry.MaxAttempts != 3 || c.Retry.BaseDelay != "1s" {
		t.Errorf("Retry = %+v", c.Retry)
	}
	if c.Session.CheckInterval != "5m" {
		t.Errorf("Session.CheckInterval = %q", c.Session.CheckInterval)
	}
	if c.Output.Format != "table" {
		t.Errorf("Output.Format = %q", c.Output.Format)
	}
	if c.History.Keep != 1000 {
		t.Errorf("History.Keep = %d", c.History.Keep)
	}
	if c.LogLevel != "info" {
		t.Errorf("LogLevel = %q", c.LogLevel)
	}
	if !strings.HasSuffix(c.Session.CredentialsFile, "credentials.json") {
		t.Errorf("Session.CredentialsFile = %q", c.Session.CredentialsFile)
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidateRequiresBaseURL(t *testing.T) {
	var c Config
	c.SetDefaults()

	err := c.Validate()
	if err == nil {
		t.Fatal("expected error for missing base URL")
	}
	if !strings.Contains(err.Error(), "BaseURL") || !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "malformed timeout",
			mutate:  func(c *Config) { c.API.Timeout = "soon" },
			wantMsg: "positive duration",
		},
		{
			name:    "negative duration",
			mutate:  func(c *Config) { c.Retry.BaseDelay = "-1s" },
			wantMsg: "positive duration",
		},
		{
			name:    "too many attempts",
			mutate:  func(c *Config) { c.Retry.MaxAttempts = 50 },
			wantMsg: "at most 10",
		},
		{
			name:    "retryable status out of range",
			mutate:  func(c *Config) { c.Retry.RetryableStatuses = []int{200} },
			wantMsg: "at least 400",
		},
		{
			name:    "unknown output format",
			mutate:  func(c *Config) { c.Output.Format = "csv" },
			wantMsg: "must be one of",
		},
		{
			name:    "bad metrics address",
			mutate:  func(c *Config) { c.Telemetry.MetricsAddr = "not a hostport" },
			wantMsg: "host:port",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantMsg: "must be one of",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error = %v, want mention of %q", err, tc.wantMsg)
			}
		})
	}
}

func TestParsedDurations(t *testing.T) {
	c := validConfig()
	c.API.Timeout = "45s"
	c.Retry.BaseDelay = "2s"
	c.Session.CheckInterval = "90s"

	if got := c.API.ParsedTimeout(); got != 45*time.Second {
		t.Errorf("ParsedTimeout() = %v", got)
	}
	if got := c.Retry.ParsedBaseDelay(); got != 2*time.Second {
		t.Errorf("ParsedBaseDelay() = %v", got)
	}
	if got := c.Session.ParsedCheckInterval(); got != 90*time.Second {
		t.Errorf("ParsedCheckInterval() = %v", got)
	}
}

func TestParsedDurationsFallBack(t *testing.T) {
	var c Config
	if got := c.API.ParsedTimeout(); got != 30*time.Second {
		t.Errorf("ParsedTimeout() = %v, want 30s fallback", got)
	}
	if got := c.Session.ParsedCheckInterval(); got != 5*time.Minute {
		t.Errorf("ParsedCheckInterval() = %v, want 5m fallback", got)
	}
}

package config

import (
	"testing"

	"github.com/spf13/viper"
)

// resetViper clears the global Viper instance before and after a test that
// uses InitViper.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadConfigBooleanDefaults(t *testing.T) {
	resetViper(t)
	t.Setenv("FLEETCTL_API_BASE_URL", "https://api.fleetops.example")

	InitViper("")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	// History and credential watching are on out of the box.
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true by default")
	}
	if !cfg.Session.Watch {
		t.Error("Session.Watch = false, want true by default")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	resetViper(t)
	t.Setenv("FLEETCTL_API_BASE_URL", "https://api.fleetops.example")
	t.Setenv("FLEETCTL_HISTORY_ENABLED", "false")
	t.Setenv("FLEETCTL_OUTPUT_FORMAT", "json")

	InitViper("")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.API.BaseURL != "https://api.fleetops.example" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want env override to disable it")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want json", cfg.Output.Format)
	}
}

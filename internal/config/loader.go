package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches standard locations for
// fleetctl.yaml/.yml. The search requires an explicit YAML extension to
// avoid matching the binary itself.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file in any standard location. Set name/type without
		// search paths so ReadInConfig returns ConfigFileNotFoundError,
		// which LoadConfig handles gracefully.
		viper.SetConfigName("fleetctl")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: FLEETCTL_API_BASE_URL
	viper.SetEnvPrefix("FLEETCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Booleans that are on unless explicitly disabled. These must live in
	// Viper: SetDefaults cannot tell an unset field from a written "false".
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("session.watch", true)

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a fleetctl config file with
// an explicit YAML extension (.yaml or .yml).
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".fleetctl"),
	}
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "fleetctl"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds all config keys for environment variable support.
// Example: FLEETCTL_API_BASE_URL overrides api.base_url.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("api.base_url")
	_ = viper.BindEnv("api.timeout")

	_ = viper.BindEnv("retry.max_attempts")
	_ = viper.BindEnv("retry.base_delay")
	// Note: retry.retryable_statuses is an array, handled by Viper's env parsing

	_ = viper.BindEnv("session.credentials_file")
	_ = viper.BindEnv("session.check_interval")
	_ = viper.BindEnv("session.watch")

	_ = viper.BindEnv("output.format")

	_ = viper.BindEnv("history.enabled")
	_ = viper.BindEnv("history.file")
	_ = viper.BindEnv("history.keep")

	_ = viper.BindEnv("telemetry.trace")
	_ = viper.BindEnv("telemetry.metrics_addr")

	_ = viper.BindEnv("log_level")
}

// LoadConfig reads the configuration file, applies environment overrides and
// defaults, and validates the result.
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed returns the path of the loaded configuration file, or an
// empty string in env-vars-only mode.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

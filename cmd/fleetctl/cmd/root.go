// Package cmd provides the CLI commands for fleetctl.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fleetops/fleetctl/internal/config"
)

var (
	cfgFile      string
	outputFormat string
	traceFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "fleetctl",
	Short: "fleetctl - FleetOps admin CLI",
	Long: `fleetctl is a command-line client for the FleetOps admin API.

It manages drivers, subscription plans, and platform settings, and shows
live dashboard statistics. A login session is stored locally and reused
across invocations until it expires or you log out.

Quick start:
  1. Point fleetctl at your API: export FLEETCTL_API_BASE_URL=https://api.example.com
  2. Log in: fleetctl login --email admin@example.com

Configuration:
  Config is loaded from fleetctl.yaml in the current directory or
  $HOME/.fleetctl/.

  Environment variables can override config values with the FLEETCTL_ prefix.
  Example: FLEETCTL_API_BASE_URL=https://api.example.com

Commands:
  login       Log in and store a session
  logout      Invalidate and clear the stored session
  whoami      Show the logged-in profile
  drivers     Manage driver accounts
  plans       Manage subscription plans
  settings    Manage platform settings
  dashboard   Show platform statistics
  history     Show recent fleetctl invocations
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./fleetctl.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table, json or yaml (default from config)")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "write request spans to stderr")
}

func initConfig() {
	config.InitViper(cfgFile)
}

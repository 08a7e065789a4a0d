package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent fleetctl invocations",
	Long: `Show recent fleetctl invocations recorded in the local history
database. Recording is controlled by history.enabled in the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, runHistory)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(ctx context.Context, a *app) error {
	if a.history == nil {
		return errors.New("command history is disabled")
	}

	entries, err := a.history.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}

	return a.printResult(entries, func(w io.Writer) {
		fmt.Fprintln(w, "WHEN\tCOMMAND\tOUTCOME\tDURATION")
		for _, e := range entries {
			cmdLine := e.Command
			if e.Arguments != "" {
				cmdLine += " " + e.Arguments
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.CreatedAt.Local().Format(time.DateTime), cmdLine, e.Outcome, e.Duration)
		}
	})
}

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fleetops/fleetctl/internal/domain/session"
)

var whoamiVerify bool

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in profile",
	Long: `Show the profile stored with the current session.

With --verify the token is validated against the API first, refreshing
the stored profile (or clearing the session if the token has expired).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, runWhoami)
	},
}

func init() {
	whoamiCmd.Flags().BoolVar(&whoamiVerify, "verify", false, "validate the token against the API")
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(ctx context.Context, a *app) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	if whoamiVerify {
		if status := a.session.CheckAuth(ctx); status != session.StatusAuthenticated {
			return fmt.Errorf("session expired, run \"fleetctl login\"")
		}
	}

	user := a.session.User()
	return a.printResult(user, func(w io.Writer) {
		fmt.Fprintf(w, "ID\t%d\n", user.ID)
		fmt.Fprintf(w, "Name\t%s\n", user.Name)
		fmt.Fprintf(w, "Email\t%s\n", user.Email)
		if user.Role != "" {
			fmt.Fprintf(w, "Role\t%s\n", user.Role)
		}
		if user.Phone != "" {
			fmt.Fprintf(w, "Phone\t%s\n", user.Phone)
		}
	})
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Invalidate and clear the stored session",
	Long: `Log out of the admin API.

The server-side token is invalidated on a best-effort basis; the local
session is always cleared, so logout succeeds even when the API is down.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, runLogout)
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(ctx context.Context, a *app) error {
	a.session.Logout(ctx)
	fmt.Println("Logged out")
	return nil
}

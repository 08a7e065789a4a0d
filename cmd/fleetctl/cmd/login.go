package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store a session",
	Long: `Log in to the admin API and store the session locally.

The password is read from --password, the FLEETCTL_PASSWORD environment
variable, or an interactive prompt, in that order.

Examples:
  fleetctl login --email admin@example.com
  FLEETCTL_PASSWORD=secret fleetctl login --email admin@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, args, runLogin)
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "admin account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "admin account password (prefer FLEETCTL_PASSWORD or the prompt)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(ctx context.Context, a *app) error {
	email := strings.TrimSpace(loginEmail)
	if email == "" {
		var err error
		email, err = promptLine("Email: ")
		if err != nil {
			return err
		}
	}
	if email == "" {
		return errors.New("email is required")
	}

	password := loginPassword
	if password == "" {
		password = os.Getenv("FLEETCTL_PASSWORD")
	}
	if password == "" {
		var err error
		password, err = promptLine("Password: ")
		if err != nil {
			return err
		}
	}
	if password == "" {
		return errors.New("password is required")
	}

	if err := a.session.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	user := a.session.User()
	fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Email)
	return nil
}

// promptLine reads one line from stdin after printing the prompt to stderr.
func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

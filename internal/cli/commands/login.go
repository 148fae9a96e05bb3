package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/insightd-dev/insightd/internal/cli/auth"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string
	var demo bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with an Insightd server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(email, password, demo)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set INSIGHT_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set INSIGHT_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&demo, "demo", false, "Allow the built-in demo credential fallback for this login")

	return cmd
}

func runLogin(email, password string, demo bool) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("INSIGHT_EMAIL")
	}
	if password == "" {
		password = os.Getenv("INSIGHT_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or INSIGHT_EMAIL env var)")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or INSIGHT_PASSWORD env var)")
		}
	}

	e, err := newEnv()
	if err != nil {
		return err
	}
	if demo {
		e.enableDemo()
	}

	fmt.Printf("Logging in to %s...\n", e.config.ServerURL)

	if err := e.authsvc.Login(email, password); err != nil {
		return fmt.Errorf("login failed: %s", loginFailureMessage(err))
	}

	snap := e.store.Snapshot()
	fmt.Println("✓ Login successful!")
	if snap.User != nil {
		fmt.Printf("  User: %s (%s)\n", snap.User.Name, snap.User.Email)
		if snap.User.IsAdmin() {
			fmt.Println("  Role: Admin")
		}
	}
	if auth.IsDemoToken(snap.Token) {
		fmt.Println("Warning: signed in with built-in demo credentials. The server will not accept this session.")
	}

	return nil
}

package commands

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account on an Insightd server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(name, email, password)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")

	return cmd
}

func runRegister(name, email, password string) error {
	if name == "" {
		return fmt.Errorf("name is required (use --name flag)")
	}
	if email == "" {
		return fmt.Errorf("email is required (use --email flag)")
	}

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
			return fmt.Errorf("password is required in non-interactive mode (use --password flag)")
		}
	}

	e, err := newEnv()
	if err != nil {
		return err
	}

	fmt.Printf("Registering with %s...\n", e.config.ServerURL)

	if err := e.authsvc.Register(name, email, password); err != nil {
		return fmt.Errorf("registration failed: %s", loginFailureMessage(err))
	}

	snap := e.store.Snapshot()
	fmt.Println("✓ Registration successful!")
	if snap.User != nil {
		fmt.Printf("  User: %s (%s)\n", snap.User.Name, snap.User.Email)
	}

	return nil
}

package commands

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/insightd-dev/insightd/internal/cli/client"
)

// NewUsersCmd creates the users command group (admin only)
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList()
		},
	}

	cmd.AddCommand(newUsersAddCmd())
	cmd.AddCommand(newUsersRemoveCmd())

	return cmd
}

func newUsersAddCmd() *cobra.Command {
	var email, name, password, role string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersAdd(email, name, password, role)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	cmd.Flags().StringVar(&role, "role", "user", "Role (user or admin)")

	return cmd
}

func newUsersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <user-id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersRemove(args[0])
		},
	}
}

func runUsersList() error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	if !e.requireSession(true) {
		return nil
	}

	users, err := e.client.ListUsers()
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return nil
		}
		return fmt.Errorf("failed to list users: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tCREATED")
	for _, user := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			user.ID, user.Email, user.Name, user.Role,
			user.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func runUsersAdd(email, name, password, role string) error {
	if email == "" || name == "" || password == "" {
		return fmt.Errorf("email, name and password are required")
	}

	e, err := newEnv()
	if err != nil {
		return err
	}

	if !e.requireSession(true) {
		return nil
	}

	user, err := e.client.CreateUser(client.CreateUserRequest{
		Email:    email,
		Name:     name,
		Password: password,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return nil
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("✓ Created user %s (%s)\n", user.Name, user.ID)
	return nil
}

func runUsersRemove(userID string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	if !e.requireSession(true) {
		return nil
	}

	if err := e.client.DeleteUser(userID); err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return nil
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Printf("✓ Deleted user %s\n", userID)
	return nil
}

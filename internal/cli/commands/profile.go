package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insightd-dev/insightd/internal/cli/client"
	"github.com/insightd-dev/insightd/internal/cli/session"
)

// NewProfileCmd creates the profile command
func NewProfileCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update your display name",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")

	return cmd
}

func runProfile(name string) error {
	if name == "" {
		return fmt.Errorf("name is required (use --name flag)")
	}

	e, err := newEnv()
	if err != nil {
		return err
	}

	if !e.requireSession(false) {
		return nil
	}

	user, err := e.client.UpdateProfile(name)
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return nil
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	// Keep the stored session in step with the server record
	e.authsvc.UpdateUser(session.User{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})

	fmt.Printf("✓ Profile updated: %s\n", user.Name)
	return nil
}

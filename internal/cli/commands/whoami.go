package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insightd-dev/insightd/internal/cli/client"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami()
		},
	}
}

func runWhoami() error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	if !e.requireSession(false) {
		return nil
	}

	// Verify the session against the server; a 401 here clears the
	// stored session and the helper has already printed guidance.
	user, err := e.client.Me()
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return nil
		}
		// Fall back to the locally stored record when offline
		snap := e.store.Snapshot()
		if snap.User != nil {
			fmt.Printf("%s (%s) role=%s [cached]\n", snap.User.Name, snap.User.Email, snap.User.Role)
			return nil
		}
		return err
	}

	fmt.Printf("%s (%s) role=%s\n", user.Name, user.Email, user.Role)
	return nil
}

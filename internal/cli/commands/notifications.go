package commands

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/insightd-dev/insightd/internal/cli/client"
)

// NewNotificationsCmd creates the notifications command group
func NewNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show your notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotificationsList()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotificationRead(args[0])
		},
	})

	return cmd
}

func runNotificationsList() error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	if !e.requireSession(false) {
		return nil
	}

	notifications, err := e.client.Notifications()
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return nil
		}
		return fmt.Errorf("failed to list notifications: %w", err)
	}

	if len(notifications) == 0 {
		fmt.Println("No notifications.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tRECEIVED")
	for _, n := range notifications {
		status := "unread"
		if n.ReadAt != nil {
			status = "read"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			n.ID, status, n.Title, n.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runNotificationRead(id string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	if !e.requireSession(false) {
		return nil
	}

	if err := e.client.MarkNotificationRead(id); err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return nil
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	fmt.Println("✓ Marked as read.")
	return nil
}

package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insightd-dev/insightd/internal/cli/client"
)

// NewInsightsCmd creates the insights command group
func NewInsightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show AI-generated business insights",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsightsList()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Recompute insights now (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsightsRefresh()
		},
	})

	return cmd
}

func runInsightsList() error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	if !e.requireSession(false) {
		return nil
	}

	insights, err := e.client.Insights()
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return nil
		}
		return fmt.Errorf("failed to load insights: %w", err)
	}

	if len(insights) == 0 {
		fmt.Println("No insights yet. Run 'insight insights refresh' to generate them.")
		return nil
	}

	for _, insight := range insights {
		fmt.Printf("%s (score %.1f)\n  %s\n", insight.Title, insight.Score, insight.Body)
	}
	return nil
}

func runInsightsRefresh() error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	if !e.requireSession(true) {
		return nil
	}

	if err := e.client.RefreshInsights(); err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return nil
		}
		return fmt.Errorf("failed to trigger refresh: %w", err)
	}

	fmt.Println("✓ Refresh queued. Insights will update shortly.")
	return nil
}

package commands

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/insightd-dev/insightd/internal/cli/client"
)

// NewDashboardCmd creates the dashboard command
func NewDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the business dashboard summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard()
		},
	}
}

func runDashboard() error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	if !e.requireSession(false) {
		return nil
	}

	dashboard, err := e.client.Dashboard()
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return nil
		}
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total revenue:\t%.2f\n", dashboard.TotalRevenue)
	fmt.Fprintf(w, "Revenue this week:\t%.2f\n", dashboard.RevenueThisWeek)
	fmt.Fprintf(w, "Sales:\t%d\n", dashboard.SalesCount)
	fmt.Fprintf(w, "Customers:\t%d (%d active)\n", dashboard.CustomerCount, dashboard.ActiveCustomers)
	w.Flush()

	insights, err := e.client.Insights()
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return nil
		}
		return fmt.Errorf("failed to load insights: %w", err)
	}

	if len(insights) > 0 {
		fmt.Println("\nInsights:")
		for _, insight := range insights {
			fmt.Printf("  - %s\n", insight.Title)
		}
	}

	return nil
}

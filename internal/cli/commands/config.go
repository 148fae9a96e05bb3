package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insightd-dev/insightd/internal/cli/userconfig"
)

// NewConfigCmd creates the config command group
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-server <url>",
		Short: "Set the server URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := userconfig.SetServerURL(args[0]); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Printf("✓ Server URL set to %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "demo-login <on|off>",
		Short:     "Toggle the built-in demo credential fallback",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := userconfig.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.DemoLogin = args[0] == "on"
			if err := userconfig.Save(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Printf("✓ Demo login %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func runConfigShow() error {
	cfg, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path, err := userconfig.GetConfigPath()
	if err != nil {
		return err
	}

	fmt.Printf("Config file: %s\n", path)
	fmt.Printf("Server URL:  %s\n", cfg.ServerURL)
	fmt.Printf("Demo login:  %t\n", cfg.DemoLogin)
	return nil
}

package cmd

import (
	"fmt"

	"github.com/theirongolddev/finboard/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Base URL: %s\n", cfg.API.BaseURL)
	fmt.Printf("    Timeout:  %s\n", cfg.Timeout())
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default account: %d\n", cfg.General.DefaultAccountID)
	fmt.Printf("    Locale:          %s\n", cfg.General.Locale)
	fmt.Printf("    Currency:        %s\n", cfg.General.Currency)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Refresh every: %s\n", cfg.RefreshInterval())
	fmt.Printf("    Notifications: %s\n", cfg.NotificationDuration())
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	fmt.Printf("    File:  %s\n", cfg.LogPath())
	fmt.Println()

	fmt.Println("  Run `finboard setup` to reconfigure.")
	return nil
}

package cmd

import (
	"fmt"

	"github.com/theirongolddev/finboard/internal/cli"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync transactions to Google Sheets",
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(_ *cobra.Command, _ []string) error {
	_, client, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	progress("Syncing to Google Sheets...")
	res, err := client.SyncToSheets(ctx)
	if err != nil {
		cliLogger().WithError(err).Error("sheets sync failed")
		return fmt.Errorf("sync failed: %w", err)
	}

	if !res.Success {
		msg := cli.Sanitize(res.Message)
		if msg == "" {
			msg = "the backend did not sync any transactions"
		}
		return fmt.Errorf("sync incomplete: %s", msg)
	}

	fmt.Printf("  %d transactions synced to Google Sheets.\n", res.SyncedCount)
	if res.FailedCount > 0 {
		fmt.Printf("  %d failed.\n", res.FailedCount)
	}
	return nil
}

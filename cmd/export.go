package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/finboard/internal/cli"
	"github.com/theirongolddev/finboard/internal/dashboard"

	"github.com/spf13/cobra"
)

var flagExportMonth string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a monthly report",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportMonth, "month", "m", "", "Month to export as YYYY-MM (default: current month)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	month := flagExportMonth
	if month == "" {
		month = dashboard.CurrentMonth(time.Now())
	} else if _, err := time.Parse("2006-01", month); err != nil {
		return fmt.Errorf("--month must be YYYY-MM, got %q", month)
	}

	_, client, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	progress("Exporting %s...", month)
	res, err := client.ExportMonthly(ctx, month)
	if err != nil {
		cliLogger().WithError(err).WithField("month", month).Error("monthly export failed")
		return fmt.Errorf("export failed: %w", err)
	}

	msg := cli.Sanitize(res.Message)
	if msg == "" {
		msg = "Report for " + month + " exported."
	}
	fmt.Printf("  %s\n", msg)
	return nil
}

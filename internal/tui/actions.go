package tui

import (
	"context"
	"fmt"

	"github.com/theirongolddev/finboard/internal/cli"
	"github.com/theirongolddev/finboard/internal/dashboard"

	tea "github.com/charmbracelet/bubbletea"
)

// syncToSheets and exportReport are fire-and-forget: they notify and change
// nothing else.

func syncCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		res, err := b.SyncToSheets(ctx)
		return SyncDoneMsg{Result: res, Err: err}
	}
}

func exportCmd(b Backend, month string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		res, err := b.ExportMonthly(ctx, month)
		return ExportDoneMsg{Month: month, Result: res, Err: err}
	}
}

func (a App) handleSyncDone(msg SyncDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.log.WithError(msg.Err).Error("sheets sync failed")
		cmd := a.notify(dashboard.SeverityError, "Sync failed", "Could not sync to Google Sheets.")
		return a, cmd
	}

	if msg.Result != nil && !msg.Result.Success {
		text := cli.Sanitize(msg.Result.Message)
		if text == "" {
			text = "The backend did not sync any transactions."
		}
		a.log.WithField("message", text).Warn("sheets sync reported no success")
		cmd := a.notify(dashboard.SeverityWarning, "Sync incomplete", text)
		return a, cmd
	}

	synced := 0
	if msg.Result != nil {
		synced = msg.Result.SyncedCount
	}
	a.log.WithField("synced", synced).Info("sheets sync finished")
	cmd := a.notify(dashboard.SeveritySuccess, "Sync complete",
		fmt.Sprintf("%d transactions synced to Google Sheets.", synced))
	return a, cmd
}

func (a App) handleExportDone(msg ExportDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.log.WithError(msg.Err).WithField("month", msg.Month).Error("monthly export failed")
		cmd := a.notify(dashboard.SeverityError, "Export failed", "Could not export the report for "+msg.Month+".")
		return a, cmd
	}

	text := "Monthly report for " + msg.Month + " exported."
	if msg.Result != nil && msg.Result.Message != "" {
		text = cli.Sanitize(msg.Result.Message)
	}
	a.log.WithField("month", msg.Month).Info("monthly report exported")
	cmd := a.notify(dashboard.SeveritySuccess, "Report exported", text)
	return a, cmd
}

package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/finboard/internal/cli"
	"github.com/theirongolddev/finboard/internal/dashboard"
	"github.com/theirongolddev/finboard/internal/model"
	"github.com/theirongolddev/finboard/internal/tui/components"
	"github.com/theirongolddev/finboard/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// fetchTimeout bounds a whole snapshot fetch; each request also carries the
// client's own per-request timeout.
const fetchTimeout = 30 * time.Second

// loadDashboardData starts a new load generation. With showLoading the status
// bar shows the refresh indicator until the latest load ends.
func (a *App) loadDashboardData(showLoading bool) tea.Cmd {
	gen := a.tracker.Begin()
	if showLoading {
		a.loading = true
	}
	a.log.WithFields(logrus.Fields{"generation": gen, "show_loading": showLoading}).Debug("dashboard load started")
	return tea.Batch(loadDashboardCmd(a.backend, gen), a.spinner.Tick)
}

func loadDashboardCmd(b Backend, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		snap, err := b.FetchSnapshot(ctx, model.RecentTransactionLimit)
		return DashboardLoadedMsg{Gen: gen, Snapshot: snap, Err: err}
	}
}

func (a App) handleLoaded(msg DashboardLoadedMsg) (tea.Model, tea.Cmd) {
	a.loaded = true
	latest := a.tracker.IsLatest(msg.Gen)
	if latest {
		a.loading = false
	}

	entry := a.log.WithField("generation", msg.Gen)

	if msg.Err != nil || msg.Snapshot == nil {
		if msg.Gen <= a.tracker.Applied() {
			entry.WithError(msg.Err).Debug("ignoring failure of superseded load")
			return a, nil
		}
		entry.WithError(msg.Err).Error("dashboard load failed")
		cmd := a.notify(dashboard.SeverityError, "Failed to load dashboard",
			"Could not reach the finance backend. Retrying on the next refresh.")
		return a, cmd
	}

	if !a.tracker.Accept(msg.Gen) {
		entry.Debug("discarding stale dashboard snapshot")
		return a, nil
	}

	a.applySnapshot(msg.Snapshot)
	a.lastUpdated = a.now()
	entry.WithField("transactions", len(msg.Snapshot.Transactions)).Info("dashboard updated")
	return a, nil
}

// applySnapshot replaces every region from one snapshot.
func (a *App) applySnapshot(snap *model.Snapshot) {
	summary := snap.Summary
	budget := snap.Budget
	a.summary = &summary
	a.budget = &budget
	a.transactions = snap.Transactions

	a.updateBalanceCards()
	a.updateCategoryChart()
	a.updateFlowChart()
}

func (a *App) updateBalanceCards() {
	t := theme.Active
	s := a.summary

	savingsAccent := t.Green
	if s.MonthlySavings.IsNegative() {
		savingsAccent = t.Red
	}

	net := make([]float64, len(s.DailyFlow))
	for i, d := range s.DailyFlow {
		net[i] = d.Income.Sub(d.Expenses).InexactFloat64()
	}
	savingsNote := "this month"
	if len(net) > 1 {
		savingsNote = components.Sparkline(net, savingsAccent)
	}

	a.cards = []components.Metric{
		{Label: "Total Balance", Value: a.money.Format(s.TotalBalance), Note: accountsNote(s.AccountBalances)},
		{Label: "Monthly Income", Value: a.money.Format(s.MonthlyIncome), Accent: t.Income(), Note: "this month"},
		{Label: "Monthly Expenses", Value: a.money.Format(s.MonthlyExpenses), Accent: t.Expense(), Note: "this month"},
		{Label: "Monthly Savings", Value: a.money.Format(s.MonthlySavings), Accent: savingsAccent, Note: savingsNote},
	}
}

func accountsNote(accounts []model.AccountBalance) string {
	switch len(accounts) {
	case 0:
		return "no accounts"
	case 1:
		return "1 account"
	default:
		return fmt.Sprintf("%s +%d more", cli.Truncate(cli.Sanitize(accounts[0].Name), 14), len(accounts)-1)
	}
}

func (a *App) updateCategoryChart() {
	cats := a.summary.ExpenseByCategory
	if len(cats) == 0 {
		a.categoryView.ShowPlaceholder("No expenses recorded this month", "Press a to add a transaction")
		return
	}

	slices := make([]components.Slice, len(cats))
	for i, c := range cats {
		slices[i] = components.Slice{
			Label:  cli.Sanitize(c.Category),
			Value:  c.Amount.InexactFloat64(),
			Amount: a.money.Format(c.Amount),
		}
	}
	chart := components.NewCategoryChart(slices)
	if chart.Len() == 0 {
		a.categoryView.ShowPlaceholder("No expenses recorded this month", "Press a to add a transaction")
		return
	}
	a.categoryView.Mount(chart)
}

func (a *App) updateFlowChart() {
	days := a.summary.DailyFlow
	if len(days) == 0 {
		a.flowView.ShowPlaceholder("No cash flow data yet", "Transactions will appear here once recorded")
		return
	}

	labels := make([]string, len(days))
	income := make([]float64, len(days))
	expenses := make([]float64, len(days))
	for i, d := range days {
		labels[i] = dayLabel(d.Date)
		income[i] = d.Income.InexactFloat64()
		expenses[i] = d.Expenses.InexactFloat64()
	}
	a.flowView.Mount(components.NewFlowChart(labels, income, expenses))
}

// dayLabel shortens an ISO date to "Jan 02"; other strings are sanitized as-is.
func dayLabel(date string) string {
	if d, err := time.Parse("2006-01-02", date); err == nil {
		return d.Format("Jan 02")
	}
	return cli.Truncate(cli.Sanitize(date), 10)
}

package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/finboard/internal/cli"
	"github.com/theirongolddev/finboard/internal/model"
	"github.com/theirongolddev/finboard/internal/tui/components"
	"github.com/theirongolddev/finboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderBudgetTab(cw int) string {
	innerW := components.CardInnerWidth(cw)
	bs := a.budget
	if bs == nil || (bs.BudgetCount == 0 && len(bs.Budgets) == 0) {
		return components.ContentCard("Budget",
			components.Placeholder("No budgets set for this month", "Create budgets in the finance app to track spending", innerW, 5),
			cw)
	}

	var b strings.Builder
	b.WriteString(components.ContentCard(a.budgetOverviewTitle(bs), a.renderBudgetOverview(bs, innerW), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Categories", a.renderBudgetRows(bs.Budgets, innerW), cw))
	if len(bs.Alerts) > 0 {
		b.WriteString("\n")
		b.WriteString(components.ContentCard(fmt.Sprintf("Alerts (%d)", len(bs.Alerts)), renderAlerts(bs.Alerts), cw))
	}
	return b.String()
}

func (a App) budgetOverviewTitle(bs *model.BudgetStatus) string {
	month := cli.Sanitize(bs.Month)
	if month == "" {
		return "This Month"
	}
	return "Budget · " + month
}

// renderBudgetOverview shows the overall bar plus the spent/remaining totals.
func (a App) renderBudgetOverview(bs *model.BudgetStatus, w int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)

	status := overallStatus(bs.OverallPercentage)
	barW := w - 8
	if barW > 60 {
		barW = 60
	}

	remainingStyle := value
	if bs.TotalRemaining.IsNegative() {
		remainingStyle = remainingStyle.Foreground(t.Red)
	}

	return components.BudgetBar(bs.OverallPercentage, status, barW) + "\n" +
		muted.Render("Spent ") + value.Render(a.money.Format(bs.TotalSpent)) +
		muted.Render(" of ") + value.Render(a.money.Format(bs.TotalBudget)) +
		muted.Render(" · Remaining ") + remainingStyle.Render(a.money.Format(bs.TotalRemaining)) +
		muted.Render(fmt.Sprintf(" · %d budgets", bs.BudgetCount))
}

// overallStatus derives a status for the whole month from its percentage,
// using the backend's 80% warning threshold.
func overallStatus(pct float64) model.BudgetState {
	switch {
	case pct > 100:
		return model.BudgetOverBudget
	case pct >= 80:
		return model.BudgetNearLimit
	default:
		return model.BudgetOnTrack
	}
}

func (a App) renderBudgetRows(budgets []model.CategoryBudget, w int) string {
	if len(budgets) == 0 {
		return components.Placeholder("No category budgets", "", w, 3)
	}

	labelW := 0
	amounts := make([]string, len(budgets))
	for i, bud := range budgets {
		labelW = max(labelW, lipgloss.Width(cli.Sanitize(bud.Category)))
		amounts[i] = a.money.Format(bud.AmountSpent) + " / " + a.money.Format(bud.BudgetLimit)
	}
	labelW = min(max(labelW, 8), 20)

	amountW := 0
	for _, s := range amounts {
		amountW = max(amountW, lipgloss.Width(s))
	}
	barW := w - labelW - amountW - 14
	if barW < 10 {
		barW = 10
	}

	lines := make([]string, len(budgets))
	for i, bud := range budgets {
		lines[i] = components.BudgetRow(cli.Sanitize(bud.Category), amounts[i], bud.PercentageUsed, bud.Status, labelW, barW) +
			"  " + components.StatusBadge(bud.Status)
	}
	return strings.Join(lines, "\n")
}

func renderAlerts(alerts []model.BudgetAlert) string {
	t := theme.Active
	lines := make([]string, len(alerts))
	for i, al := range alerts {
		color := t.Yellow
		if al.Type == "over_budget" {
			color = t.Red
		}
		icon := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true).Render("▲ ")
		msg := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Render(cli.Sanitize(al.Message))
		lines[i] = icon + msg
	}
	return strings.Join(lines, "\n")
}

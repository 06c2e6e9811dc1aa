package tui

import (
	"strings"

	"github.com/theirongolddev/finboard/internal/tui/components"
	"github.com/theirongolddev/finboard/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	var b strings.Builder

	// Row 1: balance cards
	cards := a.cards
	if cards == nil {
		cards = []components.Metric{
			{Label: "Total Balance", Value: "—", Note: "no data yet"},
			{Label: "Monthly Income", Value: "—"},
			{Label: "Monthly Expenses", Value: "—"},
			{Label: "Monthly Savings", Value: "—"},
		}
	}
	if a.isCompactLayout() {
		halves := components.LayoutRow(len(cards), 2)
		b.WriteString(components.BalanceCardRow(cards[:halves[0]], cw))
		b.WriteString("\n")
		b.WriteString(components.BalanceCardRow(cards[halves[0]:], cw))
	} else {
		b.WriteString(components.BalanceCardRow(cards, cw))
	}
	b.WriteString("\n")

	// Row 2: category share + daily cash flow
	chartH := 10
	if a.isCompactLayout() {
		chartH = 7
	}
	if a.isCompactLayout() {
		b.WriteString(a.renderCategoryCard(cw, chartH))
		b.WriteString("\n")
		b.WriteString(a.renderFlowCard(cw, chartH))
	} else {
		widths := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			a.renderCategoryCard(widths[0], chartH),
			a.renderFlowCard(widths[1], chartH),
		}))
	}

	return b.String()
}

func (a App) renderCategoryCard(w, h int) string {
	title := "Expenses by Category"
	if a.summary != nil && len(a.summary.ExpenseByCategory) > 0 {
		title += " · " + a.money.Format(a.summary.TotalExpenses())
	}
	return components.ContentCard(title, a.categoryView.View(components.CardInnerWidth(w), h), w)
}

func (a App) renderFlowCard(w, h int) string {
	t := theme.Active
	legend := ""
	if a.flowView.Chart() != nil {
		legend = " · " + lipglossFg(t.Income(), "● income") + " " + lipglossFg(t.Expense(), "● expenses")
	}
	return components.ContentCard("Daily Cash Flow"+legend, a.flowView.View(components.CardInnerWidth(w), h), w)
}

package components

import (
	"fmt"
	"math"
	"time"

	"github.com/theirongolddev/finboard/internal/model"
	"github.com/theirongolddev/finboard/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StatusColor maps a budget status to its color. Unknown statuses are gray.
func StatusColor(s model.BudgetState) lipgloss.Color {
	t := theme.Active
	switch s {
	case model.BudgetOnTrack:
		return t.Green
	case model.BudgetNearLimit:
		return t.Yellow
	case model.BudgetOverBudget:
		return t.Red
	default:
		return t.Gray
	}
}

// BarFraction converts a percentage into the filled fraction of a bar,
// clamped to [0,1]. NaN counts as empty.
func BarFraction(pct float64) float64 {
	if math.IsNaN(pct) || pct <= 0 {
		return 0
	}
	if pct >= 100 {
		return 1
	}
	return pct / 100
}

// BudgetBar renders a progress bar whose fill is clamped to the bar width
// while the label shows the true percentage (e.g. a full bar labelled "150%").
func BudgetBar(pct float64, status model.BudgetState, barWidth int) string {
	t := theme.Active
	color := StatusColor(status)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.SurfaceBright)

	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	return bar.ViewAs(BarFraction(pct)) + space + pctStyle.Render(formatPct(pct))
}

// BudgetRow renders one category line: label, bar, percentage and the
// "spent / limit" amounts.
func BudgetRow(label, amounts string, pct float64, status model.BudgetState, labelW, barWidth int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	if lipgloss.Width(label) > labelW {
		label = truncStr(label, labelW)
	}
	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + space +
		BudgetBar(pct, status, barWidth) + space + space +
		amountStyle.Render(amounts)
}

// StatusBadge renders a status label in its color, e.g. "● Near Limit".
func StatusBadge(status model.BudgetState) string {
	t := theme.Active
	return lipgloss.NewStyle().
		Foreground(StatusColor(status)).
		Background(t.Surface).
		Render("● " + status.Label())
}

func formatPct(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "--%"
	}
	if pct == math.Trunc(pct) {
		return fmt.Sprintf("%.0f%%", pct)
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatCountdown renders a short duration such as "4m 30s" or "1h 5m".
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return "now"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

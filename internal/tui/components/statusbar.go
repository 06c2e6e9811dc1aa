package components

import (
	"time"

	"github.com/theirongolddev/finboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom bar reports about data freshness.
type StatusInfo struct {
	LastUpdated time.Time
	Refreshing  bool
	NextRefresh time.Duration
	Backend     string
}

// RenderStatusBar renders the bottom status bar: key hints on the left,
// refresh state and last-updated time on the right.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	busyStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	hints := []struct{ key, desc string }{
		{"a", "dd"}, {"r", "efresh"}, {"S", "ync"}, {"e", "xport"}, {"?", "help"}, {"q", "uit"},
	}
	left := hintStyle.Render(" ")
	for _, h := range hints {
		left += dimStyle.Render("[") + keyStyle.Render(h.key) + dimStyle.Render("]") + hintStyle.Render(h.desc+" ")
	}

	var right string
	switch {
	case info.Refreshing:
		right = busyStyle.Render("↻ refreshing… ")
	case info.LastUpdated.IsZero():
		right = dimStyle.Render("never updated ")
	default:
		right = hintStyle.Render("Updated "+info.LastUpdated.Format("15:04:05")) +
			dimStyle.Render(" · next in "+FormatCountdown(info.NextRefresh)+" ")
	}
	if info.Backend != "" && lipgloss.Width(left)+lipgloss.Width(right)+len(info.Backend)+3 < width {
		right = dimStyle.Render(info.Backend+" · ") + right
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	fill := lipgloss.NewStyle().Background(t.Surface).Width(gap).Render("")

	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(left + fill + right)
}

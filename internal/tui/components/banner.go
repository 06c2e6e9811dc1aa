package components

import (
	"github.com/theirongolddev/finboard/internal/dashboard"
	"github.com/theirongolddev/finboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// SeverityColor returns the accent for a notification severity.
func SeverityColor(s dashboard.Severity) lipgloss.Color {
	t := theme.Active
	switch s {
	case dashboard.SeveritySuccess:
		return t.Green
	case dashboard.SeverityError:
		return t.Red
	case dashboard.SeverityWarning:
		return t.Yellow
	default:
		return t.Blue
	}
}

func severityIcon(s dashboard.Severity) string {
	switch s {
	case dashboard.SeveritySuccess:
		return "✓"
	case dashboard.SeverityError:
		return "✗"
	case dashboard.SeverityWarning:
		return "!"
	default:
		return "i"
	}
}

// RenderBanner renders a one-line notification across width.
func RenderBanner(n dashboard.Notification, width int) string {
	t := theme.Active
	color := SeverityColor(n.Severity)

	iconStyle := lipgloss.NewStyle().Foreground(t.Background).Background(color).Bold(true)
	titleStyle := lipgloss.NewStyle().Foreground(color).Background(t.SurfaceHover).Bold(true)
	msgStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover)

	line := iconStyle.Render(" "+severityIcon(n.Severity)+" ") +
		titleStyle.Render(" "+n.Title)
	if n.Message != "" {
		line += msgStyle.Render("  " + n.Message)
	}

	return lipgloss.NewStyle().
		Background(t.SurfaceHover).
		Width(width).
		MaxWidth(width).
		Render(line)
}

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/finboard/internal/model"
	"github.com/theirongolddev/finboard/internal/tui/theme"
)

func TestStatusColor(t *testing.T) {
	theme.SetActive("flexoki-dark")
	th := theme.Active

	assert.Equal(t, th.Green, StatusColor(model.BudgetOnTrack))
	assert.Equal(t, th.Yellow, StatusColor(model.BudgetNearLimit))
	assert.Equal(t, th.Red, StatusColor(model.BudgetOverBudget))
	assert.Equal(t, th.Gray, StatusColor("paused"))
	assert.Equal(t, th.Gray, StatusColor(""))
}

func TestBarFractionClamps(t *testing.T) {
	assert.Equal(t, 1.0, BarFraction(150))
	assert.Equal(t, 1.0, BarFraction(100))
	assert.Equal(t, 0.0, BarFraction(-20))
	assert.InDelta(t, 0.425, BarFraction(42.5), 1e-9)
}

func TestBudgetBarOverBudgetIsFullWithTrueLabel(t *testing.T) {
	out := ansi.Strip(BudgetBar(150, model.BudgetOverBudget, 20))

	assert.True(t, strings.HasSuffix(out, "150%"), "label should show true percentage: %q", out)
	// The bar itself never exceeds its width.
	assert.Equal(t, 20+1+len("150%"), ansi.StringWidth(out))
}

func TestBudgetRowFractionalLabel(t *testing.T) {
	out := ansi.Strip(BudgetRow("Groceries", "Rp 825 / Rp 1.000", 82.5, model.BudgetNearLimit, 12, 10))
	assert.Contains(t, out, "82.5%")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "Rp 825 / Rp 1.000")
}

func TestStatusBadge(t *testing.T) {
	assert.Equal(t, "● Over Budget", ansi.Strip(StatusBadge(model.BudgetOverBudget)))
	assert.Equal(t, "● Unknown", ansi.Strip(StatusBadge("weird")))
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "now", FormatCountdown(0))
	assert.Equal(t, "45s", FormatCountdown(45*time.Second))
	assert.Equal(t, "4m 30s", FormatCountdown(4*time.Minute+30*time.Second))
	assert.Equal(t, "1h 5m", FormatCountdown(65*time.Minute))
}

package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/finboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Chart is a rendered chart instance living on a Canvas.
type Chart interface {
	Render(width, height int) string
	// Destroy releases the instance. A destroyed chart renders nothing.
	Destroy()
	Destroyed() bool
}

// Canvas is a named drawing area that owns at most one Chart at a time.
// Mounting a new chart destroys the previous one exactly once; showing a
// placeholder also destroys it and leaves no chart mounted.
type Canvas struct {
	Name string

	chart       Chart
	placeholder string
	action      string
	destroyed   int
}

// NewCanvas returns an empty canvas.
func NewCanvas(name string) *Canvas {
	return &Canvas{Name: name}
}

// Mount replaces the current chart with ch.
func (c *Canvas) Mount(ch Chart) {
	c.release()
	c.chart = ch
	c.placeholder = ""
	c.action = ""
}

// ShowPlaceholder clears the canvas and renders message (plus an optional
// call to action) in place of a chart.
func (c *Canvas) ShowPlaceholder(message, action string) {
	c.release()
	c.placeholder = message
	c.action = action
}

func (c *Canvas) release() {
	if c.chart == nil {
		return
	}
	c.chart.Destroy()
	c.destroyed++
	c.chart = nil
}

// Chart returns the mounted chart, or nil when the canvas shows a placeholder.
func (c *Canvas) Chart() Chart { return c.chart }

// DestroyCount is the number of chart instances this canvas has released.
func (c *Canvas) DestroyCount() int { return c.destroyed }

// View renders the mounted chart or the placeholder.
func (c *Canvas) View(width, height int) string {
	if c.chart != nil {
		return c.chart.Render(width, height)
	}
	msg := c.placeholder
	if msg == "" {
		msg = "No data"
	}
	return Placeholder(msg, c.action, width, height)
}

// Placeholder renders centered empty-state text with an optional action hint.
func Placeholder(message, action string, width, height int) string {
	t := theme.Active
	msgStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	actionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	body := msgStyle.Render(message)
	if action != "" {
		body += "\n" + actionStyle.Render(action)
	}
	if height < lipgloss.Height(body) {
		height = lipgloss.Height(body)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body,
		lipgloss.WithWhitespaceBackground(t.Surface))
}

type chartState struct {
	destroyed bool
}

func (s *chartState) Destroy()        { s.destroyed = true }
func (s *chartState) Destroyed() bool { return s.destroyed }

// Slice is one category of a share chart.
type Slice struct {
	Label string
	Value float64
	// Amount is the preformatted value shown next to the bar.
	Amount string
}

// CategoryChart shows each category's share of the total as a horizontal bar,
// the terminal stand-in for a pie chart.
type CategoryChart struct {
	chartState
	slices []Slice
	total  float64
}

// NewCategoryChart builds a share chart. Non-positive values are dropped.
func NewCategoryChart(slices []Slice) *CategoryChart {
	c := &CategoryChart{}
	for _, s := range slices {
		if s.Value > 0 && !math.IsInf(s.Value, 0) {
			c.slices = append(c.slices, s)
			c.total += s.Value
		}
	}
	return c
}

// Len is the number of slices drawn.
func (c *CategoryChart) Len() int { return len(c.slices) }

// Render draws one row per category: label, share bar, percentage and amount.
func (c *CategoryChart) Render(width, height int) string {
	if c.destroyed || len(c.slices) == 0 {
		return ""
	}
	t := theme.Active

	labelW := 0
	amountW := 0
	for _, s := range c.slices {
		labelW = max(labelW, lipgloss.Width(s.Label))
		amountW = max(amountW, lipgloss.Width(s.Amount))
	}
	labelW = min(labelW, max(8, width/4))

	const pctW = 5
	barW := width - labelW - pctW - amountW - 3
	if barW < 4 {
		barW = 4
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	trackStyle := lipgloss.NewStyle().Foreground(t.SurfaceBright).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	rows := c.slices
	if height > 0 && len(rows) > height {
		rows = rows[:height]
	}

	lines := make([]string, 0, len(rows))
	for i, s := range rows {
		share := s.Value / c.total
		filled := int(math.Round(share * float64(barW)))
		if filled < 1 {
			filled = 1
		}
		if filled > barW {
			filled = barW
		}
		barStyle := lipgloss.NewStyle().Foreground(t.Series(i)).Background(t.Surface)

		label := s.Label
		if lipgloss.Width(label) > labelW {
			label = truncStr(label, labelW)
		}
		lines = append(lines,
			labelStyle.Render(fmt.Sprintf("%-*s", labelW, label))+space+
				barStyle.Render(strings.Repeat("█", filled))+
				trackStyle.Render(strings.Repeat("░", barW-filled))+space+
				mutedStyle.Render(fmt.Sprintf("%*.0f%%", pctW-1, share*100))+space+
				labelStyle.Render(fmt.Sprintf("%*s", amountW, s.Amount)))
	}
	return strings.Join(lines, "\n")
}

// FlowChart is a two-series line chart of daily income and expenses.
type FlowChart struct {
	chartState
	labels   []string
	income   []float64
	expenses []float64
}

// NewFlowChart builds a cash-flow chart. The series are truncated to the
// shortest of the three slices.
func NewFlowChart(labels []string, income, expenses []float64) *FlowChart {
	n := min(len(labels), len(income), len(expenses))
	return &FlowChart{labels: labels[:n], income: income[:n], expenses: expenses[:n]}
}

// Len is the number of days plotted.
func (f *FlowChart) Len() int { return len(f.labels) }

// Render plots both series on a shared Y axis. Each day is one column; a
// point falls in the row nearest its value and consecutive points are joined
// with vertical strokes.
func (f *FlowChart) Render(width, height int) string {
	if f.destroyed || len(f.labels) == 0 {
		return ""
	}
	t := theme.Active
	if height < 4 {
		height = 4
	}
	plotH := height - 2 // x axis + labels

	maxVal := 0.0
	for i := range f.income {
		maxVal = math.Max(maxVal, math.Max(f.income[i], f.expenses[i]))
	}
	if maxVal <= 0 {
		maxVal = 1
	}
	tickStep := chartTickStep(maxVal)
	ceiling := math.Ceil(maxVal/tickStep) * tickStep

	yLabelW := max(4, len(formatChartLabel(ceiling))+1)
	plotW := width - yLabelW - 1
	if plotW < 5 {
		plotW = 5
	}

	income, expenses, labels := f.income, f.expenses, f.labels
	if len(labels) > plotW {
		income = resample(income, plotW)
		expenses = resample(expenses, plotW)
		labels = resampleLabels(labels, plotW)
	}
	n := len(labels)
	colW := max(1, plotW/n)

	rowOf := func(v float64) int {
		r := int(math.Round(v / ceiling * float64(plotH-1)))
		return min(max(r, 0), plotH-1)
	}

	// grid[row][col]: 0 empty, 1 income, 2 expenses, 3 both
	grid := make([][]byte, plotH)
	for r := range grid {
		grid[r] = make([]byte, n)
	}
	plot := func(series []float64, mark byte) {
		prev := -1
		for i, v := range series {
			r := rowOf(v)
			grid[r][i] |= mark
			if prev >= 0 && prev != r {
				lo, hi := min(prev, r), max(prev, r)
				for k := lo + 1; k < hi; k++ {
					grid[k][i] |= mark << 2
				}
			}
			prev = r
		}
	}
	plot(income, 1)
	plot(expenses, 2)

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	incStyle := lipgloss.NewStyle().Foreground(t.Income()).Background(t.Surface)
	expStyle := lipgloss.NewStyle().Foreground(t.Expense()).Background(t.Surface)
	bothStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for r := plotH - 1; r >= 0; r-- {
		label := ""
		if r == plotH-1 {
			label = formatChartLabel(ceiling)
		} else if plotH > 4 && r == (plotH-1)/2 {
			label = formatChartLabel(ceiling / 2)
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, label)))
		b.WriteString(axisStyle.Render("│"))
		for c := 0; c < n; c++ {
			cell := grid[r][c]
			var s string
			switch {
			case cell&3 == 3:
				s = bothStyle.Render("◆")
			case cell&1 != 0:
				s = incStyle.Render("●")
			case cell&2 != 0:
				s = expStyle.Render("●")
			case cell&4 != 0:
				s = incStyle.Render("│")
			case cell&8 != 0:
				s = expStyle.Render("│")
			default:
				s = blank.Render(" ")
			}
			b.WriteString(s)
			if colW > 1 {
				b.WriteString(blank.Render(strings.Repeat(" ", colW-1)))
			}
		}
		b.WriteString("\n")
	}

	axisLen := n * colW
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", axisLen)))
	b.WriteString("\n")
	b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
	b.WriteString(axisStyle.Render(xAxisLabels(labels, colW, axisLen)))

	return b.String()
}

// xAxisLabels spaces the first, last and as many intermediate labels as fit.
func xAxisLabels(labels []string, colW, axisLen int) string {
	buf := []byte(strings.Repeat(" ", axisLen))
	lastEnd := -1
	place := func(i int) {
		lbl := labels[i]
		pos := i * colW
		if pos+len(lbl) > axisLen {
			pos = axisLen - len(lbl)
		}
		if pos < 0 || pos <= lastEnd {
			return
		}
		copy(buf[pos:], lbl)
		lastEnd = pos + len(lbl)
	}
	step := max(1, (len(labels)*8)/(axisLen+1))
	for i := 0; i < len(labels)-1; i += step {
		place(i)
	}
	place(len(labels) - 1)
	return strings.TrimRight(string(buf), " ")
}

// resample picks n evenly spaced points from values.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = values[i*(len(values)-1)/max(1, n-1)]
	}
	return out
}

func resampleLabels(labels []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = labels[i*(len(labels)-1)/max(1, n-1)]
	}
	return out
}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active
	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(blocks)-1))
		idx = min(max(idx, 0), len(blocks)-1)
		buf.WriteRune(blocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// chartTickStep computes a round tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))

	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// formatChartLabel abbreviates axis values: 1500000 -> "1.5M".
func formatChartLabel(v float64) string {
	units := []struct {
		div    float64
		suffix string
	}{{1e9, "B"}, {1e6, "M"}, {1e3, "k"}}
	for _, u := range units {
		if v < u.div {
			continue
		}
		if v == math.Trunc(v/u.div)*u.div {
			return fmt.Sprintf("%.0f%s", v/u.div, u.suffix)
		}
		return fmt.Sprintf("%.1f%s", v/u.div, u.suffix)
	}
	if v >= 1 || v == 0 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

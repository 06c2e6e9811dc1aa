// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money formats currency amounts for one locale.
// The zero value is not usable; build one with NewMoney.
type Money struct {
	prefix  string
	printer *message.Printer
}

// NewMoney returns a formatter for locale (BCP 47, e.g. "id-ID") and
// currency marker (e.g. "Rp"). An unparsable locale falls back to id-ID.
func NewMoney(locale, currency string) Money {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Indonesian
	}
	return Money{
		prefix:  strings.TrimSpace(currency),
		printer: message.NewPrinter(tag),
	}
}

// Format renders d as a whole amount with locale grouping and the currency prefix.
// e.g., 1500000 -> "Rp 1.500.000", -2500 -> "-Rp 2.500"
func (m Money) Format(d decimal.Decimal) string {
	n := d.Round(0).IntPart()
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	grouped := m.printer.Sprintf("%d", n)
	if m.prefix == "" {
		return sign + grouped
	}
	return sign + m.prefix + " " + grouped
}

// FormatFloat is Format for plain float amounts.
func (m Money) FormatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		f = 0
	}
	return m.Format(decimal.NewFromFloat(f))
}

// FormatPercent formats a 0-100 percentage, dropping a trailing ".0".
// e.g., 150 -> "150%", 82.5 -> "82.5%"
func FormatPercent(pct float64) string {
	if pct == math.Trunc(pct) {
		return fmt.Sprintf("%.0f%%", pct)
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatTimestamp formats a transaction time for lists.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 15:04")
}

// FormatClock formats a "last updated" time.
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("3:04:05 PM")
}

// Sanitize makes backend-supplied text safe to print in a terminal:
// escape sequences and control characters are removed and whitespace runs,
// line breaks included, collapse to single spaces.
func Sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, s)
	s = ansi.Strip(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) || r == '\u200b' || r == '\ufeff' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Truncate shortens s to at most limit runes, marking the cut with "…".
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

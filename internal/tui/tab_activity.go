package tui

import (
	"strings"

	"github.com/theirongolddev/finboard/internal/cli"
	"github.com/theirongolddev/finboard/internal/model"
	"github.com/theirongolddev/finboard/internal/tui/components"
	"github.com/theirongolddev/finboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderActivityTab(cw int) string {
	innerW := components.CardInnerWidth(cw)

	var b strings.Builder
	b.WriteString(components.ContentCard("Recent Transactions", a.renderTransactionList(innerW), cw))

	if a.summary != nil && len(a.summary.AccountBalances) > 0 {
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Accounts", a.renderAccounts(a.summary.AccountBalances, innerW), cw))
	}
	return b.String()
}

// renderTransactionList renders one line per transaction: date, merchant and
// category, then the signed amount right-aligned.
func (a App) renderTransactionList(w int) string {
	if len(a.transactions) == 0 {
		return components.Placeholder("No transactions yet", "Press a to add your first transaction", w, 5)
	}
	t := theme.Active

	dateStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	fill := lipgloss.NewStyle().Background(t.Surface)

	amounts := make([]string, len(a.transactions))
	amountW := 0
	for i, tx := range a.transactions {
		amounts[i] = a.signedAmount(tx)
		amountW = max(amountW, lipgloss.Width(amounts[i]))
	}

	lines := make([]string, 0, len(a.transactions))
	for i, tx := range a.transactions {
		date := dateStyle.Render(cli.FormatTimestamp(tx.Timestamp.Time) + "  ")

		title := cli.Sanitize(tx.Merchant)
		if title == "" {
			title = cli.Sanitize(tx.Description)
		}
		if title == "" {
			title = "(no merchant)"
		}
		meta := cli.Sanitize(tx.CategoryName())
		if meta == "" {
			meta = "Uncategorized"
		}
		if acct := cli.Sanitize(tx.AccountName()); acct != "" {
			meta += " · " + acct
		}

		amount := lipgloss.NewStyle().
			Foreground(amountColor(tx.Type)).
			Background(t.Surface).
			Bold(true).
			Render(amounts[i])

		textW := w - lipgloss.Width(date) - amountW - 2
		if textW < 10 {
			textW = 10
		}
		left := nameStyle.Render(cli.Truncate(title, textW))
		if room := textW - lipgloss.Width(left) - 3; room > 4 {
			left += metaStyle.Render(" · " + cli.Truncate(meta, room))
		}
		gap := w - lipgloss.Width(date) - lipgloss.Width(left) - amountW
		if gap < 1 {
			gap = 1
		}
		lines = append(lines, date+left+fill.Render(strings.Repeat(" ", gap))+
			fill.Render(strings.Repeat(" ", amountW-lipgloss.Width(amounts[i])))+amount)
	}
	return strings.Join(lines, "\n")
}

func (a App) signedAmount(tx model.Transaction) string {
	switch tx.Type {
	case model.TypeIncome:
		return "+" + a.money.Format(tx.Amount.Abs())
	case model.TypeExpense:
		return "-" + a.money.Format(tx.Amount.Abs())
	default:
		return a.money.Format(tx.Amount)
	}
}

func amountColor(tt model.TransactionType) lipgloss.Color {
	t := theme.Active
	switch tt {
	case model.TypeIncome:
		return t.Income()
	case model.TypeExpense:
		return t.Expense()
	default:
		return t.Blue
	}
}

func (a App) renderAccounts(accounts []model.AccountBalance, w int) string {
	t := theme.Active
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	typeStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	fill := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, len(accounts))
	for i, acct := range accounts {
		left := nameStyle.Render(cli.Sanitize(acct.Name))
		if typ := cli.Sanitize(acct.Type); typ != "" {
			left += typeStyle.Render(" (" + typ + ")")
		}
		balance := a.money.Format(acct.Balance)
		gap := w - lipgloss.Width(left) - lipgloss.Width(balance)
		if gap < 1 {
			gap = 1
		}
		lines[i] = left + fill.Render(strings.Repeat(" ", gap)) + nameStyle.Render(balance)
	}
	return strings.Join(lines, "\n")
}

func lipglossFg(c lipgloss.Color, s string) string {
	return lipgloss.NewStyle().Foreground(c).Background(theme.Active.Surface).Render(s)
}

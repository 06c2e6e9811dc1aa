package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/finboard/internal/cli"
	"github.com/theirongolddev/finboard/internal/dashboard"
	"github.com/theirongolddev/finboard/internal/model"
	"github.com/theirongolddev/finboard/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// transactionValues holds the form's bound fields. huh writes through
// pointers, so it lives behind one and survives App copies.
type transactionValues struct {
	Amount      string
	Type        string
	Merchant    string
	Description string
}

func (v *transactionValues) input() dashboard.TransactionInput {
	return dashboard.TransactionInput{
		Amount:      v.Amount,
		Type:        v.Type,
		Merchant:    v.Merchant,
		Description: v.Description,
	}
}

func newTransactionForm(vals *transactionValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount").
				Placeholder("e.g. 25000").
				Value(&vals.Amount),
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Expense", string(model.TypeExpense)),
					huh.NewOption("Income", string(model.TypeIncome)),
				).
				Value(&vals.Type),
			huh.NewInput().
				Title("Merchant").
				CharLimit(120).
				Value(&vals.Merchant),
			huh.NewInput().
				Title("Description").
				CharLimit(255).
				Value(&vals.Description),
		).Title("Add Transaction").
			Description("Esc to cancel"),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(true)
}

// openForm shows the add modal prefilled with in.
func (a *App) openForm(in dashboard.TransactionInput) tea.Cmd {
	a.txVals = &transactionValues{
		Amount:      in.Amount,
		Type:        in.Type,
		Merchant:    in.Merchant,
		Description: in.Description,
	}
	a.form = newTransactionForm(a.txVals).WithWidth(a.formWidth())
	a.showHelp = false
	return a.form.Init()
}

func (a *App) closeForm() {
	a.form = nil
	a.txVals = nil
}

func (a App) formWidth() int {
	w := a.width - 8
	if w > 60 {
		w = 60
	}
	if w < 30 {
		w = 30
	}
	return w
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		in := a.txVals.input()
		a.closeForm()
		submit := a.submitTransaction(in)
		return a, submit
	case huh.StateAborted:
		a.closeForm()
		return a, nil
	}
	return a, cmd
}

// submitTransaction validates and posts the form. Invalid input never reaches
// the backend: the error is shown and the form reopens with what was typed.
func (a *App) submitTransaction(in dashboard.TransactionInput) tea.Cmd {
	tx, err := dashboard.BuildTransaction(in, a.cfg.General.DefaultAccountID, a.now())
	if err != nil {
		a.log.WithError(err).Warn("transaction rejected before submit")
		return tea.Batch(
			a.notify(dashboard.SeverityError, "Invalid transaction", validationMessage(err)),
			a.openForm(in),
		)
	}
	a.submitting = true
	return createTransactionCmd(a.backend, tx, in)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, dashboard.ErrInvalidAmount):
		return "Amount must be a positive number."
	case errors.Is(err, dashboard.ErrInvalidType):
		return "Type must be income or expense."
	default:
		return err.Error()
	}
}

func createTransactionCmd(b Backend, tx model.NewTransaction, in dashboard.TransactionInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		res, err := b.CreateTransaction(ctx, tx)
		return TransactionSavedMsg{Input: in, Result: res, Err: err}
	}
}

func (a App) handleTransactionSaved(msg TransactionSavedMsg) (tea.Model, tea.Cmd) {
	a.submitting = false
	if msg.Err != nil {
		a.log.WithError(msg.Err).Error("adding transaction failed")
		cmd := tea.Batch(
			a.notify(dashboard.SeverityError, "Failed to add transaction", "The backend rejected the request. Your input was kept."),
			a.openForm(msg.Input),
		)
		return a, cmd
	}

	a.log.WithField("merchant", cli.Sanitize(msg.Input.Merchant)).Info("transaction added")
	cmd := tea.Batch(
		a.notify(dashboard.SeveritySuccess, "Transaction added", "Dashboard is refreshing."),
		a.loadDashboardData(false),
	)
	return a, cmd
}

func (a App) viewForm() string {
	t := theme.Active
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)

	body := a.form.View()
	if n, ok := a.notifier.Current(); ok && n.Severity == dashboard.SeverityError {
		body = lipgloss.NewStyle().Foreground(t.Red).Render(fmt.Sprintf("✗ %s: %s", n.Title, n.Message)) + "\n\n" + body
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, frame.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

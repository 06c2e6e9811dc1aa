package cmd

import (
	"fmt"

	"github.com/theirongolddev/finboard/internal/cli"
	"github.com/theirongolddev/finboard/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "This month's budgets and alerts",
	RunE:  runBudget,
}

func init() {
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(_ *cobra.Command, _ []string) error {
	cfg, client, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	progress("Fetching budget status...")
	bs, err := client.FetchBudgetStatus(ctx)
	if err != nil {
		cliLogger().WithError(err).Error("fetching budget status failed")
		return fmt.Errorf("could not load budgets: %w", err)
	}

	fmt.Print(renderBudget(bs, cli.NewMoney(cfg.General.Locale, cfg.General.Currency)))
	return nil
}

func renderBudget(bs *model.BudgetStatus, money cli.Money) string {
	title := "BUDGET"
	if m := cli.Sanitize(bs.Month); m != "" {
		title += "  " + m
	}
	out := "\n" + cli.RenderTitle(title) + "\n\n"

	if bs.BudgetCount == 0 && len(bs.Budgets) == 0 {
		return out + cli.RenderEmpty("No budgets set for this month.", "Create budgets in the finance app to track spending.") + "\n"
	}

	out += fmt.Sprintf("  Spent %s of %s  (remaining %s)\n",
		money.Format(bs.TotalSpent), money.Format(bs.TotalBudget), money.Format(bs.TotalRemaining))
	out += "  " + cli.RenderPercentBar(bs.OverallPercentage, 40, cli.ColorAccent) + "\n\n"

	rows := make([][]string, 0, len(bs.Budgets))
	for _, b := range bs.Budgets {
		color := cli.StatusColor(b.Status)
		rows = append(rows, []string{
			cli.Truncate(cli.Sanitize(b.Category), 20),
			cli.RenderPercentBar(b.PercentageUsed, 16, color),
			money.Format(b.AmountSpent),
			money.Format(b.BudgetLimit),
			lipgloss.NewStyle().Foreground(color).Render(b.Status.Label()),
		})
	}
	out += cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Used", "Spent", "Limit", "Status"},
		Rows:    rows,
	})

	if len(bs.Alerts) > 0 {
		out += "\n"
		for _, a := range bs.Alerts {
			color := cli.ColorYellow
			if a.Type == string(model.BudgetOverBudget) {
				color = cli.ColorRed
			}
			out += "  " + lipgloss.NewStyle().Foreground(color).Render("▲ "+cli.Sanitize(a.Message)) + "\n"
		}
	}
	return out + "\n"
}

package cmd

import (
	"fmt"

	"github.com/theirongolddev/finboard/internal/cli"
	"github.com/theirongolddev/finboard/internal/model"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Balances, monthly totals and spending by category",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	cfg, client, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	progress("Fetching dashboard from %s...", client.BaseURL())
	s, err := client.FetchDashboard(ctx)
	if err != nil {
		cliLogger().WithError(err).Error("fetching dashboard failed")
		return fmt.Errorf("could not load the dashboard: %w", err)
	}

	money := cli.NewMoney(cfg.General.Locale, cfg.General.Currency)
	fmt.Print(renderSummary(s, money))
	return nil
}

func renderSummary(s *model.DashboardSummary, money cli.Money) string {
	out := "\n" + cli.RenderTitle("FINANCE SUMMARY") + "\n\n"

	rows := [][]string{
		{"Total Balance", money.Format(s.TotalBalance)},
		{"---"},
		{"Monthly Income", money.Format(s.MonthlyIncome)},
		{"Monthly Expenses", money.Format(s.MonthlyExpenses)},
		{"Monthly Savings", money.Format(s.MonthlySavings)},
	}
	if len(s.AccountBalances) > 0 {
		rows = append(rows, []string{"---"})
		for _, a := range s.AccountBalances {
			rows = append(rows, []string{cli.Truncate(cli.Sanitize(a.Name), 28), money.Format(a.Balance)})
		}
	}
	out += cli.RenderTable(cli.Table{Rows: rows})
	if len(s.DailyFlow) > 1 {
		spend := make([]float64, len(s.DailyFlow))
		for i, d := range s.DailyFlow {
			spend[i] = d.Expenses.InexactFloat64()
		}
		out += "  " + cli.RenderMuted("Daily spending ") + cli.RenderSparkline(spend, cli.ColorOrange) + "\n"
	}
	out += "\n"

	if len(s.ExpenseByCategory) == 0 {
		return out + cli.RenderEmpty("No expenses recorded this month.", "Add one with `finboard add --amount 25000 --merchant Cafe`.") + "\n"
	}

	total := s.TotalExpenses()
	catRows := make([][]string, 0, len(s.ExpenseByCategory))
	for _, c := range s.ExpenseByCategory {
		share := 0.0
		if total.IsPositive() {
			share = c.Amount.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		catRows = append(catRows, []string{
			cli.Truncate(cli.Sanitize(c.Category), 24),
			money.Format(c.Amount),
			cli.FormatPercent(share),
		})
	}
	out += cli.RenderTable(cli.Table{
		Title:   "Expenses by Category",
		Headers: []string{"Category", "Amount", "Share"},
		Rows:    catRows,
	}) + "\n"
	return out
}

package cmd

import (
	"fmt"

	"github.com/theirongolddev/finboard/internal/cli"
	"github.com/theirongolddev/finboard/internal/model"

	"github.com/spf13/cobra"
)

var flagTxLimit int

var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx"},
	Short:   "Recent transactions",
	RunE:    runTransactions,
}

func init() {
	transactionsCmd.Flags().IntVarP(&flagTxLimit, "limit", "l", model.RecentTransactionLimit, "Number of transactions to show")
	rootCmd.AddCommand(transactionsCmd)
}

func runTransactions(_ *cobra.Command, _ []string) error {
	if flagTxLimit < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", flagTxLimit)
	}
	cfg, client, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	progress("Fetching transactions...")
	txs, err := client.FetchTransactions(ctx, flagTxLimit)
	if err != nil {
		cliLogger().WithError(err).Error("fetching transactions failed")
		return fmt.Errorf("could not load transactions: %w", err)
	}

	fmt.Print(renderTransactions(txs, cli.NewMoney(cfg.General.Locale, cfg.General.Currency)))
	return nil
}

func renderTransactions(txs []model.Transaction, money cli.Money) string {
	out := "\n" + cli.RenderTitle("RECENT TRANSACTIONS") + "\n\n"
	if len(txs) == 0 {
		return out + cli.RenderEmpty("No transactions yet.", "Add one with `finboard add --amount 25000 --merchant Cafe`.") + "\n"
	}

	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		amount := money.Format(tx.Amount.Abs())
		switch tx.Type {
		case model.TypeIncome:
			amount = "+" + amount
		case model.TypeExpense:
			amount = "-" + amount
		}
		merchant := cli.Sanitize(tx.Merchant)
		if merchant == "" {
			merchant = cli.Sanitize(tx.Description)
		}
		rows = append(rows, []string{
			cli.FormatTimestamp(tx.Timestamp.Time),
			cli.Truncate(merchant, 28),
			cli.Truncate(cli.Sanitize(tx.CategoryName()), 16),
			cli.Truncate(cli.Sanitize(tx.AccountName()), 16),
			amount,
		})
	}
	out += cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Merchant", "Category", "Account", "Amount"},
		Rows:    rows,
	})
	return out + "  " + cli.RenderMuted(fmt.Sprintf("Showing the %d most recent. Use --limit for more.", len(txs))) + "\n\n"
}

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/finboard/internal/cli"
	"github.com/theirongolddev/finboard/internal/dashboard"

	"github.com/spf13/cobra"
)

var (
	flagAddAmount      string
	flagAddType        string
	flagAddMerchant    string
	flagAddDescription string
	flagAddAccount     int64
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	Example: `  finboard add --amount 25000 --merchant "Kopi Kenangan"
  finboard add --amount 8500000 --type income --description Salary`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&flagAddAmount, "amount", "", "Transaction amount (positive number)")
	addCmd.Flags().StringVar(&flagAddType, "type", dashboard.NewTransactionInput().Type, "Transaction type: income or expense")
	addCmd.Flags().StringVar(&flagAddMerchant, "merchant", "", "Merchant name")
	addCmd.Flags().StringVar(&flagAddDescription, "description", "", "Free-text description")
	addCmd.Flags().Int64Var(&flagAddAccount, "account", 0, "Account ID (defaults to general.default_account_id)")
	_ = addCmd.MarkFlagRequired("amount")
	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, _ []string) error {
	cfg, client, err := setup()
	if err != nil {
		return err
	}

	accountID := cfg.General.DefaultAccountID
	if flagAddAccount > 0 {
		accountID = flagAddAccount
	}

	in := dashboard.TransactionInput{
		Amount:      flagAddAmount,
		Type:        flagAddType,
		Merchant:    flagAddMerchant,
		Description: flagAddDescription,
	}
	tx, err := dashboard.BuildTransaction(in, accountID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, dashboard.ErrInvalidAmount):
			return fmt.Errorf("%w (got %q)", err, flagAddAmount)
		case errors.Is(err, dashboard.ErrInvalidType):
			return fmt.Errorf("%w (got %q)", err, flagAddType)
		}
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	progress("Saving transaction...")
	if _, err := client.CreateTransaction(ctx, tx); err != nil {
		cliLogger().WithError(err).Error("creating transaction failed")
		return fmt.Errorf("could not save the transaction: %w", err)
	}

	money := cli.NewMoney(cfg.General.Locale, cfg.General.Currency)
	fmt.Printf("  Saved %s %s", tx.Type, money.FormatFloat(tx.Amount))
	if tx.Merchant != "" {
		fmt.Printf(" at %s", cli.Sanitize(tx.Merchant))
	}
	fmt.Println()
	return nil
}

package dashboard

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/finboard/internal/model"
)

var (
	// ErrInvalidAmount is returned when the amount is not a positive finite number.
	ErrInvalidAmount = errors.New("amount must be a positive number")
	// ErrInvalidType is returned for transaction types other than income or expense.
	ErrInvalidType = errors.New("type must be income or expense")
)

// TransactionInput is the add-transaction form as the user typed it.
type TransactionInput struct {
	Amount      string
	Type        string
	Merchant    string
	Description string
}

// NewTransactionInput returns an empty form defaulting to an expense.
func NewTransactionInput() TransactionInput {
	return TransactionInput{Type: string(model.TypeExpense)}
}

// ParseAmount parses a user-entered amount as a floating-point number.
// Group separators are not accepted: "1.500" is one and a half.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}

// ValidateType checks the transaction type field.
func ValidateType(s string) error {
	switch model.TransactionType(s) {
	case model.TypeIncome, model.TypeExpense:
		return nil
	}
	return ErrInvalidType
}

// BuildTransaction turns form input into the create payload, stamping now and
// the configured account.
func BuildTransaction(in TransactionInput, accountID int64, now time.Time) (model.NewTransaction, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return model.NewTransaction{}, err
	}
	if err := ValidateType(in.Type); err != nil {
		return model.NewTransaction{}, err
	}
	return model.NewTransaction{
		Amount:      amount,
		Type:        model.TransactionType(in.Type),
		Merchant:    strings.TrimSpace(in.Merchant),
		Description: strings.TrimSpace(in.Description),
		Timestamp:   now,
		AccountID:   accountID,
	}, nil
}

// CurrentMonth returns now's month as YYYY-MM.
func CurrentMonth(now time.Time) string {
	return now.Format("2006-01")
}

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction.
type TransactionType string

// Transaction types understood by the backend.
const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// Transaction is a recorded transaction as listed by the backend.
type Transaction struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"transaction_type"`
	Merchant    string          `json:"merchant"`
	Description string          `json:"description"`
	Timestamp   Timestamp       `json:"timestamp"`
	Category    *NamedRef       `json:"category"`
	Account     *NamedRef       `json:"account"`
}

// NamedRef is the subset of a nested category or account the dashboard shows.
type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryName returns the category name, or "" when uncategorized.
func (t Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

// AccountName returns the account name, or "" when missing.
func (t Transaction) AccountName() string {
	if t.Account == nil {
		return ""
	}
	return t.Account.Name
}

// NewTransaction is the payload for creating a transaction.
type NewTransaction struct {
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"transaction_type"`
	Merchant    string          `json:"merchant"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
	AccountID   int64           `json:"account_id"`
}

// Timestamp accepts RFC 3339 as well as the naive ISO-8601 form the backend emits.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler. null and "" leave the zero time.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			ts.Time = t
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Format(time.RFC3339))
}

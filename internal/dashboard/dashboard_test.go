package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/finboard/internal/model"
)

func TestLoadTrackerRejectsStaleResult(t *testing.T) {
	var tr LoadTracker
	first := tr.Begin()
	second := tr.Begin()

	// The newer load lands first.
	assert.True(t, tr.Accept(second))
	assert.True(t, tr.IsLatest(second))

	// The older one finishing late must not overwrite it.
	assert.False(t, tr.Accept(first))
	assert.False(t, tr.IsLatest(first))
	assert.Equal(t, second, tr.Applied())
}

func TestLoadTrackerInOrder(t *testing.T) {
	var tr LoadTracker
	a := tr.Begin()
	assert.True(t, tr.Accept(a))
	assert.False(t, tr.Accept(a), "same generation applies once")

	b := tr.Begin()
	assert.False(t, tr.IsLatest(a))
	assert.True(t, tr.Accept(b))
	assert.False(t, tr.Accept(0))
	assert.False(t, tr.Accept(b+1), "never issued")
}

func TestNotifierReplacement(t *testing.T) {
	var n Notifier
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first := n.Show(SeveritySuccess, "Saved", "transaction added", now)
	second := n.Show(SeverityError, "Sync failed", "backend unreachable", now.Add(2*time.Second))

	cur, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, second, cur.ID)
	assert.Equal(t, SeverityError, cur.Severity)
	assert.Equal(t, "backend unreachable", cur.Message)

	// First timer fires: the second notification stays.
	assert.False(t, n.Expire(first))
	_, ok = n.Current()
	assert.True(t, ok)

	// Its own timer hides it.
	assert.True(t, n.Expire(second))
	_, ok = n.Current()
	assert.False(t, ok)
	assert.False(t, n.Expire(second))
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "success", SeveritySuccess.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "info", SeverityInfo.String())
}

func TestBuildTransaction(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	tx, err := BuildTransaction(TransactionInput{
		Amount:      " 25000.5 ",
		Type:        "expense",
		Merchant:    "  Warung  ",
		Description: "lunch",
	}, 3, now)
	require.NoError(t, err)

	assert.InDelta(t, 25000.5, tx.Amount, 1e-9)
	assert.Equal(t, model.TypeExpense, tx.Type)
	assert.Equal(t, "Warung", tx.Merchant)
	assert.Equal(t, "lunch", tx.Description)
	assert.Equal(t, int64(3), tx.AccountID)
	assert.True(t, now.Equal(tx.Timestamp))
}

func TestBuildTransactionRejectsBadAmount(t *testing.T) {
	for _, amount := range []string{"abc", "", "  ", "0", "-5", "NaN", "Inf", "1,500"} {
		t.Run(amount, func(t *testing.T) {
			in := NewTransactionInput()
			in.Amount = amount
			_, err := BuildTransaction(in, 1, time.Now())
			assert.True(t, errors.Is(err, ErrInvalidAmount), "got %v", err)
		})
	}
}

func TestBuildTransactionRejectsType(t *testing.T) {
	_, err := BuildTransaction(TransactionInput{Amount: "10", Type: "transfer"}, 1, time.Now())
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = BuildTransaction(TransactionInput{Amount: "10", Type: "income"}, 1, time.Now())
	assert.NoError(t, err)
}

func TestNewTransactionInputDefaultsToExpense(t *testing.T) {
	assert.Equal(t, "expense", NewTransactionInput().Type)
}

func TestCurrentMonth(t *testing.T) {
	assert.Equal(t, "2026-01", CurrentMonth(time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC)))
}

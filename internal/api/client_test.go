package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/finboard/internal/model"
)

const (
	dashboardJSON = `{"total_balance":1500000,"monthly_income":500000,"monthly_expenses":200000,"monthly_savings":300000,
		"account_balances":[{"name":"BCA","balance":1500000,"type":"bank"}],
		"expense_by_category":[{"category":"Food","amount":150000},{"category":"Transport","amount":50000}],
		"daily_flow":[{"date":"2025-06-01","income":0,"expenses":20000}],
		"recent_transactions":[]}`
	budgetJSON = `{"month":"2025-06","total_budget":1000000,"total_spent":800000,"total_remaining":200000,"overall_percentage":80,
		"budgets":[{"id":1,"category":"Food","budget_limit":500000,"amount_spent":750000,"remaining":-250000,"percentage_used":150,"status":"over_budget"}],
		"alerts":[{"type":"budget_alert","category":"Food","message":"Budget over budget for Food","percentage":150,"amount_over":250000}],
		"budget_count":1}`
	transactionsJSON = `[{"id":1,"timestamp":"2025-06-01T09:00:00","amount":20000,"transaction_type":"expense","merchant":"Gojek","account":{"id":1,"name":"BCA"}}]`
)

func newBackend(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, 2*time.Second)
	require.NoError(t, err)
	return c
}

func okHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestNewClient_RejectsInvalidURL(t *testing.T) {
	_, err := NewClient("not a url", 0)
	assert.Error(t, err)

	c, err := NewClient("http://localhost:8000/", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
}

func TestFetchSnapshot_AllSucceed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/reports/dashboard", okHandler(dashboardJSON))
	mux.HandleFunc("/api/budgets/current/status", okHandler(budgetJSON))
	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		okHandler(transactionsJSON)(w, r)
	})
	c := newBackend(t, mux)

	snap, err := c.FetchSnapshot(context.Background(), model.RecentTransactionLimit)
	require.NoError(t, err)

	assert.Equal(t, "1500000", snap.Summary.TotalBalance.String())
	require.Len(t, snap.Summary.ExpenseByCategory, 2)
	assert.Equal(t, "2025-06", snap.Budget.Month)
	require.Len(t, snap.Budget.Budgets, 1)
	assert.Equal(t, model.BudgetOverBudget, snap.Budget.Budgets[0].Status)
	assert.InDelta(t, 150.0, snap.Budget.Budgets[0].PercentageUsed, 1e-9)
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, "BCA", snap.Transactions[0].AccountName())
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestFetchSnapshot_RunsConcurrently(t *testing.T) {
	var arrived sync.WaitGroup
	arrived.Add(3)
	all := make(chan struct{})
	go func() {
		arrived.Wait()
		close(all)
	}()

	gate := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			arrived.Done()
			select {
			case <-all:
				okHandler(body)(w, r)
			case <-time.After(time.Second):
				w.WriteHeader(http.StatusGatewayTimeout)
			}
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/reports/dashboard", gate(dashboardJSON))
	mux.HandleFunc("/api/budgets/current/status", gate(budgetJSON))
	mux.HandleFunc("/api/transactions/", gate(transactionsJSON))
	c := newBackend(t, mux)

	_, err := c.FetchSnapshot(context.Background(), 5)
	require.NoError(t, err, "all three requests must be in flight at the same time")
}

func TestFetchSnapshot_OneFailureFailsBatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/reports/dashboard", okHandler(dashboardJSON))
	mux.HandleFunc("/api/budgets/current/status", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/transactions/", okHandler(transactionsJSON))
	c := newBackend(t, mux)

	snap, err := c.FetchSnapshot(context.Background(), 5)
	assert.Nil(t, snap)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
}

func TestFetchSnapshot_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, time.Second)
	require.NoError(t, err)

	snap, err := c.FetchSnapshot(context.Background(), 5)
	assert.Nil(t, snap)
	assert.Error(t, err)
}

func TestFetchTransactions_CapsAtLimit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/transactions/", okHandler(`[{"id":1},{"id":2},{"id":3}]`))
	c := newBackend(t, mux)

	txs, err := c.FetchTransactions(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestCreateTransaction_PostsJSON(t *testing.T) {
	var got map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		okHandler(`{"success":true,"message":"Transaction created successfully","data":{"id":12}}`)(w, r)
	})
	c := newBackend(t, mux)

	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	res, err := c.CreateTransaction(context.Background(), model.NewTransaction{
		Amount:      25000.5,
		Type:        model.TypeExpense,
		Merchant:    "Indomaret",
		Description: "snacks",
		Timestamp:   ts,
		AccountID:   3,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)

	assert.InDelta(t, 25000.5, got["amount"], 1e-9)
	assert.Equal(t, "expense", got["transaction_type"])
	assert.Equal(t, "Indomaret", got["merchant"])
	assert.Equal(t, "snacks", got["description"])
	assert.Equal(t, "2025-06-01T10:00:00Z", got["timestamp"])
	assert.InDelta(t, 3, got["account_id"], 1e-9)
}

func TestSyncToSheets_ParsesCount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/transactions/sync-to-sheets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		okHandler(`{"success":true,"message":"Synced 4","data":{"synced_count":4,"failed_count":1,"errors":[]}}`)(w, r)
	})
	c := newBackend(t, mux)

	res, err := c.SyncToSheets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.SyncedCount)
	assert.Equal(t, 1, res.FailedCount)
	assert.True(t, res.Success)
	assert.Equal(t, "Synced 4", res.Message)
}

func TestSyncToSheets_KeepsUnsuccessfulMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/transactions/sync-to-sheets", okHandler(
		`{"success":false,"message":"Google Sheets service not initialized","data":null}`))
	c := newBackend(t, mux)

	res, err := c.SyncToSheets(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Google Sheets service not initialized", res.Message)
	assert.Zero(t, res.SyncedCount)
}

func TestExportMonthly_SendsMonth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/reports/monthly-export", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "2025-06", r.URL.Query().Get("month"))
		okHandler(`{"success":true,"message":"Monthly report for 2025-06 exported"}`)(w, r)
	})
	c := newBackend(t, mux)

	res, err := c.ExportMonthly(context.Background(), "2025-06")
	require.NoError(t, err)
	assert.Contains(t, res.Message, "2025-06")
}

func TestExportMonthly_ErrorStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/reports/monthly-export", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	c := newBackend(t, mux)

	_, err := c.ExportMonthly(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrStatus)
}

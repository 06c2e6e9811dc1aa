// Package api provides a client for the finance backend's JSON API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/finboard/internal/model"

	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
	userAgent      = "finboard/1.0"
)

// ErrStatus is wrapped by every non-2xx response. The body is never inspected.
var ErrStatus = errors.New("api: unexpected status")

// Client talks to the finance backend.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a client for the given base URL (e.g. http://localhost:8000).
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: invalid base URL %q", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		http:    &http.Client{},
	}, nil
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchSnapshot fetches the dashboard summary, budget status and recent
// transactions concurrently. Either all three succeed or an error is returned;
// the first failure cancels the others.
func (c *Client) FetchSnapshot(ctx context.Context, limit int) (*model.Snapshot, error) {
	var (
		summary *model.DashboardSummary
		budget  *model.BudgetStatus
		txs     []model.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = c.FetchDashboard(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		budget, err = c.FetchBudgetStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = c.FetchTransactions(gctx, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.Snapshot{
		Summary:      *summary,
		Budget:       *budget,
		Transactions: txs,
		FetchedAt:    time.Now(),
	}, nil
}

// FetchDashboard returns the current month's dashboard summary.
func (c *Client) FetchDashboard(ctx context.Context) (*model.DashboardSummary, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/reports/dashboard", nil)
	if err != nil {
		return nil, err
	}
	var s model.DashboardSummary
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("api: parsing dashboard: %w", err)
	}
	return &s, nil
}

// FetchBudgetStatus returns the current month's budget status.
func (c *Client) FetchBudgetStatus(ctx context.Context) (*model.BudgetStatus, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/budgets/current/status", nil)
	if err != nil {
		return nil, err
	}
	var bs model.BudgetStatus
	if err := json.Unmarshal(body, &bs); err != nil {
		return nil, fmt.Errorf("api: parsing budget status: %w", err)
	}
	return &bs, nil
}

// FetchTransactions returns the most recent transactions, newest first.
// The result is capped at limit even if the backend returns more.
func (c *Client) FetchTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = model.RecentTransactionLimit
	}
	body, err := c.do(ctx, http.MethodGet, "/api/transactions/?limit="+strconv.Itoa(limit), nil)
	if err != nil {
		return nil, err
	}
	var txs []model.Transaction
	if err := json.Unmarshal(body, &txs); err != nil {
		return nil, fmt.Errorf("api: parsing transactions: %w", err)
	}
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

// CreateTransaction posts a new transaction.
func (c *Client) CreateTransaction(ctx context.Context, tx model.NewTransaction) (*model.ActionResult, error) {
	payload, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("api: encoding transaction: %w", err)
	}
	return c.action(ctx, "/api/transactions/", payload)
}

// SyncToSheets asks the backend to push unsynced transactions to Google Sheets.
func (c *Client) SyncToSheets(ctx context.Context) (*model.SyncResult, error) {
	res, err := c.action(ctx, "/api/transactions/sync-to-sheets", nil)
	if err != nil {
		return nil, err
	}
	var sr model.SyncResult
	if len(res.Data) > 0 {
		if err := json.Unmarshal(res.Data, &sr); err != nil {
			return nil, fmt.Errorf("api: parsing sync result: %w", err)
		}
	}
	sr.Success = res.Success
	sr.Message = res.Message
	return &sr, nil
}

// ExportMonthly asks the backend to export the report for month (YYYY-MM).
func (c *Client) ExportMonthly(ctx context.Context, month string) (*model.ActionResult, error) {
	return c.action(ctx, "/api/reports/monthly-export?month="+url.QueryEscape(month), nil)
}

func (c *Client) action(ctx context.Context, path string, payload []byte) (*model.ActionResult, error) {
	body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	var res model.ActionResult
	if len(bytes.TrimSpace(body)) == 0 {
		return &res, nil
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("api: parsing response: %w", err)
	}
	return &res, nil
}

// do performs a request and returns the response body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w %d from %s %s", ErrStatus, resp.StatusCode, method, path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("api: reading response: %w", err)
	}
	return body, nil
}

package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/finboard/internal/config"
	"github.com/theirongolddev/finboard/internal/dashboard"
	"github.com/theirongolddev/finboard/internal/model"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

type fakeBackend struct {
	mu        sync.Mutex
	snapshot  *model.Snapshot
	fetchErr  error
	createErr error
	syncErr   error
	exportErr error

	created  []model.NewTransaction
	exported []string
	fetches  int
}

func (f *fakeBackend) FetchSnapshot(_ context.Context, _ int) (*model.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.snapshot, nil
}

func (f *fakeBackend) CreateTransaction(_ context.Context, tx model.NewTransaction) (*model.ActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, tx)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &model.ActionResult{Success: true}, nil
}

func (f *fakeBackend) SyncToSheets(context.Context) (*model.SyncResult, error) {
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	return &model.SyncResult{SyncedCount: 3, Success: true}, nil
}

func (f *fakeBackend) ExportMonthly(_ context.Context, month string) (*model.ActionResult, error) {
	f.exported = append(f.exported, month)
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return &model.ActionResult{Success: true}, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleSnapshot(balance string) *model.Snapshot {
	return &model.Snapshot{
		Summary: model.DashboardSummary{
			TotalBalance:    dec(balance),
			MonthlyIncome:   dec("700000"),
			MonthlyExpenses: dec("200000"),
			MonthlySavings:  dec("500000"),
			ExpenseByCategory: []model.CategoryExpense{
				{Category: "Food", Amount: dec("150000")},
				{Category: "Transport", Amount: dec("50000")},
			},
			DailyFlow: []model.DailyFlow{
				{Date: "2026-03-01", Income: dec("700000"), Expenses: dec("0")},
				{Date: "2026-03-02", Income: dec("0"), Expenses: dec("200000")},
			},
		},
		Budget: model.BudgetStatus{
			Month:             "2026-03",
			TotalBudget:       dec("1000000"),
			TotalSpent:        dec("200000"),
			TotalRemaining:    dec("800000"),
			OverallPercentage: 20,
			BudgetCount:       1,
			Budgets: []model.CategoryBudget{
				{ID: 1, Category: "Food", AmountSpent: dec("150000"), BudgetLimit: dec("100000"), PercentageUsed: 150, Status: model.BudgetOverBudget},
			},
		},
		Transactions: []model.Transaction{
			{ID: 1, Amount: dec("50000"), Type: model.TypeExpense, Merchant: "Warung"},
		},
		FetchedAt: testNow,
	}
}

func newTestApp(t *testing.T, b *fakeBackend) App {
	t.Helper()
	a := NewApp(Options{
		Backend: b,
		Config:  config.DefaultConfig(),
		Now:     func() time.Time { return testNow },
	})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	return m.(App)
}

func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	app, ok := m.(App)
	require.True(t, ok)
	return app, cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loaded delivers the initial load for a.
func loaded(t *testing.T, a App, b *fakeBackend) App {
	t.Helper()
	msg := loadDashboardCmd(b, a.firstGen)()
	a, _ = update(t, a, msg)
	return a
}

func TestInitialLoadPopulatesAllRegions(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1500000")}
	a := newTestApp(t, b)
	require.True(t, a.loading)
	assert.Contains(t, ansi.Strip(a.View()), "Loading dashboard")

	a = loaded(t, a, b)

	assert.False(t, a.loading)
	assert.True(t, a.loaded)
	require.NotNil(t, a.summary)
	require.NotNil(t, a.budget)
	assert.Len(t, a.transactions, 1)
	require.Len(t, a.cards, 4)
	assert.Equal(t, "Rp 1.500.000", a.cards[0].Value)
	assert.NotNil(t, a.categoryView.Chart())
	assert.NotNil(t, a.flowView.Chart())
	assert.Equal(t, testNow, a.lastUpdated)

	view := ansi.Strip(a.View())
	assert.Contains(t, view, "Rp 1.500.000")
	assert.Contains(t, view, "Expenses by Category")
}

func TestFailedLoadChangesNothing(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1500000")}
	a := loaded(t, newTestApp(t, b), b)
	before := a.summary
	updatedAt := a.lastUpdated

	b.fetchErr = errors.New("budget endpoint: 500")
	cmd := a.loadDashboardData(true)
	require.NotNil(t, cmd)
	require.True(t, a.loading)

	gen := a.tracker.Begin() // a later manual refresh, delivered first
	a, _ = update(t, a, loadDashboardCmd(b, gen)())

	assert.Same(t, before, a.summary, "regions must not change on failure")
	assert.Equal(t, updatedAt, a.lastUpdated)
	assert.False(t, a.loading)

	n, ok := a.notifier.Current()
	require.True(t, ok)
	assert.Equal(t, dashboard.SeverityError, n.Severity)
}

func TestStaleLoadDoesNotOverwriteNewer(t *testing.T) {
	b := &fakeBackend{}
	a := newTestApp(t, b)

	older := a.firstGen
	a.loadDashboardData(true)
	newer := older + 1

	a, _ = update(t, a, DashboardLoadedMsg{Gen: newer, Snapshot: sampleSnapshot("2000000")})
	a, _ = update(t, a, DashboardLoadedMsg{Gen: older, Snapshot: sampleSnapshot("1000000")})

	require.NotNil(t, a.summary)
	assert.Equal(t, "2000000", a.summary.TotalBalance.String())
	assert.False(t, a.loading)
}

func TestLoadingStaysWhileNewerLoadPending(t *testing.T) {
	b := &fakeBackend{}
	a := newTestApp(t, b)
	a.loadDashboardData(true) // newer generation still in flight

	a, _ = update(t, a, DashboardLoadedMsg{Gen: a.firstGen, Snapshot: sampleSnapshot("1")})
	assert.True(t, a.loading)
	assert.NotNil(t, a.summary, "first result still applies")
}

func TestStaleFailureAfterNewerSuccessIsSilent(t *testing.T) {
	b := &fakeBackend{}
	a := newTestApp(t, b)
	a.loadDashboardData(false)

	a, _ = update(t, a, DashboardLoadedMsg{Gen: a.firstGen + 1, Snapshot: sampleSnapshot("1")})
	a, cmd := update(t, a, DashboardLoadedMsg{Gen: a.firstGen, Err: errors.New("timeout")})
	assert.Nil(t, cmd)
	_, ok := a.notifier.Current()
	assert.False(t, ok)
}

func TestChartReRenderDestroysPriorOnce(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1")}
	a := loaded(t, newTestApp(t, b), b)
	first := a.categoryView.Chart()
	require.NotNil(t, first)

	gen := a.tracker.Begin()
	a, _ = update(t, a, loadDashboardCmd(b, gen)())

	assert.Equal(t, 1, a.categoryView.DestroyCount())
	assert.Equal(t, 1, a.flowView.DestroyCount())
	assert.True(t, first.Destroyed())
	assert.NotSame(t, first, a.categoryView.Chart())
}

func TestEmptyDataShowsPlaceholders(t *testing.T) {
	snap := sampleSnapshot("0")
	snap.Summary.ExpenseByCategory = nil
	snap.Summary.DailyFlow = nil
	snap.Budget = model.BudgetStatus{}
	snap.Transactions = nil
	b := &fakeBackend{snapshot: snap}
	a := loaded(t, newTestApp(t, b), b)

	assert.Nil(t, a.categoryView.Chart())
	assert.Nil(t, a.flowView.Chart())
	assert.Contains(t, ansi.Strip(a.View()), "No expenses recorded this month")

	a, _ = update(t, a, keyMsg("b"))
	assert.Contains(t, ansi.Strip(a.View()), "No budgets set for this month")

	a, _ = update(t, a, keyMsg("t"))
	assert.Contains(t, ansi.Strip(a.View()), "No transactions yet")
}

func TestBudgetTabClampsBar(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1")}
	a := loaded(t, newTestApp(t, b), b)
	a, _ = update(t, a, keyMsg("b"))

	view := ansi.Strip(a.View())
	assert.Contains(t, view, "150%")
	assert.Contains(t, view, "Over Budget")
}

func TestUntrustedTextIsSanitized(t *testing.T) {
	snap := sampleSnapshot("1")
	snap.Transactions[0].Merchant = "Evil\x1b[31mRed\nShop"
	b := &fakeBackend{snapshot: snap}
	a := loaded(t, newTestApp(t, b), b)
	a, _ = update(t, a, keyMsg("t"))

	out := a.renderTransactionList(100)
	assert.NotContains(t, out, "\x1b[31mRed")
	assert.Contains(t, ansi.Strip(out), "EvilRed Shop")
}

func TestNotificationReplacementAndTimers(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1")}
	a := loaded(t, newTestApp(t, b), b)

	a, _ = update(t, a, SyncDoneMsg{Result: &model.SyncResult{SyncedCount: 3, Success: true}})
	first, ok := a.notifier.Current()
	require.True(t, ok)
	assert.Equal(t, dashboard.SeveritySuccess, first.Severity)
	assert.Contains(t, first.Message, "3 transactions")

	a, _ = update(t, a, ExportDoneMsg{Month: "2026-03", Err: errors.New("boom")})
	second, ok := a.notifier.Current()
	require.True(t, ok)
	assert.Equal(t, dashboard.SeverityError, second.Severity)

	// The first notification's timer fires: the second stays.
	a, _ = update(t, a, notifyExpireMsg{id: first.ID})
	cur, ok := a.notifier.Current()
	require.True(t, ok)
	assert.Equal(t, second.ID, cur.ID)

	// Its own timer hides it.
	a, _ = update(t, a, notifyExpireMsg{id: second.ID})
	_, ok = a.notifier.Current()
	assert.False(t, ok)
}

func TestSyncWithoutSuccessShowsBackendMessage(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1")}
	a := loaded(t, newTestApp(t, b), b)

	a, _ = update(t, a, SyncDoneMsg{Result: &model.SyncResult{Message: "Google Sheets service not initialized"}})
	n, ok := a.notifier.Current()
	require.True(t, ok)
	assert.Equal(t, dashboard.SeverityWarning, n.Severity)
	assert.Equal(t, "Google Sheets service not initialized", n.Message)
	assert.NotContains(t, n.Message, "synced")
}

func TestActionsIgnoredUntilFirstLoad(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1")}
	a := newTestApp(t, b)
	require.False(t, a.loaded)

	for _, k := range []string{"a", "S", "e"} {
		var cmd tea.Cmd
		a, cmd = update(t, a, keyMsg(k))
		assert.Nil(t, cmd, "key %q", k)
	}
	assert.Nil(t, a.form)
	assert.Empty(t, b.exported)

	view := ansi.Strip(a.View())
	assert.Contains(t, view, "Loading dashboard")
	assert.NotContains(t, view, "Amount")

	a = loaded(t, a, b)
	a, _ = update(t, a, keyMsg("a"))
	assert.NotNil(t, a.form)
}

func TestNewAppStampsLastUpdated(t *testing.T) {
	a := newTestApp(t, &fakeBackend{})
	assert.Equal(t, testNow, a.lastUpdated)
}

func TestSyncAndExportLeaveRegionsAlone(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1")}
	a := loaded(t, newTestApp(t, b), b)
	before := a.summary
	issued := a.tracker

	a, _ = update(t, a, SyncDoneMsg{Err: errors.New("sheets down")})
	a, _ = update(t, a, ExportDoneMsg{Month: "2026-03", Result: &model.ActionResult{Success: true}})

	assert.Same(t, before, a.summary)
	assert.Equal(t, issued, a.tracker, "no reload is started")
}

func TestExportUsesCurrentMonth(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1")}
	a := loaded(t, newTestApp(t, b), b)

	_, cmd := update(t, a, keyMsg("e"))
	require.NotNil(t, cmd)
	msg := cmd()
	done, ok := msg.(ExportDoneMsg)
	require.True(t, ok)
	assert.Equal(t, "2026-03", done.Month)
	assert.Equal(t, []string{"2026-03"}, b.exported)
}

func TestInvalidAmountNeverPosts(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1")}
	a := loaded(t, newTestApp(t, b), b)

	in := dashboard.TransactionInput{Amount: "abc", Type: "expense", Merchant: "Shop"}
	a.submitTransaction(in)

	assert.Empty(t, b.created)
	assert.False(t, a.submitting)
	require.NotNil(t, a.form, "form reopens")
	assert.Equal(t, "abc", a.txVals.Amount)
	assert.Equal(t, "Shop", a.txVals.Merchant)

	n, ok := a.notifier.Current()
	require.True(t, ok)
	assert.Equal(t, dashboard.SeverityError, n.Severity)
}

func TestAddTransactionSuccessReloadsSilently(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1")}
	a := loaded(t, newTestApp(t, b), b)

	in := dashboard.TransactionInput{Amount: "25000", Type: "income", Merchant: "Salary", Description: "March"}
	cmd := a.submitTransaction(in)
	require.NotNil(t, cmd)
	assert.True(t, a.submitting)

	tx, err := dashboard.BuildTransaction(in, a.cfg.General.DefaultAccountID, testNow)
	require.NoError(t, err)
	saved := createTransactionCmd(b, tx, in)()
	require.Len(t, b.created, 1)
	assert.Equal(t, testNow, b.created[0].Timestamp)
	assert.Equal(t, config.DefaultConfig().General.DefaultAccountID, b.created[0].AccountID)

	before := a.tracker
	a, cmd = update(t, a, saved)
	require.NotNil(t, cmd)
	assert.False(t, a.submitting)
	assert.Nil(t, a.form, "form closed and reset")
	assert.False(t, a.loading, "reload is silent")
	assert.NotEqual(t, before, a.tracker, "a reload generation was started")

	n, ok := a.notifier.Current()
	require.True(t, ok)
	assert.Equal(t, dashboard.SeveritySuccess, n.Severity)

	// Next open starts blank.
	a, _ = update(t, a, keyMsg("a"))
	require.NotNil(t, a.txVals)
	assert.Empty(t, a.txVals.Amount)
	assert.Equal(t, "expense", a.txVals.Type)
}

func TestAddTransactionFailureReopensWithValues(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1"), createErr: errors.New("500")}
	a := loaded(t, newTestApp(t, b), b)

	in := dashboard.TransactionInput{Amount: "10", Type: "expense", Merchant: "Cafe", Description: "coffee"}
	a.submitTransaction(in)
	tx, _ := dashboard.BuildTransaction(in, 1, testNow)
	a, _ = update(t, a, createTransactionCmd(b, tx, in)())

	require.NotNil(t, a.form)
	assert.Equal(t, "10", a.txVals.Amount)
	assert.Equal(t, "Cafe", a.txVals.Merchant)
	assert.Equal(t, "coffee", a.txVals.Description)
	n, _ := a.notifier.Current()
	assert.Equal(t, dashboard.SeverityError, n.Severity)
}

func TestFormOpensAndCancels(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1")}
	a := loaded(t, newTestApp(t, b), b)

	a, _ = update(t, a, keyMsg("a"))
	require.NotNil(t, a.form)
	assert.Contains(t, ansi.Strip(a.View()), "Amount")

	a, _ = update(t, a, keyMsg("esc"))
	assert.Nil(t, a.form)
	assert.Empty(t, b.created)
}

func TestTabKeysAndHelp(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1")}
	a := loaded(t, newTestApp(t, b), b)

	a, _ = update(t, a, keyMsg("t"))
	assert.Equal(t, 2, a.activeTab)
	a, _ = update(t, a, keyMsg("1"))
	assert.Equal(t, 0, a.activeTab)
	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, a.activeTab)

	a, _ = update(t, a, keyMsg("?"))
	assert.True(t, a.showHelp)
	assert.Contains(t, ansi.Strip(a.View()), "Keyboard Shortcuts")
	a, _ = update(t, a, keyMsg("x"))
	assert.False(t, a.showHelp)
}

func TestTooNarrow(t *testing.T) {
	a := NewApp(Options{Backend: &fakeBackend{}, Config: config.DefaultConfig()})
	a, _ = update(t, a, tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.True(t, strings.Contains(a.View(), "Terminal too narrow"))
}

func TestRefreshTickStartsSilentLoad(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1")}
	a := loaded(t, newTestApp(t, b), b)
	applied := a.tracker.Applied()

	a, cmd := update(t, a, refreshTickMsg{})
	require.NotNil(t, cmd)
	assert.False(t, a.loading)
	assert.False(t, a.tracker.IsLatest(applied))
}

func TestLoadConfigOrDefaultKeepsEnvOnCorruptFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("FINBOARD_API_URL", "http://finance.lan:8000")
	t.Setenv("FINBOARD_ACCOUNT_ID", "9")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "finboard"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "finboard", "config.toml"), []byte("[api\nbase_url = "), 0o600))

	_, err := config.Load()
	require.Error(t, err)

	cfg := LoadConfigOrDefault()
	assert.Equal(t, "http://finance.lan:8000", cfg.API.BaseURL)
	assert.Equal(t, int64(9), cfg.General.DefaultAccountID)
	assert.Equal(t, config.DefaultConfig().General.Currency, cfg.General.Currency)
}

func TestStatusBarShowsBackendName(t *testing.T) {
	b := &fakeBackend{snapshot: sampleSnapshot("1")}
	a := NewApp(Options{
		Backend:     b,
		BackendName: "finance.lan:8000",
		Config:      config.DefaultConfig(),
		Now:         func() time.Time { return testNow },
	})
	a, _ = update(t, a, tea.WindowSizeMsg{Width: 160, Height: 45})
	a = loaded(t, a, b)

	assert.Contains(t, ansi.Strip(a.View()), "finance.lan:8000")
}

// Package tui provides the interactive Bubble Tea dashboard for finboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/finboard/internal/cli"
	"github.com/theirongolddev/finboard/internal/config"
	"github.com/theirongolddev/finboard/internal/dashboard"
	"github.com/theirongolddev/finboard/internal/logging"
	"github.com/theirongolddev/finboard/internal/model"
	"github.com/theirongolddev/finboard/internal/tui/components"
	"github.com/theirongolddev/finboard/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// Backend is the part of the finance API the dashboard talks to.
type Backend interface {
	FetchSnapshot(ctx context.Context, limit int) (*model.Snapshot, error)
	CreateTransaction(ctx context.Context, tx model.NewTransaction) (*model.ActionResult, error)
	SyncToSheets(ctx context.Context) (*model.SyncResult, error)
	ExportMonthly(ctx context.Context, month string) (*model.ActionResult, error)
}

// Options carries everything the dashboard needs from its host.
type Options struct {
	Backend Backend
	Config  config.Config
	Logger  *logrus.Logger
	// BackendName labels the status bar, usually the backend host.
	BackendName string
	// Now overrides the clock in tests.
	Now func() time.Time
}

// DashboardLoadedMsg is sent when a snapshot fetch for a load generation ends.
type DashboardLoadedMsg struct {
	Gen      uint64
	Snapshot *model.Snapshot
	Err      error
}

// TransactionSavedMsg reports the outcome of posting the add form.
type TransactionSavedMsg struct {
	Input  dashboard.TransactionInput
	Result *model.ActionResult
	Err    error
}

// SyncDoneMsg reports the outcome of a sheets sync.
type SyncDoneMsg struct {
	Result *model.SyncResult
	Err    error
}

// ExportDoneMsg reports the outcome of a monthly export.
type ExportDoneMsg struct {
	Month  string
	Result *model.ActionResult
	Err    error
}

type refreshTickMsg struct{}

type clockTickMsg struct{}

type notifyExpireMsg struct{ id uint64 }

// App is the root Bubble Tea model.
type App struct {
	backend     Backend
	backendName string
	cfg         config.Config
	log         *logrus.Logger
	money       cli.Money
	now         func() time.Time

	// Regions, replaced together when a snapshot is applied
	summary      *model.DashboardSummary
	budget       *model.BudgetStatus
	transactions []model.Transaction
	cards        []components.Metric
	categoryView *components.Canvas
	flowView     *components.Canvas

	// Load state
	tracker     dashboard.LoadTracker
	firstGen    uint64
	loading     bool
	loaded      bool
	lastUpdated time.Time
	nextRefresh time.Time

	refreshInterval time.Duration
	notifyDuration  time.Duration
	notifier        dashboard.Notifier

	// Add-transaction modal
	form       *huh.Form
	txVals     *transactionValues
	submitting bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	spinner   spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// LoadConfigOrDefault loads config, returning defaults on error so the TUI
// can always start even if the config file is corrupted.
// Environment overrides still apply on the fallback path.
func LoadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.WithEnv(config.DefaultConfig())
	}
	return cfg
}

// NewApp creates the dashboard model and stamps the initial load generation.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	a := App{
		backend:         opts.Backend,
		backendName:     opts.BackendName,
		cfg:             opts.Config,
		log:             log,
		money:           cli.NewMoney(opts.Config.General.Locale, opts.Config.General.Currency),
		now:             now,
		categoryView:    components.NewCanvas("expense-by-category"),
		flowView:        components.NewCanvas("daily-flow"),
		refreshInterval: opts.Config.RefreshInterval(),
		notifyDuration:  opts.Config.NotificationDuration(),
		spinner:         sp,
	}
	a.firstGen = a.tracker.Begin()
	a.loading = true
	a.lastUpdated = now()
	a.nextRefresh = a.lastUpdated.Add(a.refreshInterval)
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDashboardCmd(a.backend, a.firstGen),
		a.spinner.Tick,
		refreshTickCmd(a.refreshInterval),
		clockTickCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth())
		}
		return a, nil

	case DashboardLoadedMsg:
		return a.handleLoaded(msg)

	case TransactionSavedMsg:
		return a.handleTransactionSaved(msg)

	case SyncDoneMsg:
		return a.handleSyncDone(msg)

	case ExportDoneMsg:
		return a.handleExportDone(msg)

	case notifyExpireMsg:
		a.notifier.Expire(msg.id)
		return a, nil

	case refreshTickMsg:
		a.nextRefresh = a.now().Add(a.refreshInterval)
		cmd := tea.Batch(a.loadDashboardData(false), refreshTickCmd(a.refreshInterval))
		return a, cmd

	case clockTickMsg:
		return a, clockTickCmd()

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.MouseMsg:
		if a.form != nil || a.showHelp || !a.loaded {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.form != nil {
			if msg.String() == "esc" {
				a.closeForm()
				return a, nil
			}
			return a.updateForm(msg)
		}
		return a.handleKey(msg)
	}

	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "a", "S", "e":
		// The loading card hides the form and banners until the first result.
		if !a.loaded {
			return a, nil
		}
	}

	switch key {
	case "r":
		cmd := a.loadDashboardData(true)
		return a, cmd
	case "a":
		if a.submitting {
			return a, nil
		}
		cmd := a.openForm(dashboard.NewTransactionInput())
		return a, cmd
	case "S":
		return a, syncCmd(a.backend)
	case "e":
		return a, exportCmd(a.backend, dashboard.CurrentMonth(a.now()))
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	case "1", "2", "3":
		a.activeTab = int(key[0] - '1')
	default:
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

// notify replaces the banner and schedules this notification's own expiry.
func (a *App) notify(sev dashboard.Severity, title, message string) tea.Cmd {
	id := a.notifier.Show(sev, title, message, a.now())
	return tea.Tick(a.notifyDuration, func(time.Time) tea.Msg {
		return notifyExpireMsg{id: id}
	})
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  finboard needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ finboard"))
	b.WriteString(subtitleStyle.Render(" · Personal Finance"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Loading dashboard..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o b t", "Jump to tab"},
			{"1 2 3", "Jump to tab"},
			{"← →", "Previous / Next tab"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"a", "Add transaction"},
			{"r", "Refresh now"},
			{"S", "Sync to Google Sheets"},
			{"e", "Export this month's report"},
			{"Esc", "Close form"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-6s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Auto-refresh every %s · press any key to close",
		components.FormatCountdown(a.refreshInterval))))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		LastUpdated: a.lastUpdated,
		Refreshing:  a.loading || a.submitting,
		NextRefresh: a.nextRefresh.Sub(a.now()),
		Backend:     a.backendName,
	})
	if n, ok := a.notifier.Current(); ok {
		statusBar = components.RenderBanner(n, w) + "\n" + statusBar
	}

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderOverviewTab(cw)
	case 1:
		content = a.renderBudgetTab(cw)
	case 2:
		content = a.renderActivityTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func refreshTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return clockTickMsg{}
	})
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}

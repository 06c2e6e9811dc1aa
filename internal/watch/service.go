// Package watch provides the headless watcher: it polls the finance backend
// on a schedule, keeps the latest compact snapshot, records change events
// and serves them over a small HTTP API.
package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/theirongolddev/finboard/internal/dashboard"
	"github.com/theirongolddev/finboard/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Fetcher loads one dashboard snapshot.
type Fetcher interface {
	FetchSnapshot(ctx context.Context, limit int) (*model.Snapshot, error)
}

// Config controls the watcher runtime behavior.
type Config struct {
	Backend      string // shown in status, informational only
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	FetchTimeout time.Duration
}

// Snapshot is the compact dashboard state used in status and event payloads.
type Snapshot struct {
	At               time.Time       `json:"at"`
	TotalBalance     decimal.Decimal `json:"total_balance"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
	MonthlyExpenses  decimal.Decimal `json:"monthly_expenses"`
	MonthlySavings   decimal.Decimal `json:"monthly_savings"`
	BudgetPercentage float64         `json:"budget_percentage"`
	AlertCount       int             `json:"alert_count"`
}

// Delta captures the change between two consecutive snapshots.
type Delta struct {
	TotalBalance     decimal.Decimal `json:"total_balance"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
	MonthlyExpenses  decimal.Decimal `json:"monthly_expenses"`
	MonthlySavings   decimal.Decimal `json:"monthly_savings"`
	BudgetPercentage float64         `json:"budget_percentage"`
	AlertCount       int             `json:"alert_count"`
}

func (d Delta) isZero() bool {
	return d.TotalBalance.IsZero() &&
		d.MonthlyIncome.IsZero() &&
		d.MonthlyExpenses.IsZero() &&
		d.MonthlySavings.IsZero() &&
		d.BudgetPercentage == 0 &&
		d.AlertCount == 0
}

// Event types.
const (
	EventSnapshot = "snapshot"
	EventDelta    = "delta"
)

// Event is recorded whenever the snapshot changes.
type Event struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
	NewAlerts []string  `json:"new_alerts,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Backend         string    `json:"backend,omitempty"`
	Generation      uint64    `json:"generation"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
}

// Service polls the backend and exposes the watcher HTTP API.
type Service struct {
	cfg     Config
	fetcher Fetcher
	log     *logrus.Logger
	now     func() time.Time

	mu          sync.RWMutex
	tracker     dashboard.LoadTracker
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextSeq     int64
	events      []Event
	alerts      map[string]struct{}
}

// New returns a watcher with defaults filled in.
func New(cfg Config, fetcher Fetcher, log *logrus.Logger) *Service {
	if cfg.Interval < 10*time.Second {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if log == nil {
		log = logrus.New()
	}

	return &Service{
		cfg:       cfg,
		fetcher:   fetcher,
		log:       log,
		now:       time.Now,
		startedAt: time.Now(),
		alerts:    make(map[string]struct{}),
	}
}

// Schedule is the cron spec for the poll interval.
func (s *Service) Schedule() string {
	return "@every " + s.cfg.Interval.String()
}

// Run starts the HTTP endpoints and the poll schedule until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	cronLog := cron.PrintfLogger(s.log)
	c := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := c.AddFunc(s.Schedule(), func() { s.pollOnce(ctx) }); err != nil {
		return fmt.Errorf("watch schedule %q: %w", s.Schedule(), err)
	}
	c.Start()
	s.log.WithFields(logrus.Fields{"addr": s.cfg.Addr, "schedule": s.Schedule()}).Info("watcher started")

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		runErr = fmt.Errorf("watch http server: %w", err)
	}

	<-c.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// pollOnce fetches one snapshot under a new load generation. A result is
// applied only if no newer poll has already landed.
func (s *Service) pollOnce(ctx context.Context) {
	s.mu.Lock()
	gen := s.tracker.Begin()
	s.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()
	snap, err := s.fetcher.FetchSnapshot(fetchCtx, model.RecentTransactionLimit)

	now := s.now()
	entry := s.log.WithField("generation", gen)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pollCount++
	s.lastPollAt = now

	if err != nil || snap == nil {
		if gen <= s.tracker.Applied() {
			return
		}
		if err == nil {
			err = errors.New("empty snapshot")
		}
		s.lastError = err.Error()
		entry.WithError(err).Error("watch poll failed")
		return
	}

	if !s.tracker.Accept(gen) {
		entry.Debug("discarding stale snapshot")
		return
	}
	s.lastError = ""

	compact := snapshotFrom(snap, now)
	newAlerts := s.trackAlerts(snap.Budget.Alerts, entry)

	prev, prevExists := s.snapshot, s.hasSnapshot
	s.snapshot = compact
	s.hasSnapshot = true

	switch {
	case !prevExists:
		s.appendEvent(EventSnapshot, now, compact, Delta{}, newAlerts)
	default:
		if delta := diffSnapshots(prev, compact); !delta.isZero() || len(newAlerts) > 0 {
			s.appendEvent(EventDelta, now, compact, delta, newAlerts)
		}
	}
}

// trackAlerts logs budget alerts not present in the previous poll and returns
// their messages. An alert that clears and comes back is reported again.
func (s *Service) trackAlerts(alerts []model.BudgetAlert, entry *logrus.Entry) []string {
	current := make(map[string]struct{}, len(alerts))
	var fresh []string
	for _, al := range alerts {
		key := al.Type + "|" + al.Category
		current[key] = struct{}{}
		if _, seen := s.alerts[key]; seen {
			continue
		}
		fresh = append(fresh, al.Message)
		entry.WithFields(logrus.Fields{
			"alert":      al.Type,
			"category":   al.Category,
			"percentage": al.Percentage,
		}).Warn(al.Message)
	}
	s.alerts = current
	return fresh
}

func snapshotFrom(snap *model.Snapshot, at time.Time) Snapshot {
	return Snapshot{
		At:               at,
		TotalBalance:     snap.Summary.TotalBalance,
		MonthlyIncome:    snap.Summary.MonthlyIncome,
		MonthlyExpenses:  snap.Summary.MonthlyExpenses,
		MonthlySavings:   snap.Summary.MonthlySavings,
		BudgetPercentage: snap.Budget.OverallPercentage,
		AlertCount:       len(snap.Budget.Alerts),
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		TotalBalance:     curr.TotalBalance.Sub(prev.TotalBalance),
		MonthlyIncome:    curr.MonthlyIncome.Sub(prev.MonthlyIncome),
		MonthlyExpenses:  curr.MonthlyExpenses.Sub(prev.MonthlyExpenses),
		MonthlySavings:   curr.MonthlySavings.Sub(prev.MonthlySavings),
		BudgetPercentage: curr.BudgetPercentage - prev.BudgetPercentage,
		AlertCount:       curr.AlertCount - prev.AlertCount,
	}
}

// appendEvent records an event in the ring buffer. Callers hold s.mu.
func (s *Service) appendEvent(typ string, at time.Time, snap Snapshot, delta Delta, alerts []string) {
	s.nextSeq++
	s.events = append(s.events, Event{
		ID:        uuid.NewString(),
		Seq:       s.nextSeq,
		Type:      typ,
		Timestamp: at,
		Snapshot:  snap,
		Delta:     delta,
		NewAlerts: alerts,
	})
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Backend:         s.cfg.Backend,
		Generation:      s.tracker.Applied(),
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
	}
}

// Router returns the watcher HTTP routes.
func (s *Service) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/v1/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/v1/events/{id}", s.handleEvent).Methods(http.MethodGet)
	return r
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

// handleEvents lists buffered events, optionally only those after ?since=<seq>.
func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	var since int64
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			http.Error(w, "since must be a non-negative integer", http.StatusBadRequest)
			return
		}
		since = n
	}

	s.mu.RLock()
	events := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if ev.Seq > since {
			events = append(events, ev)
		}
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.events {
		if ev.ID == id {
			writeJSON(w, http.StatusOK, ev)
			return
		}
	}
	http.Error(w, "event not found", http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

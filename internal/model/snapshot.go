package model

import (
	"encoding/json"
	"time"
)

// RecentTransactionLimit is how many transactions the dashboard feed shows.
const RecentTransactionLimit = 5

// Snapshot groups the three view-models fetched together in one refresh cycle.
// A Snapshot is only ever built when all three fetches succeeded.
type Snapshot struct {
	Summary      DashboardSummary
	Budget       BudgetStatus
	Transactions []Transaction
	FetchedAt    time.Time
}

// ActionResult is the generic response envelope of backend mutations.
type ActionResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// SyncResult is the data payload of a sheets sync. Success and Message are
// copied from the envelope: the backend answers 200 with success=false when
// the sheets service is not configured.
type SyncResult struct {
	SyncedCount int    `json:"synced_count"`
	FailedCount int    `json:"failed_count"`
	Success     bool   `json:"-"`
	Message     string `json:"-"`
}

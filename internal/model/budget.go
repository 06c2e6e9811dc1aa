package model

import "github.com/shopspring/decimal"

// BudgetState is the spend-vs-limit classification the backend assigns.
type BudgetState string

// Known budget states. Anything else is rendered as neutral.
const (
	BudgetOnTrack    BudgetState = "on_track"
	BudgetNearLimit  BudgetState = "near_limit"
	BudgetOverBudget BudgetState = "over_budget"
)

// Label returns a human-readable label for the state.
func (s BudgetState) Label() string {
	switch s {
	case BudgetOnTrack:
		return "On Track"
	case BudgetNearLimit:
		return "Near Limit"
	case BudgetOverBudget:
		return "Over Budget"
	default:
		return "Unknown"
	}
}

// BudgetStatus is the current month's budget tracking.
type BudgetStatus struct {
	Month             string           `json:"month"`
	TotalBudget       decimal.Decimal  `json:"total_budget"`
	TotalSpent        decimal.Decimal  `json:"total_spent"`
	TotalRemaining    decimal.Decimal  `json:"total_remaining"`
	OverallPercentage float64          `json:"overall_percentage"`
	BudgetCount       int              `json:"budget_count"`
	Budgets           []CategoryBudget `json:"budgets"`
	Alerts            []BudgetAlert    `json:"alerts"`
}

// CategoryBudget is the spend-vs-limit state of one category.
type CategoryBudget struct {
	ID             int64           `json:"id"`
	Category       string          `json:"category"`
	AmountSpent    decimal.Decimal `json:"amount_spent"`
	BudgetLimit    decimal.Decimal `json:"budget_limit"`
	Remaining      decimal.Decimal `json:"remaining"`
	PercentageUsed float64         `json:"percentage_used"`
	Status         BudgetState     `json:"status"`
}

// BudgetAlert is raised by the backend for near-limit and over-budget categories.
type BudgetAlert struct {
	Type       string          `json:"type"`
	Category   string          `json:"category"`
	Message    string          `json:"message"`
	Percentage float64         `json:"percentage"`
	AmountOver decimal.Decimal `json:"amount_over"`
}

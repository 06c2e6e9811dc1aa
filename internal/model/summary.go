// Package model defines the view-models the dashboard renders from the finance API.
package model

import "github.com/shopspring/decimal"

// DashboardSummary is the aggregate financial snapshot for the current month.
type DashboardSummary struct {
	TotalBalance      decimal.Decimal   `json:"total_balance"`
	MonthlyIncome     decimal.Decimal   `json:"monthly_income"`
	MonthlyExpenses   decimal.Decimal   `json:"monthly_expenses"`
	MonthlySavings    decimal.Decimal   `json:"monthly_savings"`
	AccountBalances   []AccountBalance  `json:"account_balances"`
	ExpenseByCategory []CategoryExpense `json:"expense_by_category"`
	DailyFlow         []DailyFlow       `json:"daily_flow"`
}

// AccountBalance is the current balance of one active account.
type AccountBalance struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	Type    string          `json:"type"`
}

// CategoryExpense is the month-to-date spend for one category.
type CategoryExpense struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// DailyFlow holds income and expenses for a single calendar day.
// Date is kept as the backend's YYYY-MM-DD string.
type DailyFlow struct {
	Date     string          `json:"date"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// TotalExpenses sums the category breakdown.
func (s DashboardSummary) TotalExpenses() decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.ExpenseByCategory {
		total = total.Add(c.Amount)
	}
	return total
}

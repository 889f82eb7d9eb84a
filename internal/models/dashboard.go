package models

import "github.com/shopspring/decimal"

// BalanceSummary is the all-time income, expense and net balance of a user.
type BalanceSummary struct {
	TotalIncome    decimal.Decimal `json:"totalIncome"`
	TotalExpense   decimal.Decimal `json:"totalExpense"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
}

// MonthlySummary holds one calendar month of a yearly income/expense breakdown.
type MonthlySummary struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// CategorySpending is one slice of the spending breakdown.
// Value is the whole-number share of total spending.
type CategorySpending struct {
	Label  string          `json:"label"`
	Value  int64           `json:"value"`
	Color  string          `json:"color"`
	Amount decimal.Decimal `json:"amount"`
}

type SpendingBreakdown struct {
	TotalSpending decimal.Decimal    `json:"totalSpending"`
	Categories    []CategorySpending `json:"categories"`
}

// TrendPoint is the cumulative balance after the last transaction of a month.
// Month is zero-based (January = 0).
type TrendPoint struct {
	Month   int             `json:"month"`
	Balance decimal.Decimal `json:"balance"`
}

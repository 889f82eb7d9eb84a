// Package analytics derives the dashboard views (balance, monthly summary, recent activity,
// spending breakdown, balance trend) from an in-memory snapshot of one user's transactions.
//
// Every function here is pure. Inputs are never modified, so the same slice may be passed to
// several aggregations, or to the same one twice, with identical results.
package analytics

import (
	"slices"

	"finance-assistant/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultRecentLimit is the number of transactions returned when the caller does not ask for a count.
const DefaultRecentLimit = 5

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var hundred = decimal.NewFromInt(100)

// DateRange is an inclusive calendar window.
type DateRange struct {
	Start models.Date
	End   models.Date
}

// IsEmpty is true for an inverted range, which matches no date.
func (r DateRange) IsEmpty() bool {
	return r.Start.After(r.End)
}

func (r DateRange) Contains(d models.Date) bool {
	return d.Between(r.Start, r.End)
}

// Balance totals income and expenses over every transaction.
func Balance(txns []models.Transaction) models.BalanceSummary {
	income := decimal.Zero
	expense := decimal.Zero

	for i := range txns {
		switch txns[i].Type {
		case models.TransactionTypeIncome:
			income = income.Add(txns[i].Amount)
		case models.TransactionTypeExpense:
			expense = expense.Add(txns[i].Amount)
		}
	}

	return models.BalanceSummary{
		TotalIncome:    income,
		TotalExpense:   expense,
		CurrentBalance: income.Sub(expense),
	}
}

// MonthlySummary returns exactly twelve entries, January first, for transactions dated in year.
func MonthlySummary(txns []models.Transaction, year int) []models.MonthlySummary {
	summary := make([]models.MonthlySummary, len(monthLabels))
	for i, label := range monthLabels {
		summary[i] = models.MonthlySummary{
			Month:   label,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
	}

	for i := range txns {
		t := &txns[i]
		if t.TransactionDate.Year() != year {
			continue
		}

		month := &summary[t.TransactionDate.Month()-1]
		switch t.Type {
		case models.TransactionTypeIncome:
			month.Income = month.Income.Add(t.Amount)
		case models.TransactionTypeExpense:
			month.Expense = month.Expense.Add(t.Amount)
		}
	}

	return summary
}

// RecentTransactions returns at most limit transactions, newest first.
// Transactions sharing a date keep their relative input order.
func RecentTransactions(txns []models.Transaction, limit int) []models.Transaction {
	if limit <= 0 || len(txns) == 0 {
		return []models.Transaction{}
	}

	sorted := slices.Clone(txns)
	slices.SortStableFunc(sorted, func(a, b models.Transaction) int {
		return b.TransactionDate.Compare(a.TransactionDate.Time)
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// SpendingByCategory groups expenses by category name.
// A nil window disables date filtering. Categories appear in the order they are first seen in
// txns, and that ordinal also picks the category color.
func SpendingByCategory(txns []models.Transaction, window *DateRange) models.SpendingBreakdown {
	breakdown := models.SpendingBreakdown{
		TotalSpending: decimal.Zero,
		Categories:    []models.CategorySpending{},
	}
	if window != nil && window.IsEmpty() {
		return breakdown
	}

	var order []string
	totals := make(map[string]decimal.Decimal)

	for i := range txns {
		t := &txns[i]
		if !t.IsExpense() {
			continue
		}
		if window != nil && !window.Contains(t.TransactionDate) {
			continue
		}

		name := t.CategoryName()
		current, seen := totals[name]
		if !seen {
			order = append(order, name)
			current = decimal.Zero
		}
		totals[name] = current.Add(t.Amount)
		breakdown.TotalSpending = breakdown.TotalSpending.Add(t.Amount)
	}

	for i, name := range order {
		breakdown.Categories = append(breakdown.Categories, models.CategorySpending{
			Label:  name,
			Value:  Percentage(totals[name], breakdown.TotalSpending),
			Color:  CategoryColor(i),
			Amount: totals[name],
		})
	}

	return breakdown
}

// Percentage returns part/total as a whole percentage. The ratio is first rounded half-up to four
// decimal places, then the percentage is rounded half-up to an integer. A zero total yields 0.
func Percentage(part, total decimal.Decimal) int64 {
	if total.IsZero() {
		return 0
	}
	return part.DivRound(total, 4).Mul(hundred).Round(0).IntPart()
}

// FinancialTrends walks the transactions inside window in date order and records the running
// balance after each one, keyed by zero-based month. A later transaction in an already seen month
// overwrites that month's balance in place, so points stay in first-encounter order.
func FinancialTrends(txns []models.Transaction, window DateRange) []models.TrendPoint {
	points := []models.TrendPoint{}
	if window.IsEmpty() {
		return points
	}

	inRange := make([]*models.Transaction, 0, len(txns))
	for i := range txns {
		if window.Contains(txns[i].TransactionDate) {
			inRange = append(inRange, &txns[i])
		}
	}

	slices.SortStableFunc(inRange, func(a, b *models.Transaction) int {
		return a.TransactionDate.Compare(b.TransactionDate.Time)
	})

	positions := make(map[int]int)
	running := decimal.Zero

	for _, t := range inRange {
		running = running.Add(t.SignedAmount())
		month := int(t.TransactionDate.Month()) - 1

		if pos, ok := positions[month]; ok {
			points[pos].Balance = running
			continue
		}

		positions[month] = len(points)
		points = append(points, models.TrendPoint{Month: month, Balance: running})
	}

	return points
}

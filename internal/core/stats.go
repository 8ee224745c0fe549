package core

import (
	"math"
	"sort"
	"strings"
	"time"
)

type (
	// CategoryShare is an expense total for one category together with
	// its share of all expenses in the grouped set.
	CategoryShare struct {
		Name    string  `json:"name"`
		Amount  float64 `json:"amount"`
		Percent float64 `json:"percent"`
	}

	CategoryStat struct {
		Count float64 `json:"count"` // accumulated quantity, not line items
		Value float64 `json:"value"`
	}

	ProductTotal struct {
		Quantity float64 `json:"quantity"`
		Value    float64 `json:"value"`
	}

	// ProductStats aggregates the products attached to transactions
	// inside a date range.
	ProductStats struct {
		TotalProducts int                     `json:"totalProducts"`
		TotalValue    float64                 `json:"totalValue"`
		Categories    map[string]CategoryStat `json:"categories"`
		TopProducts   map[string]ProductTotal `json:"topProducts"`
	}
)

// TotalBalance sums all account balances, credit accounts included.
func TotalBalance(accounts []Account) float64 {
	var total float64
	for _, a := range accounts {
		total += a.Balance
	}
	return total
}

// MonthlyIncome sums income amounts whose date starts with the given
// YYYY-MM prefix. Matching is a plain string prefix test, not calendar
// arithmetic.
func MonthlyIncome(transactions []Transaction, month string) float64 {
	var total float64
	for _, t := range transactions {
		if t.Type == Income && strings.HasPrefix(t.Date, month) {
			total += t.Amount
		}
	}
	return total
}

// MonthlyExpense sums absolute expense amounts for the given YYYY-MM
// prefix. Expenses may be stored with either sign.
func MonthlyExpense(transactions []Transaction, month string) float64 {
	var total float64
	for _, t := range transactions {
		if t.Type == Expense && strings.HasPrefix(t.Date, month) {
			total += math.Abs(t.Amount)
		}
	}
	return total
}

// BudgetUsage returns spent/limit as a percentage. The value is NOT
// clamped: an overspent budget reads above 100. A zero limit yields 0
// rather than dividing.
func BudgetUsage(b Budget) float64 {
	if b.Limit == 0 {
		return 0
	}
	return b.Spent / b.Limit * 100
}

// BarWidth clamps a percentage to [0, 100] for rendering. Displayed
// numbers stay unclamped; only the visual bar saturates.
func BarWidth(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// GoalProgress returns currentAmount/targetAmount as a percentage,
// unclamped. A zero target yields 0.
func GoalProgress(g Goal) float64 {
	if g.TargetAmount == 0 {
		return 0
	}
	return g.CurrentAmount / g.TargetAmount * 100
}

// GoalRemaining returns the amount still missing toward the target.
func GoalRemaining(g Goal) float64 {
	return g.TargetAmount - g.CurrentAmount
}

// DaysUntilDeadline returns the ceiling of the whole days between now
// and the deadline (midnight UTC). A result of zero or less means the
// goal is overdue; exactly zero is already overdue.
func DaysUntilDeadline(deadline string, now time.Time) int {
	t, err := time.Parse("2006-01-02", deadline)
	if err != nil {
		return 0
	}
	diff := t.Sub(now)
	return int(math.Ceil(diff.Hours() / 24))
}

// CategoryBreakdown groups expense transactions by category, summing
// absolute amounts. Each share is the category total over all grouped
// expenses. The result is sorted by amount, largest first.
func CategoryBreakdown(transactions []Transaction) []CategoryShare {
	totals := make(map[string]float64)
	var grand float64
	for _, t := range transactions {
		if t.Type != Expense {
			continue
		}
		amount := math.Abs(t.Amount)
		totals[t.Category] += amount
		grand += amount
	}

	shares := make([]CategoryShare, 0, len(totals))
	for name, amount := range totals {
		share := CategoryShare{Name: name, Amount: amount}
		if grand > 0 {
			share.Percent = amount / grand * 100
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount != shares[j].Amount {
			return shares[i].Amount > shares[j].Amount
		}
		return shares[i].Name < shares[j].Name
	})
	return shares
}

// ProductsByPeriod flattens the products attached to transactions whose
// date falls inside [start, end]. Bounds are inclusive and compared as
// ISO date strings.
func ProductsByPeriod(transactions []Transaction, start, end string) []Product {
	var products []Product
	for _, t := range transactions {
		if t.Date < start || t.Date > end || len(t.Products) == 0 {
			continue
		}
		products = append(products, t.Products...)
	}
	return products
}

// ComputeProductStats aggregates product purchases inside [start, end].
// TotalProducts counts line items; per-category counts accumulate
// quantities so 1.5 kg of produce counts as 1.5.
func ComputeProductStats(transactions []Transaction, start, end string) ProductStats {
	products := ProductsByPeriod(transactions, start, end)

	stats := ProductStats{
		TotalProducts: len(products),
		Categories:    make(map[string]CategoryStat),
		TopProducts:   make(map[string]ProductTotal),
	}

	for _, p := range products {
		value := p.Price * p.Quantity
		stats.TotalValue += value

		cat := stats.Categories[p.Category]
		cat.Count += p.Quantity
		cat.Value += value
		stats.Categories[p.Category] = cat

		top := stats.TopProducts[p.Name]
		top.Quantity += p.Quantity
		top.Value += value
		stats.TopProducts[p.Name] = top
	}

	return stats
}

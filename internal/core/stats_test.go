package core

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTotalBalance(t *testing.T) {
	accounts := []Account{
		{Name: "Conta Corrente", Kind: Checking, Balance: 5420.50},
		{Name: "Poupança", Kind: Savings, Balance: 12800.00},
		{Name: "Cartão de Crédito", Kind: Credit, Balance: -1250.30},
	}
	if got := TotalBalance(accounts); !almostEqual(got, 16970.20) {
		t.Fatalf("TotalBalance = %v, want 16970.20", got)
	}
	if got := TotalBalance(nil); got != 0 {
		t.Fatalf("TotalBalance(nil) = %v, want 0", got)
	}
}

func TestMonthlyTotals(t *testing.T) {
	transactions := []Transaction{
		{Type: Income, Amount: 4500, Date: "2024-01-15"},
		{Type: Expense, Amount: -320.50, Date: "2024-01-14"},
		{Type: Income, Amount: 999, Date: "2024-02-01"},
		{Type: Expense, Amount: -50, Date: "2023-12-31"},
	}
	if got := MonthlyIncome(transactions, "2024-01"); !almostEqual(got, 4500) {
		t.Fatalf("MonthlyIncome = %v, want 4500", got)
	}
	if got := MonthlyExpense(transactions, "2024-01"); !almostEqual(got, 320.50) {
		t.Fatalf("MonthlyExpense = %v, want 320.50", got)
	}
}

func TestMonthPrefixIsStringMatch(t *testing.T) {
	// Prefix matching is deliberately not calendar-aware.
	transactions := []Transaction{
		{Type: Income, Amount: 10, Date: "2024-10-15"},
		{Type: Income, Amount: 20, Date: "2024-11-15"},
	}
	if got := MonthlyIncome(transactions, "2024-1"); !almostEqual(got, 30) {
		t.Fatalf("MonthlyIncome with short prefix = %v, want 30", got)
	}
}

func TestBudgetUsage(t *testing.T) {
	cases := []struct {
		budget  Budget
		percent float64
		width   float64
	}{
		{Budget{Limit: 800, Spent: 415.50}, 51.9375, 51.9375},
		{Budget{Limit: 100, Spent: 150}, 150, 100},
		{Budget{Limit: 100, Spent: 0}, 0, 0},
		{Budget{Limit: 0, Spent: 50}, 0, 0},
	}
	for i, tc := range cases {
		p := BudgetUsage(tc.budget)
		if !almostEqual(p, tc.percent) {
			t.Fatalf("case %d usage = %v, want %v", i, p, tc.percent)
		}
		if w := BarWidth(p); !almostEqual(w, tc.width) {
			t.Fatalf("case %d width = %v, want %v", i, w, tc.width)
		}
	}
}

func TestGoalProgress(t *testing.T) {
	g := Goal{TargetAmount: 8000, CurrentAmount: 2400}
	if got := GoalProgress(g); !almostEqual(got, 30) {
		t.Fatalf("GoalProgress = %v, want 30", got)
	}
	if got := GoalRemaining(g); !almostEqual(got, 5600) {
		t.Fatalf("GoalRemaining = %v, want 5600", got)
	}
	over := Goal{TargetAmount: 100, CurrentAmount: 130}
	if got := GoalProgress(over); !almostEqual(got, 130) {
		t.Fatalf("GoalProgress over target = %v, want 130 (unclamped)", got)
	}
}

func TestDaysUntilDeadline(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		deadline string
		days     int
	}{
		{"2024-06-16", 1},  // partial day rounds up
		{"2024-06-20", 5},
		{"2024-06-15", 0},  // midnight already passed: overdue
		{"2024-06-10", -5}, // -4.58 days rounds toward zero via ceiling
		{"bogus", 0},
	}
	for i, tc := range cases {
		if got := DaysUntilDeadline(tc.deadline, now); got != tc.days {
			t.Fatalf("case %d days = %d, want %d", i, got, tc.days)
		}
	}
}

func TestCategoryBreakdown(t *testing.T) {
	transactions := []Transaction{
		{Type: Expense, Amount: -320.50, Category: "Alimentação", Date: "2024-01-14"},
		{Type: Expense, Amount: -95.00, Category: "Alimentação", Date: "2024-01-11"},
		{Type: Expense, Amount: -180.00, Category: "Transporte", Date: "2024-01-13"},
		{Type: Income, Amount: 4500, Category: "Renda", Date: "2024-01-15"},
	}
	shares := CategoryBreakdown(transactions)
	if len(shares) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(shares))
	}
	if shares[0].Name != "Alimentação" || !almostEqual(shares[0].Amount, 415.50) {
		t.Fatalf("first share = %+v, want Alimentação 415.50", shares[0])
	}
	total := 415.50 + 180.00
	if !almostEqual(shares[0].Percent, 415.50/total*100) {
		t.Fatalf("Alimentação percent = %v", shares[0].Percent)
	}
	if !almostEqual(shares[0].Percent+shares[1].Percent, 100) {
		t.Fatalf("shares do not add to 100: %v", shares[0].Percent+shares[1].Percent)
	}
}

func TestComputeProductStats(t *testing.T) {
	transactions := []Transaction{
		{
			Date: "2024-01-10",
			Products: []Product{
				{Name: "Tomate kg", Price: 6.80, Quantity: 1.5, Category: "Alimentação"},
				{Name: "Detergente", Price: 2.99, Quantity: 2, Category: "Casa"},
			},
		},
		{
			Date: "2024-01-20",
			Products: []Product{
				{Name: "Tomate kg", Price: 6.80, Quantity: 1, Category: "Alimentação"},
			},
		},
		{
			// Outside the range, must be ignored.
			Date: "2024-02-01",
			Products: []Product{
				{Name: "Refrigerante 2L", Price: 6.50, Quantity: 2, Category: "Alimentação"},
			},
		},
		{
			// In range but no products attached.
			Date: "2024-01-15",
		},
	}

	stats := ComputeProductStats(transactions, "2024-01-01", "2024-01-31")

	if stats.TotalProducts != 3 {
		t.Fatalf("TotalProducts = %d, want 3 line items", stats.TotalProducts)
	}
	wantValue := 6.80*1.5 + 2.99*2 + 6.80*1
	if !almostEqual(stats.TotalValue, wantValue) {
		t.Fatalf("TotalValue = %v, want %v", stats.TotalValue, wantValue)
	}

	food := stats.Categories["Alimentação"]
	if !almostEqual(food.Count, 2.5) {
		t.Fatalf("Alimentação count = %v, want 2.5 (quantity, not items)", food.Count)
	}
	if !almostEqual(food.Value, 6.80*1.5+6.80) {
		t.Fatalf("Alimentação value = %v", food.Value)
	}

	tomato := stats.TopProducts["Tomate kg"]
	if !almostEqual(tomato.Quantity, 2.5) || !almostEqual(tomato.Value, 6.80*2.5) {
		t.Fatalf("Tomate kg = %+v", tomato)
	}
}

func TestProductsByPeriodInclusiveBounds(t *testing.T) {
	transactions := []Transaction{
		{Date: "2024-01-01", Products: []Product{{Name: "a"}}},
		{Date: "2024-01-31", Products: []Product{{Name: "b"}}},
		{Date: "2023-12-31", Products: []Product{{Name: "c"}}},
	}
	got := ProductsByPeriod(transactions, "2024-01-01", "2024-01-31")
	if len(got) != 2 {
		t.Fatalf("expected both boundary dates included, got %d products", len(got))
	}
}

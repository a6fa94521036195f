package core

import (
	"sort"
	"time"
)

const (
	// TrailingMonths is the width of the dashboard trend window.
	TrailingMonths = 6
	// RecentLimit is how many expenses the dashboard lists as recent.
	RecentLimit = 5
)

// MonthTotal is one point in the trailing-months series.
type MonthTotal struct {
	Month  string `json:"month"` // e.g. "Mar 2024"
	Amount Money  `json:"amount"`
}

// DashboardSummary is the derived aggregate view over one user's expenses.
// It is computed on demand and never persisted.
type DashboardSummary struct {
	TotalThisMonth    Money              `json:"totalThisMonth"`
	CategoryBreakdown map[Category]Money `json:"categoryBreakdown"`
	MonthlyData       []MonthTotal       `json:"monthlyData"`
	RecentExpenses    []Expense          `json:"recentExpenses"`
}

// BuildDashboard computes the dashboard summary from a snapshot of one
// user's expenses and a reference time. It is pure: a month with no
// expenses yields zero totals and an empty breakdown, never an error.
//
// The trailing series has exactly TrailingMonths entries, oldest first,
// with empty months zero-filled. Recent expenses follow the canonical list
// order: date descending, ties in insertion order.
func BuildDashboard(expenses []Expense, now time.Time) DashboardSummary {
	year, month := now.Year(), int(now.Month())

	summary := DashboardSummary{
		CategoryBreakdown: make(map[Category]Money),
		MonthlyData:       make([]MonthTotal, 0, TrailingMonths),
		RecentExpenses:    []Expense{},
	}

	// One bucket per trailing month, keyed by year*12+month-1.
	buckets := make(map[int]int64, TrailingMonths)
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(TrailingMonths - 1), 0)

	for _, e := range expenses {
		if e.Date.In(year, month) {
			summary.TotalThisMonth.Cents += e.Amount.Cents
			agg := summary.CategoryBreakdown[e.Category]
			agg.Cents += e.Amount.Cents
			summary.CategoryBreakdown[e.Category] = agg
		}
		key := e.Date.Year()*12 + e.Date.Month() - 1
		if key >= first.Year()*12+int(first.Month())-1 && key <= year*12+month-1 {
			buckets[key] += e.Amount.Cents
		}
	}

	for i := 0; i < TrailingMonths; i++ {
		m := first.AddDate(0, i, 0)
		summary.MonthlyData = append(summary.MonthlyData, MonthTotal{
			Month:  m.Format("Jan 2006"),
			Amount: Money{Cents: buckets[m.Year()*12+int(m.Month())-1]},
		})
	}

	summary.RecentExpenses = Recent(expenses, RecentLimit)
	return summary
}

// Recent returns up to limit expenses in canonical order: date descending,
// ties kept in input (insertion) order.
func Recent(expenses []Expense, limit int) []Expense {
	ordered := SortByDateDesc(expenses)
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered
}

// SortByDateDesc returns a copy sorted by date descending. The sort is
// stable, so records sharing a date keep their input order.
func SortByDateDesc(expenses []Expense) []Expense {
	out := make([]Expense, len(expenses))
	copy(out, expenses)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Time.After(out[j].Date.Time)
	})
	return out
}

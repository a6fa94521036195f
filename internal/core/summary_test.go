package core

import (
	"testing"
	"time"
)

func expense(userID string, cents int64, cat Category, date Date) Expense {
	return Expense{UserID: userID, Amount: Money{Cents: cents}, Category: cat, Date: date}
}

func TestBuildDashboardEmpty(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	s := BuildDashboard(nil, now)

	if s.TotalThisMonth.Cents != 0 {
		t.Fatalf("expected zero total, got %d", s.TotalThisMonth.Cents)
	}
	if len(s.CategoryBreakdown) != 0 {
		t.Fatalf("expected empty breakdown, got %v", s.CategoryBreakdown)
	}
	if len(s.RecentExpenses) != 0 {
		t.Fatalf("expected no recent expenses, got %d", len(s.RecentExpenses))
	}
	if len(s.MonthlyData) != TrailingMonths {
		t.Fatalf("expected %d series entries, got %d", TrailingMonths, len(s.MonthlyData))
	}
	// Empty months are zero-filled, never omitted.
	for _, mt := range s.MonthlyData {
		if mt.Amount.Cents != 0 {
			t.Fatalf("month %s should be zero, got %d", mt.Month, mt.Amount.Cents)
		}
	}
	if s.MonthlyData[0].Month != "Oct 2023" || s.MonthlyData[TrailingMonths-1].Month != "Mar 2024" {
		t.Fatalf("unexpected series bounds: %s .. %s", s.MonthlyData[0].Month, s.MonthlyData[TrailingMonths-1].Month)
	}
}

func TestBuildDashboardSingleExpense(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	s := BuildDashboard([]Expense{
		expense("u1", 4250, Food, NewDate(2024, 3, 15)),
	}, now)

	if s.TotalThisMonth.Cents != 4250 {
		t.Fatalf("expected total 4250, got %d", s.TotalThisMonth.Cents)
	}
	if got := s.CategoryBreakdown[Food].Cents; got != 4250 {
		t.Fatalf("expected food breakdown 4250, got %d", got)
	}
	if len(s.CategoryBreakdown) != 1 {
		t.Fatalf("breakdown should only list categories present, got %v", s.CategoryBreakdown)
	}
	if got := s.MonthlyData[TrailingMonths-1].Amount.Cents; got != 4250 {
		t.Fatalf("expected current month series entry 4250, got %d", got)
	}
	if len(s.RecentExpenses) != 1 {
		t.Fatalf("expected one recent expense, got %d", len(s.RecentExpenses))
	}
}

func TestBuildDashboardWindowAndBreakdown(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	expenses := []Expense{
		expense("u1", 1000, Food, NewDate(2024, 6, 1)),
		expense("u1", 2000, Travel, NewDate(2024, 6, 5)),
		expense("u1", 1500, Food, NewDate(2024, 6, 9)),
		expense("u1", 9000, Rent, NewDate(2024, 5, 1)),  // previous month
		expense("u1", 500, Other, NewDate(2024, 1, 2)),  // first month in window
		expense("u1", 700, Other, NewDate(2023, 12, 31)), // outside window
	}
	s := BuildDashboard(expenses, now)

	if s.TotalThisMonth.Cents != 4500 {
		t.Fatalf("expected this-month total 4500, got %d", s.TotalThisMonth.Cents)
	}
	if got := s.CategoryBreakdown[Food].Cents; got != 2500 {
		t.Fatalf("expected food 2500, got %d", got)
	}
	if got := s.CategoryBreakdown[Travel].Cents; got != 2000 {
		t.Fatalf("expected travel 2000, got %d", got)
	}
	if _, ok := s.CategoryBreakdown[Rent]; ok {
		t.Fatalf("breakdown must cover the current month only")
	}

	wantSeries := []struct {
		label string
		cents int64
	}{
		{"Jan 2024", 500},
		{"Feb 2024", 0},
		{"Mar 2024", 0},
		{"Apr 2024", 0},
		{"May 2024", 9000},
		{"Jun 2024", 4500},
	}
	for i, want := range wantSeries {
		got := s.MonthlyData[i]
		if got.Month != want.label || got.Amount.Cents != want.cents {
			t.Fatalf("series[%d]: expected %s=%d, got %s=%d", i, want.label, want.cents, got.Month, got.Amount.Cents)
		}
	}
}

func TestBuildDashboardRecentOrder(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	var expenses []Expense
	for day := 1; day <= 7; day++ {
		expenses = append(expenses, expense("u1", int64(day*100), Food, NewDate(2024, 6, day)))
	}
	// Two records on the same date keep insertion order.
	expenses = append(expenses,
		expense("u1", 800, Travel, NewDate(2024, 6, 7)),
	)

	s := BuildDashboard(expenses, now)
	if len(s.RecentExpenses) != RecentLimit {
		t.Fatalf("expected %d recent expenses, got %d", RecentLimit, len(s.RecentExpenses))
	}
	if s.RecentExpenses[0].Amount.Cents != 700 {
		t.Fatalf("expected newest-date first, got %d", s.RecentExpenses[0].Amount.Cents)
	}
	if s.RecentExpenses[1].Amount.Cents != 800 {
		t.Fatalf("expected same-date tie in insertion order, got %d", s.RecentExpenses[1].Amount.Cents)
	}
}

func TestSortByDateDescLeavesInputIntact(t *testing.T) {
	in := []Expense{
		expense("u1", 100, Food, NewDate(2024, 1, 1)),
		expense("u1", 200, Food, NewDate(2024, 2, 1)),
	}
	out := SortByDateDesc(in)
	if in[0].Amount.Cents != 100 {
		t.Fatalf("input slice was mutated")
	}
	if out[0].Amount.Cents != 200 {
		t.Fatalf("expected newest first, got %d", out[0].Amount.Cents)
	}
}

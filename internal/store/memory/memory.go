// Package memory is the in-memory expense store, used by tests and as the
// default backend when no database is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintracker/internal/core"
	"fintracker/internal/store"
)

// Store keeps expenses in insertion order behind a mutex. Each operation
// touches at most one record, so the mutex gives single-record atomicity.
type Store struct {
	mu    sync.Mutex
	items []core.Expense
	now   func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

// NewWithClock fixes the timestamp source, for tests.
func NewWithClock(now func() time.Time) *Store {
	return &Store{now: now}
}

// Add implements store.ExpenseWriter.
func (s *Store) Add(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.ID = uuid.NewString()
	e.CreatedAt = s.now().UTC()
	e.UpdatedAt = time.Time{}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return e, nil
}

// List implements store.ExpenseLister.
func (s *Store) List(_ context.Context, userID string, f store.Filter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]core.Expense, 0)
	for _, e := range s.items {
		if e.UserID != userID {
			continue
		}
		if !f.IsZero() && !e.Date.In(f.Year, f.Month) {
			continue
		}
		matched = append(matched, e)
	}
	// items is insertion ordered, so the stable sort yields the canonical
	// date-descending order with insertion-order ties.
	return core.SortByDateDesc(matched), nil
}

// Update implements store.ExpenseUpdater.
func (s *Store) Update(_ context.Context, userID, id string, p store.Patch) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id || s.items[i].UserID != userID {
			continue
		}
		updated := s.items[i]
		if p.Amount != nil {
			amount, err := core.ParseMoney(*p.Amount)
			if err != nil {
				return core.Expense{}, err
			}
			updated.Amount = amount
		}
		if p.Category != nil {
			updated.Category = *p.Category
		}
		if p.Description != nil {
			updated.Description = *p.Description
		}
		if p.Date != nil {
			updated.Date = *p.Date
		}
		if err := updated.Validate(); err != nil {
			return core.Expense{}, err
		}
		updated.UpdatedAt = s.now().UTC()
		s.items[i] = updated
		return updated, nil
	}
	return core.Expense{}, store.ErrNotFound
}

// Remove implements store.ExpenseRemover.
func (s *Store) Remove(_ context.Context, userID, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id || s.items[i].UserID != userID {
			continue
		}
		removed := s.items[i]
		s.items = append(s.items[:i], s.items[i+1:]...)
		return removed, nil
	}
	return core.Expense{}, store.ErrNotFound
}

// Len reports the number of stored records, for tests.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

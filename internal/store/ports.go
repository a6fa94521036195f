// Package store defines the expense store contract shared by the in-memory
// and SQLite implementations. Business logic depends only on these ports;
// the concrete implementation is chosen by the backend factory.
package store

import (
	"context"
	"errors"

	"fintracker/internal/core"
)

// ErrNotFound is returned by Update and Remove when no record has the
// given id for the given user. A record owned by someone else is
// indistinguishable from a missing one.
var ErrNotFound = errors.New("expense not found")

// Filter narrows a listing to one calendar month. The zero value means no
// filtering beyond the user scope.
type Filter struct {
	Month int // 1-12
	Year  int
}

// IsZero reports whether the filter selects everything.
func (f Filter) IsZero() bool {
	return f.Month == 0 && f.Year == 0
}

// Patch carries the mutable fields of an update. Nil fields are left
// untouched. Amount arrives as the raw decimal string and is re-parsed by
// the store, so a malformed amount is a validation failure, never a silent
// zero.
type Patch struct {
	Amount      *string
	Category    *core.Category
	Description *string
	Date        *core.Date
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Amount == nil && p.Category == nil && p.Description == nil && p.Date == nil
}

// Ports for expense persistence. Listing order is canonical across
// implementations: date descending, ties in insertion order.
type (
	ExpenseWriter interface {
		// Add validates the record, assigns its id, stamps CreatedAt and
		// returns the stored copy.
		Add(ctx context.Context, e core.Expense) (core.Expense, error)
	}

	ExpenseLister interface {
		// List returns the user's expenses, optionally narrowed to one
		// calendar month.
		List(ctx context.Context, userID string, f Filter) ([]core.Expense, error)
	}

	ExpenseUpdater interface {
		// Update applies the patch, stamps UpdatedAt and returns the
		// updated record. ErrNotFound when the user has no record with
		// that id.
		Update(ctx context.Context, userID, id string, p Patch) (core.Expense, error)
	}

	ExpenseRemover interface {
		// Remove deletes the record and returns its last state.
		// ErrNotFound when the user has no record with that id.
		Remove(ctx context.Context, userID, id string) (core.Expense, error)
	}
)

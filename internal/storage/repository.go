// Package storage is the SQLite-backed expense store. It satisfies the
// same ports as the in-memory store; selection happens in the backend
// factory, never in business logic.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintracker/internal/core"
	"fintracker/internal/store"
)

const (
	dateLayout  = "2006-01-02"
	stampLayout = time.RFC3339Nano
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Add implements store.ExpenseWriter.
func (r *SQLiteRepository) Add(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = time.Time{}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, amount_cents, category, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Amount.Cents, string(e.Category), e.Description,
		e.Date.Format(dateLayout), e.CreatedAt.Format(stampLayout),
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"user_id", e.UserID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)

	return e, nil
}

// List implements store.ExpenseLister. ISO dates compare lexicographically,
// so the month window is two string bounds.
func (r *SQLiteRepository) List(ctx context.Context, userID string, f store.Filter) ([]core.Expense, error) {
	query := `SELECT id, user_id, amount_cents, category, description, date, created_at, updated_at
	          FROM expenses WHERE user_id = ?`
	args := []any{userID}

	if !f.IsZero() {
		first := time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		query += ` AND date >= ? AND date <= ?`
		args = append(args, first.Format(dateLayout), last.Format(dateLayout))
	}
	query += ` ORDER BY date DESC, rowid ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]core.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// Update implements store.ExpenseUpdater. Read, patch and write run inside
// one transaction so the record update stays atomic.
func (r *SQLiteRepository) Update(ctx context.Context, userID, id string, p store.Patch) (core.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, user_id, amount_cents, category, description, date, created_at, updated_at
		 FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, store.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, err
	}

	if p.Amount != nil {
		amount, err := core.ParseMoney(*p.Amount)
		if err != nil {
			return core.Expense{}, err
		}
		e.Amount = amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE expenses SET amount_cents = ?, category = ?, description = ?, date = ?, updated_at = ?
		 WHERE id = ?`,
		e.Amount.Cents, string(e.Category), e.Description,
		e.Date.Format(dateLayout), e.UpdatedAt.Format(stampLayout), id,
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Expense{}, fmt.Errorf("commit update: %w", err)
	}

	slog.InfoContext(ctx, "Expense updated", "id", id, "user_id", e.UserID)
	return e, nil
}

// Remove implements store.ExpenseRemover.
func (r *SQLiteRepository) Remove(ctx context.Context, userID, id string) (core.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin remove: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, user_id, amount_cents, category, description, date, created_at, updated_at
		 FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, store.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return core.Expense{}, fmt.Errorf("delete expense: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Expense{}, fmt.Errorf("commit remove: %w", err)
	}

	slog.InfoContext(ctx, "Expense removed", "id", id, "user_id", e.UserID)
	return e, nil
}

// RecordEvent appends one row to the mutation audit trail. Used by the
// worker that consumes expense change events.
func (r *SQLiteRepository) RecordEvent(ctx context.Context, expenseID, userID, eventType string, occurredAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expense_events (expense_id, user_id, event_type, occurred_at, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		expenseID, userID, eventType,
		occurredAt.UTC().Format(stampLayout), time.Now().UTC().Format(stampLayout),
	)
	if err != nil {
		return fmt.Errorf("record expense event: %w", err)
	}
	return nil
}

// EventCount reports the size of the audit trail.
func (r *SQLiteRepository) EventCount(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expense_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expense events: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e         core.Expense
		category  string
		date      string
		createdAt string
		updatedAt sql.NullString
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Amount.Cents, &category, &e.Description, &date, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, err
		}
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}

	e.Category = core.Category(category)
	if e.Date, err = core.ParseDate(date); err != nil {
		return core.Expense{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	if e.CreatedAt, err = time.Parse(stampLayout, createdAt); err != nil {
		return core.Expense{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if updatedAt.Valid && updatedAt.String != "" {
		if e.UpdatedAt, err = time.Parse(stampLayout, updatedAt.String); err != nil {
			return core.Expense{}, fmt.Errorf("parse updated_at %q: %w", updatedAt.String, err)
		}
	}
	return e, nil
}

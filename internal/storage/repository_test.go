package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintracker/internal/core"
	"fintracker/internal/store"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "fintracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newExpense(userID, amount string, cat core.Category, date core.Date) core.Expense {
	m, _ := core.ParseMoney(amount)
	return core.Expense{UserID: userID, Amount: m, Category: cat, Description: "test", Date: date}
}

func TestAddAndListRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	in := newExpense("Sarthak_Pawnar_03", "42.50", core.Food, core.NewDate(2024, 3, 15))
	stored, err := repo.Add(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())

	listed, err := repo.List(ctx, "Sarthak_Pawnar_03", store.Filter{Month: 3, Year: 2024})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	got := listed[0]
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, in.UserID, got.UserID)
	assert.Equal(t, int64(4250), got.Amount.Cents)
	assert.Equal(t, core.Food, got.Category)
	assert.Equal(t, "test", got.Description)
	assert.True(t, got.Date.In(2024, 3))
	assert.True(t, got.UpdatedAt.IsZero())
}

func TestAddRejectsInvalid(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Add(ctx, newExpense("", "10", core.Food, core.NewDate(2024, 3, 15)))
	assert.ErrorIs(t, err, core.ErrMissingUserID)

	_, err = repo.Add(ctx, newExpense("u1", "10", "gadgets", core.NewDate(2024, 3, 15)))
	assert.ErrorIs(t, err, core.ErrUnknownCategory)

	listed, err := repo.List(ctx, "u1", store.Filter{})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestListMonthWindowAndOrder(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	dates := []core.Date{
		core.NewDate(2024, 2, 29), // leap-day boundary, outside March
		core.NewDate(2024, 3, 1),
		core.NewDate(2024, 3, 31),
		core.NewDate(2024, 3, 31), // same date, later insert
		core.NewDate(2024, 4, 1),
	}
	amounts := []string{"1", "2", "3", "4", "5"}
	for i, d := range dates {
		_, err := repo.Add(ctx, newExpense("u1", amounts[i], core.Other, d))
		require.NoError(t, err)
	}

	march, err := repo.List(ctx, "u1", store.Filter{Month: 3, Year: 2024})
	require.NoError(t, err)
	require.Len(t, march, 3)
	assert.Equal(t, int64(300), march[0].Amount.Cents) // Mar 31, inserted first
	assert.Equal(t, int64(400), march[1].Amount.Cents) // Mar 31, inserted second
	assert.Equal(t, int64(200), march[2].Amount.Cents) // Mar 1

	all, err := repo.List(ctx, "u1", store.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, int64(500), all[0].Amount.Cents) // Apr 1 first, date descending
}

func TestUpdateReparsesAmount(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	stored, err := repo.Add(ctx, newExpense("u1", "10", core.Food, core.NewDate(2024, 3, 1)))
	require.NoError(t, err)

	amount := "99.99"
	desc := "dinner"
	updated, err := repo.Update(ctx, "u1", stored.ID, store.Patch{Amount: &amount, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, int64(9999), updated.Amount.Cents)
	assert.Equal(t, "dinner", updated.Description)
	assert.False(t, updated.UpdatedAt.IsZero())

	bad := "12,34,56"
	_, err = repo.Update(ctx, "u1", stored.ID, store.Patch{Amount: &bad})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	// Rejected update leaves the stored record untouched.
	listed, err := repo.List(ctx, "u1", store.Filter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(9999), listed[0].Amount.Cents)

	_, err = repo.Update(ctx, "u1", "missing", store.Patch{Amount: &amount})
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Another user's id behaves like a missing record.
	_, err = repo.Update(ctx, "u2", stored.ID, store.Patch{Amount: &amount})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemoveIdempotence(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	stored, err := repo.Add(ctx, newExpense("u1", "10", core.Food, core.NewDate(2024, 3, 1)))
	require.NoError(t, err)

	_, err = repo.Remove(ctx, "u2", stored.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	removed, err := repo.Remove(ctx, "u1", stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", removed.UserID)

	_, err = repo.Remove(ctx, "u1", stored.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordEvent(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.RecordEvent(ctx, "exp-1", "u1", "created", time.Now()))
	require.NoError(t, repo.RecordEvent(ctx, "exp-1", "u1", "deleted", time.Now()))

	n, err := repo.EventCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintracker/internal/amqp"
	"fintracker/internal/core"
	"fintracker/internal/store"
	"fintracker/internal/store/memory"
)

type capturePublisher struct {
	events []amqp.Event
	fail   bool
}

func (p *capturePublisher) PublishEvent(_ context.Context, ev amqp.Event) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.events = append(p.events, ev)
	return nil
}

func newExpense(userID, amount string, cat core.Category, date core.Date) core.Expense {
	m, _ := core.ParseMoney(amount)
	return core.Expense{UserID: userID, Amount: m, Category: cat, Date: date}
}

func TestCreatePublishesEvent(t *testing.T) {
	pub := &capturePublisher{}
	svc := NewExpenseService(memory.New(), pub)
	ctx := context.Background()

	stored, err := svc.Create(ctx, newExpense("u1", "42.50", core.Food, core.NewDate(2024, 3, 15)))
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, amqp.EventCreated, pub.events[0].Type)
	assert.Equal(t, stored.ID, pub.events[0].ExpenseID)
	assert.Equal(t, "u1", pub.events[0].UserID)
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	svc := NewExpenseService(memory.New(), &capturePublisher{fail: true})
	ctx := context.Background()

	stored, err := svc.Create(ctx, newExpense("u1", "10", core.Food, core.NewDate(2024, 3, 15)))
	require.NoError(t, err)

	// The record is persisted even though the event was lost.
	listed, err := svc.List(ctx, "u1", store.Filter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, stored.ID, listed[0].ID)
}

func TestCreateRejectionPublishesNothing(t *testing.T) {
	pub := &capturePublisher{}
	svc := NewExpenseService(memory.New(), pub)

	_, err := svc.Create(context.Background(), newExpense("", "10", core.Food, core.NewDate(2024, 3, 15)))
	assert.Error(t, err)
	assert.Empty(t, pub.events)
}

func TestUpdateAndRemoveEvents(t *testing.T) {
	pub := &capturePublisher{}
	svc := NewExpenseService(memory.New(), pub)
	ctx := context.Background()

	stored, err := svc.Create(ctx, newExpense("u1", "10", core.Food, core.NewDate(2024, 3, 15)))
	require.NoError(t, err)

	amount := "20"
	_, err = svc.Update(ctx, "u1", stored.ID, store.Patch{Amount: &amount})
	require.NoError(t, err)

	_, err = svc.Remove(ctx, "u1", stored.ID)
	require.NoError(t, err)

	_, err = svc.Remove(ctx, "u1", stored.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.Len(t, pub.events, 3)
	assert.Equal(t, amqp.EventUpdated, pub.events[1].Type)
	assert.Equal(t, amqp.EventDeleted, pub.events[2].Type)
}

func TestDashboard(t *testing.T) {
	svc := NewExpenseService(memory.New(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, newExpense("u1", "42.50", core.Food, core.NewDate(2024, 3, 15)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, newExpense("u2", "100", core.Rent, core.NewDate(2024, 3, 1)))
	require.NoError(t, err)

	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	summary, err := svc.Dashboard(ctx, "u1", now)
	require.NoError(t, err)

	assert.Equal(t, int64(4250), summary.TotalThisMonth.Cents)
	assert.Equal(t, int64(4250), summary.CategoryBreakdown[core.Food].Cents)
	assert.Len(t, summary.CategoryBreakdown, 1)
	require.Len(t, summary.RecentExpenses, 1)
	assert.Equal(t, "u1", summary.RecentExpenses[0].UserID)
}

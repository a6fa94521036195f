// Package services orchestrates expense operations across the selected
// store and the optional event publisher.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintracker/internal/amqp"
	"fintracker/internal/core"
	"fintracker/internal/store"
)

// Store is the full expense persistence contract the service needs.
type Store interface {
	store.ExpenseWriter
	store.ExpenseLister
	store.ExpenseUpdater
	store.ExpenseRemover
}

// EventPublisher emits expense change events. Nil disables publishing.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev amqp.Event) error
}

type ExpenseService struct {
	store     Store
	publisher EventPublisher
}

func NewExpenseService(s Store, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{store: s, publisher: publisher}
}

// Create persists the expense, then publishes a created event. Publish
// failure never fails the request; the record is already stored.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	stored, err := s.store.Add(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}
	s.publish(ctx, amqp.NewEvent(amqp.EventCreated, stored.ID, stored.UserID))
	return stored, nil
}

// List returns the user's expenses, optionally narrowed to one month.
func (s *ExpenseService) List(ctx context.Context, userID string, f store.Filter) ([]core.Expense, error) {
	return s.store.List(ctx, userID, f)
}

// Update applies a partial update to the user's expense and publishes an
// updated event.
func (s *ExpenseService) Update(ctx context.Context, userID, id string, p store.Patch) (core.Expense, error) {
	updated, err := s.store.Update(ctx, userID, id, p)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, amqp.NewEvent(amqp.EventUpdated, updated.ID, updated.UserID))
	return updated, nil
}

// Remove deletes the user's expense and publishes a deleted event.
func (s *ExpenseService) Remove(ctx context.Context, userID, id string) (core.Expense, error) {
	removed, err := s.store.Remove(ctx, userID, id)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, amqp.NewEvent(amqp.EventDeleted, removed.ID, removed.UserID))
	return removed, nil
}

// Dashboard aggregates the user's full expense snapshot at the reference
// time. Aggregation is pure; this method just feeds it the snapshot.
func (s *ExpenseService) Dashboard(ctx context.Context, userID string, now time.Time) (core.DashboardSummary, error) {
	expenses, err := s.store.List(ctx, userID, store.Filter{})
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("list expenses for dashboard: %w", err)
	}
	return core.BuildDashboard(expenses, now), nil
}

func (s *ExpenseService) publish(ctx context.Context, ev amqp.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"error", err,
			"event_type", ev.Type,
			"expense_id", ev.ExpenseID)
	}
}

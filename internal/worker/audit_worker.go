// Package worker records expense change events into the audit trail.
package worker

import (
	"context"
	"fmt"
	"time"

	"fintracker/internal/amqp"
	"fintracker/internal/log"
)

// EventRecorder persists one audit row per consumed event.
type EventRecorder interface {
	RecordEvent(ctx context.Context, expenseID, userID, eventType string, occurredAt time.Time) error
}

// AuditWorker consumes expense events and appends them to the audit trail.
type AuditWorker struct {
	recorder EventRecorder
	logger   *log.Logger
}

func NewAuditWorker(recorder EventRecorder, logger *log.Logger) *AuditWorker {
	return &AuditWorker{
		recorder: recorder,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent is the AMQP consumer callback. Returning an error requeues
// the delivery.
func (w *AuditWorker) HandleEvent(ev amqp.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.recorder.RecordEvent(ctx, ev.ExpenseID, ev.UserID, string(ev.Type), ev.OccurredAt); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	w.logger.InfoContext(ctx, "Recorded expense event",
		log.FieldEventType, ev.Type,
		log.FieldExpenseID, ev.ExpenseID,
		log.FieldUserID, ev.UserID)
	return nil
}

package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType labels an expense mutation.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event is the message published after every expense mutation and
// consumed by the audit worker.
type Event struct {
	Type       EventType `json:"type"`
	ExpenseID  string    `json:"expense_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(t EventType, expenseID, userID string) Event {
	return Event{
		Type:       t,
		ExpenseID:  expenseID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("unmarshal expense event: %w", err)
	}
	switch e.Type {
	case EventCreated, EventUpdated, EventDeleted:
	default:
		return Event{}, fmt.Errorf("unknown expense event type %q", e.Type)
	}
	return e, nil
}

package amqp

import (
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	ev := NewEvent(EventCreated, "exp_1", "user_1")

	if ev.Type != EventCreated {
		t.Errorf("NewEvent() Type = %v, want %v", ev.Type, EventCreated)
	}
	if ev.ExpenseID != "exp_1" || ev.UserID != "user_1" {
		t.Errorf("NewEvent() identifiers = %v/%v, want exp_1/user_1", ev.ExpenseID, ev.UserID)
	}
	if ev.OccurredAt.IsZero() {
		t.Error("NewEvent() OccurredAt should not be zero")
	}
	if time.Since(ev.OccurredAt) > time.Second {
		t.Error("NewEvent() OccurredAt should be recent")
	}
}

func TestEventJSONRoundTrip(t *testing.T) {
	ev := Event{
		Type:       EventUpdated,
		ExpenseID:  "exp_42",
		UserID:     "Sarthak_Pawnar_03",
		OccurredAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := EventFromJSON(data)
	if err != nil {
		t.Fatalf("EventFromJSON() error = %v", err)
	}
	if parsed.Type != ev.Type || parsed.ExpenseID != ev.ExpenseID || parsed.UserID != ev.UserID {
		t.Errorf("EventFromJSON() = %+v, want %+v", parsed, ev)
	}
	if !parsed.OccurredAt.Equal(ev.OccurredAt) {
		t.Errorf("EventFromJSON() OccurredAt = %v, want %v", parsed.OccurredAt, ev.OccurredAt)
	}
}

func TestEventFromJSONRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"type":`},
		{"unknown type", `{"type":"renamed","expense_id":"e","user_id":"u"}`},
		{"empty type", `{"expense_id":"e","user_id":"u"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EventFromJSON([]byte(tt.data)); err == nil {
				t.Error("EventFromJSON() should fail")
			}
		})
	}
}

package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Food          Category = "food"
	Travel        Category = "travel"
	Rent          Category = "rent"
	Utilities     Category = "utilities"
	Entertainment Category = "entertainment"
	Healthcare    Category = "healthcare"
	Other         Category = "other"
)

type (
	Category string

	// Date is the calendar day an expense occurred, distinct from the
	// record bookkeeping timestamps.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID          string    `json:"id"`
		UserID      string    `json:"userId"`
		Amount      Money     `json:"amount"`
		Category    Category  `json:"category"`
		Description string    `json:"description"`
		Date        Date      `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt,omitzero"`
	}
)

var (
	ErrMissingUserID   = errors.New("user id is required")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownCategory = errors.New("unknown category")
	ErrMissingDate     = errors.New("date is required")
	ErrLongDescription = errors.New("description too long (max 200 characters)")
)

// Categories returns the fixed spending classification set, in display order.
func Categories() []Category {
	return []Category{Food, Travel, Rent, Utilities, Entertainment, Healthcare, Other}
}

func (c Category) Valid() bool {
	switch c {
	case Food, Travel, Rent, Utilities, Entertainment, Healthcare, Other:
		return true
	default:
		return false
	}
}

// NewDate creates a Date at UTC midnight for the given calendar day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrMissingDate
	}
	return Date{Time: t}, nil
}

func (d Date) Year() int  { return d.Time.Year() }
func (d Date) Month() int { return int(d.Time.Month()) }
func (d Date) Day() int   { return d.Time.Day() }

// In reports whether the date falls in the given calendar month.
func (d Date) In(year, month int) bool {
	return d.Time.Year() == year && int(d.Time.Month()) == month
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate rejects negative amounts. Zero is a legal recorded amount.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the fields required at the store boundary. Description
// is optional; everything else must be present and well formed.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrMissingUserID
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrUnknownCategory
	}
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	if len(e.Description) > 200 {
		return ErrLongDescription
	}
	return nil
}

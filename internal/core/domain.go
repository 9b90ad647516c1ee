package core

import (
	"strings"
	"time"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

// Field limits enforced by Validate.
const (
	MaxCategoryNameLen = 100
	MaxDescriptionLen  = 500
	// Largest storable amount: ten significant digits, two of them fractional.
	MaxAmountCents int64 = 99_999_999_99
)

type (
	// EntryType is the direction of a category or transaction. Only the
	// exact literals "income" and "expense" are recognized.
	EntryType string

	// Date is a business calendar day, normalized to UTC midnight. The
	// clock-time portion is never significant.
	Date struct {
		time.Time
	}

	// Money is an exact fixed-point amount in cents. All ledger arithmetic
	// happens on Cents; binary floating point is never involved.
	Money struct {
		Cents int64
	}

	// Category is a named classification tag of a fixed direction.
	Category struct {
		ID        int64
		Name      string
		Type      EntryType
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// Transaction is a single dated monetary event classified under a
	// category of the same direction.
	Transaction struct {
		ID          int64
		Amount      Money
		Type        EntryType
		CategoryID  int64
		Date        Date
		Description string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
)

// Valid reports whether t is one of the two recognized literals.
// Matching is case-sensitive; there are no synonyms.
func (t EntryType) Valid() bool {
	return t == Income || t == Expense
}

func (t EntryType) String() string {
	return string(t)
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its UTC calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// Equal reports whether d and other are the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Clock supplies the reference "today" used for future-date rejection.
// Injected so tests can pin the reference day.
type Clock interface {
	Today() Date
}

type systemClock struct{}

func (systemClock) Today() Date {
	return DateOf(time.Now())
}

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

type fixedClock struct {
	day Date
}

func (c fixedClock) Today() Date {
	return c.day
}

// FixedClock returns a Clock pinned to the given day.
func FixedClock(day Date) Clock {
	return fixedClock{day: day}
}

// Normalize trims insignificant whitespace from the category name.
func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
}

// Normalize trims insignificant whitespace from the description.
func (t *Transaction) Normalize() {
	t.Description = strings.TrimSpace(t.Description)
}

// Signed returns the amount with its direction applied: income counts
// positive, expense negative.
func (t Transaction) Signed() Money {
	if t.Type == Expense {
		return Money{Cents: -t.Amount.Cents}
	}
	return t.Amount
}

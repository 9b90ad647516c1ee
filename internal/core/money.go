// Package core implements the ledger business rules: entity validation,
// referential integrity policy, filtering, and exact-decimal aggregation.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountInvalid     = errors.New("amount is not a decimal number")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrAmountTooPrecise  = errors.New("amount has more than two fractional digits")
	ErrAmountTooLarge    = errors.New("amount has more than ten digits")
)

// ParseAmount converts a decimal string into exact cents. The value must be
// strictly positive, carry at most two significant fractional digits
// (trailing zeros are fine) and at most ten digits in total. Sums never pass
// through binary floating point: the decimal is shifted into integer cents.
func ParseAmount(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, ErrAmountInvalid
	}
	if d.Sign() <= 0 {
		return Money{}, ErrAmountNotPositive
	}
	if !d.Equal(d.Round(2)) {
		return Money{}, ErrAmountTooPrecise
	}
	cents := d.Shift(2).IntPart()
	if cents > MaxAmountCents {
		return Money{}, ErrAmountTooLarge
	}
	return Money{Cents: cents}, nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Decimal returns the amount as an exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two fractional digits, e.g. "499.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

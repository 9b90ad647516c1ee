package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validate checks the category's field-level rules. Every violation is
// collected; the returned error is a *ValidationError when any rule fires.
// Name uniqueness is a store-level concern and is not checked here.
func (c Category) Validate() error {
	v := &ValidationError{}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		v.add("name", CodeRequired, "name must not be empty")
	} else if utf8.RuneCountInString(name) > MaxCategoryNameLen {
		v.add("name", CodeTooLong,
			fmt.Sprintf("name must be at most %d characters", MaxCategoryNameLen))
	}
	if !c.Type.Valid() {
		v.add("type", CodeInvalid, `type must be "income" or "expense"`)
	}
	return v.orNil()
}

// Validate checks the transaction's field-level rules against the given
// reference clock. Violations are collected, never short-circuited, so a
// caller can report every bad field at once. Category existence and type
// agreement are referential checks left to the store.
func (t Transaction) Validate(clock Clock) error {
	v := &ValidationError{}
	if t.Amount.Cents <= 0 {
		v.add("amount", CodeNotPositive, "amount must be greater than zero")
	} else if t.Amount.Cents > MaxAmountCents {
		v.add("amount", CodeTooManyDigit, "amount must have at most ten digits")
	}
	if !t.Type.Valid() {
		v.add("type", CodeInvalid, `type must be "income" or "expense"`)
	}
	if t.CategoryID <= 0 {
		v.add("category_id", CodeRequired, "category_id must reference a category")
	}
	if t.Date.IsZero() {
		v.add("date", CodeRequired, "date must be a valid calendar date")
	} else if t.Date.After(clock.Today()) {
		v.add("date", CodeFutureDate, "date must not be in the future")
	}
	if utf8.RuneCountInString(strings.TrimSpace(t.Description)) > MaxDescriptionLen {
		v.add("description", CodeTooLong,
			fmt.Sprintf("description must be at most %d characters", MaxDescriptionLen))
	}
	return v.orNil()
}

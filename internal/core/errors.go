package core

import (
	"fmt"
	"strings"
)

// Field error codes reported inside ValidationError.
const (
	CodeRequired     = "required"
	CodeTooLong      = "too_long"
	CodeInvalid      = "invalid"
	CodeNotPositive  = "not_positive"
	CodeTooPrecise   = "too_precise"
	CodeTooManyDigit = "too_many_digits"
	CodeFutureDate   = "future_date"
)

// FieldError describes a single field-level rule violation.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every field violation found in one pass so
// callers can surface all of them at once.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether a violation was recorded for the given field.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

// orNil returns nil when no violations were collected, so that
// `return v.orNil()` yields a clean untyped nil error.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NotFoundError reports a missing record. Entity is "category" or
// "transaction".
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// DuplicateNameError reports a category name collision. Names collide
// case-insensitively across both entry types.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("category name %q already exists", e.Name)
}

// TypeMismatchError reports a transaction whose type disagrees with its
// category's type.
type TypeMismatchError struct {
	CategoryID      int64
	TransactionType EntryType
	CategoryType    EntryType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("transaction type %q does not match category %d type %q",
		e.TransactionType, e.CategoryID, e.CategoryType)
}

// CategoryInUseError reports a blocked category mutation. Count is the
// number of transactions still referencing the category, for UI messaging.
type CategoryInUseError struct {
	ID    int64
	Count int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category %d is referenced by %d transaction(s)", e.ID, e.Count)
}

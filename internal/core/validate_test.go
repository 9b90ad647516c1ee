package core

import (
	"errors"
	"strings"
	"testing"
)

var testClock = FixedClock(NewDate(2025, 6, 15))

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Salary", Type: Income}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		cat   Category
		field string
	}{
		{"empty name", Category{Name: "", Type: Income}, "name"},
		{"blank name", Category{Name: "   ", Type: Expense}, "name"},
		{"long name", Category{Name: strings.Repeat("x", 101), Type: Income}, "name"},
		{"bad type", Category{Name: "Rent", Type: "Income"}, "type"},
	}
	for _, tc := range cases {
		err := tc.cat.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
		if !verr.Has(tc.field) {
			t.Fatalf("%s: expected violation on %q, got %v", tc.name, tc.field, verr.Fields)
		}
	}
}

func TestCategoryNameAtBoundary(t *testing.T) {
	c := Category{Name: strings.Repeat("x", 100), Type: Expense}
	if err := c.Validate(); err != nil {
		t.Fatalf("100-char name should be valid, got %v", err)
	}
}

// Length limits count characters, not bytes, so multibyte names get the
// same 100-character budget as ASCII ones.
func TestCategoryNameLengthCountsRunes(t *testing.T) {
	c := Category{Name: strings.Repeat("é", 100), Type: Expense}
	if err := c.Validate(); err != nil {
		t.Fatalf("100-rune multibyte name should be valid, got %v", err)
	}

	c.Name = strings.Repeat("é", 101)
	var verr *ValidationError
	if err := c.Validate(); !errors.As(err, &verr) || !verr.Has("name") {
		t.Fatalf("101-rune name should fail on name, got %v", err)
	}
}

func TestDescriptionLengthCountsRunes(t *testing.T) {
	tx := Transaction{
		Amount:      Money{Cents: 100},
		Type:        Expense,
		CategoryID:  1,
		Date:        NewDate(2025, 6, 1),
		Description: strings.Repeat("€", 500),
	}
	if err := tx.Validate(testClock); err != nil {
		t.Fatalf("500-rune description should be valid, got %v", err)
	}

	tx.Description = strings.Repeat("€", 501)
	var verr *ValidationError
	if err := tx.Validate(testClock); !errors.As(err, &verr) || !verr.Has("description") {
		t.Fatalf("501-rune description should fail on description, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Amount:     Money{Cents: 1234},
		Type:       Expense,
		CategoryID: 1,
		Date:       NewDate(2025, 6, 14),
	}
	if err := good.Validate(testClock); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		tx    Transaction
		field string
		code  string
	}{
		{"zero amount",
			Transaction{Amount: Money{}, Type: Income, CategoryID: 1, Date: NewDate(2025, 1, 1)},
			"amount", CodeNotPositive},
		{"negative amount",
			Transaction{Amount: Money{Cents: -1}, Type: Income, CategoryID: 1, Date: NewDate(2025, 1, 1)},
			"amount", CodeNotPositive},
		{"oversized amount",
			Transaction{Amount: Money{Cents: MaxAmountCents + 1}, Type: Income, CategoryID: 1, Date: NewDate(2025, 1, 1)},
			"amount", CodeTooManyDigit},
		{"bad type",
			Transaction{Amount: Money{Cents: 1}, Type: "INCOME", CategoryID: 1, Date: NewDate(2025, 1, 1)},
			"type", CodeInvalid},
		{"missing category",
			Transaction{Amount: Money{Cents: 1}, Type: Income, Date: NewDate(2025, 1, 1)},
			"category_id", CodeRequired},
		{"zero date",
			Transaction{Amount: Money{Cents: 1}, Type: Income, CategoryID: 1},
			"date", CodeRequired},
		{"future date",
			Transaction{Amount: Money{Cents: 1}, Type: Income, CategoryID: 1, Date: NewDate(2025, 6, 16)},
			"date", CodeFutureDate},
		{"long description",
			Transaction{Amount: Money{Cents: 1}, Type: Income, CategoryID: 1, Date: NewDate(2025, 1, 1),
				Description: strings.Repeat("d", 501)},
			"description", CodeTooLong},
	}
	for _, tc := range cases {
		err := tc.tx.Validate(testClock)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
		found := false
		for _, f := range verr.Fields {
			if f.Field == tc.field && f.Code == tc.code {
				found = true
			}
		}
		if !found {
			t.Fatalf("%s: expected (%s,%s), got %v", tc.name, tc.field, tc.code, verr.Fields)
		}
	}
}

func TestTransactionValidateToday(t *testing.T) {
	// "Today" is allowed; only strictly-future dates are rejected.
	tx := Transaction{
		Amount:     Money{Cents: 1},
		Type:       Income,
		CategoryID: 1,
		Date:       testClock.Today(),
	}
	if err := tx.Validate(testClock); err != nil {
		t.Fatalf("today's date should be valid, got %v", err)
	}
}

func TestTransactionValidateCollectsAllViolations(t *testing.T) {
	tx := Transaction{
		Amount:      Money{},     // not positive
		Type:        "transfer",  // unknown literal
		CategoryID:  0,           // missing
		Date:        Date{},      // zero
		Description: strings.Repeat("d", 501),
	}
	err := tx.Validate(testClock)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 5 {
		t.Fatalf("expected 5 violations, got %d: %v", len(verr.Fields), verr.Fields)
	}
	for _, field := range []string{"amount", "type", "category_id", "date", "description"} {
		if !verr.Has(field) {
			t.Fatalf("expected a violation on %q", field)
		}
	}
}

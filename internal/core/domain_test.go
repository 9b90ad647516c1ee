package core

import (
	"testing"
	"time"
)

func TestEntryTypeValid(t *testing.T) {
	cases := []struct {
		in EntryType
		ok bool
	}{
		{Income, true},
		{Expense, true},
		{"INCOME", false}, // no case-insensitive matching
		{"Expense", false},
		{"transfer", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := tc.in.Valid(); got != tc.ok {
			t.Fatalf("%q: expected %v, got %v", tc.in, tc.ok, got)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2025 || int(d.Month()) != 3 || d.Day() != 9 {
		t.Fatalf("parsed wrong date: %v", d)
	}

	for _, bad := range []string{"", "2025-13-01", "2025-02-30", "09/03/2025", "not-a-date"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestDateOfNormalizesToMidnight(t *testing.T) {
	instant := time.Date(2025, 6, 15, 23, 59, 58, 0, time.UTC)
	d := DateOf(instant)
	if !d.Equal(NewDate(2025, 6, 15)) {
		t.Fatalf("expected 2025-06-15, got %v", d)
	}
	if h, m, s := d.Clock(); h != 0 || m != 0 || s != 0 {
		t.Fatalf("expected midnight, got %02d:%02d:%02d", h, m, s)
	}
}

func TestFixedClock(t *testing.T) {
	day := NewDate(2025, 1, 31)
	clock := FixedClock(day)
	if !clock.Today().Equal(day) {
		t.Fatalf("expected %v, got %v", day, clock.Today())
	}
}

func TestTransactionSigned(t *testing.T) {
	in := Transaction{Type: Income, Amount: Money{Cents: 500}}
	if in.Signed().Cents != 500 {
		t.Fatalf("income should stay positive, got %d", in.Signed().Cents)
	}
	out := Transaction{Type: Expense, Amount: Money{Cents: 500}}
	if out.Signed().Cents != -500 {
		t.Fatalf("expense should be negative, got %d", out.Signed().Cents)
	}
}

func TestNormalizeTrimsWhitespace(t *testing.T) {
	c := Category{Name: "  Rent  "}
	c.Normalize()
	if c.Name != "Rent" {
		t.Fatalf("expected trimmed name, got %q", c.Name)
	}

	tx := Transaction{Description: " groceries \n"}
	tx.Normalize()
	if tx.Description != "groceries" {
		t.Fatalf("expected trimmed description, got %q", tx.Description)
	}
}

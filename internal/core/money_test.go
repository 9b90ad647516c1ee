package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		err   error
	}{
		{"1", 100, nil},
		{"1.0", 100, nil},
		{"1.23", 123, nil},
		{"0.01", 1, nil},
		{" 2.50 ", 250, nil},
		{"5000.00", 500000, nil},
		{"1.230", 123, nil},          // trailing zero is not extra precision
		{"99999999.99", 9999999999, nil}, // ten digits, the maximum
		{"0", 0, ErrAmountNotPositive},
		{"0.00", 0, ErrAmountNotPositive},
		{"-1", 0, ErrAmountNotPositive},
		{"-0.01", 0, ErrAmountNotPositive},
		{"1.234", 0, ErrAmountTooPrecise},
		{"0.005", 0, ErrAmountTooPrecise},
		{"100000000.00", 0, ErrAmountTooLarge}, // eleven digits
		{"abc", 0, ErrAmountInvalid},
		{"1.2.3", 0, ErrAmountInvalid},
		{"", 0, ErrAmountInvalid},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.err == nil {
			if err != nil || got.Cents != tc.cents {
				t.Fatalf("%q: expected %d cents, got %d (err=%v)", tc.in, tc.cents, got.Cents, err)
			}
			continue
		}
		if !errors.Is(err, tc.err) {
			t.Fatalf("%q: expected %v, got %v", tc.in, tc.err, err)
		}
	}
}

func TestMoneyArithmeticIsExact(t *testing.T) {
	income := Money{Cents: 100000} // 1000.00
	expense := Money{Cents: 50050} // 500.50
	net := income.Sub(expense)
	if net.Cents != 49950 {
		t.Fatalf("expected 49950 cents, got %d", net.Cents)
	}
	if net.String() != "499.50" {
		t.Fatalf("expected 499.50, got %s", net.String())
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		out   string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{100, "1.00"},
		{123456, "1234.56"},
		{-50050, "-500.50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.out {
			t.Fatalf("%d cents: expected %q, got %q", tc.cents, tc.out, got)
		}
	}
}

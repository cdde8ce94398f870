package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12", "12"},
		{"1,200.50", "1200.5"},
		{"USD 12", "12"},
		{"KHR -4,100", "-4100"},
		{" -0.25 ", "-0.25"},
	}
	for _, tc := range cases {
		got, err := ParseDecimal(tc.in)
		if err != nil {
			t.Fatalf("ParseDecimal(%q): %v", tc.in, err)
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("ParseDecimal(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseDecimal_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "USD", "-", "1.2.3"} {
		if _, err := ParseDecimal(in); err == nil {
			t.Fatalf("ParseDecimal(%q) expected error", in)
		}
	}
}

func TestApplyPercentDiscount(t *testing.T) {
	amount := decimal.RequireFromString("22.5")
	if got := ApplyPercentDiscount(amount, decimal.Zero); !got.Equal(amount) {
		t.Fatalf("zero discount changed amount: %s", got)
	}
	if got := ApplyPercentDiscount(amount, decimal.NewFromInt(10)); !got.Equal(decimal.RequireFromString("20.25")) {
		t.Fatalf("10%% of 22.5: got %s", got)
	}
	if got := ApplyPercentDiscount(amount, decimal.NewFromInt(100)); !got.IsZero() {
		t.Fatalf("100%% discount: got %s", got)
	}
}

func TestIsPercent(t *testing.T) {
	if !IsPercent(decimal.Zero) || !IsPercent(decimal.NewFromInt(100)) {
		t.Fatalf("bounds must be inclusive")
	}
	if IsPercent(decimal.RequireFromString("-0.01")) || IsPercent(decimal.RequireFromString("100.01")) {
		t.Fatalf("out of range accepted")
	}
}

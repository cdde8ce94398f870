package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var decimalOneHundred = decimal.NewFromInt(100)

// ParseDecimal accepts user-formatted amounts such as "1,200.50", "USD 12" or "KHR -4,100".
// Only digits, '.' and a leading '-' survive.
func ParseDecimal(value string) (decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty decimal string")
	}
	s = strings.ReplaceAll(s, ",", "")

	// currency labels may precede the sign: "USD -12"
	var b strings.Builder
	b.Grow(len(s) + 1)
	neg := false
	seenDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			b.WriteRune(r)
		case r == '.':
			b.WriteRune(r)
		case r == '-' && !seenDigit && b.Len() == 0:
			neg = true
		}
	}
	clean := b.String()
	if clean == "" || !seenDigit {
		return decimal.Zero, fmt.Errorf("invalid decimal %q", value)
	}
	if neg {
		clean = "-" + clean
	}
	return decimal.NewFromString(clean)
}

// ApplyPercentDiscount returns amount × (1 − pct/100), unrounded.
func ApplyPercentDiscount(amount decimal.Decimal, pct decimal.Decimal) decimal.Decimal {
	if pct.IsZero() {
		return amount
	}
	return amount.Mul(decimalOneHundred.Sub(pct)).Div(decimalOneHundred)
}

// IsPercent reports 0 <= pct <= 100.
func IsPercent(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(decimalOneHundred)
}

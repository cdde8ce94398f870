package config

import (
	"github.com/shopspring/decimal"
)

var (
	defaultTaxRate      = decimal.NewFromFloat(0.10)
	defaultExchangeRate = decimal.NewFromInt(4100)
)

// TaxRate is the invoice tax fraction (INVOICE_TAX_RATE, default 0.10).
func TaxRate() decimal.Decimal {
	return decimalFromEnv("INVOICE_TAX_RATE", defaultTaxRate)
}

// ExchangeRate converts an invoice total into the secondary currency (SECONDARY_CURRENCY_RATE, default 4100).
func ExchangeRate() decimal.Decimal {
	return decimalFromEnv("SECONDARY_CURRENCY_RATE", defaultExchangeRate)
}

func SecondaryCurrencyCode() string {
	return stringFromEnv("SECONDARY_CURRENCY_CODE", "KHR")
}

// MoneyScale is the number of fractional digits persisted for monetary amounts.
func MoneyScale() int32 {
	n := intFromEnv("MONEY_SCALE", 4)
	if n < 2 || n > 8 {
		return 4
	}
	return int32(n)
}

func decimalFromEnv(key string, def decimal.Decimal) decimal.Decimal {
	v := stringFromEnv(key, "")
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return def
	}
	return d
}

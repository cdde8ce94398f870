package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoiceStockPolicy(t *testing.T) {
	t.Setenv("INVOICE_STATUS_STOCK_POLICY", "")
	assert.Equal(t, StockPolicyLenient, InvoiceStockPolicy())

	t.Setenv("INVOICE_STATUS_STOCK_POLICY", " STRICT ")
	assert.Equal(t, StockPolicyStrict, InvoiceStockPolicy())

	t.Setenv("INVOICE_STATUS_STOCK_POLICY", "whatever")
	assert.Equal(t, StockPolicyLenient, InvoiceStockPolicy())
}

func TestBoolFlags(t *testing.T) {
	t.Setenv("STOCK_PROJECTOR_STRICT", "yes")
	t.Setenv("SKIP_MIGRATIONS", "0")
	assert.True(t, StrictStockProjection())
	assert.False(t, SkipMigrations())

	t.Setenv("GO_ENV", "Production")
	assert.True(t, IsProduction())
}

func TestMoneyScale(t *testing.T) {
	t.Setenv("MONEY_SCALE", "")
	assert.Equal(t, int32(4), MoneyScale())

	t.Setenv("MONEY_SCALE", "2")
	assert.Equal(t, int32(2), MoneyScale())

	t.Setenv("MONEY_SCALE", "12")
	assert.Equal(t, int32(4), MoneyScale())

	t.Setenv("MONEY_SCALE", "abc")
	assert.Equal(t, int32(4), MoneyScale())
}

func TestPricingFromEnv(t *testing.T) {
	t.Setenv("INVOICE_TAX_RATE", "")
	t.Setenv("SECONDARY_CURRENCY_RATE", "")
	assert.True(t, TaxRate().Equal(decimal.RequireFromString("0.1")))
	assert.True(t, ExchangeRate().Equal(decimal.NewFromInt(4100)))

	t.Setenv("INVOICE_TAX_RATE", "0.07")
	assert.True(t, TaxRate().Equal(decimal.RequireFromString("0.07")))

	// invalid and negative values fall back to the defaults
	t.Setenv("INVOICE_TAX_RATE", "ten")
	t.Setenv("SECONDARY_CURRENCY_RATE", "-1")
	assert.True(t, TaxRate().Equal(decimal.RequireFromString("0.1")))
	assert.True(t, ExchangeRate().Equal(decimal.NewFromInt(4100)))

	t.Setenv("SECONDARY_CURRENCY_CODE", "")
	assert.Equal(t, "KHR", SecondaryCurrencyCode())
}

func TestDatabaseDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	assert.Equal(t, DriverMySQL, DatabaseDriver())
	t.Setenv("DB_DRIVER", "Postgres")
	assert.Equal(t, DriverPostgres, DatabaseDriver())
}

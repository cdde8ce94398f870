package config

import (
	"os"
	"strings"
)

const (
	StockPolicyStrict  = "strict"
	StockPolicyLenient = "lenient"
)

// InvoiceStockPolicy decides what a status update does when an item cannot be issued.
//
// Set via env:
// - INVOICE_STATUS_STOCK_POLICY=strict  abort the whole update with InsufficientStock
// - INVOICE_STATUS_STOCK_POLICY=lenient skip the item and report it (default)
//
// Invoice creation always behaves as strict.
func InvoiceStockPolicy() string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("INVOICE_STATUS_STOCK_POLICY")))
	if v == StockPolicyStrict {
		return StockPolicyStrict
	}
	return StockPolicyLenient
}

// StrictStockProjection turns a negative ledger projection into an error instead of clamping it to zero.
//
// Set via env:
// - STOCK_PROJECTOR_STRICT=true
func StrictStockProjection() bool {
	return boolFromEnv("STOCK_PROJECTOR_STRICT")
}

// SkipMigrations disables AutoMigrate on boot (ops runs it out of band).
func SkipMigrations() bool {
	return boolFromEnv("SKIP_MIGRATIONS")
}

func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}

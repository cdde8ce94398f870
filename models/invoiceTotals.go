package models

import (
	"bitbucket.org/mmdatafocus/stock_backend/utils"
	"github.com/shopspring/decimal"
)

type InvoiceLine struct {
	Quantity           int64
	UnitPrice          decimal.Decimal
	DiscountPercentage decimal.Decimal
}

// LineTotal is quantity x unit price x (1 - discount/100), unrounded.
func (l InvoiceLine) LineTotal() decimal.Decimal {
	gross := decimal.NewFromInt(l.Quantity).Mul(l.UnitPrice)
	return utils.ApplyPercentDiscount(gross, l.DiscountPercentage)
}

type InvoiceTotalsInput struct {
	Lines           []InvoiceLine
	ShippingCost    decimal.Decimal
	OverallDiscount decimal.Decimal
	DeductTax       bool
	TaxRate         decimal.Decimal
	ExchangeRate    decimal.Decimal
	Scale           int32
}

type InvoiceTotals struct {
	LineTotals     []decimal.Decimal
	Subtotal       decimal.Decimal
	Discounted     decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	TotalSecondary decimal.Decimal
}

// ComputeInvoiceTotals carries full precision through every step and rounds only the
// values that get persisted.
func ComputeInvoiceTotals(in InvoiceTotalsInput) InvoiceTotals {
	subtotal := decimal.Zero
	lineTotals := make([]decimal.Decimal, 0, len(in.Lines))
	for _, l := range in.Lines {
		lt := l.LineTotal()
		subtotal = subtotal.Add(lt)
		lineTotals = append(lineTotals, lt.Round(in.Scale))
	}

	discounted := utils.ApplyPercentDiscount(subtotal, in.OverallDiscount)
	tax := decimal.Zero
	if !in.DeductTax {
		tax = discounted.Mul(in.TaxRate)
	}
	total := discounted.Add(in.ShippingCost).Add(tax)
	secondary := total.Mul(in.ExchangeRate)

	return InvoiceTotals{
		LineTotals:     lineTotals,
		Subtotal:       subtotal.Round(in.Scale),
		Discounted:     discounted.Round(in.Scale),
		Tax:            tax.Round(in.Scale),
		Total:          total.Round(in.Scale),
		TotalSecondary: secondary.Round(in.Scale),
	}
}

// validateInvoiceAmounts checks the invoice-level money inputs.
func validateInvoiceAmounts(shipping decimal.Decimal, overallDiscount decimal.Decimal) error {
	if shipping.IsNegative() {
		return newValidationError("shipping_cost", "Shipping cost cannot be negative.")
	}
	if !utils.IsPercent(overallDiscount) {
		return newValidationError("overall_discount", "Overall discount must be between 0 and 100.")
	}
	return nil
}

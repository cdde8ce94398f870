package models

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

type invoiceFeatureContext struct {
	totalsInput InvoiceTotalsInput
	totals      InvoiceTotals

	status   InvoiceStatus
	items    []InvoiceItem
	ledger   []StockMovement
	nextId   int
	rejected bool
}

func (c *invoiceFeatureContext) reset() {
	*c = invoiceFeatureContext{status: InvoiceStatusDraft, nextId: 1}
}

func parseDecimalArg(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad decimal %q: %w", s, err)
	}
	return v, nil
}

func (c *invoiceFeatureContext) aTaxRateAndExchangeRate(tax, rate string) (err error) {
	if c.totalsInput.TaxRate, err = parseDecimalArg(tax); err != nil {
		return err
	}
	c.totalsInput.ExchangeRate, err = parseDecimalArg(rate)
	return err
}

func (c *invoiceFeatureContext) anInvoiceLine(qty int, price, discount string) error {
	p, err := parseDecimalArg(price)
	if err != nil {
		return err
	}
	dsc, err := parseDecimalArg(discount)
	if err != nil {
		return err
	}
	c.totalsInput.Lines = append(c.totalsInput.Lines, InvoiceLine{Quantity: int64(qty), UnitPrice: p, DiscountPercentage: dsc})
	return nil
}

func (c *invoiceFeatureContext) anOverallDiscountAndShipping(discount, shipping string) (err error) {
	if c.totalsInput.OverallDiscount, err = parseDecimalArg(discount); err != nil {
		return err
	}
	c.totalsInput.ShippingCost, err = parseDecimalArg(shipping)
	return err
}

func (c *invoiceFeatureContext) taxIsDeducted() error {
	c.totalsInput.DeductTax = true
	return nil
}

func (c *invoiceFeatureContext) theTotalsAreComputedAtScale(scale int) error {
	c.totalsInput.Scale = int32(scale)
	c.totals = ComputeInvoiceTotals(c.totalsInput)
	return nil
}

func expectDecimal(name string, got decimal.Decimal, want string) error {
	w, err := parseDecimalArg(want)
	if err != nil {
		return err
	}
	if !got.Equal(w) {
		return fmt.Errorf("expected %s %s, got %s", name, w, got)
	}
	return nil
}

func (c *invoiceFeatureContext) theSubtotalIs(v string) error {
	return expectDecimal("subtotal", c.totals.Subtotal, v)
}

func (c *invoiceFeatureContext) theDiscountedAmountIs(v string) error {
	return expectDecimal("discounted", c.totals.Discounted, v)
}

func (c *invoiceFeatureContext) theTaxIs(v string) error {
	return expectDecimal("tax", c.totals.Tax, v)
}

func (c *invoiceFeatureContext) theTotalIs(v string) error {
	return expectDecimal("total", c.totals.Total, v)
}

func (c *invoiceFeatureContext) theSecondaryTotalIs(v string) error {
	return expectDecimal("secondary total", c.totals.TotalSecondary, v)
}

func (c *invoiceFeatureContext) appendMovement(m StockMovement) {
	m.ID = c.nextId
	c.nextId++
	c.ledger = append(c.ledger, m)
}

func (c *invoiceFeatureContext) variantHasUnitsPurchased(variantId int, qty int) error {
	c.appendMovement(StockMovement{MovementType: MovementTypeIn, Reason: MovementReasonPurchase,
		Quantity: int64(qty), ProductId: 1, VariantId: &variantId})
	return nil
}

func (c *invoiceFeatureContext) anInvoiceWithItem(status string, itemId int, qty int, variantId int) error {
	c.status = InvoiceStatus(status)
	return c.anotherItem(itemId, qty, variantId)
}

func (c *invoiceFeatureContext) anotherItem(itemId int, qty int, variantId int) error {
	c.items = append(c.items, InvoiceItem{ID: itemId, InvoiceId: 1, ProductId: 1, VariantId: &variantId, Quantity: int64(qty)})
	return nil
}

// theInvoiceMovesTo applies the same plan the status command uses, against an in-memory ledger.
func (c *invoiceFeatureContext) theInvoiceMovesTo(status string) error {
	to := InvoiceStatus(status)
	if !CanTransition(c.status, to) {
		c.rejected = true
		return nil
	}
	c.rejected = false
	plan := planInvoiceStock(to, c.items, c.ledger)
	for _, it := range plan.Issue {
		itemId := it.ID
		c.appendMovement(StockMovement{MovementType: MovementTypeOut, Reason: MovementReasonInvoiceIssue,
			Quantity: it.Quantity, ProductId: it.ProductId, VariantId: it.VariantId, InvoiceItemId: &itemId})
	}
	for _, o := range plan.Release {
		reverses := o.ID
		c.appendMovement(StockMovement{MovementType: MovementTypeIn, Reason: MovementReasonInvoiceCancel,
			Quantity: o.Quantity, ProductId: o.ProductId, VariantId: o.VariantId, ReversesMovementId: &reverses})
	}
	for i := range c.ledger {
		if err := validateMovement(&c.ledger[i]); err != nil {
			return err
		}
	}
	c.status = to
	return nil
}

func (c *invoiceFeatureContext) theMoveIsAccepted() error {
	if c.rejected {
		return fmt.Errorf("expected the move to be accepted")
	}
	return nil
}

func (c *invoiceFeatureContext) theMoveIsRejected() error {
	if !c.rejected {
		return fmt.Errorf("expected the move to be rejected")
	}
	return nil
}

func (c *invoiceFeatureContext) variantProjects(variantId int, qty int) error {
	var movements []StockMovement
	for _, m := range c.ledger {
		if m.VariantId != nil && *m.VariantId == variantId {
			movements = append(movements, m)
		}
	}
	p := FoldMovements(movements)
	if p.Available != int64(qty) {
		return fmt.Errorf("expected variant %d to project %d, got %d", variantId, qty, p.Available)
	}
	return nil
}

func (c *invoiceFeatureContext) theLedgerHoldsOutMovements(n int) error {
	count := 0
	for _, m := range c.ledger {
		if m.MovementType == MovementTypeOut {
			count++
		}
	}
	if count != n {
		return fmt.Errorf("expected %d OUT movements, got %d", n, count)
	}
	return nil
}

func (c *invoiceFeatureContext) theLedgerHoldsReversals(n int) error {
	count := 0
	for _, m := range c.ledger {
		if m.ReversesMovementId != nil {
			count++
		}
	}
	if count != n {
		return fmt.Errorf("expected %d reversing movements, got %d", n, count)
	}
	return nil
}

func InitializeInvoiceScenario(ctx *godog.ScenarioContext) {
	tc := &invoiceFeatureContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// totals
	ctx.Step(`^a tax rate of "([^"]*)" and an exchange rate of "([^"]*)"$`, tc.aTaxRateAndExchangeRate)
	ctx.Step(`^an invoice line of (\d+) at "([^"]*)" with "([^"]*)" percent discount$`, tc.anInvoiceLine)
	ctx.Step(`^an overall discount of "([^"]*)" percent and shipping of "([^"]*)"$`, tc.anOverallDiscountAndShipping)
	ctx.Step(`^tax is deducted$`, tc.taxIsDeducted)
	ctx.Step(`^the totals are computed at scale (\d+)$`, tc.theTotalsAreComputedAtScale)
	ctx.Step(`^the subtotal is "([^"]*)"$`, tc.theSubtotalIs)
	ctx.Step(`^the discounted amount is "([^"]*)"$`, tc.theDiscountedAmountIs)
	ctx.Step(`^the tax is "([^"]*)"$`, tc.theTaxIs)
	ctx.Step(`^the total is "([^"]*)"$`, tc.theTotalIs)
	ctx.Step(`^the secondary currency total is "([^"]*)"$`, tc.theSecondaryTotalIs)

	// stock
	ctx.Step(`^variant (\d+) has (\d+) units purchased$`, tc.variantHasUnitsPurchased)
	ctx.Step(`^a (DRAFT|PENDING|PAID) invoice with item (\d+) of (\d+) units of variant (\d+)$`, tc.anInvoiceWithItem)
	ctx.Step(`^item (\d+) of (\d+) units of variant (\d+)$`, tc.anotherItem)
	ctx.Step(`^the invoice moves to (DRAFT|PENDING|PAID|CANCELLED)$`, tc.theInvoiceMovesTo)
	ctx.Step(`^the move is accepted$`, tc.theMoveIsAccepted)
	ctx.Step(`^the move is rejected$`, tc.theMoveIsRejected)
	ctx.Step(`^variant (\d+) projects (\d+) units$`, tc.variantProjects)
	ctx.Step(`^the ledger holds (\d+) OUT movements$`, tc.theLedgerHoldsOutMovements)
	ctx.Step(`^the ledger holds (\d+) reversing IN movements$`, tc.theLedgerHoldsReversals)
}

func TestInvoiceFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeInvoiceScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

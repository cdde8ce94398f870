package models

import (
	"errors"
	"testing"
)

func TestValidateMovement(t *testing.T) {
	valid := func() *StockMovement {
		return &StockMovement{MovementType: MovementTypeIn, Reason: MovementReasonPurchase, Quantity: 5, ProductId: 1, PurchaseId: intPtr(9)}
	}
	cases := []struct {
		name   string
		mutate func(m *StockMovement)
		ok     bool
	}{
		{"valid purchase IN", func(m *StockMovement) {}, true},
		{"valid issue OUT", func(m *StockMovement) {
			m.MovementType, m.Reason, m.PurchaseId, m.InvoiceItemId = MovementTypeOut, MovementReasonInvoiceIssue, nil, intPtr(3)
		}, true},
		{"valid reversal", func(m *StockMovement) {
			m.Reason, m.PurchaseId, m.InvoiceItemId, m.ReversesMovementId = MovementReasonInvoiceCancel, nil, intPtr(3), intPtr(44)
		}, true},
		{"zero quantity", func(m *StockMovement) { m.Quantity = 0 }, false},
		{"negative quantity", func(m *StockMovement) { m.Quantity = -1 }, false},
		{"unknown type", func(m *StockMovement) { m.MovementType = "ADJ" }, false},
		{"no product", func(m *StockMovement) { m.ProductId = 0 }, false},
		{"two causes", func(m *StockMovement) { m.InvoiceItemId = intPtr(3) }, false},
		{"reason against direction", func(m *StockMovement) { m.MovementType = MovementTypeOut }, false},
		{"OUT cannot reverse", func(m *StockMovement) {
			m.MovementType, m.Reason, m.ReversesMovementId = MovementTypeOut, MovementReasonInvoiceIssue, intPtr(1)
		}, false},
	}
	for _, tc := range cases {
		m := valid()
		tc.mutate(m)
		err := validateMovement(m)
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%s: expected an error", tc.name)
			}
			if !errors.Is(err, ErrInvalidMovement) {
				t.Fatalf("%s: expected ErrInvalidMovement, got %v", tc.name, err)
			}
		}
	}
	if err := validateMovement(nil); !errors.Is(err, ErrInvalidMovement) {
		t.Fatalf("nil movement: expected ErrInvalidMovement, got %v", err)
	}
}

func TestMovementReasonDirection(t *testing.T) {
	if MovementReasonInvoiceIssue.Direction() != MovementTypeOut {
		t.Fatalf("INVOICE_ISSUE must be an OUT")
	}
	for _, r := range []MovementReason{MovementReasonPurchase, MovementReasonInvoiceCancel, MovementReasonInvoiceDelete} {
		if r.Direction() != MovementTypeIn {
			t.Fatalf("%s must be an IN", r)
		}
	}
}

package models

import "testing"

func TestCanTransition(t *testing.T) {
	all := []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusCancelled}
	allowed := map[[2]InvoiceStatus]bool{
		{InvoiceStatusDraft, InvoiceStatusPending}:     true,
		{InvoiceStatusDraft, InvoiceStatusPaid}:        true,
		{InvoiceStatusDraft, InvoiceStatusCancelled}:   true,
		{InvoiceStatusPending, InvoiceStatusPaid}:      true,
		{InvoiceStatusPending, InvoiceStatusCancelled}: true,
		{InvoiceStatusPaid, InvoiceStatusCancelled}:    true,
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]InvoiceStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s) = %t, want %t", from, to, got, want)
			}
		}
	}
}

func TestInvoiceStatusFlags(t *testing.T) {
	if InvoiceStatusDraft.IsStockAffecting() || InvoiceStatusCancelled.IsStockAffecting() {
		t.Fatalf("DRAFT and CANCELLED must not hold stock")
	}
	if !InvoiceStatusPending.IsStockAffecting() || !InvoiceStatusPaid.IsStockAffecting() {
		t.Fatalf("PENDING and PAID must hold stock")
	}
	if IsInitialInvoiceStatus(InvoiceStatusCancelled) {
		t.Fatalf("an invoice cannot be created CANCELLED")
	}
	for _, s := range []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusPending, InvoiceStatusPaid} {
		if !IsInitialInvoiceStatus(s) {
			t.Fatalf("expected %s to be a valid initial status", s)
		}
	}
}

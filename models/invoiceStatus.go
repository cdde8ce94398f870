package models

// invoiceTransitions lists the allowed targets per status. CANCELLED is terminal;
// a PAID invoice can still be cancelled, which returns its stock.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:   {InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPending: {InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPaid:    {InvoiceStatusCancelled},
}

// IsStockAffecting reports whether items of an invoice in this status hold stock.
func (s InvoiceStatus) IsStockAffecting() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPaid
}

func CanTransition(from InvoiceStatus, to InvoiceStatus) bool {
	for _, next := range invoiceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsInitialInvoiceStatus reports whether an invoice may be created in status s.
func IsInitialInvoiceStatus(s InvoiceStatus) bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusPending || s == InvoiceStatusPaid
}

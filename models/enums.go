package models

import (
	"encoding/json"
	"errors"
	"strings"
)

func unmarshalEnum[T ~string](data []byte, values map[string]T, name string) (T, error) {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return "", errors.New(name + " must be string")
	}
	v, ok := values[strings.ToUpper(strings.TrimSpace(str))]
	if !ok {
		return "", errors.New("invalid " + name)
	}
	return v, nil
}

type MovementType string

const (
	MovementTypeIn  MovementType = "IN"
	MovementTypeOut MovementType = "OUT"
)

var movementTypes = map[string]MovementType{
	"IN":  MovementTypeIn,
	"OUT": MovementTypeOut,
}

func (t MovementType) IsValid() bool {
	_, ok := movementTypes[string(t)]
	return ok
}

// convert input to enum type
func (t *MovementType) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data, movementTypes, "movement type")
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MovementReason records which operation appended a movement.
type MovementReason string

const (
	MovementReasonPurchase      MovementReason = "PURCHASE"
	MovementReasonInvoiceIssue  MovementReason = "INVOICE_ISSUE"
	MovementReasonInvoiceCancel MovementReason = "INVOICE_CANCEL"
	MovementReasonInvoiceDelete MovementReason = "INVOICE_DELETE"
)

// Direction is the movement type implied by the reason.
func (r MovementReason) Direction() MovementType {
	if r == MovementReasonInvoiceIssue {
		return MovementTypeOut
	}
	return MovementTypeIn
}

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

var invoiceStatuses = map[string]InvoiceStatus{
	"DRAFT":     InvoiceStatusDraft,
	"PENDING":   InvoiceStatusPending,
	"PAID":      InvoiceStatusPaid,
	"CANCELLED": InvoiceStatusCancelled,
}

func (s InvoiceStatus) IsValid() bool {
	_, ok := invoiceStatuses[string(s)]
	return ok
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data, invoiceStatuses, "invoice status")
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type InvoiceType string

const (
	InvoiceTypeInvoice   InvoiceType = "INVOICE"
	InvoiceTypeQuotation InvoiceType = "QUOTATION"
)

var invoiceTypes = map[string]InvoiceType{
	"INVOICE":   InvoiceTypeInvoice,
	"QUOTATION": InvoiceTypeQuotation,
}

func (t *InvoiceType) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data, invoiceTypes, "invoice type")
	if err != nil {
		return err
	}
	*t = v
	return nil
}

type UserRole string

const (
	UserRoleAdmin UserRole = "A"
	UserRoleStaff UserRole = "S"
)

func (r UserRole) DisplayName() string {
	if r == UserRoleAdmin {
		return "Admin"
	}
	return "Staff"
}

package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidMovement   = errors.New("invalid movement")
	ErrNotFound          = errors.New("not found")
)

// ValidationError is malformed input; it is raised before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field string, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError also matches ErrValidation: an oversell is invalid input.
type InsufficientStockError struct {
	ProductId int
	VariantId int
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %d: requested %d, available %d", e.VariantId, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock || target == ErrValidation
}

type InvalidMovementError struct {
	Reason string
}

func (e *InvalidMovementError) Error() string {
	return "invalid movement: " + e.Reason
}

func (e *InvalidMovementError) Is(target error) bool {
	return target == ErrInvalidMovement
}

type NotFoundError struct {
	Resource string
	Id       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.Id)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

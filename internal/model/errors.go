package model

import (
	"errors"
	"fmt"
)

// ErrKind classifies a domain validation failure.
type ErrKind string

const (
	ErrInvalidDiscount     ErrKind = "invalid_discount"
	ErrInsufficientStock   ErrKind = "insufficient_stock"
	ErrEmptyCart           ErrKind = "empty_cart"
	ErrInvalidAmount       ErrKind = "invalid_amount"
	ErrInsufficientBalance ErrKind = "insufficient_balance"
	ErrProductNotAvailable ErrKind = "product_not_available"
	ErrInvalidPayment      ErrKind = "invalid_payment_method"
	ErrInvalidRequest      ErrKind = "invalid_request"
	ErrNotFound            ErrKind = "not_found"
)

// DomainError is a synchronous validation failure. Message always names the
// offending product, line, or amount so callers can show a specific
// corrective message instead of a bare "operation failed".
type DomainError struct {
	Kind    ErrKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Errf builds a DomainError with a formatted message.
func Errf(kind ErrKind, format string, args ...any) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the domain error kind of err, or "" if err does not wrap a
// DomainError.
func KindOf(err error) ErrKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

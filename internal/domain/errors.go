package domain

import "errors"

// Domain failure kinds. Use cases return these (possibly wrapped with
// context via fmt.Errorf("...: %w", err)); callers dispatch with errors.Is.
// Anything that does not match one of these is a storage/transport failure
// and propagates to the caller unchanged.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrPaymentNotFound = errors.New("payment not found")

	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidMethod   = errors.New("unknown payment method")

	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrCheckoutInProgress     = errors.New("checkout already in progress")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrInvalidStateTransition = errors.New("invalid order state transition")
	ErrPaymentRejected        = errors.New("payment rejected by provider")
)

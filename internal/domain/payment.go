package domain

import (
	"fmt"
	"time"
)

// PaymentMethod enumerates accepted charge methods.
type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodPaypal   PaymentMethod = "PAYPAL"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// ParsePaymentMethod validates a raw method string.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(raw); m {
	case PaymentMethodCard, PaymentMethodPaypal, PaymentMethodTransfer:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, raw)
	}
}

// Payment statuses.
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailed  = "FAILED"
)

// Payment records one attempt to charge a method against an order's total.
// Failed attempts are persisted too so the history stays auditable.
type Payment struct {
	ID           int64         `db:"id" json:"id"`
	OrderID      string        `db:"order_id" json:"order_id"`
	Amount       int64         `db:"amount" json:"amount"`
	Method       PaymentMethod `db:"method" json:"method"`
	Status       string        `db:"status" json:"status"`
	ProviderTxID string        `db:"provider_tx_id" json:"provider_tx_id,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// NewPayment builds a pending payment for an order.
func NewPayment(orderID string, amount int64, method PaymentMethod) (*Payment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	return &Payment{
		OrderID: orderID,
		Amount:  amount,
		Method:  method,
		Status:  PaymentStatusPending,
	}, nil
}

// MarkSucceeded records a successful charge with the provider's tx id.
func (p *Payment) MarkSucceeded(providerTxID string) {
	p.Status = PaymentStatusSuccess
	p.ProviderTxID = providerTxID
	p.UpdatedAt = time.Now()
}

// MarkFailed records a rejected charge.
func (p *Payment) MarkFailed() {
	p.Status = PaymentStatusFailed
	p.UpdatedAt = time.Now()
}

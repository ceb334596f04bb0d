package usecase

import (
	"context"
	"time"

	"fulfillment-service/internal/domain"
)

// EventPublisher is the slice of the broker the use cases need. Publish
// failures are logged, never surfaced to callers: events are best-effort.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderConfirmed(ctx context.Context, order *domain.Order) error
	PublishOrderCancelled(ctx context.Context, orderID, reason string) error
	PublishPaymentSucceeded(ctx context.Context, payment *domain.Payment) error
	PublishPaymentFailed(ctx context.Context, payment *domain.Payment, reason string) error
	PublishPaymentRefundRequested(ctx context.Context, payment *domain.Payment, reason string) error
}

// Locker hands out short leases keyed by aggregate id. Checkout takes one
// per customer so concurrent checkouts of the same cart cannot both pass
// the stock check.
type Locker interface {
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error
}

// PaymentProcessor charges a payment method through an external provider.
// A declined charge returns an error matching domain.ErrPaymentRejected;
// anything else is a transport problem.
type PaymentProcessor interface {
	Charge(ctx context.Context, payment *domain.Payment) (providerTxID string, err error)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/repository"
	"fulfillment-service/internal/util"

	"go.uber.org/zap"
)

// ProcessPayment charges an order's total through the external provider and
// confirms the order on success. A rejected charge is persisted as a failed
// payment and leaves the order untouched; stock release, if any, belongs to
// the cancellation flow, not here.
type ProcessPayment struct {
	orders    repository.OrderRepository
	payments  repository.PaymentRepository
	processor PaymentProcessor
	publisher EventPublisher
	logger    *zap.Logger
}

// NewProcessPayment creates the use case.
func NewProcessPayment(
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	processor PaymentProcessor,
	publisher EventPublisher,
) *ProcessPayment {
	return &ProcessPayment{
		orders:    orders,
		payments:  payments,
		processor: processor,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Execute runs the compensating-transaction protocol of the payment step.
func (uc *ProcessPayment) Execute(ctx context.Context, orderID string, method domain.PaymentMethod, amount int64) (*domain.Payment, error) {
	ctx, span := util.StartSpan(ctx, "ProcessPayment.Execute")
	defer span.End()

	util.PaymentAttemptsTotal.Inc()
	start := time.Now()
	defer func() {
		util.PaymentProcessingLatency.Observe(time.Since(start).Seconds())
	}()

	// Input validation happens before the order lookup.
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidAmount, amount)
	}
	if _, err := domain.ParsePaymentMethod(string(method)); err != nil {
		return nil, err
	}

	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	payment, err := domain.NewPayment(order.ID, amount, method)
	if err != nil {
		return nil, err
	}
	if err := uc.payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	providerTxID, chargeErr := uc.processor.Charge(ctx, payment)
	if chargeErr != nil {
		payment.MarkFailed()
		if err := uc.payments.UpdateStatus(ctx, payment); err != nil {
			uc.logger.Error("Failed to persist rejected payment",
				zap.String("order_id", order.ID),
				zap.Error(err))
		}

		util.PaymentFailedTotal.Inc()
		uc.logger.Warn("Payment rejected",
			zap.String("order_id", order.ID),
			zap.Error(chargeErr))

		if err := uc.publisher.PublishPaymentFailed(ctx, payment, chargeErr.Error()); err != nil {
			uc.logger.Error("Failed to publish PaymentFailed event", zap.Error(err))
		}

		if errors.Is(chargeErr, domain.ErrPaymentRejected) {
			return nil, chargeErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentRejected, chargeErr)
	}

	payment.MarkSucceeded(providerTxID)
	if err := uc.payments.UpdateStatus(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to persist successful payment: %w", err)
	}

	if err := order.Confirm(); err != nil {
		// Paid but no longer confirmable (e.g. cancelled by the expiry
		// sweep in between). The charge has to come back, so hand the
		// refund to the event stream instead of leaving it to operators.
		uc.logger.Error("Payment succeeded but order cannot be confirmed",
			zap.String("order_id", order.ID),
			zap.String("status", order.Status.String()),
			zap.Error(err))
		reason := fmt.Sprintf("order in state %s after successful charge", order.Status)
		if pubErr := uc.publisher.PublishPaymentRefundRequested(ctx, payment, reason); pubErr != nil {
			uc.logger.Error("Failed to publish PaymentRefundRequested event", zap.Error(pubErr))
		}
		return nil, err
	}
	if err := uc.orders.UpdateStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order confirmation: %w", err)
	}

	util.PaymentSuccessTotal.Inc()
	util.OrdersConfirmedTotal.Inc()
	uc.logger.Info("Payment processed, order confirmed",
		zap.String("order_id", order.ID),
		zap.String("tx_id", providerTxID),
		zap.Int64("amount", amount))

	if err := uc.publisher.PublishPaymentSucceeded(ctx, payment); err != nil {
		uc.logger.Error("Failed to publish PaymentSucceeded event", zap.Error(err))
	}
	if err := uc.publisher.PublishOrderConfirmed(ctx, order); err != nil {
		uc.logger.Error("Failed to publish OrderConfirmed event", zap.Error(err))
	}

	return payment, nil
}

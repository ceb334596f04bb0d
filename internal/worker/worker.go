package worker

import (
	"context"
	"errors"
	"time"

	"fulfillment-service/internal/broker"
	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/repository"
	"fulfillment-service/internal/usecase"
	"fulfillment-service/internal/util"

	"go.uber.org/zap"
)

// CompensationWorker consumes PaymentFailed events and cancels the affected
// order, releasing its stock. The event log keeps redelivered events from
// compensating twice.
type CompensationWorker struct {
	consumer    *broker.Consumer
	handler     *broker.EventHandler
	cancelOrder *usecase.CancelOrder
	events      repository.EventLog
	logger      *zap.Logger
}

// NewCompensationWorker wires the consumer to the cancellation use case.
func NewCompensationWorker(
	consumer *broker.Consumer,
	cancelOrder *usecase.CancelOrder,
	events repository.EventLog,
) *CompensationWorker {
	w := &CompensationWorker{
		consumer:    consumer,
		handler:     broker.NewEventHandler(),
		cancelOrder: cancelOrder,
		events:      events,
		logger:      util.GetLogger(),
	}
	w.handler.OnPaymentFailed(w.handlePaymentFailed)
	return w
}

// Start consumes until the context is cancelled.
func (w *CompensationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting compensation worker")
	return w.consumer.StartConsuming(ctx, w.handler.HandleMessage)
}

// Stop closes the underlying consumer.
func (w *CompensationWorker) Stop() error {
	w.logger.Info("Stopping compensation worker")
	return w.consumer.Close()
}

func (w *CompensationWorker) handlePaymentFailed(ctx context.Context, event *broker.PaymentFailedEvent) error {
	processed, err := w.events.IsProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	err = w.cancelOrder.Execute(ctx, event.OrderID, "payment failed: "+event.Reason)
	if err != nil && !errors.Is(err, domain.ErrInvalidStateTransition) {
		return err
	}
	if errors.Is(err, domain.ErrInvalidStateTransition) {
		// Already terminal; the expiry sweep or an operator got there first.
		w.logger.Info("Order already terminal, skipping compensation",
			zap.String("order_id", event.OrderID))
	}

	return w.events.MarkProcessed(ctx, event.EventID, event.EventType)
}

// ExpiryWorker sweeps PENDING orders whose payment never arrived and
// cancels them so their reserved stock returns to the pool.
type ExpiryWorker struct {
	orders        repository.OrderRepository
	cancelOrder   *usecase.CancelOrder
	orderTimeout  int
	sweepInterval time.Duration
	logger        *zap.Logger
}

// NewExpiryWorker creates a sweep with the given order timeout in seconds.
func NewExpiryWorker(orders repository.OrderRepository, cancelOrder *usecase.CancelOrder, orderTimeoutSeconds int) *ExpiryWorker {
	return &ExpiryWorker{
		orders:        orders,
		cancelOrder:   cancelOrder,
		orderTimeout:  orderTimeoutSeconds,
		sweepInterval: time.Minute,
		logger:        util.GetLogger(),
	}
}

// Start sweeps on a ticker until the context is cancelled.
func (w *ExpiryWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting expiry worker",
		zap.Int("order_timeout_seconds", w.orderTimeout))

	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				w.logger.Error("Expiry sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep cancels every expired PENDING order once.
func (w *ExpiryWorker) Sweep(ctx context.Context) error {
	expired, err := w.orders.FindExpiredPending(ctx, w.orderTimeout)
	if err != nil {
		return err
	}

	for i := range expired {
		order := &expired[i]
		err := w.cancelOrder.Execute(ctx, order.ID, "payment timeout")
		if err != nil {
			if errors.Is(err, domain.ErrInvalidStateTransition) {
				continue
			}
			w.logger.Error("Failed to cancel expired order",
				zap.String("order_id", order.ID),
				zap.Error(err))
			continue
		}
		util.ExpiredOrdersSweptTotal.Inc()
	}

	return nil
}

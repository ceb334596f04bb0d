package usecase

import (
	"context"
	"fmt"

	"fulfillment-service/internal/repository"
	"fulfillment-service/internal/util"

	"go.uber.org/zap"
)

// CancelOrder cancels a non-terminal order and releases the stock its lines
// reserved at creation. Both the expiry sweep and the payment-failure
// compensation worker funnel through here, so cancellation happens at most
// once per order: a second attempt hits the terminal-state check.
type CancelOrder struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	publisher EventPublisher
	logger    *zap.Logger
}

// NewCancelOrder creates the use case.
func NewCancelOrder(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	publisher EventPublisher,
) *CancelOrder {
	return &CancelOrder{
		orders:    orders,
		products:  products,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Execute cancels the order and compensates its reservations.
func (uc *CancelOrder) Execute(ctx context.Context, orderID, reason string) error {
	ctx, span := util.StartSpan(ctx, "CancelOrder.Execute")
	defer span.End()

	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := order.Cancel(); err != nil {
		return err
	}

	items, err := uc.orders.FindItems(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}

	// Persist the terminal state before touching stock. If this fails the
	// order is still PENDING in storage and a retry starts the whole
	// cancellation over; releasing first would let that retry release the
	// same stock a second time. A release that fails after this point only
	// leaks stock, which the error log surfaces.
	if err := uc.orders.UpdateStatus(ctx, order); err != nil {
		return fmt.Errorf("failed to persist cancellation: %w", err)
	}

	for _, item := range items {
		product, err := uc.products.FindByID(ctx, item.ProductID)
		if err != nil {
			uc.logger.Error("Failed to load product during compensation",
				zap.String("order_id", orderID),
				zap.String("product_id", item.ProductID),
				zap.Error(err))
			continue
		}
		if err := product.ReleaseStock(item.Quantity); err != nil {
			uc.logger.Error("Failed to release stock during compensation",
				zap.String("product_id", item.ProductID),
				zap.Error(err))
			continue
		}
		if err := uc.products.Save(ctx, product); err != nil {
			uc.logger.Error("Failed to persist stock release",
				zap.String("product_id", item.ProductID),
				zap.Error(err))
		}
	}

	util.OrdersCancelledTotal.Inc()
	uc.logger.Info("Order cancelled",
		zap.String("order_id", orderID),
		zap.String("reason", reason))

	if err := uc.publisher.PublishOrderCancelled(ctx, orderID, reason); err != nil {
		uc.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
	}

	return nil
}


package usecase

import (
	"context"
	"fmt"
	"time"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/repository"
	"fulfillment-service/internal/util"

	"go.uber.org/zap"
)

// CreateOrderFromCart turns a customer's cart into a PENDING order,
// reserving stock for every line. Reservation is all-or-nothing: a failed
// line releases everything reserved before it.
type CreateOrderFromCart struct {
	carts     repository.CartRepository
	products  repository.ProductRepository
	orders    repository.OrderRepository
	publisher EventPublisher
	locker    Locker
	lockTTL   time.Duration
	logger    *zap.Logger
}

// NewCreateOrderFromCart creates the use case.
func NewCreateOrderFromCart(
	carts repository.CartRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	publisher EventPublisher,
	locker Locker,
) *CreateOrderFromCart {
	return &CreateOrderFromCart{
		carts:     carts,
		products:  products,
		orders:    orders,
		publisher: publisher,
		locker:    locker,
		lockTTL:   30 * time.Second,
		logger:    util.GetLogger(),
	}
}

// Execute creates the order, reserves stock, persists both and consumes the
// cart. The per-customer lock keeps two concurrent checkouts of the same
// cart from both passing the stock check.
func (uc *CreateOrderFromCart) Execute(ctx context.Context, customerID string) (*domain.Order, error) {
	ctx, span := util.StartSpan(ctx, "CreateOrderFromCart.Execute")
	defer span.End()

	lockKey := fmt.Sprintf("checkout:%s", customerID)
	acquired, err := uc.locker.AcquireLock(ctx, lockKey, uc.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire checkout lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: customer %s", domain.ErrCheckoutInProgress, customerID)
	}
	defer func() {
		if err := uc.locker.ReleaseLock(ctx, lockKey); err != nil {
			uc.logger.Error("Failed to release checkout lock",
				zap.String("customer_id", customerID),
				zap.Error(err))
		}
	}()

	cart, err := uc.carts.FindByCustomer(ctx, customerID)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("cart_not_found").Inc()
		return nil, err
	}

	// Cart items carry the product as it looked when added; totals must
	// follow current prices, and reservation must see current stock.
	for i := range cart.Items {
		product, err := uc.products.FindByID(ctx, cart.Items[i].Product.ID)
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("product_not_found").Inc()
			return nil, err
		}
		cart.Items[i].Product = product
	}

	order, err := cart.CreateOrder()
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, err
	}

	if err := uc.reserveStock(ctx, cart); err != nil {
		util.OrdersFailedTotal.WithLabelValues("reservation_failed").Inc()
		return nil, err
	}

	if err := uc.orders.Save(ctx, order); err != nil {
		uc.releaseStock(ctx, cart.Items)
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	if err := uc.carts.Delete(ctx, customerID); err != nil {
		return nil, fmt.Errorf("failed to delete cart: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	uc.logger.Info("Order created from cart",
		zap.String("order_id", order.ID),
		zap.String("customer_id", customerID),
		zap.Int64("total", order.Total))

	if err := uc.publisher.PublishOrderCreated(ctx, order); err != nil {
		uc.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return order, nil
}

// reserveStock reserves every cart line, releasing the already-reserved
// prefix when a later line fails.
func (uc *CreateOrderFromCart) reserveStock(ctx context.Context, cart *domain.Cart) error {
	start := time.Now()
	defer func() {
		util.StockReserveLatency.Observe(time.Since(start).Seconds())
	}()

	for i := range cart.Items {
		item := &cart.Items[i]
		if err := item.Product.ReserveStock(item.Quantity); err != nil {
			util.StockReservationsFailed.WithLabelValues("insufficient_stock").Inc()
			uc.releaseStock(ctx, cart.Items[:i])
			return err
		}
		if err := uc.products.Save(ctx, item.Product); err != nil {
			util.StockReservationsFailed.WithLabelValues("db_error").Inc()
			_ = item.Product.ReleaseStock(item.Quantity)
			uc.releaseStock(ctx, cart.Items[:i])
			return fmt.Errorf("failed to persist reservation for product %s: %w", item.Product.ID, err)
		}
	}
	return nil
}

// releaseStock undoes reservations for the given items, logging instead of
// failing so compensation always runs to the end.
func (uc *CreateOrderFromCart) releaseStock(ctx context.Context, items []domain.CartItem) {
	for i := range items {
		item := &items[i]
		if err := item.Product.ReleaseStock(item.Quantity); err != nil {
			uc.logger.Error("Failed to release stock",
				zap.String("product_id", item.Product.ID),
				zap.Error(err))
			continue
		}
		if err := uc.products.Save(ctx, item.Product); err != nil {
			uc.logger.Error("Failed to persist stock release",
				zap.String("product_id", item.Product.ID),
				zap.Error(err))
		}
	}
}


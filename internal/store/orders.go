package store

import (
	"context"
	"database/sql"
	"fmt"

	"fulfillment-service/internal/domain"
)

// SaveOrder inserts an order together with its line items in one transaction.
func (s *Store) SaveOrder(ctx context.Context, order *domain.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (id, customer_id, total, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	row := tx.QueryRowxContext(ctx, query,
		order.ID, order.CustomerID, order.Total, order.Status)
	if err := row.Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			order.ID, item.ProductID, item.Quantity, item.UnitPrice).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// FindOrderByID retrieves an order by id, without its items.
func (s *Store) FindOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus persists an order's current status.
func (s *Store) UpdateOrderStatus(ctx context.Context, order *domain.Order) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		order.Status, order.ID)
	return err
}

// FindOrderItems retrieves the line items of an order.
func (s *Store) FindOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// FindExpiredPendingOrders lists PENDING orders older than the given age.
func (s *Store) FindExpiredPendingOrders(ctx context.Context, olderThanSeconds int) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.db.SelectContext(ctx, &orders,
		`SELECT * FROM orders
		 WHERE status = $1 AND created_at < NOW() - make_interval(secs => $2)
		 ORDER BY created_at`,
		domain.OrderStatusPending, olderThanSeconds)
	return orders, err
}

// SavePayment inserts a payment attempt.
func (s *Store) SavePayment(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (order_id, amount, method, status, provider_tx_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return s.db.QueryRowxContext(ctx, query,
		payment.OrderID, payment.Amount, payment.Method, payment.Status, payment.ProviderTxID).
		Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
}

// UpdatePaymentStatus persists a payment's status and provider tx id.
func (s *Store) UpdatePaymentStatus(ctx context.Context, payment *domain.Payment) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE payments SET status = $1, provider_tx_id = $2, updated_at = NOW() WHERE id = $3",
		payment.Status, payment.ProviderTxID, payment.ID)
	return err
}

// FindPaymentByOrder retrieves the most recent payment attempt for an order.
func (s *Store) FindPaymentByOrder(ctx context.Context, orderID string) (*domain.Payment, error) {
	var payment domain.Payment
	err := s.db.GetContext(ctx, &payment,
		"SELECT * FROM payments WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: order %s", domain.ErrPaymentNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

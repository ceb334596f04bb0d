package store

import (
	"context"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/repository"
)

// Thin views over Store so each repository port gets its own receiver.

type ProductStore struct{ s *Store }

func (s *Store) Products() *ProductStore { return &ProductStore{s: s} }

func (p *ProductStore) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	return p.s.FindProductByID(ctx, id)
}

func (p *ProductStore) Save(ctx context.Context, product *domain.Product) error {
	return p.s.SaveProduct(ctx, product)
}

type OrderStore struct{ s *Store }

func (s *Store) Orders() *OrderStore { return &OrderStore{s: s} }

func (o *OrderStore) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return o.s.FindOrderByID(ctx, id)
}

func (o *OrderStore) Save(ctx context.Context, order *domain.Order) error {
	return o.s.SaveOrder(ctx, order)
}

func (o *OrderStore) UpdateStatus(ctx context.Context, order *domain.Order) error {
	return o.s.UpdateOrderStatus(ctx, order)
}

func (o *OrderStore) FindItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	return o.s.FindOrderItems(ctx, orderID)
}

func (o *OrderStore) FindExpiredPending(ctx context.Context, olderThanSeconds int) ([]domain.Order, error) {
	return o.s.FindExpiredPendingOrders(ctx, olderThanSeconds)
}

type PaymentStore struct{ s *Store }

func (s *Store) Payments() *PaymentStore { return &PaymentStore{s: s} }

func (p *PaymentStore) Save(ctx context.Context, payment *domain.Payment) error {
	return p.s.SavePayment(ctx, payment)
}

func (p *PaymentStore) UpdateStatus(ctx context.Context, payment *domain.Payment) error {
	return p.s.UpdatePaymentStatus(ctx, payment)
}

func (p *PaymentStore) FindByOrder(ctx context.Context, orderID string) (*domain.Payment, error) {
	return p.s.FindPaymentByOrder(ctx, orderID)
}

type EventLogStore struct{ s *Store }

func (s *Store) Events() *EventLogStore { return &EventLogStore{s: s} }

func (e *EventLogStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	return e.s.IsEventProcessed(ctx, eventID)
}

func (e *EventLogStore) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	return e.s.MarkEventProcessed(ctx, eventID, eventType)
}

var (
	_ repository.ProductRepository = (*ProductStore)(nil)
	_ repository.OrderRepository   = (*OrderStore)(nil)
	_ repository.PaymentRepository = (*PaymentStore)(nil)
	_ repository.EventLog          = (*EventLogStore)(nil)
)

// Package repository declares the persistence contracts the use cases
// depend on. Implementations live in internal/store (Postgres) and
// internal/redisclient (carts); tests supply in-memory fakes.
package repository

import (
	"context"

	"fulfillment-service/internal/domain"
)

// ProductRepository looks up and persists catalog products.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Save(ctx context.Context, product *domain.Product) error
}

// CartRepository stores one cart per customer. FindByCustomer returns
// domain.ErrCartNotFound when the customer has no cart.
type CartRepository interface {
	FindByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, customerID string) error
}

// OrderRepository persists orders together with their line items.
type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	Save(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, order *domain.Order) error
	FindItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	FindExpiredPending(ctx context.Context, olderThanSeconds int) ([]domain.Order, error)
}

// PaymentRepository persists payment attempts, successful or not.
type PaymentRepository interface {
	Save(ctx context.Context, payment *domain.Payment) error
	UpdateStatus(ctx context.Context, payment *domain.Payment) error
	FindByOrder(ctx context.Context, orderID string) (*domain.Payment, error)
}

// EventLog tracks consumed event ids so event handlers stay idempotent.
type EventLog interface {
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string) error
}

package domain

import (
	"fmt"
	"time"
)

// OrderStatus is the order state machine:
// PENDING -> CONFIRMED -> CANCELLED, with CANCELLED reachable from
// PENDING too. CANCELLED is terminal.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) String() string { return string(s) }

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled
}

// Order is created from a non-empty cart. Total and line items are fixed at
// creation time, independent of later product price changes. Products are
// referenced by id only.
type Order struct {
	ID         string      `db:"id" json:"id"`
	CustomerID string      `db:"customer_id" json:"customer_id"`
	Total      int64       `db:"total" json:"total"`
	Status     OrderStatus `db:"status" json:"status"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`

	Items []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem is a line snapshot: what was bought, at what price, how many.
type OrderItem struct {
	ID        int64  `db:"id" json:"id"`
	OrderID   string `db:"order_id" json:"order_id"`
	ProductID string `db:"product_id" json:"product_id"`
	Quantity  int    `db:"quantity" json:"quantity"`
	UnitPrice int64  `db:"unit_price" json:"unit_price"`
}

// Confirm moves a PENDING order to CONFIRMED.
func (o *Order) Confirm() error {
	if o.Status != OrderStatusPending {
		return fmt.Errorf("%w: cannot confirm order %s in state %s",
			ErrInvalidStateTransition, o.ID, o.Status)
	}
	o.Status = OrderStatusConfirmed
	o.UpdatedAt = time.Now()
	return nil
}

// Cancel moves the order to CANCELLED from any non-terminal state.
func (o *Order) Cancel() error {
	if o.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot cancel order %s in state %s",
			ErrInvalidStateTransition, o.ID, o.Status)
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	return nil
}

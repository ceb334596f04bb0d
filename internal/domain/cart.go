package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CartItem pairs a product with a requested quantity. The product is a
// shared reference, not a snapshot: totals follow current prices until an
// order fixes them.
type CartItem struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

// Subtotal is unit price times quantity.
func (ci *CartItem) Subtotal() int64 {
	return ci.Product.UnitPrice * int64(ci.Quantity)
}

// Cart is a customer's in-progress selection, keyed by customer id. It is
// created on the first add and deleted when an order is created from it.
type Cart struct {
	CustomerID string     `json:"customer_id"`
	Items      []CartItem `json:"items"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewCart creates an empty cart for a customer.
func NewCart(customerID string) *Cart {
	return &Cart{CustomerID: customerID}
}

// AddItem appends the product to the cart, merging quantities if the
// product is already present. The stock check here is advisory: reservation
// happens at order creation, which re-checks against current stock.
func (c *Cart) AddItem(product *Product, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	if !product.HasSufficientStock(quantity) {
		return fmt.Errorf("%w: product %s has %d, requested %d",
			ErrInsufficientStock, product.ID, product.Stock, quantity)
	}

	for i := range c.Items {
		if c.Items[i].Product.ID == product.ID {
			merged := c.Items[i].Quantity + quantity
			if !product.HasSufficientStock(merged) {
				return fmt.Errorf("%w: product %s has %d, cart would hold %d",
					ErrInsufficientStock, product.ID, product.Stock, merged)
			}
			c.Items[i].Product = product
			c.Items[i].Quantity = merged
			c.UpdatedAt = time.Now()
			return nil
		}
	}

	c.Items = append(c.Items, CartItem{Product: product, Quantity: quantity})
	c.UpdatedAt = time.Now()
	return nil
}

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CalculateTotal sums unit price times quantity across all items. An empty
// cart totals zero.
func (c *Cart) CalculateTotal() int64 {
	var total int64
	for i := range c.Items {
		total += c.Items[i].Subtotal()
	}
	return total
}

// CreateOrder builds a PENDING order from the cart's contents. The order
// snapshots the total and a copy of the lines; later price changes do not
// affect it. The cart itself is untouched; deleting it is the caller's job.
func (c *Cart) CreateOrder() (*Order, error) {
	if c.IsEmpty() {
		return nil, fmt.Errorf("%w: customer %s", ErrEmptyCart, c.CustomerID)
	}

	order := &Order{
		ID:         uuid.New().String(),
		CustomerID: c.CustomerID,
		Total:      c.CalculateTotal(),
		Status:     OrderStatusPending,
		CreatedAt:  time.Now(),
	}
	for i := range c.Items {
		order.Items = append(order.Items, OrderItem{
			OrderID:   order.ID,
			ProductID: c.Items[i].Product.ID,
			Quantity:  c.Items[i].Quantity,
			UnitPrice: c.Items[i].Product.UnitPrice,
		})
	}
	return order, nil
}

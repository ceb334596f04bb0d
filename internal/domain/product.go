package domain

import (
	"fmt"
	"time"
)

// Product is a catalog entry with its available stock. Prices are minor
// units (cents). Stock is only mutated through ReserveStock/ReleaseStock so
// the non-negative invariant is enforced in one place.
type Product struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	UnitPrice int64     `db:"unit_price" json:"unit_price"`
	Stock     int       `db:"stock" json:"stock"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HasSufficientStock reports whether quantity units can be reserved.
func (p *Product) HasSufficientStock(quantity int) bool {
	return p.Stock >= quantity
}

// ReserveStock decrements available stock. Reserving zero is a no-op.
func (p *Product) ReserveStock(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	if !p.HasSufficientStock(quantity) {
		return fmt.Errorf("%w: product %s has %d, requested %d",
			ErrInsufficientStock, p.ID, p.Stock, quantity)
	}
	p.Stock -= quantity
	return nil
}

// ReleaseStock returns previously reserved units to the pool. It is the
// inverse of ReserveStock and never fails for non-negative quantities.
func (p *Product) ReleaseStock(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	p.Stock += quantity
	return nil
}

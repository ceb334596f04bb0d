package usecase

import (
	"context"
	"errors"
	"fmt"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/repository"
	"fulfillment-service/internal/util"

	"go.uber.org/zap"
)

// AddItemToCart puts a quantity of a product into a customer's cart,
// creating the cart on first use. The stock check is advisory; nothing is
// reserved until checkout.
type AddItemToCart struct {
	products repository.ProductRepository
	carts    repository.CartRepository
	logger   *zap.Logger
}

// NewAddItemToCart creates the use case.
func NewAddItemToCart(products repository.ProductRepository, carts repository.CartRepository) *AddItemToCart {
	return &AddItemToCart{
		products: products,
		carts:    carts,
		logger:   util.GetLogger(),
	}
}

// Execute validates the quantity before any lookup, so an invalid request
// touches no repository at all.
func (uc *AddItemToCart) Execute(ctx context.Context, customerID, productID string, quantity int) (*domain.Cart, error) {
	ctx, span := util.StartSpan(ctx, "AddItemToCart.Execute")
	defer span.End()

	if quantity <= 0 {
		util.CartAddFailedTotal.WithLabelValues("invalid_quantity").Inc()
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, quantity)
	}

	product, err := uc.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			util.CartAddFailedTotal.WithLabelValues("product_not_found").Inc()
		}
		return nil, err
	}

	cart, err := uc.carts.FindByCustomer(ctx, customerID)
	if errors.Is(err, domain.ErrCartNotFound) {
		cart = domain.NewCart(customerID)
	} else if err != nil {
		return nil, err
	}

	if err := cart.AddItem(product, quantity); err != nil {
		util.CartAddFailedTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, err
	}

	if err := uc.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	util.CartItemsAddedTotal.Inc()
	uc.logger.Info("Item added to cart",
		zap.String("customer_id", customerID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity))

	return cart, nil
}

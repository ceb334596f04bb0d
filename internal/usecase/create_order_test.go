package usecase

import (
	"context"
	"testing"

	"fulfillment-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCheckout(t *testing.T, products ...*domain.Product) (*CreateOrderFromCart, *fakeProductRepo, *fakeCartRepo, *fakeOrderRepo, *fakePublisher, *fakeLocker) {
	t.Helper()
	productRepo := newFakeProductRepo(products...)
	cartRepo := newFakeCartRepo()
	orderRepo := newFakeOrderRepo()
	publisher := &fakePublisher{}
	locker := newFakeLocker()
	uc := NewCreateOrderFromCart(cartRepo, productRepo, orderRepo, publisher, locker)
	return uc, productRepo, cartRepo, orderRepo, publisher, locker
}

func addToCart(t *testing.T, products *fakeProductRepo, carts *fakeCartRepo, customerID, productID string, qty int) {
	t.Helper()
	_, err := NewAddItemToCart(products, carts).Execute(context.Background(), customerID, productID, qty)
	require.NoError(t, err)
}

func TestCreateOrderCartNotFound(t *testing.T) {
	uc, _, _, _, _, _ := setupCheckout(t)

	_, err := uc.Execute(context.Background(), "C1")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestCreateOrderEndToEnd(t *testing.T) {
	uc, products, carts, orders, publisher, locker := setupCheckout(t,
		&domain.Product{ID: "P1", UnitPrice: 100, Stock: 10})
	addToCart(t, products, carts, "C1", "P1", 3)

	order, err := uc.Execute(context.Background(), "C1")
	require.NoError(t, err)

	assert.Equal(t, int64(300), order.Total)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, 7, products.stock("P1"), "stock reserved at checkout")

	_, err = carts.FindByCustomer(context.Background(), "C1")
	assert.ErrorIs(t, err, domain.ErrCartNotFound, "cart consumed by checkout")

	saved, err := orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Total, saved.Total)

	assert.Equal(t, []string{order.ID}, publisher.created)
	assert.Equal(t, locker.acquires, locker.releases, "lock released")
}

func TestCreateOrderUsesCurrentPrices(t *testing.T) {
	uc, products, carts, _, _, _ := setupCheckout(t,
		&domain.Product{ID: "P1", UnitPrice: 100, Stock: 10})
	addToCart(t, products, carts, "C1", "P1", 2)

	// Price changes between add-to-cart and checkout.
	require.NoError(t, products.Save(context.Background(),
		&domain.Product{ID: "P1", UnitPrice: 150, Stock: 10}))

	order, err := uc.Execute(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), order.Total, "total follows the price at checkout time")
}

func TestCreateOrderInsufficientStockReleasesPrefix(t *testing.T) {
	uc, products, carts, orders, _, _ := setupCheckout(t,
		&domain.Product{ID: "P1", UnitPrice: 100, Stock: 10},
		&domain.Product{ID: "P2", UnitPrice: 50, Stock: 10})
	addToCart(t, products, carts, "C1", "P1", 3)
	addToCart(t, products, carts, "C1", "P2", 4)

	// P2 sells out before checkout.
	require.NoError(t, products.Save(context.Background(),
		&domain.Product{ID: "P2", UnitPrice: 50, Stock: 1}))

	_, err := uc.Execute(context.Background(), "C1")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 10, products.stock("P1"), "earlier reservation rolled back")
	assert.Equal(t, 1, products.stock("P2"))
	assert.Empty(t, orders.orders, "no order persisted on failure")

	_, err = carts.FindByCustomer(context.Background(), "C1")
	assert.NoError(t, err, "cart survives a failed checkout")
}

func TestCreateOrderReleasesStockWhenSaveFails(t *testing.T) {
	uc, products, carts, orders, _, _ := setupCheckout(t,
		&domain.Product{ID: "P1", UnitPrice: 100, Stock: 10})
	addToCart(t, products, carts, "C1", "P1", 3)

	orders.saveErr = assert.AnError

	_, err := uc.Execute(context.Background(), "C1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 10, products.stock("P1"), "reservation compensated when order save fails")
}

func TestCreateOrderReservePersistFailureRollsBack(t *testing.T) {
	uc, products, carts, orders, _, _ := setupCheckout(t,
		&domain.Product{ID: "P1", UnitPrice: 100, Stock: 10},
		&domain.Product{ID: "P2", UnitPrice: 50, Stock: 10})
	addToCart(t, products, carts, "C1", "P1", 3)
	addToCart(t, products, carts, "C1", "P2", 4)

	products.saveErr = assert.AnError
	products.failSaveFor = "P2"

	_, err := uc.Execute(context.Background(), "C1")
	require.Error(t, err)

	assert.Equal(t, 10, products.stock("P1"), "earlier reservation rolled back")
	assert.Equal(t, 10, products.stock("P2"), "failed line never persisted")
	assert.Empty(t, orders.orders)
}

func TestCreateOrderCheckoutLockDenied(t *testing.T) {
	uc, products, carts, _, _, locker := setupCheckout(t,
		&domain.Product{ID: "P1", UnitPrice: 100, Stock: 10})
	addToCart(t, products, carts, "C1", "P1", 1)

	locker.denyAll = true

	_, err := uc.Execute(context.Background(), "C1")
	assert.ErrorIs(t, err, domain.ErrCheckoutInProgress)
	assert.Equal(t, 10, products.stock("P1"))
}

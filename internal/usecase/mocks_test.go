package usecase

import (
	"context"
	"fmt"
	"time"

	"fulfillment-service/internal/domain"
)

// In-memory fakes for the repository ports and collaborators. They count
// calls so tests can assert that fail-fast paths touch no storage.

type fakeProductRepo struct {
	products    map[string]*domain.Product
	findCalls   int
	saveCalls   int
	saveErr     error
	failSaveFor string
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[string]*domain.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *fakeProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.findCalls++
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) Save(_ context.Context, product *domain.Product) error {
	r.saveCalls++
	if r.saveErr != nil && (r.failSaveFor == "" || r.failSaveFor == product.ID) {
		return r.saveErr
	}
	copied := *product
	r.products[product.ID] = &copied
	return nil
}

func (r *fakeProductRepo) stock(id string) int {
	return r.products[id].Stock
}

type fakeCartRepo struct {
	carts       map[string]*domain.Cart
	findCalls   int
	saveCalls   int
	deleteCalls int
	saveErr     error
	deleteErr   error
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string]*domain.Cart)}
}

func (r *fakeCartRepo) FindByCustomer(_ context.Context, customerID string) (*domain.Cart, error) {
	r.findCalls++
	cart, ok := r.carts[customerID]
	if !ok {
		return nil, fmt.Errorf("%w: customer %s", domain.ErrCartNotFound, customerID)
	}
	return cart, nil
}

func (r *fakeCartRepo) Save(_ context.Context, cart *domain.Cart) error {
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.carts[cart.CustomerID] = cart
	return nil
}

func (r *fakeCartRepo) Delete(_ context.Context, customerID string) error {
	r.deleteCalls++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.carts, customerID)
	return nil
}

type fakeOrderRepo struct {
	orders     map[string]*domain.Order
	items      map[string][]domain.OrderItem
	saveErr    error
	updateErr  error
	copyOnFind bool
}

func newFakeOrderRepo(orders ...*domain.Order) *fakeOrderRepo {
	repo := &fakeOrderRepo{
		orders: make(map[string]*domain.Order),
		items:  make(map[string][]domain.OrderItem),
	}
	for _, o := range orders {
		repo.orders[o.ID] = o
		repo.items[o.ID] = o.Items
	}
	return repo
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	if r.copyOnFind {
		copied := *o
		return &copied, nil
	}
	return o, nil
}

func (r *fakeOrderRepo) Save(_ context.Context, order *domain.Order) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.orders[order.ID] = order
	r.items[order.ID] = order.Items
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, order *domain.Order) error {
	if r.updateErr != nil {
		err := r.updateErr
		r.updateErr = nil
		return err
	}
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) FindItems(_ context.Context, orderID string) ([]domain.OrderItem, error) {
	return r.items[orderID], nil
}

func (r *fakeOrderRepo) FindExpiredPending(_ context.Context, _ int) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.Status == domain.OrderStatusPending {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakePaymentRepo struct {
	payments  []*domain.Payment
	saveCalls int
}

func (r *fakePaymentRepo) Save(_ context.Context, payment *domain.Payment) error {
	r.saveCalls++
	payment.ID = int64(len(r.payments) + 1)
	r.payments = append(r.payments, payment)
	return nil
}

func (r *fakePaymentRepo) UpdateStatus(_ context.Context, _ *domain.Payment) error {
	return nil
}

func (r *fakePaymentRepo) FindByOrder(_ context.Context, orderID string) (*domain.Payment, error) {
	for i := len(r.payments) - 1; i >= 0; i-- {
		if r.payments[i].OrderID == orderID {
			return r.payments[i], nil
		}
	}
	return nil, fmt.Errorf("%w: order %s", domain.ErrPaymentNotFound, orderID)
}

type fakePublisher struct {
	created   []string
	confirmed []string
	cancelled []string
	paymentOK []string
	paymentKO []string
	refunds   []string
}

func (p *fakePublisher) PublishOrderCreated(_ context.Context, order *domain.Order) error {
	p.created = append(p.created, order.ID)
	return nil
}

func (p *fakePublisher) PublishOrderConfirmed(_ context.Context, order *domain.Order) error {
	p.confirmed = append(p.confirmed, order.ID)
	return nil
}

func (p *fakePublisher) PublishOrderCancelled(_ context.Context, orderID, _ string) error {
	p.cancelled = append(p.cancelled, orderID)
	return nil
}

func (p *fakePublisher) PublishPaymentSucceeded(_ context.Context, payment *domain.Payment) error {
	p.paymentOK = append(p.paymentOK, payment.OrderID)
	return nil
}

func (p *fakePublisher) PublishPaymentFailed(_ context.Context, payment *domain.Payment, _ string) error {
	p.paymentKO = append(p.paymentKO, payment.OrderID)
	return nil
}

func (p *fakePublisher) PublishPaymentRefundRequested(_ context.Context, payment *domain.Payment, _ string) error {
	p.refunds = append(p.refunds, payment.OrderID)
	return nil
}

type fakeLocker struct {
	held     map[string]bool
	acquires int
	releases int
	denyAll  bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.acquires++
	if l.denyAll || l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLocker) ReleaseLock(_ context.Context, key string) error {
	l.releases++
	delete(l.held, key)
	return nil
}

type fakeProcessor struct {
	rejectWith error
	txID       string
	charges    int
}

func (p *fakeProcessor) Charge(_ context.Context, _ *domain.Payment) (string, error) {
	p.charges++
	if p.rejectWith != nil {
		return "", p.rejectWith
	}
	if p.txID == "" {
		return "TXN-TEST", nil
	}
	return p.txID, nil
}

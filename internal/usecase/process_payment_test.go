package usecase

import (
	"context"
	"testing"

	"fulfillment-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingOrder(id string, total int64) *domain.Order {
	return &domain.Order{
		ID:         id,
		CustomerID: "C1",
		Total:      total,
		Status:     domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{OrderID: id, ProductID: "P1", Quantity: 3, UnitPrice: total / 3},
		},
	}
}

func TestProcessPaymentValidatesBeforeLookup(t *testing.T) {
	orders := newFakeOrderRepo(pendingOrder("O1", 300))
	payments := &fakePaymentRepo{}
	processor := &fakeProcessor{}
	uc := NewProcessPayment(orders, payments, processor, &fakePublisher{})

	_, err := uc.Execute(context.Background(), "O1", domain.PaymentMethodCard, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = uc.Execute(context.Background(), "O1", domain.PaymentMethod("CRYPTO"), 300)
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)

	assert.Zero(t, payments.saveCalls)
	assert.Zero(t, processor.charges)
}

func TestProcessPaymentOrderNotFound(t *testing.T) {
	uc := NewProcessPayment(newFakeOrderRepo(), &fakePaymentRepo{}, &fakeProcessor{}, &fakePublisher{})

	_, err := uc.Execute(context.Background(), "missing", domain.PaymentMethodCard, 300)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestProcessPaymentSuccessConfirmsOrder(t *testing.T) {
	order := pendingOrder("O1", 300)
	orders := newFakeOrderRepo(order)
	payments := &fakePaymentRepo{}
	publisher := &fakePublisher{}
	uc := NewProcessPayment(orders, payments, &fakeProcessor{txID: "TXN-77"}, publisher)

	payment, err := uc.Execute(context.Background(), "O1", domain.PaymentMethodCard, 300)
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusSuccess, payment.Status)
	assert.Equal(t, "TXN-77", payment.ProviderTxID)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)

	persisted, err := payments.FindByOrder(context.Background(), "O1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSuccess, persisted.Status)

	assert.Equal(t, []string{"O1"}, publisher.paymentOK)
	assert.Equal(t, []string{"O1"}, publisher.confirmed)
}

func TestProcessPaymentRejectionLeavesOrderPending(t *testing.T) {
	order := pendingOrder("O1", 300)
	orders := newFakeOrderRepo(order)
	payments := &fakePaymentRepo{}
	publisher := &fakePublisher{}
	processor := &fakeProcessor{rejectWith: domain.ErrPaymentRejected}
	uc := NewProcessPayment(orders, payments, processor, publisher)

	_, err := uc.Execute(context.Background(), "O1", domain.PaymentMethodCard, 300)
	assert.ErrorIs(t, err, domain.ErrPaymentRejected)

	assert.Equal(t, domain.OrderStatusPending, order.Status, "rejection leaves order state alone")

	persisted, findErr := payments.FindByOrder(context.Background(), "O1")
	require.NoError(t, findErr, "failed attempts are persisted for auditing")
	assert.Equal(t, domain.PaymentStatusFailed, persisted.Status)

	assert.Equal(t, []string{"O1"}, publisher.paymentKO)
	assert.Empty(t, publisher.confirmed)
}

func TestProcessPaymentProviderErrorMapsToRejection(t *testing.T) {
	order := pendingOrder("O1", 300)
	uc := NewProcessPayment(newFakeOrderRepo(order), &fakePaymentRepo{},
		&fakeProcessor{rejectWith: assert.AnError}, &fakePublisher{})

	_, err := uc.Execute(context.Background(), "O1", domain.PaymentMethodCard, 300)
	assert.ErrorIs(t, err, domain.ErrPaymentRejected)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestProcessPaymentCancelledOrderCannotConfirm(t *testing.T) {
	order := pendingOrder("O1", 300)
	order.Status = domain.OrderStatusCancelled
	publisher := &fakePublisher{}
	uc := NewProcessPayment(newFakeOrderRepo(order), &fakePaymentRepo{},
		&fakeProcessor{}, publisher)

	_, err := uc.Execute(context.Background(), "O1", domain.PaymentMethodCard, 300)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	assert.Equal(t, []string{"O1"}, publisher.refunds,
		"successful charge against a cancelled order asks for its refund")
	assert.Empty(t, publisher.confirmed)
}

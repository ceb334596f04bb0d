package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fulfillment-service/internal/domain"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Event types emitted on the order events topic.
const (
	EventTypeOrderCreated     = "ORDER_CREATED"
	EventTypeOrderConfirmed   = "ORDER_CONFIRMED"
	EventTypeOrderCancelled   = "ORDER_CANCELLED"
	EventTypePaymentSucceeded = "PAYMENT_SUCCEEDED"
	EventTypePaymentFailed    = "PAYMENT_FAILED"

	EventTypePaymentRefundRequested = "PAYMENT_REFUND_REQUESTED"
)

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

func newBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// OrderCreatedEvent is published when an order is created from a cart.
type OrderCreatedEvent struct {
	BaseEvent
	OrderID    string             `json:"order_id"`
	CustomerID string             `json:"customer_id"`
	Total      int64              `json:"total"`
	Items      []domain.OrderItem `json:"items"`
}

// OrderConfirmedEvent is published when a paid order is confirmed.
type OrderConfirmedEvent struct {
	BaseEvent
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
}

// OrderCancelledEvent is published when an order is cancelled and its stock
// released.
type OrderCancelledEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// PaymentSucceededEvent is published when the provider accepts a charge.
type PaymentSucceededEvent struct {
	BaseEvent
	OrderID   string `json:"order_id"`
	PaymentID int64  `json:"payment_id"`
	Amount    int64  `json:"amount"`
	TxID      string `json:"tx_id"`
}

// PaymentFailedEvent is published when the provider rejects a charge. The
// compensation worker consumes it.
type PaymentFailedEvent struct {
	BaseEvent
	OrderID   string `json:"order_id"`
	PaymentID int64  `json:"payment_id"`
	Reason    string `json:"reason"`
}

// PaymentRefundRequestedEvent is published when a charge succeeded against
// an order that can no longer be confirmed, so the money has to go back.
type PaymentRefundRequestedEvent struct {
	BaseEvent
	OrderID   string `json:"order_id"`
	PaymentID int64  `json:"payment_id"`
	Amount    int64  `json:"amount"`
	TxID      string `json:"tx_id"`
	Reason    string `json:"reason"`
}

// EventPublisher publishes domain events keyed by order id.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher.
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func orderKey(orderID string) string {
	return fmt.Sprintf("order-%s", orderID)
}

// PublishOrderCreated publishes an OrderCreated event for the given order.
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	event := &OrderCreatedEvent{
		BaseEvent:  newBaseEvent(EventTypeOrderCreated),
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Total:      order.Total,
		Items:      order.Items,
	}
	return ep.producer.PublishEvent(ctx, orderKey(order.ID), event)
}

// PublishOrderConfirmed publishes an OrderConfirmed event.
func (ep *EventPublisher) PublishOrderConfirmed(ctx context.Context, order *domain.Order) error {
	event := &OrderConfirmedEvent{
		BaseEvent:  newBaseEvent(EventTypeOrderConfirmed),
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
	}
	return ep.producer.PublishEvent(ctx, orderKey(order.ID), event)
}

// PublishOrderCancelled publishes an OrderCancelled event.
func (ep *EventPublisher) PublishOrderCancelled(ctx context.Context, orderID, reason string) error {
	event := &OrderCancelledEvent{
		BaseEvent: newBaseEvent(EventTypeOrderCancelled),
		OrderID:   orderID,
		Reason:    reason,
	}
	return ep.producer.PublishEvent(ctx, orderKey(orderID), event)
}

// PublishPaymentSucceeded publishes a PaymentSucceeded event.
func (ep *EventPublisher) PublishPaymentSucceeded(ctx context.Context, payment *domain.Payment) error {
	event := &PaymentSucceededEvent{
		BaseEvent: newBaseEvent(EventTypePaymentSucceeded),
		OrderID:   payment.OrderID,
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		TxID:      payment.ProviderTxID,
	}
	return ep.producer.PublishEvent(ctx, orderKey(payment.OrderID), event)
}

// PublishPaymentFailed publishes a PaymentFailed event.
func (ep *EventPublisher) PublishPaymentFailed(ctx context.Context, payment *domain.Payment, reason string) error {
	event := &PaymentFailedEvent{
		BaseEvent: newBaseEvent(EventTypePaymentFailed),
		OrderID:   payment.OrderID,
		PaymentID: payment.ID,
		Reason:    reason,
	}
	return ep.producer.PublishEvent(ctx, orderKey(payment.OrderID), event)
}

// PublishPaymentRefundRequested publishes a PaymentRefundRequested event.
func (ep *EventPublisher) PublishPaymentRefundRequested(ctx context.Context, payment *domain.Payment, reason string) error {
	event := &PaymentRefundRequestedEvent{
		BaseEvent: newBaseEvent(EventTypePaymentRefundRequested),
		OrderID:   payment.OrderID,
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		TxID:      payment.ProviderTxID,
		Reason:    reason,
	}
	return ep.producer.PublishEvent(ctx, orderKey(payment.OrderID), event)
}

// EventHandler routes consumed messages to registered handlers.
type EventHandler struct {
	onPaymentFailed  func(context.Context, *PaymentFailedEvent) error
	onOrderCancelled func(context.Context, *OrderCancelledEvent) error
}

// NewEventHandler creates a new event handler.
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnPaymentFailed registers a handler for PaymentFailed events.
func (eh *EventHandler) OnPaymentFailed(handler func(context.Context, *PaymentFailedEvent) error) {
	eh.onPaymentFailed = handler
}

// OnOrderCancelled registers a handler for OrderCancelled events.
func (eh *EventHandler) OnOrderCancelled(handler func(context.Context, *OrderCancelledEvent) error) {
	eh.onOrderCancelled = handler
}

// HandleMessage routes messages to the appropriate handler.
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case EventTypePaymentFailed:
		if eh.onPaymentFailed != nil {
			var event PaymentFailedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PaymentFailed event: %w", err)
			}
			return eh.onPaymentFailed(ctx, &event)
		}

	case EventTypeOrderCancelled:
		if eh.onOrderCancelled != nil {
			var event OrderCancelledEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderCancelled event: %w", err)
			}
			return eh.onOrderCancelled(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}

package broker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageRoutesPaymentFailed(t *testing.T) {
	eh := NewEventHandler()

	var got *PaymentFailedEvent
	eh.OnPaymentFailed(func(_ context.Context, event *PaymentFailedEvent) error {
		got = event
		return nil
	})

	event := PaymentFailedEvent{
		BaseEvent: newBaseEvent(EventTypePaymentFailed),
		OrderID:   "O1",
		PaymentID: 42,
		Reason:    "card_declined",
	}
	value, err := json.Marshal(event)
	require.NoError(t, err)

	err = eh.HandleMessage(context.Background(), kafka.Message{Value: value})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "O1", got.OrderID)
	assert.Equal(t, "card_declined", got.Reason)
}

func TestHandleMessageIgnoresUnknownTypes(t *testing.T) {
	eh := NewEventHandler()
	eh.OnPaymentFailed(func(_ context.Context, _ *PaymentFailedEvent) error {
		t.Fatal("handler must not fire for other event types")
		return nil
	})

	value, err := json.Marshal(newBaseEvent("SOMETHING_ELSE"))
	require.NoError(t, err)

	assert.NoError(t, eh.HandleMessage(context.Background(), kafka.Message{Value: value}))
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	eh := NewEventHandler()
	err := eh.HandleMessage(context.Background(), kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}

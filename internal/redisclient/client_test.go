package redisclient

import (
	"context"
	"testing"
	"time"

	"fulfillment-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRoundTrip(t *testing.T) {
	t.Skip("Integration test - requires Redis")

	client, err := NewClient("localhost:6379", "", 0, time.Hour)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()

	cart := domain.NewCart("C1")
	require.NoError(t, cart.AddItem(&domain.Product{ID: "P1", UnitPrice: 100, Stock: 10}, 3))
	require.NoError(t, client.Save(ctx, cart))

	loaded, err := client.FindByCustomer(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), loaded.CalculateTotal())

	require.NoError(t, client.Delete(ctx, "C1"))
	_, err = client.FindByCustomer(ctx, "C1")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestCheckoutLock(t *testing.T) {
	t.Skip("Integration test - requires Redis")

	client, err := NewClient("localhost:6379", "", 0, time.Hour)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()

	ok, err := client.AcquireLock(ctx, "checkout:C1", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.AcquireLock(ctx, "checkout:C1", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second acquisition must fail while the lease is held")

	require.NoError(t, client.ReleaseLock(ctx, "checkout:C1"))

	ok, err = client.AcquireLock(ctx, "checkout:C1", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

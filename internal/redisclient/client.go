package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fulfillment-service/internal/domain"

	"github.com/go-redis/redis/v8"
)

// Client wraps Redis for cart storage and checkout locking. Carts are
// ephemeral by nature, so they live here as JSON values with a TTL instead
// of in Postgres.
type Client struct {
	rdb     *redis.Client
	cartTTL time.Duration
}

// NewClient connects to Redis.
func NewClient(addr, password string, db int, cartTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, cartTTL: cartTTL}, nil
}

// GetClient returns the underlying Redis client.
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func cartKey(customerID string) string {
	return fmt.Sprintf("cart:%s", customerID)
}

// FindByCustomer loads a customer's cart.
func (c *Client) FindByCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	data, err := c.rdb.Get(ctx, cartKey(customerID)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: customer %s", domain.ErrCartNotFound, customerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &cart, nil
}

// Save stores the cart, refreshing its TTL.
func (c *Client) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return c.rdb.Set(ctx, cartKey(cart.CustomerID), data, c.cartTTL).Err()
}

// Delete removes a customer's cart. Deleting an absent cart is not an error.
func (c *Client) Delete(ctx context.Context, customerID string) error {
	return c.rdb.Del(ctx, cartKey(customerID)).Err()
}

// AcquireLock acquires a short lease keyed by aggregate id. Returns false
// when another holder has it.
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases a lease acquired with AcquireLock.
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}

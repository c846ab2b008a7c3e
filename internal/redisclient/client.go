package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
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

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SetPurchaseStatus caches the current state of a purchase order so status
// polls don't hit the database on the hot path.
func (c *Client) SetPurchaseStatus(ctx context.Context, orderID, status string, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("purchase:%s", orderID), status, ttl).Err()
}

// GetPurchaseStatus retrieves a cached purchase status. Returns "" on a
// cache miss.
func (c *Client) GetPurchaseStatus(ctx context.Context, orderID string) (string, error) {
	status, err := c.rdb.Get(ctx, fmt.Sprintf("purchase:%s", orderID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return status, err
}

// MarkEventSeen records an event id with a TTL. Returns false when the id
// was already present. This is only a fast path in front of the durable
// processed_events table, so expiry is safe.
func (c *Client) MarkEventSeen(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("event:%s", eventID), "1", ttl).Result()
}

// HasSeenEvent checks the event fast path
func (c *Client) HasSeenEvent(ctx context.Context, eventID string) (bool, error) {
	result, err := c.rdb.Exists(ctx, fmt.Sprintf("event:%s", eventID)).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}

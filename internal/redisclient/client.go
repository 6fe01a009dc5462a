package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"swiftpos/internal/models"

	"github.com/go-redis/redis/v8"
)

const defaultIdempotencyTTL = 10 * time.Minute

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client and verifies the connection
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
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

	return NewFromRedis(rdb, ttl), nil
}

// NewFromRedis wraps an existing go-redis client
func NewFromRedis(rdb *redis.Client, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &Client{rdb: rdb, ttl: ttl}
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// AcquireCheckout takes the in-flight lock for an idempotency key.
// Returns false if another checkout holds it.
func (c *Client) AcquireCheckout(ctx context.Context, key string) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, lockKey(key), "1", c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire checkout lock: %w", err)
	}
	return ok, nil
}

// ReleaseCheckout drops the in-flight lock so the key can be retried
func (c *Client) ReleaseCheckout(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, lockKey(key)).Err()
}

// StoreReceipt caches the receipt of a completed checkout for replay
func (c *Client) StoreReceipt(ctx context.Context, key string, receipt *models.Receipt) error {
	data, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}
	return c.rdb.Set(ctx, receiptKey(key), data, c.ttl).Err()
}

// GetReceipt returns the cached receipt for a key, or nil if there is none
func (c *Client) GetReceipt(ctx context.Context, key string) (*models.Receipt, error) {
	data, err := c.rdb.Get(ctx, receiptKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get receipt: %w", err)
	}

	var receipt models.Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, fmt.Errorf("unmarshal receipt: %w", err)
	}
	return &receipt, nil
}

func lockKey(key string) string {
	return fmt.Sprintf("idempotency:checkout:%s", key)
}

func receiptKey(key string) string {
	return fmt.Sprintf("receipt:%s", key)
}

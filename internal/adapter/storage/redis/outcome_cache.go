package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// OutcomeCache implements ports.OutcomeCache using Redis.
type OutcomeCache struct {
	client *goredis.Client
	prefix string
}

// NewOutcomeCache creates a new Redis-backed outcome cache.
func NewOutcomeCache(client *goredis.Client) *OutcomeCache {
	return &OutcomeCache{
		client: client,
		prefix: "outcome:",
	}
}

// Get retrieves a cached outcome by idempotency key.
// Returns nil, nil if the key does not exist.
func (c *OutcomeCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis outcome get: %w", err)
	}
	return val, nil
}

// Set stores an outcome with TTL.
func (c *OutcomeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis outcome set: %w", err)
	}
	return nil
}

// Delete removes a record. A missing key is not an error.
func (c *OutcomeCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis outcome del: %w", err)
	}
	return nil
}

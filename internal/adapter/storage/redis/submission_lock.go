package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SubmissionLock implements ports.SubmissionLock using Redis SET NX.
type SubmissionLock struct {
	client *goredis.Client
	prefix string
}

// NewSubmissionLock creates a new Redis-backed submission lock.
func NewSubmissionLock(client *goredis.Client) *SubmissionLock {
	return &SubmissionLock{
		client: client,
		prefix: "lock:",
	}
}

// Acquire sets the key to a fresh token if it is absent.
// ok is false when another holder owns the key.
func (l *SubmissionLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	result, err := l.client.SetArgs(ctx, l.prefix+key, token, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis lock acquire: %w", err)
	}
	return token, result == "OK", nil
}

// Release deletes the key if token still owns it. Releasing an expired or
// stolen lock is not an error.
func (l *SubmissionLock) Release(ctx context.Context, key string, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.prefix + key}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("redis lock release: %w", err)
	}
	return nil
}

package ports

import (
	"context"
	"time"
)

//go:generate mockgen -source=storage.go -destination=mocks/mock_storage.go -package=mocks

// SubmissionLock serializes submissions from one source address.
type SubmissionLock interface {
	// Acquire takes the lock for key. It returns a token for Release, or
	// ok=false when another holder has it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Release frees the lock only if token still owns it.
	Release(ctx context.Context, key string, token string) error
}

// OutcomeCache stores serialized payment records by idempotency key.
type OutcomeCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns nil on miss
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RateLimiter counts requests in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

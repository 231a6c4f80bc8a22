// Package memory holds in-process stand-ins for the Redis adapters, used when
// Redis is disabled. State is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"xrpl-wallet/internal/core/ports"
)

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) live(now time.Time) bool {
	return e.expiresAt.IsZero() || now.Before(e.expiresAt)
}

// SubmissionLock implements ports.SubmissionLock for a single process.
type SubmissionLock struct {
	mu    sync.Mutex
	held  map[string]entry
	clock func() time.Time
}

// NewSubmissionLock creates an empty lock table.
func NewSubmissionLock() *SubmissionLock {
	return &SubmissionLock{held: map[string]entry{}, clock: time.Now}
}

// Acquire takes key if it is free or its previous holder expired.
func (l *SubmissionLock) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if e, ok := l.held[key]; ok && e.live(now) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[key] = entry{value: token, expiresAt: expiry(now, ttl)}
	return token, true, nil
}

// Release frees key if token still owns it.
func (l *SubmissionLock) Release(_ context.Context, key string, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.held[key]; ok && e.value == token {
		delete(l.held, key)
	}
	return nil
}

// OutcomeCache implements ports.OutcomeCache in memory.
type OutcomeCache struct {
	mu    sync.RWMutex
	items map[string]entry
	clock func() time.Time
}

// NewOutcomeCache creates an empty cache.
func NewOutcomeCache() *OutcomeCache {
	return &OutcomeCache{items: map[string]entry{}, clock: time.Now}
}

// Get returns nil, nil on a miss.
func (c *OutcomeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || !e.live(c.clock()) {
		return nil, nil
	}
	return []byte(e.value), nil
}

// Set stores value for ttl.
func (c *OutcomeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{value: string(value), expiresAt: expiry(c.clock(), ttl)}
	return nil
}

// Delete removes key; a missing key is not an error.
func (c *OutcomeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// RateLimitStore implements ports.RateLimiter in memory.
type RateLimitStore struct {
	mu     sync.Mutex
	window int64
	counts map[string]int64
	clock  func() time.Time
}

// NewRateLimitStore creates an empty counter table.
func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{counts: map[string]int64{}, clock: time.Now}
}

// Allow counts one request against key in the current fixed window.
func (s *RateLimitStore) Allow(_ context.Context, key string, limit int64, window time.Duration) (*ports.RateLimitResult, error) {
	seconds := int64(window.Seconds())
	if seconds <= 0 {
		return nil, fmt.Errorf("rate limit window must be at least one second")
	}
	windowID := s.clock().Unix() / seconds

	s.mu.Lock()
	if windowID != s.window {
		s.window = windowID
		s.counts = map[string]int64{}
	}
	s.counts[key]++
	count := s.counts[key]
	s.mu.Unlock()

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &ports.RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   (windowID + 1) * seconds,
	}, nil
}

func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

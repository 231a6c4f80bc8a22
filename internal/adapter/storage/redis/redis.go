package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"xrpl-wallet/config"
)

const dialCheckTimeout = 5 * time.Second

// Store owns the connection shared by the submission lock, the outcome cache
// and the rate limiter. It also serves as the "redis" health check.
type Store struct {
	client *goredis.Client
}

// Open connects to Redis and fails fast when the server does not answer PING.
func Open(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	s := &Store{client: client}

	pingCtx, cancel := context.WithTimeout(ctx, dialCheckTimeout)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr(), err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Msg("redis connected")
	return s, nil
}

// NewStore wraps an existing client.
func NewStore(client *goredis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) SubmissionLock() *SubmissionLock { return NewSubmissionLock(s.client) }
func (s *Store) OutcomeCache() *OutcomeCache     { return NewOutcomeCache(s.client) }
func (s *Store) RateLimiter() *RateLimitStore    { return NewRateLimitStore(s.client) }

// Ping implements ports.HealthChecker.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "redis" }

func (s *Store) Close() error { return s.client.Close() }

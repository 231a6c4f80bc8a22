package ports

import "context"

// HealthChecker is a dependency reported by GET /health: the ledger endpoint
// and, when enabled, Redis.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Name() string
}

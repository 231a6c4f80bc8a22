package middleware

import (
	"fmt"
	"strconv"
	"time"

	"xrpl-wallet/internal/core/ports"
	"xrpl-wallet/pkg/apperror"
	"xrpl-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules returns the per-client limits for each endpoint group.
// paymentsPerMinute caps payment submissions; reads get four times as much.
func DefaultRateLimitRules(paymentsPerMinute int64) map[string]RateLimitRule {
	if paymentsPerMinute <= 0 {
		paymentsPerMinute = 30
	}
	return map[string]RateLimitRule{
		"payments": {Limit: paymentsPerMinute, Window: time.Minute},
		"wallet":   {Limit: 4 * paymentsPerMinute, Window: time.Minute},
	}
}

// RateLimiter creates a rate-limiting middleware for a given endpoint group.
// Store failures let the request through.
func RateLimiter(store ports.RateLimiter, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", extractIdentifier(c), group)

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			retryAfter := result.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Abort(c, apperror.ErrRateLimitExceeded())
			return
		}

		c.Next()
	}
}

// extractIdentifier keys limits by token subject, falling back to client IP.
func extractIdentifier(c *gin.Context) string {
	if sub := c.GetString(CtxSubject); sub != "" {
		return "sub:" + sub
	}
	return "ip:" + c.ClientIP()
}

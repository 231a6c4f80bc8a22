package handler

import (
	"xrpl-wallet/internal/adapter/http/middleware"
	"xrpl-wallet/internal/core/domain"
	"xrpl-wallet/internal/core/ports"
	"xrpl-wallet/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Wallet            *domain.WalletIdentity
	BalanceSvc        ports.BalanceService
	PaymentSvc        ports.PaymentService
	TokenSvc          ports.TokenService
	RateLimiter       ports.RateLimiter // nil = rate limiting disabled
	PaymentsPerMinute int64
	HealthCheckers    []ports.HealthChecker
	Metrics           *metrics.Metrics // nil = no /metrics endpoint
	Mode              string           // gin mode; defaults to release
	Logger            zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	mode := deps.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.MaxBodySize(16 << 10))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/openapi.yaml", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules(deps.PaymentsPerMinute)
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimiter, group, rules[group], deps.Logger)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.Wallet, deps.BalanceSvc, deps.PaymentSvc, deps.Logger)

	v1 := r.Group("/api/v1", jwtAuth)
	{
		v1.GET("/wallet", rl("wallet"), walletHandler.GetWallet)
		v1.GET("/wallet/balance", rl("wallet"), walletHandler.GetBalance)
		v1.POST("/payments", rl("payments"), walletHandler.SendPayment)
	}

	return r
}

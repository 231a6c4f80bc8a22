package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"xrpl-wallet/config"
	"xrpl-wallet/internal/adapter/storage/memory"
	redisStore "xrpl-wallet/internal/adapter/storage/redis"
	"xrpl-wallet/internal/core/domain"
	"xrpl-wallet/internal/core/ports"
	"xrpl-wallet/internal/metrics"
	"xrpl-wallet/internal/service"
	"xrpl-wallet/internal/xrpl/rpc"
	"xrpl-wallet/internal/xrpl/signing"
	"xrpl-wallet/pkg/apperror"
	"xrpl-wallet/pkg/logger"
)

// app is the wired object graph shared by every command.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
	printer *service.Printer

	ledger   *rpc.Client
	faucet   *rpc.FaucetClient
	wallets  *service.WalletServiceImpl
	balances *service.BalanceServiceImpl
	payments *service.PaymentServiceImpl
	tokens   *service.JWTTokenService
	limiter  ports.RateLimiter
	health   []ports.HealthChecker

	closers []func() error
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	printer, err := service.NewPrinter(opts.stdout, opts.output)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	m := metrics.New()
	httpClient := &http.Client{Timeout: cfg.Ledger.RequestTimeout}

	a := &app{
		cfg:     cfg,
		log:     log,
		metrics: m,
		printer: printer,
	}

	a.ledger = rpc.NewClient(cfg.Ledger.RPCURL, httpClient, logger.Component(log, "rpc"), rpc.WithObserver(m.ObserveRPC))
	a.faucet = rpc.NewFaucetClient(cfg.Ledger.FaucetURL, httpClient, logger.Component(log, "faucet"))
	a.health = append(a.health, a.ledger)

	var (
		lock  ports.SubmissionLock
		cache ports.OutcomeCache
	)
	if cfg.Redis.Enabled {
		store, err := redisStore.Open(ctx, cfg.Redis, log)
		if err != nil {
			return nil, apperror.InternalError(err)
		}
		a.closers = append(a.closers, store.Close)
		lock = store.SubmissionLock()
		cache = store.OutcomeCache()
		a.limiter = store.RateLimiter()
		a.health = append(a.health, store)
	} else {
		lock = memory.NewSubmissionLock()
		cache = memory.NewOutcomeCache()
		a.limiter = memory.NewRateLimitStore()
	}

	a.wallets = service.NewWalletService(logger.Component(log, "wallet"))
	a.balances = service.NewBalanceService(a.ledger, m, logger.Component(log, "balance"))
	a.payments = service.NewPaymentService(a.ledger, lock, cache, service.PaymentConfigFrom(cfg.Ledger), m, logger.Component(log, "payment"))
	a.tokens = service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	log.Debug().
		Str("rpc_url", cfg.Ledger.RPCURL).
		Bool("redis", cfg.Redis.Enabled).
		Msg("wallet client initialised")
	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn().Err(err).Msg("close failed")
		}
	}
}

func (a *app) algorithm(flag string) (signing.Algorithm, error) {
	name := a.cfg.Wallet.Algorithm
	if flag != "" {
		name = flag
	}
	algo, err := signing.ParseAlgorithm(name)
	if err != nil {
		return "", apperror.Validation(err.Error())
	}
	return algo, nil
}

// configuredWallet derives the wallet from the configured seed. Commands that
// move funds or need a stable identity use this instead of WalletService.Load.
func (a *app) configuredWallet() (*domain.WalletIdentity, error) {
	if strings.TrimSpace(a.cfg.Wallet.Seed) == "" {
		return nil, apperror.ErrInvalidSeed(errors.New("no seed configured; set XRPLW_WALLET_SEED"))
	}
	return a.wallets.FromSeed(a.cfg.Wallet.Seed)
}

// withApp wires the app for the duration of fn.
func withApp(ctx context.Context, opts *rootOptions, fn func(a *app) error) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

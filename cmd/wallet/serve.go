package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httpHandler "xrpl-wallet/internal/adapter/http/handler"
	"xrpl-wallet/pkg/apperror"
	"xrpl-wallet/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the wallet HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				return serve(cmd.Context(), a)
			})
		},
	}
	return cmd
}

func serve(ctx context.Context, a *app) error {
	if a.cfg.JWT.Secret == "" {
		return apperror.Validation("jwt.secret must be set to serve the API (XRPLW_JWT_SECRET)")
	}
	algo, err := a.algorithm("")
	if err != nil {
		return err
	}
	wallet, err := a.wallets.Load(a.cfg.Wallet.Seed, algo)
	if err != nil {
		return err
	}

	log := logger.Component(a.log, "http")
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Wallet:            wallet,
		BalanceSvc:        a.balances,
		PaymentSvc:        a.payments,
		TokenSvc:          a.tokens,
		RateLimiter:       a.limiter,
		PaymentsPerMinute: a.cfg.Server.RateLimit,
		HealthCheckers:    a.health,
		Metrics:           a.metrics,
		Mode:              a.cfg.Server.Mode,
		Logger:            log,
	})

	ln, err := net.Listen("tcp", a.cfg.Server.Addr())
	if err != nil {
		return apperror.InternalError(err)
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Payments hold the request open until the ledger reaches a final result.
		WriteTimeout: a.cfg.Ledger.ConfirmTimeout + 30*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", ln.Addr().String()).
			Str("wallet", wallet.Address).
			Msg("HTTP server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return apperror.InternalError(err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return apperror.InternalError(err)
	}
	log.Info().Msg("Server exited")
	return nil
}

package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"xrpl-wallet/internal/core/domain"
	"xrpl-wallet/internal/core/ports"
	"xrpl-wallet/internal/xrpl/signing"
	"xrpl-wallet/pkg/apperror"
)

// RunParams parameterises one facade run.
type RunParams struct {
	Seed           string
	Algorithm      signing.Algorithm
	Destination    string
	Amount         decimal.Decimal
	Threshold      decimal.Decimal // pay only when the balance is strictly greater
	DestinationTag *uint32
	ShowSeed       bool
}

// RunReport is what a run observed and did.
type RunReport struct {
	Wallet    *domain.WalletIdentity
	Balance   *domain.BalanceSnapshot
	Attempted bool
	Outcome   *domain.PaymentOutcome
	Result    *domain.PaymentResult
}

// Runner executes wallet → balance → conditional payment.
type Runner struct {
	wallets  ports.WalletService
	balances ports.BalanceService
	payments ports.PaymentService
	printer  *Printer
	log      zerolog.Logger
}

// NewRunner creates a Runner.
func NewRunner(
	wallets ports.WalletService,
	balances ports.BalanceService,
	payments ports.PaymentService,
	printer *Printer,
	log zerolog.Logger,
) *Runner {
	return &Runner{
		wallets:  wallets,
		balances: balances,
		payments: payments,
		printer:  printer,
		log:      log,
	}
}

// Run performs one pass. Destination and amount are checked before any
// network call. The returned report is non-nil whenever a wallet was loaded.
func (r *Runner) Run(ctx context.Context, p RunParams) (*RunReport, error) {
	if err := signing.ValidateAddress(p.Destination); err != nil {
		return nil, apperror.ErrInvalidAddress(err)
	}
	if _, err := domain.PaymentDrops(p.Amount); err != nil {
		return nil, apperror.ErrInvalidAmount(err.Error())
	}

	wallet, err := r.wallets.Load(p.Seed, p.Algorithm)
	if err != nil {
		return nil, err
	}
	report := &RunReport{Wallet: wallet}
	r.printer.Wallet(wallet)
	if p.ShowSeed && wallet.Generated {
		r.printer.Seed(wallet)
	}

	snap, err := r.balances.GetBalance(ctx, wallet.Address)
	if err != nil {
		return report, err
	}
	report.Balance = snap
	r.printer.Balance(snap)

	if !snap.Exceeds(p.Threshold) {
		r.log.Info().
			Str("address", wallet.Address).
			Str("balance", snap.Balance.String()).
			Str("threshold", p.Threshold.String()).
			Msg("balance does not exceed threshold; skipping payment")
		r.printer.Insufficient(wallet.Address, p.Threshold)
		return report, nil
	}

	r.printer.PaymentStarted(p.Amount, p.Destination)
	report.Attempted = true

	outcome, err := r.payments.Submit(ctx, wallet, p.Destination, p.Amount, ports.PaymentOptions{
		DestinationTag: p.DestinationTag,
	})
	result := domain.ResultOf(outcome, err)
	report.Outcome = outcome
	report.Result = &result

	if err != nil {
		r.log.Error().Err(err).Str("kind", string(result.Kind)).Msg("payment failed")
		r.printer.PaymentFailed(result)
		return report, err
	}
	r.printer.PaymentSucceeded(outcome)
	return report, nil
}

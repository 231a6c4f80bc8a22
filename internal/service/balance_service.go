package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"xrpl-wallet/internal/core/domain"
	"xrpl-wallet/internal/core/ports"
	"xrpl-wallet/internal/metrics"
	"xrpl-wallet/internal/xrpl/signing"
	"xrpl-wallet/pkg/apperror"
)

// BalanceServiceImpl implements ports.BalanceService.
type BalanceServiceImpl struct {
	ledger  ports.LedgerClient
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewBalanceService creates a new BalanceServiceImpl. m may be nil.
func NewBalanceService(ledger ports.LedgerClient, m *metrics.Metrics, log zerolog.Logger) *BalanceServiceImpl {
	return &BalanceServiceImpl{ledger: ledger, metrics: m, log: log}
}

// GetBalance reads address from the latest validated ledger. An address with
// no account root yields an unactivated zero snapshot, not an error.
func (s *BalanceServiceImpl) GetBalance(ctx context.Context, address string) (*domain.BalanceSnapshot, error) {
	if err := signing.ValidateAddress(address); err != nil {
		return nil, apperror.ErrInvalidAddress(err)
	}

	info, err := s.ledger.AccountInfo(ctx, address)
	if errors.Is(err, domain.ErrAccountNotFound) {
		s.log.Warn().
			Str("address", address).
			Str("minimum_xrp", domain.MinimumActivationXRP.String()).
			Msg("account not activated")
		s.metrics.SetBalance(address, 0)
		return domain.UnactivatedSnapshot(address), nil
	}
	if err != nil {
		s.log.Error().Err(err).Str("address", address).Msg("balance lookup failed")
		return nil, apperror.ErrRetrievalFailed(err)
	}

	snap := &domain.BalanceSnapshot{
		Address:     address,
		Activated:   true,
		Balance:     domain.DropsToXRP(info.Drops),
		Drops:       info.Drops,
		Sequence:    info.Sequence,
		LedgerIndex: info.LedgerIndex,
	}
	s.metrics.SetBalance(address, info.Drops)
	s.metrics.SetLedgerIndex(info.LedgerIndex)

	s.log.Info().
		Str("address", address).
		Str("balance_xrp", domain.FormatXRP(snap.Balance)).
		Uint32("ledger_index", info.LedgerIndex).
		Msg("balance retrieved")
	return snap, nil
}

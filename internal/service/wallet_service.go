package service

import (
	"strings"

	"github.com/rs/zerolog"

	"xrpl-wallet/internal/core/domain"
	"xrpl-wallet/internal/xrpl/signing"
	"xrpl-wallet/pkg/apperror"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	log zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(log zerolog.Logger) *WalletServiceImpl {
	return &WalletServiceImpl{log: log}
}

// FromSeed derives the identity encoded by a family seed. The key algorithm is
// taken from the seed's prefix.
func (s *WalletServiceImpl) FromSeed(seed string) (*domain.WalletIdentity, error) {
	keys, err := signing.FromSeed(seed)
	if err != nil {
		return nil, apperror.ErrInvalidSeed(err)
	}

	w := domain.NewWalletIdentity(keys, false)
	s.log.Debug().
		Str("address", w.Address).
		Str("algorithm", string(w.Algorithm)).
		Msg("wallet loaded from seed")
	return w, nil
}

// Generate creates a wallet from fresh CSPRNG entropy.
func (s *WalletServiceImpl) Generate(algo signing.Algorithm) (*domain.WalletIdentity, error) {
	if _, err := signing.ParseAlgorithm(string(algo)); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	keys, err := signing.Generate(algo)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	w := domain.NewWalletIdentity(keys, true)
	s.log.Info().
		Str("address", w.Address).
		Str("algorithm", string(w.Algorithm)).
		Msg("generated new wallet")
	return w, nil
}

// Load derives from seed when one is given and generates a wallet otherwise.
// A generated wallet is lost when the process exits unless its seed is exported.
func (s *WalletServiceImpl) Load(seed string, algo signing.Algorithm) (*domain.WalletIdentity, error) {
	if strings.TrimSpace(seed) != "" {
		return s.FromSeed(seed)
	}
	w, err := s.Generate(algo)
	if err != nil {
		return nil, err
	}
	s.log.Warn().
		Str("address", w.Address).
		Msg("no seed configured; using an ephemeral wallet (set XRPLW_WALLET_SEED to keep an identity)")
	return w, nil
}

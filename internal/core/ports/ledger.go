package ports

import (
	"context"

	"xrpl-wallet/internal/core/domain"
)

//go:generate mockgen -source=ledger.go -destination=mocks/mock_ledger.go -package=mocks

// LedgerClient is the subset of the rippled API the wallet needs.
type LedgerClient interface {
	AccountInfo(ctx context.Context, address string) (*domain.AccountInfo, error)
	Fee(ctx context.Context) (*domain.FeeInfo, error)
	ValidatedLedgerIndex(ctx context.Context) (uint32, error)
	Submit(ctx context.Context, blob string) (*domain.SubmitResult, error)
	Tx(ctx context.Context, hash string) (*domain.TxStatus, error)
}

// Faucet funds testnet accounts.
type Faucet interface {
	Fund(ctx context.Context, address string) (*domain.FaucetGrant, error)
}

package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"xrpl-wallet/internal/core/domain"
	"xrpl-wallet/internal/xrpl/signing"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// WalletService derives or creates wallet identities.
type WalletService interface {
	FromSeed(seed string) (*domain.WalletIdentity, error)
	Generate(algo signing.Algorithm) (*domain.WalletIdentity, error)
	Load(seed string, algo signing.Algorithm) (*domain.WalletIdentity, error)
}

// BalanceService reads account balances.
type BalanceService interface {
	GetBalance(ctx context.Context, address string) (*domain.BalanceSnapshot, error)
}

// PaymentService sends XRP and waits for a final result.
type PaymentService interface {
	Submit(ctx context.Context, wallet *domain.WalletIdentity, destination string, amount decimal.Decimal, opts PaymentOptions) (*domain.PaymentOutcome, error)
}

// PaymentOptions are optional payment parameters.
type PaymentOptions struct {
	DestinationTag *uint32
	SourceTag      *uint32
	IdempotencyKey string
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

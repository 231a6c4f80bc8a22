package dto

import (
	"strconv"

	"xrpl-wallet/internal/core/domain"
)

// PaymentRequest is the request body for POST /api/v1/payments.
type PaymentRequest struct {
	Destination    string  `json:"destination" binding:"required,xrpl_address"`
	Amount         string  `json:"amount" binding:"required,xrp_amount"` // XRP, decimal string
	DestinationTag *uint32 `json:"destination_tag,omitempty"`
	SourceTag      *uint32 `json:"source_tag,omitempty"`
}

// WalletResponse describes the configured signing wallet. It never carries the seed.
type WalletResponse struct {
	Address   string `json:"address"`
	Algorithm string `json:"algorithm"`
	PublicKey string `json:"public_key"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Address     string `json:"address"`
	Activated   bool   `json:"activated"`
	Balance     string `json:"balance"` // XRP
	Drops       string `json:"drops"`
	LedgerIndex uint32 `json:"ledger_index,omitempty"`
	Notice      string `json:"notice,omitempty"`
}

// PaymentResponse is the response for a validated payment.
type PaymentResponse struct {
	Hash        string `json:"hash"`
	Result      string `json:"result"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
	FeeDrops    uint64 `json:"fee_drops"`
	Sequence    uint32 `json:"sequence"`
	LedgerIndex uint32 `json:"ledger_index"`
}

// ToWalletResponse maps a wallet identity.
func ToWalletResponse(w *domain.WalletIdentity) WalletResponse {
	return WalletResponse{
		Address:   w.Address,
		Algorithm: string(w.Algorithm),
		PublicKey: w.PublicKey,
	}
}

// ToBalanceResponse maps a balance snapshot.
func ToBalanceResponse(s *domain.BalanceSnapshot) BalanceResponse {
	return BalanceResponse{
		Address:     s.Address,
		Activated:   s.Activated,
		Balance:     s.Balance.String(),
		Drops:       strconv.FormatUint(s.Drops, 10),
		LedgerIndex: s.LedgerIndex,
		Notice:      s.Notice,
	}
}

// ToPaymentResponse maps a payment outcome.
func ToPaymentResponse(o *domain.PaymentOutcome) PaymentResponse {
	return PaymentResponse{
		Hash:        o.Hash,
		Result:      o.Result,
		Source:      o.Source,
		Destination: o.Destination,
		Amount:      o.Amount.String(),
		FeeDrops:    o.FeeDrops,
		Sequence:    o.Sequence,
		LedgerIndex: o.LedgerIndex,
	}
}

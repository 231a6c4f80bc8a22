package domain

import (
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"

	"xrpl-wallet/pkg/apperror"
)

// PaymentIntent is a validated request to move XRP out of a wallet.
type PaymentIntent struct {
	Source         string
	Destination    string
	Amount         decimal.Decimal
	Drops          uint64
	DestinationTag *uint32
	SourceTag      *uint32
	IdempotencyKey string
}

// Fingerprint identifies what the intent pays, so an idempotency key can be
// checked against the payment it was first used for.
func (p *PaymentIntent) Fingerprint() string {
	tag := func(t *uint32) string {
		if t == nil {
			return "-"
		}
		return strconv.FormatUint(uint64(*t), 10)
	}
	sum := blake2b.Sum256([]byte(strings.Join([]string{
		p.Source,
		p.Destination,
		strconv.FormatUint(p.Drops, 10),
		tag(p.DestinationTag),
		tag(p.SourceTag),
	}, "|")))
	return hex.EncodeToString(sum[:])
}

// PaymentOutcome describes a payment validated with tesSUCCESS.
type PaymentOutcome struct {
	Hash        string          `json:"hash"`
	Result      string          `json:"result"`
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
	FeeDrops    uint64          `json:"fee_drops"`
	Sequence    uint32          `json:"sequence"`
	LedgerIndex uint32          `json:"ledger_index"`
}

// PaymentResultKind tags a PaymentResult.
type PaymentResultKind string

const (
	PaymentSucceeded      PaymentResultKind = "success"
	PaymentRejected       PaymentResultKind = "rejected"
	PaymentExpired        PaymentResultKind = "expired"
	PaymentTransportError PaymentResultKind = "transport_error"
	PaymentInvalid        PaymentResultKind = "invalid"
)

// PaymentResult is the single tagged value a payment resolves to.
type PaymentResult struct {
	Kind  PaymentResultKind
	Hash  string // set for success, and for failures after submission
	Code  string // ledger result code for rejected payments
	Cause error
}

// ResultOf folds the (outcome, error) pair returned by a payment into a PaymentResult.
func ResultOf(outcome *PaymentOutcome, err error) PaymentResult {
	if err == nil {
		if outcome == nil {
			return PaymentResult{Kind: PaymentTransportError, Cause: errors.New("no outcome")}
		}
		return PaymentResult{Kind: PaymentSucceeded, Hash: outcome.Hash, Code: outcome.Result}
	}

	res := PaymentResult{Cause: err}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		res.Kind = PaymentTransportError
		return res
	}
	res.Hash = appErr.Hash

	switch appErr.Code {
	case "LED_003":
		res.Kind = PaymentRejected
		res.Code = appErr.Result
	case "LED_004":
		res.Kind = PaymentExpired
	case "WAL_001", "WAL_002", "WAL_003", "REQ_001":
		res.Kind = PaymentInvalid
	default:
		res.Kind = PaymentTransportError
	}
	return res
}

package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Engine result prefixes. Only tes means applied successfully.
const (
	ResultSuccess = "tesSUCCESS"

	resultClassMalformed = "tem"
	resultClassClaimed   = "tec"
)

// AccountInfo is the validated-ledger view of an account root.
type AccountInfo struct {
	Address     string
	Drops       uint64
	Sequence    uint32
	LedgerIndex uint32
}

// FeeInfo holds transaction cost levels in drops.
type FeeInfo struct {
	BaseFee       uint64
	MinimumFee    uint64
	OpenLedgerFee uint64
	LedgerIndex   uint32
}

// SubmitResult is the preliminary (non-final) answer to a submit call.
type SubmitResult struct {
	EngineResult        string
	EngineResultCode    int
	EngineResultMessage string
	Hash                string
	Accepted            bool
}

// RejectedOutright reports whether the preliminary result means the
// transaction can never be included in a ledger as signed. Other non-success
// preliminary results (tef, tel, ter) can still change, so they are waited on.
func (r *SubmitResult) RejectedOutright() bool {
	return IsRejectedOutright(r.EngineResult)
}

// IsRejectedOutright reports whether an engine result is a tem (malformed)
// code.
func IsRejectedOutright(code string) bool {
	return strings.HasPrefix(code, resultClassMalformed)
}

// IsClaimedFee reports whether the code is a tec result: included in a
// ledger with the fee charged but the payment not applied.
func IsClaimedFee(code string) bool {
	return strings.HasPrefix(code, resultClassClaimed)
}

// TxStatus is a tx lookup result.
type TxStatus struct {
	Hash        string
	Validated   bool
	Result      string // meta.TransactionResult, empty until included in a ledger
	LedgerIndex uint32
}

// FaucetGrant is returned by the testnet faucet.
type FaucetGrant struct {
	Address string
	Amount  decimal.Decimal
	Hash    string
}

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrTxnNotFound     = errors.New("transaction not found")
)

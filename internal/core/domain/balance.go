package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FaucetPage is where testnet XRP can be requested by hand.
const FaucetPage = "https://xrpl.org/xrp-testnet-faucet.html"

// MinimumActivationXRP is the deposit needed to create an account root.
var MinimumActivationXRP = decimal.NewFromInt(10)

// BalanceSnapshot is an account balance read from the latest validated ledger.
type BalanceSnapshot struct {
	Address     string          `json:"address"`
	Activated   bool            `json:"activated"`
	Balance     decimal.Decimal `json:"balance"`
	Drops       uint64          `json:"drops"`
	Sequence    uint32          `json:"sequence,omitempty"`
	LedgerIndex uint32          `json:"ledger_index,omitempty"`
	Notice      string          `json:"notice,omitempty"`
}

// UnactivatedSnapshot is the zero-balance snapshot for an address with no
// account root on the validated ledger.
func UnactivatedSnapshot(address string) *BalanceSnapshot {
	return &BalanceSnapshot{
		Address: address,
		Balance: decimal.Zero,
		Notice:  ActivationNotice(address),
	}
}

// ActivationNotice tells the user how to activate an address.
func ActivationNotice(address string) string {
	return fmt.Sprintf(
		"Account %s is not activated. Send at least %s XRP to it to create it; on testnet use the faucet at %s",
		address, MinimumActivationXRP.String(), FaucetPage,
	)
}

// Exceeds reports whether the balance is strictly greater than threshold.
func (b *BalanceSnapshot) Exceeds(threshold decimal.Decimal) bool {
	return b.Balance.GreaterThan(threshold)
}

package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// DropsPerXRP is the fixed scale between XRP and its smallest unit.
const DropsPerXRP = 1_000_000

// MaxDrops is the total XRP supply expressed in drops.
const MaxDrops uint64 = 100_000_000_000_000_000

var dropsPerXRP = decimal.NewFromInt(DropsPerXRP)

var (
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrAmountNegative    = errors.New("amount must not be negative")
	ErrFractionalDrops   = errors.New("amount has more than 6 decimal places")
	ErrAmountTooLarge    = errors.New("amount exceeds the XRP supply")
	ErrAmountSyntax      = errors.New("amount is not a decimal number")
)

// ParseXRP parses a decimal XRP amount such as "10" or "0.000001".
func ParseXRP(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrAmountSyntax
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrAmountSyntax
	}
	return d, nil
}

// XRPToDropsExact converts an XRP amount to drops without rounding. It is the
// inverse of DropsToXRP over [0, MaxDrops].
func XRPToDropsExact(xrp decimal.Decimal) (uint64, error) {
	if xrp.IsNegative() {
		return 0, ErrAmountNegative
	}
	drops := xrp.Mul(dropsPerXRP)
	if !drops.IsInteger() {
		return 0, ErrFractionalDrops
	}
	if drops.GreaterThan(decimal.NewFromUint64(MaxDrops)) {
		return 0, ErrAmountTooLarge
	}
	return drops.BigInt().Uint64(), nil
}

// PaymentDrops converts a payment amount, which must be positive, to drops.
func PaymentDrops(xrp decimal.Decimal) (uint64, error) {
	if !xrp.IsPositive() {
		return 0, ErrAmountNotPositive
	}
	return XRPToDropsExact(xrp)
}

// DropsToXRP converts drops to an exact XRP amount.
func DropsToXRP(drops uint64) decimal.Decimal {
	return decimal.NewFromUint64(drops).Shift(-6)
}

// FormatXRP renders an XRP amount with the full six decimal places.
func FormatXRP(xrp decimal.Decimal) string {
	return xrp.StringFixed(6)
}

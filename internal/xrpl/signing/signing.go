// Package signing binds XRPL keys to the rest of the wallet. Seeds, key
// derivation, address encoding and transaction serialization come from
// xrpl-go; this package only narrows them to the Payment flow the wallet uses.
package signing

import (
	"errors"
	"fmt"
	"strings"

	addresscodec "github.com/Peersyst/xrpl-go/address-codec"
	binarycodec "github.com/Peersyst/xrpl-go/binary-codec"
	"github.com/Peersyst/xrpl-go/pkg/crypto"
	"github.com/Peersyst/xrpl-go/xrpl/wallet"
)

// Algorithm identifies the key type a seed derives.
type Algorithm string

const (
	ED25519   Algorithm = "ed25519"
	SECP256K1 Algorithm = "secp256k1"
)

// ed25519 public keys carry this one-byte prefix in hex.
const ed25519KeyPrefix = "ED"

var ErrInvalidAddress = errors.New("not a classic XRPL address")

// ParseAlgorithm maps a configuration string to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case ED25519, SECP256K1:
		return Algorithm(s), nil
	}
	return "", fmt.Errorf("unsupported key algorithm %q", s)
}

// IsValidAddress reports whether s is a checksummed classic address.
func IsValidAddress(s string) bool {
	return addresscodec.IsValidClassicAddress(s)
}

// ValidateAddress is IsValidAddress with an error naming the input.
func ValidateAddress(s string) error {
	if !IsValidAddress(s) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return nil
}

// Keys is a derived keypair and the seed it came from.
type Keys struct {
	w    wallet.Wallet
	algo Algorithm
}

// FromSeed derives keys from a family seed. The algorithm is read from the
// seed's prefix ("sEd" for ed25519).
func FromSeed(seed string) (*Keys, error) {
	w, err := wallet.FromSeed(strings.TrimSpace(seed), "")
	if err != nil {
		return nil, fmt.Errorf("derive keys: %w", err)
	}
	return newKeys(w), nil
}

// Generate creates keys from fresh random entropy.
func Generate(algo Algorithm) (*Keys, error) {
	var (
		w   wallet.Wallet
		err error
	)
	switch algo {
	case ED25519:
		w, err = wallet.New(crypto.ED25519())
	case SECP256K1:
		w, err = wallet.New(crypto.SECP256K1())
	default:
		return nil, fmt.Errorf("unsupported key algorithm %q", algo)
	}
	if err != nil {
		return nil, fmt.Errorf("generate keys: %w", err)
	}
	return newKeys(w), nil
}

func newKeys(w wallet.Wallet) *Keys {
	algo := SECP256K1
	if strings.HasPrefix(strings.ToUpper(w.PublicKey), ed25519KeyPrefix) {
		algo = ED25519
	}
	return &Keys{w: w, algo: algo}
}

func (k *Keys) Address() string      { return k.w.ClassicAddress.String() }
func (k *Keys) PublicKey() string    { return k.w.PublicKey }
func (k *Keys) Algorithm() Algorithm { return k.algo }

// Seed returns the family seed. Callers must treat it as a secret.
func (k *Keys) Seed() string { return k.w.Seed }

// Payment is a native XRP payment ready for signing. Amount and Fee are drops.
type Payment struct {
	Account            string
	Destination        string
	Amount             uint64
	Fee                uint64
	Sequence           uint32
	LastLedgerSequence uint32
	DestinationTag     *uint32
	SourceTag          *uint32
	NetworkID          *uint32 // required only on networks whose id is above 1024
}

// Flatten renders the payment in the JSON shape the binary codec encodes.
func (p *Payment) Flatten() map[string]any {
	tx := map[string]any{
		"TransactionType":    "Payment",
		"Account":            p.Account,
		"Destination":        p.Destination,
		"Amount":             fmt.Sprint(p.Amount),
		"Fee":                fmt.Sprint(p.Fee),
		"Sequence":           p.Sequence,
		"LastLedgerSequence": p.LastLedgerSequence,
	}
	if p.DestinationTag != nil {
		tx["DestinationTag"] = *p.DestinationTag
	}
	if p.SourceTag != nil {
		tx["SourceTag"] = *p.SourceTag
	}
	if p.NetworkID != nil {
		tx["NetworkID"] = *p.NetworkID
	}
	return tx
}

// SignPayment signs p with k and returns the hex blob for submit and the
// transaction hash.
func (k *Keys) SignPayment(p *Payment) (blob, hash string, err error) {
	if p.Account != k.Address() {
		return "", "", fmt.Errorf("payment account %s is not the signing account %s", p.Account, k.Address())
	}
	blob, hash, err = k.w.Sign(p.Flatten())
	if err != nil {
		return "", "", fmt.Errorf("sign payment: %w", err)
	}
	return blob, hash, nil
}

// DecodeBlob turns a serialized transaction back into its JSON fields.
func DecodeBlob(blob string) (map[string]any, error) {
	return binarycodec.Decode(blob)
}

package domain

import "xrpl-wallet/internal/xrpl/signing"

// WalletIdentity is a keypair bound to its classic address.
// The seed is reachable only through Seed() and is never serialized.
type WalletIdentity struct {
	Address   string            `json:"address"`
	Algorithm signing.Algorithm `json:"algorithm"`
	PublicKey string            `json:"public_key"`
	Generated bool              `json:"generated"` // true when no seed was supplied

	keys *signing.Keys
}

// NewWalletIdentity wraps derived keys.
func NewWalletIdentity(keys *signing.Keys, generated bool) *WalletIdentity {
	return &WalletIdentity{
		Address:   keys.Address(),
		Algorithm: keys.Algorithm(),
		PublicKey: keys.PublicKey(),
		Generated: generated,
		keys:      keys,
	}
}

// Seed returns the family seed. Callers must treat it as a secret.
func (w *WalletIdentity) Seed() string {
	if w.keys == nil {
		return ""
	}
	return w.keys.Seed()
}

// Keys returns the signing keys.
func (w *WalletIdentity) Keys() *signing.Keys {
	return w.keys
}

// String prints the address only so the identity is safe in format verbs.
func (w *WalletIdentity) String() string {
	return w.Address
}

package domain

// BuildIdempotencyKey scopes a caller-supplied key to the paying address.
func BuildIdempotencyKey(source, key string) string {
	return source + ":" + key
}

// BuildLockKey names the per-address submission lock.
func BuildLockKey(source string) string {
	return "submit:" + source
}

// PaymentRecord is what an idempotency key remembers. Until Validated is set
// it describes a signed submission whose result has not been observed;
// Outcome.Hash and LastLedgerSequence are enough to resolve it.
type PaymentRecord struct {
	Fingerprint        string         `json:"fingerprint"`
	LastLedgerSequence uint32         `json:"last_ledger_sequence,omitempty"`
	Validated          bool           `json:"validated"`
	Outcome            PaymentOutcome `json:"outcome"`
}

package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"testing/quick"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xrpl-wallet/internal/xrpl/signing"
	"xrpl-wallet/pkg/apperror"
)

func TestPaymentDrops(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    uint64
		wantErr error
	}{
		{"whole", "10", 10_000_000, nil},
		{"one drop", "0.000001", 1, nil},
		{"six places", "1.234567", 1_234_567, nil},
		{"trailing zeros", "2.500000000", 2_500_000, nil},
		{"fractional drop", "0.0000001", 0, ErrFractionalDrops},
		{"zero", "0", 0, ErrAmountNotPositive},
		{"negative", "-1", 0, ErrAmountNotPositive},
		{"supply", "100000000000", MaxDrops, nil},
		{"over supply", "100000000000.000001", 0, ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PaymentDrops(decimal.RequireFromString(tt.amount))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestXRPToDropsExact_AcceptsZero(t *testing.T) {
	drops, err := XRPToDropsExact(decimal.Zero)
	require.NoError(t, err)
	assert.Zero(t, drops)

	_, err = XRPToDropsExact(decimal.RequireFromString("-0.000001"))
	assert.ErrorIs(t, err, ErrAmountNegative)
	_, err = XRPToDropsExact(decimal.RequireFromString("0.0000005"))
	assert.ErrorIs(t, err, ErrFractionalDrops)
}

func TestDropsToXRP(t *testing.T) {
	assert.Equal(t, "10.000000", FormatXRP(DropsToXRP(10_000_000)))
	assert.Equal(t, "0.000001", FormatXRP(DropsToXRP(1)))
	assert.Equal(t, "100000000000.000000", FormatXRP(DropsToXRP(MaxDrops)))
	assert.True(t, DropsToXRP(0).IsZero())
}

func TestDropsRoundTrip(t *testing.T) {
	roundTrip := func(drops uint64) bool {
		got, err := XRPToDropsExact(DropsToXRP(drops))
		return err == nil && got == drops
	}

	for _, drops := range []uint64{0, 1, 9, 10, 999_999, 1_000_000, 10_000_000, 123_456_789, MaxDrops - 1, MaxDrops} {
		assert.True(t, roundTrip(drops), "drops=%d", drops)
	}

	inSupply := func(n uint64) bool { return roundTrip(n % (MaxDrops + 1)) }
	require.NoError(t, quick.Check(inSupply, &quick.Config{MaxCount: 5000}))

	// Through the decimal text the CLI and API use.
	viaText := func(n uint64) bool {
		drops := n % (MaxDrops + 1)
		xrp, err := ParseXRP(FormatXRP(DropsToXRP(drops)))
		if err != nil {
			return false
		}
		got, err := XRPToDropsExact(xrp)
		return err == nil && got == drops
	}
	require.NoError(t, quick.Check(viaText, nil))
}

func TestParseXRP(t *testing.T) {
	d, err := ParseXRP(" 1.5 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("1.5")))

	for _, bad := range []string{"", "abc", "1e3", "1,5"} {
		_, err := ParseXRP(bad)
		assert.ErrorIs(t, err, ErrAmountSyntax, bad)
	}
}

func TestBalanceSnapshot_Exceeds(t *testing.T) {
	threshold := decimal.NewFromInt(10)
	tests := []struct {
		balance string
		want    bool
	}{
		{"10", false},
		{"10.000001", true},
		{"9.999999", false},
		{"0", false},
	}
	for _, tt := range tests {
		s := &BalanceSnapshot{Balance: decimal.RequireFromString(tt.balance)}
		assert.Equal(t, tt.want, s.Exceeds(threshold), tt.balance)
	}
}

func TestUnactivatedSnapshot(t *testing.T) {
	s := UnactivatedSnapshot("rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe")

	assert.False(t, s.Activated)
	assert.True(t, s.Balance.IsZero())
	assert.Contains(t, s.Notice, "10 XRP")
	assert.Contains(t, s.Notice, FaucetPage)
	assert.Contains(t, s.Notice, "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe")
}

func TestIsRejectedOutright(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"tesSUCCESS", false},
		{"terQUEUED", false},
		{"tecUNFUNDED_PAYMENT", false},
		{"temBAD_AMOUNT", true},
		{"temREDUNDANT", true},
		{"tefPAST_SEQ", false},
		{"telINSUF_FEE_P", false},
		{"telCAN_NOT_QUEUE_FULL", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRejectedOutright(tt.code), tt.code)
	}
	assert.True(t, IsClaimedFee("tecNO_DST_INSUF_XRP"))
}

func TestResultOf(t *testing.T) {
	tests := []struct {
		name     string
		outcome  *PaymentOutcome
		err      error
		wantKind PaymentResultKind
		wantCode string
		wantHash string
	}{
		{"success", &PaymentOutcome{Hash: "AB", Result: ResultSuccess}, nil, PaymentSucceeded, ResultSuccess, "AB"},
		{"rejected", nil, apperror.ErrTransactionRejected("CD", "tecPATH_DRY"), PaymentRejected, "tecPATH_DRY", "CD"},
		{"expired", nil, apperror.ErrTransactionExpired("EF", 10), PaymentExpired, "", "EF"},
		{"invalid amount", nil, apperror.ErrInvalidAmount("bad"), PaymentInvalid, "", ""},
		{"submission failed", nil, fmt.Errorf("pay: %w", apperror.ErrSubmissionFailed(errors.New("reset"))), PaymentTransportError, "", ""},
		{"plain error", nil, errors.New("boom"), PaymentTransportError, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ResultOf(tt.outcome, tt.err)
			assert.Equal(t, tt.wantKind, res.Kind)
			assert.Equal(t, tt.wantCode, res.Code)
			assert.Equal(t, tt.wantHash, res.Hash)
			if tt.err != nil {
				assert.ErrorIs(t, res.Cause, tt.err)
			}
		})
	}
}

func TestWalletIdentity_HidesSeed(t *testing.T) {
	keys, err := signing.FromSeed("snoPBrXtMeMyMHUVTgbuqAfg1SUTb")
	require.NoError(t, err)

	w := NewWalletIdentity(keys, false)

	assert.Equal(t, "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", w.Address)
	assert.Equal(t, "snoPBrXtMeMyMHUVTgbuqAfg1SUTb", w.Seed())
	assert.Equal(t, w.Address, fmt.Sprintf("%v", w))

	raw, err := json.Marshal(w)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "snoPBrXtMeMyMHUVTgbuqAfg1SUTb")
	assert.Contains(t, string(raw), w.Address)
}

func TestPaymentIntent_Fingerprint(t *testing.T) {
	tag := func(v uint32) *uint32 { return &v }
	base := PaymentIntent{Source: "rA", Destination: "rB", Drops: 1_000_000, DestinationTag: tag(7)}
	fp := base.Fingerprint()
	assert.Len(t, fp, 64)

	same := base
	same.Amount = decimal.RequireFromString("1")
	same.IdempotencyKey = "other"
	same.DestinationTag = tag(7)
	assert.Equal(t, fp, same.Fingerprint(), "only what is paid counts")

	variants := map[string]func(p *PaymentIntent){
		"destination":     func(p *PaymentIntent) { p.Destination = "rC" },
		"drops":           func(p *PaymentIntent) { p.Drops++ },
		"destination tag": func(p *PaymentIntent) { p.DestinationTag = tag(8) },
		"no tag":          func(p *PaymentIntent) { p.DestinationTag = nil },
		"source tag":      func(p *PaymentIntent) { p.SourceTag = tag(7) },
	}
	for name, mutate := range variants {
		v := base
		mutate(&v)
		assert.NotEqual(t, fp, v.Fingerprint(), name)
	}
}

func TestBuildKeys(t *testing.T) {
	assert.Equal(t, "rA:k1", BuildIdempotencyKey("rA", "k1"))
	assert.Equal(t, "submit:rA", BuildLockKey("rA"))
}

package service

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"xrpl-wallet/internal/core/domain"
)

const (
	genesisSeed    = "snoPBrXtMeMyMHUVTgbuqAfg1SUTb"
	genesisAddress = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	demoDest       = "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe"
)

func genesisWallet(t *testing.T) *domain.WalletIdentity {
	t.Helper()
	w, err := NewWalletService(zerolog.Nop()).FromSeed(genesisSeed)
	require.NoError(t, err)
	return w
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xrpl-wallet/internal/xrpl/rpc/rpctest"
	"xrpl-wallet/internal/xrpl/signing"
	"xrpl-wallet/pkg/apperror"
)

const (
	genesisSeed    = "snoPBrXtMeMyMHUVTgbuqAfg1SUTb"
	genesisAddress = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	demoDest       = "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe"
)

// setupEnv points the CLI at a fake rippled with the genesis wallet funded.
func setupEnv(t *testing.T, drops uint64) *rpctest.Server {
	t.Helper()
	srv := rpctest.NewServer()
	t.Cleanup(srv.Close)
	if drops > 0 {
		srv.SetAccount(genesisAddress, drops, 1)
	}

	t.Setenv("XRPLW_LEDGER_RPC_URL", srv.URL)
	t.Setenv("XRPLW_LEDGER_POLL_INTERVAL", "5ms")
	t.Setenv("XRPLW_LEDGER_CONFIRM_TIMEOUT", "5s")
	t.Setenv("XRPLW_LOG_LEVEL", "disabled")
	t.Setenv("XRPLW_WALLET_SEED", genesisSeed)
	t.Setenv("XRPLW_REDIS_ENABLED", "false")
	return srv
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_PaysAboveThreshold(t *testing.T) {
	srv := setupEnv(t, 100_000_000)
	srv.ValidateAfter = 1

	code, out, errOut := runCLI(t, "run")

	require.Equal(t, apperror.ExitOK, code, errOut)
	assert.Contains(t, out, "Wallet address: "+genesisAddress)
	assert.Contains(t, out, "Current balance: 100 XRP")
	assert.Contains(t, out, "Sending 10 XRP to "+demoDest)
	assert.Contains(t, out, "Payment complete! Hash: ")
	assert.NotContains(t, out, genesisSeed)
	assert.Len(t, srv.Submitted(), 1)
}

func TestRun_DefaultCommand(t *testing.T) {
	srv := setupEnv(t, 10_000_000)

	code, out, _ := runCLI(t, "--threshold", "10")

	assert.Equal(t, apperror.ExitOK, code)
	assert.Contains(t, out, "Current balance: 10 XRP")
	assert.Contains(t, out, "Insufficient balance to make the payment")
	assert.Empty(t, srv.Submitted())
}

func TestRun_RejectedExitCode(t *testing.T) {
	srv := setupEnv(t, 100_000_000)
	srv.FinalResult = "tecNO_DST_INSUF_XRP"

	code, out, errOut := runCLI(t, "-o", "kv", "run", "--amount", "5")

	assert.Equal(t, apperror.ExitTransactionRejected, code)
	assert.Contains(t, out, "payment=rejected\n")
	assert.Contains(t, out, "result=tecNO_DST_INSUF_XRP\n")
	assert.Contains(t, errOut, "LED_003")
}

func TestRun_InvalidFlagsFailBeforeNetwork(t *testing.T) {
	srv := setupEnv(t, 100_000_000)

	tests := []struct {
		args []string
		code int
	}{
		{[]string{"run", "--destination", "rBogus"}, apperror.ExitInvalidInput},
		{[]string{"run", "--amount", "0.0000001"}, apperror.ExitInvalidInput},
		{[]string{"run", "--threshold", "-1"}, apperror.ExitInvalidInput},
		{[]string{"run", "--destination-tag", "x"}, apperror.ExitUsage},
		{[]string{"--output", "yaml", "run"}, apperror.ExitUsage},
	}
	for _, tt := range tests {
		code, _, _ := runCLI(t, tt.args...)
		assert.Equal(t, tt.code, code, "%v", tt.args)
	}
	assert.Empty(t, srv.Methods())
}

func TestBalance(t *testing.T) {
	setupEnv(t, 25_500_000)

	code, out, _ := runCLI(t, "-o", "kv", "balance")

	assert.Equal(t, apperror.ExitOK, code)
	assert.Contains(t, out, "address="+genesisAddress+"\n")
	assert.Contains(t, out, "balance=25.500000\n")
	assert.Contains(t, out, "activated=true\n")
}

func TestBalance_UnactivatedAddress(t *testing.T) {
	setupEnv(t, 0)

	code, out, _ := runCLI(t, "balance", "--address", demoDest)

	assert.Equal(t, apperror.ExitOK, code)
	assert.Contains(t, out, "not activated")
	assert.Contains(t, out, "Current balance: 0 XRP")
}

func TestBalance_LedgerUnreachable(t *testing.T) {
	srv := setupEnv(t, 1)
	srv.Close()

	code, _, errOut := runCLI(t, "balance")

	assert.Equal(t, apperror.ExitRetrievalFailed, code)
	assert.Contains(t, errOut, "LED_001")
}

func TestPay(t *testing.T) {
	srv := setupEnv(t, 100_000_000)

	code, out, errOut := runCLI(t, "pay", "--to", demoDest, "--amount", "1.5", "--destination-tag", "7", "--source-tag", "99")
	require.Equal(t, apperror.ExitOK, code, errOut)
	assert.Contains(t, out, "Sending 1.5 XRP to "+demoDest)
	assert.Contains(t, out, "Payment complete!")
	require.Len(t, srv.Submitted(), 1)

	tx, err := signing.DecodeBlob(srv.Submitted()[0])
	require.NoError(t, err)
	assert.EqualValues(t, 7, tx["DestinationTag"])
	assert.EqualValues(t, 99, tx["SourceTag"])
}

func TestPay_IdempotencyKeyRequiresRedis(t *testing.T) {
	srv := setupEnv(t, 100_000_000)

	code, _, errOut := runCLI(t, "pay", "--to", demoDest, "--amount", "1", "--idempotency-key", "inv-1")

	assert.Equal(t, apperror.ExitUsage, code)
	assert.Contains(t, errOut, "REQ_001")
	assert.Contains(t, errOut, "redis")
	assert.Zero(t, srv.Calls("account_info"), "nothing may reach the ledger")
	assert.Empty(t, srv.Submitted())
}

func TestPay_RedisBackedIdempotency(t *testing.T) {
	srv := setupEnv(t, 100_000_000)
	mr := miniredis.RunT(t)
	t.Setenv("XRPLW_REDIS_ENABLED", "true")
	t.Setenv("XRPLW_REDIS_HOST", mr.Host())
	t.Setenv("XRPLW_REDIS_PORT", mr.Port())

	args := []string{"-o", "kv", "pay", "--to", demoDest, "--amount", "2", "--idempotency-key", "inv-2"}
	code, first, errOut := runCLI(t, args...)
	require.Equal(t, apperror.ExitOK, code, errOut)

	// A second process sees the outcome stored by the first one.
	code, second, _ := runCLI(t, args...)
	require.Equal(t, apperror.ExitOK, code)

	assert.Len(t, srv.Submitted(), 1)
	assert.True(t, mr.Exists("outcome:"+genesisAddress+":inv-2"))
	assert.False(t, mr.Exists("lock:submit:"+genesisAddress), "lock must be released")
	assert.Equal(t, hashLine(first), hashLine(second))
}

func hashLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "hash=") {
			return line
		}
	}
	return ""
}

func TestPay_RedisUnreachable(t *testing.T) {
	setupEnv(t, 100_000_000)
	mr := miniredis.RunT(t)
	t.Setenv("XRPLW_REDIS_ENABLED", "true")
	t.Setenv("XRPLW_REDIS_HOST", mr.Host())
	t.Setenv("XRPLW_REDIS_PORT", mr.Port())
	mr.Close()

	code, _, errOut := runCLI(t, "pay", "--to", demoDest, "--amount", "1")

	assert.Equal(t, apperror.ExitInternal, code)
	assert.Contains(t, errOut, "SYS_001")
}

func TestPay_RequiresSeedAndFlags(t *testing.T) {
	srv := setupEnv(t, 100_000_000)

	code, _, _ := runCLI(t, "pay", "--amount", "1")
	assert.Equal(t, apperror.ExitUsage, code, "missing --to")

	t.Setenv("XRPLW_WALLET_SEED", "")
	code, _, errOut := runCLI(t, "pay", "--to", demoDest, "--amount", "1")
	assert.Equal(t, apperror.ExitInvalidSeed, code)
	assert.Contains(t, errOut, "XRPLW_WALLET_SEED")

	t.Setenv("XRPLW_WALLET_SEED", "sNotARealSeed")
	code, _, errOut = runCLI(t, "pay", "--to", demoDest, "--amount", "1")
	assert.Equal(t, apperror.ExitInvalidSeed, code)
	assert.NotContains(t, errOut, "sNotARealSeed")

	assert.Empty(t, srv.Submitted())
}

func TestGenerate(t *testing.T) {
	setupEnv(t, 0)

	code, out, _ := runCLI(t, "-o", "kv", "generate", "--algorithm", "secp256k1")
	assert.Equal(t, apperror.ExitOK, code)
	assert.Contains(t, out, "algorithm=secp256k1\n")
	assert.NotContains(t, out, "seed=")

	code, out, _ = runCLI(t, "-o", "kv", "generate", "--show-seed")
	assert.Equal(t, apperror.ExitOK, code)
	assert.Contains(t, out, "algorithm=ed25519\n")
	assert.Contains(t, out, "seed=sEd")

	code, _, _ = runCLI(t, "generate", "--algorithm", "rsa")
	assert.Equal(t, apperror.ExitUsage, code)
}

func TestFund(t *testing.T) {
	setupEnv(t, 0)
	var got map[string]string
	faucet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"account":{"classicAddress":"` + got["destination"] + `"},"amount":1000,"transactionHash":"FAUCETHASH"}`))
	}))
	t.Cleanup(faucet.Close)
	t.Setenv("XRPLW_LEDGER_FAUCET_URL", faucet.URL)

	code, out, _ := runCLI(t, "fund")

	assert.Equal(t, apperror.ExitOK, code)
	assert.Equal(t, genesisAddress, got["destination"])
	assert.Contains(t, out, "Faucet sent 1000 XRP to "+genesisAddress)
}

func TestFund_FaucetDown(t *testing.T) {
	setupEnv(t, 0)
	faucet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(faucet.Close)
	t.Setenv("XRPLW_LEDGER_FAUCET_URL", faucet.URL)

	code, _, errOut := runCLI(t, "fund", "--address", demoDest)

	assert.Equal(t, apperror.ExitRetrievalFailed, code)
	assert.Contains(t, errOut, "LED_005")
}

func TestToken(t *testing.T) {
	setupEnv(t, 0)

	code, _, _ := runCLI(t, "token", "--subject", "ops")
	assert.Equal(t, apperror.ExitUsage, code, "no secret configured")

	t.Setenv("XRPLW_JWT_SECRET", "cli-test-secret")
	code, out, _ := runCLI(t, "-o", "kv", "token", "--subject", "ops")
	assert.Equal(t, apperror.ExitOK, code)
	assert.True(t, strings.HasPrefix(out, "token=ey"), out)
	assert.Contains(t, out, "expires_at=")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	setupEnv(t, 0)
	t.Setenv("XRPLW_JWT_SECRET", "cli-test-secret")
	t.Setenv("XRPLW_SERVER_PORT", "0")
	t.Setenv("XRPLW_SERVER_MODE", "test")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	var stdout, stderr bytes.Buffer

	code := execute(ctx, []string{"serve"}, &stdout, &stderr)

	assert.Equal(t, apperror.ExitOK, code, stderr.String())
}

func TestServe_RequiresSecret(t *testing.T) {
	setupEnv(t, 0)

	code, _, errOut := runCLI(t, "serve")

	assert.Equal(t, apperror.ExitUsage, code)
	assert.Contains(t, errOut, "XRPLW_JWT_SECRET")
}

func TestUnknownCommand(t *testing.T) {
	setupEnv(t, 0)

	code, _, _ := runCLI(t, "transfer")

	assert.Equal(t, apperror.ExitUsage, code)
}

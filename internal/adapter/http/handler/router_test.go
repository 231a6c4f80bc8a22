package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"xrpl-wallet/internal/adapter/storage/memory"
	"xrpl-wallet/internal/core/ports"
	"xrpl-wallet/internal/metrics"
	"xrpl-wallet/internal/service"
	"xrpl-wallet/internal/xrpl/rpc"
	"xrpl-wallet/internal/xrpl/rpc/rpctest"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stack struct {
	router *gin.Engine
	ledger *rpctest.Server
	token  string
}

// newStack wires the real services against a fake rippled.
func newStack(t *testing.T, paymentsPerMinute int64) *stack {
	t.Helper()
	srv := rpctest.NewServer()
	t.Cleanup(srv.Close)
	srv.SetAccount(genesisAddress, 100_000_000, 3)

	log := zerolog.Nop()
	m := metrics.New()
	client := rpc.NewClient(srv.URL, srv.Client(), log, rpc.WithObserver(m.ObserveRPC))
	tokens := service.NewJWTTokenService("router-test-secret", time.Hour, "xrpl-wallet")
	payments := service.NewPaymentService(client, memory.NewSubmissionLock(), memory.NewOutcomeCache(), service.PaymentConfig{
		ConfirmTimeout: 5 * time.Second,
		PollInterval:   5 * time.Millisecond,
		LedgerOffset:   20,
		MaxFeeDrops:    2_000_000,
	}, m, log)

	router := SetupRouter(RouterDeps{
		Wallet:            genesisWallet(t),
		BalanceSvc:        service.NewBalanceService(client, m, log),
		PaymentSvc:        payments,
		TokenSvc:          tokens,
		RateLimiter:       memory.NewRateLimitStore(),
		PaymentsPerMinute: paymentsPerMinute,
		HealthCheckers:    []ports.HealthChecker{client},
		Metrics:           m,
		Mode:              gin.TestMode,
		Logger:            log,
	})

	token, _, err := tokens.Generate("router-test")
	require.NoError(t, err)
	return &stack{router: router, ledger: srv, token: token}
}

func (s *stack) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newStack(t, 10)

	for _, path := range []string{"/api/v1/wallet", "/api/v1/wallet/balance"} {
		w := s.do(http.MethodGet, path, "", map[string]string{"Authorization": "Bearer nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := s.do(http.MethodPost, "/api/v1/payments", `{}`, map[string]string{"Authorization": ""})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, s.ledger.Methods(), "unauthenticated requests must not reach the ledger")
}

func TestRouter_PublicEndpoints(t *testing.T) {
	s := newStack(t, 10)

	w := s.do(http.MethodGet, "/health", "", map[string]string{"Authorization": ""})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rippled"`)

	w = s.do(http.MethodGet, "/swagger/openapi.yaml", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `xrplw_rpc_requests_total{method="server_info"`)
	assert.Contains(t, w.Body.String(), `xrplw_http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestRouter_BalanceThenPayment(t *testing.T) {
	s := newStack(t, 10)
	s.ledger.ValidateAfter = 1

	w := s.do(http.MethodGet, "/api/v1/wallet/balance", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", decodeData(t, w)["balance"])

	w = s.do(http.MethodPost, "/api/v1/payments",
		`{"destination":"`+demoDest+`","amount":"10"}`,
		map[string]string{HeaderIdempotencyKey: "order-1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, "tesSUCCESS", data["result"])
	assert.Equal(t, float64(3), data["sequence"])
	hash := data["hash"].(string)
	assert.Len(t, hash, 64)

	// A retry with the same key replays the stored outcome without resubmitting.
	w = s.do(http.MethodPost, "/api/v1/payments",
		`{"destination":"`+demoDest+`","amount":"10"}`,
		map[string]string{HeaderIdempotencyKey: "order-1"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, hash, decodeData(t, w)["hash"])
	assert.Len(t, s.ledger.Submitted(), 1)
}

func TestRouter_RejectedPayment(t *testing.T) {
	s := newStack(t, 10)
	s.ledger.FinalResult = "tecNO_DST_INSUF_XRP"

	w := s.do(http.MethodPost, "/api/v1/payments", `{"destination":"`+demoDest+`","amount":"1"}`, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "LED_003", resp["error_code"])
	assert.Equal(t, "tecNO_DST_INSUF_XRP", resp["result"])
	assert.NotEmpty(t, resp["hash"])
}

func TestRouter_PaymentRateLimit(t *testing.T) {
	s := newStack(t, 2)
	body := `{"destination":"rNotAnAddress","amount":"1"}`

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/payments", body, nil).Code)
	}
	w := s.do(http.MethodPost, "/api/v1/payments", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "RATE_001"))

	// Reads have their own budget.
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/wallet", "", nil).Code)
}

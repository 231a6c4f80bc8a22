// Package rpc talks to a rippled JSON-RPC endpoint and the testnet faucet.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"xrpl-wallet/internal/core/domain"
)

const (
	methodAccountInfo = "account_info"
	methodFee         = "fee"
	methodLedger      = "ledger"
	methodSubmit      = "submit"
	methodTx          = "tx"
	methodServerInfo  = "server_info"
)

// Sentinels matched by errors.Is against an *Error.
var (
	ErrAccountNotFound = domain.ErrAccountNotFound
	ErrTxnNotFound     = domain.ErrTxnNotFound
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives one call per RPC round trip. status is "ok", an rpc error
// code, or "transport".
type Observer func(method, status string, elapsed time.Duration)

// Client is a JSON-RPC client bound to a single rippled endpoint.
type Client struct {
	url     string
	http    HTTPClient
	observe Observer
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithObserver installs a per-call observer, typically a metrics recorder.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

// NewClient creates a client for url.
func NewClient(url string, httpClient HTTPClient, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		url:     url,
		http:    httpClient,
		observe: func(string, string, time.Duration) {},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client talks to.
func (c *Client) URL() string {
	return c.url
}

type request struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
	ID     string `json:"id"`
}

type envelope struct {
	Result json.RawMessage `json:"result"`
}

type statusFields struct {
	Status       string `json:"status"`
	Error        string `json:"error"`
	ErrorMessage string `json:"error_message"`
	ErrorCode    int    `json:"error_code"`
}

// call posts one request and decodes result into out.
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	start := time.Now()
	err := c.do(ctx, method, params, out)
	elapsed := time.Since(start)

	status := "ok"
	var rpcErr *Error
	var tErr *TransportError
	switch {
	case errors.As(err, &rpcErr):
		status = rpcErr.Code
	case errors.As(err, &tErr):
		status = "transport"
	case err != nil:
		status = "error"
	}
	c.observe(method, status, elapsed)

	c.log.Debug().
		Str("method", method).
		Str("status", status).
		Dur("elapsed", elapsed).
		Msg("rpc call")
	return err
}

func (c *Client) do(ctx context.Context, method string, params any, out any) error {
	body, err := json.Marshal(request{Method: method, Params: []any{params}, ID: uuid.NewString()})
	if err != nil {
		return fmt.Errorf("rpc: encode %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpc: build %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: method, Retryable: retryable(method, err), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &TransportError{Op: method, Retryable: method != methodSubmit, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &TransportError{
			Op:        method,
			Retryable: method != methodSubmit && resp.StatusCode >= 500,
			Err:       fmt.Errorf("unexpected HTTP status %d", resp.StatusCode),
		}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Result) == 0 {
		return &TransportError{Op: method, Err: fmt.Errorf("malformed response: %s", truncate(raw))}
	}

	var st statusFields
	if err := json.Unmarshal(env.Result, &st); err != nil {
		return &TransportError{Op: method, Err: fmt.Errorf("malformed result: %w", err)}
	}
	if st.Status == "error" || st.Error != "" {
		return newError(method, st)
	}

	if err := json.Unmarshal(env.Result, out); err != nil {
		return &TransportError{Op: method, Err: fmt.Errorf("decode result: %w", err)}
	}
	return nil
}

// retryable reports whether a failed round trip cannot have reached the
// server in a way that changes ledger state.
func retryable(method string, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if method != methodSubmit {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func truncate(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

// ---- account_info ----

type accountInfoResult struct {
	AccountData struct {
		Account  string `json:"Account"`
		Balance  string `json:"Balance"`
		Sequence uint32 `json:"Sequence"`
	} `json:"account_data"`
	LedgerIndex uint32 `json:"ledger_index"`
	Validated   bool   `json:"validated"`
}

// AccountInfo reads an account root from the latest validated ledger.
// A missing account yields ErrAccountNotFound.
func (c *Client) AccountInfo(ctx context.Context, address string) (*domain.AccountInfo, error) {
	params := map[string]any{
		"account":      address,
		"ledger_index": "validated",
		"strict":       true,
	}
	var res accountInfoResult
	if err := c.call(ctx, methodAccountInfo, params, &res); err != nil {
		return nil, err
	}

	drops, err := strconv.ParseUint(res.AccountData.Balance, 10, 64)
	if err != nil {
		return nil, &TransportError{Op: methodAccountInfo, Err: fmt.Errorf("bad Balance %q: %w", res.AccountData.Balance, err)}
	}
	return &domain.AccountInfo{
		Address:     res.AccountData.Account,
		Drops:       drops,
		Sequence:    res.AccountData.Sequence,
		LedgerIndex: res.LedgerIndex,
	}, nil
}

// ---- fee ----

type feeResult struct {
	Drops struct {
		BaseFee       string `json:"base_fee"`
		MinimumFee    string `json:"minimum_fee"`
		OpenLedgerFee string `json:"open_ledger_fee"`
	} `json:"drops"`
	LedgerCurrentIndex uint32 `json:"ledger_current_index"`
}

// Fee returns the current transaction cost levels.
func (c *Client) Fee(ctx context.Context) (*domain.FeeInfo, error) {
	var res feeResult
	if err := c.call(ctx, methodFee, map[string]any{}, &res); err != nil {
		return nil, err
	}

	info := &domain.FeeInfo{LedgerIndex: res.LedgerCurrentIndex}
	fields := []struct {
		name string
		raw  string
		dst  *uint64
	}{
		{"base_fee", res.Drops.BaseFee, &info.BaseFee},
		{"minimum_fee", res.Drops.MinimumFee, &info.MinimumFee},
		{"open_ledger_fee", res.Drops.OpenLedgerFee, &info.OpenLedgerFee},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		v, err := strconv.ParseUint(f.raw, 10, 64)
		if err != nil {
			return nil, &TransportError{Op: methodFee, Err: fmt.Errorf("bad %s %q: %w", f.name, f.raw, err)}
		}
		*f.dst = v
	}
	return info, nil
}

// ---- ledger ----

type ledgerResult struct {
	LedgerIndex uint32 `json:"ledger_index"`
	Validated   bool   `json:"validated"`
}

// ValidatedLedgerIndex returns the sequence number of the latest validated ledger.
func (c *Client) ValidatedLedgerIndex(ctx context.Context) (uint32, error) {
	var res ledgerResult
	params := map[string]any{"ledger_index": "validated"}
	if err := c.call(ctx, methodLedger, params, &res); err != nil {
		return 0, err
	}
	return res.LedgerIndex, nil
}

// ---- submit ----

type submitResult struct {
	EngineResult        string `json:"engine_result"`
	EngineResultCode    int    `json:"engine_result_code"`
	EngineResultMessage string `json:"engine_result_message"`
	Accepted            bool   `json:"accepted"`
	TxJSON              struct {
		Hash string `json:"hash"`
	} `json:"tx_json"`
}

// Submit sends a signed transaction blob. The result is preliminary.
func (c *Client) Submit(ctx context.Context, blob string) (*domain.SubmitResult, error) {
	var res submitResult
	if err := c.call(ctx, methodSubmit, map[string]any{"tx_blob": blob}, &res); err != nil {
		return nil, err
	}
	return &domain.SubmitResult{
		EngineResult:        res.EngineResult,
		EngineResultCode:    res.EngineResultCode,
		EngineResultMessage: res.EngineResultMessage,
		Hash:                res.TxJSON.Hash,
		Accepted:            res.Accepted,
	}, nil
}

// ---- tx ----

type txResult struct {
	Hash        string `json:"hash"`
	Validated   bool   `json:"validated"`
	LedgerIndex uint32 `json:"ledger_index"`
	Meta        struct {
		TransactionResult string `json:"TransactionResult"`
	} `json:"meta"`
}

// Tx looks up a transaction by hash. A hash unknown to the server yields ErrTxnNotFound.
func (c *Client) Tx(ctx context.Context, hash string) (*domain.TxStatus, error) {
	var res txResult
	if err := c.call(ctx, methodTx, map[string]any{"transaction": hash, "binary": false}, &res); err != nil {
		return nil, err
	}
	return &domain.TxStatus{
		Hash:        res.Hash,
		Validated:   res.Validated,
		Result:      res.Meta.TransactionResult,
		LedgerIndex: res.LedgerIndex,
	}, nil
}

// ---- server_info ----

type serverInfoResult struct {
	Info struct {
		ServerState string `json:"server_state"`
	} `json:"info"`
}

// Name implements ports.HealthChecker.
func (c *Client) Name() string {
	return "rippled"
}

// Ping implements ports.HealthChecker using server_info.
func (c *Client) Ping(ctx context.Context) error {
	var res serverInfoResult
	if err := c.call(ctx, methodServerInfo, map[string]any{}, &res); err != nil {
		return err
	}
	if res.Info.ServerState == "" {
		return errors.New("rpc: server_info returned no server_state")
	}
	return nil
}

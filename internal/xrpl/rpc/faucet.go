package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"xrpl-wallet/internal/core/domain"
)

// FaucetClient requests test XRP for an address.
type FaucetClient struct {
	url  string
	http HTTPClient
	log  zerolog.Logger
}

// NewFaucetClient creates a faucet client for url.
func NewFaucetClient(url string, httpClient HTTPClient, log zerolog.Logger) *FaucetClient {
	return &FaucetClient{url: url, http: httpClient, log: log}
}

type faucetResponse struct {
	Account struct {
		Address        string `json:"address"`
		ClassicAddress string `json:"classicAddress"`
	} `json:"account"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionHash string          `json:"transactionHash"`
}

// Fund asks the faucet to send test XRP to address. The faucet answers once
// the funding transaction is submitted, not when it validates.
func (f *FaucetClient) Fund(ctx context.Context, address string) (*domain.FaucetGrant, error) {
	body, err := json.Marshal(map[string]string{"destination": address})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("faucet: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "faucet", Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Op:        "faucet",
			Retryable: resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
			Err:       fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(raw)),
		}
	}

	var out faucetResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &TransportError{Op: "faucet", Err: fmt.Errorf("decode response: %w", err)}
	}

	grant := &domain.FaucetGrant{
		Address: out.Account.ClassicAddress,
		Amount:  out.Amount,
		Hash:    out.TransactionHash,
	}
	if grant.Address == "" {
		grant.Address = out.Account.Address
	}
	if grant.Address == "" {
		grant.Address = address
	}

	f.log.Info().
		Str("address", grant.Address).
		Str("amount", grant.Amount.String()).
		Str("hash", grant.Hash).
		Msg("faucet funded account")
	return grant, nil
}

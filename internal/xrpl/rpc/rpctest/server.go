// Package rpctest provides an in-process fake rippled JSON-RPC server.
package rpctest

import (
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// txIDPrefix is "TXN\0", the hash prefix rippled uses for transaction ids.
var txIDPrefix = []byte{0x54, 0x58, 0x4E, 0x00}

// HashBlob returns the transaction id of a signed blob: the upper half of
// SHA-512 over "TXN\0" and the blob bytes, in uppercase hex. Invalid hex
// yields an empty string.
func HashBlob(blob string) string {
	raw, err := hex.DecodeString(blob)
	if err != nil {
		return ""
	}
	sum := sha512.Sum512(append(append([]byte(nil), txIDPrefix...), raw...))
	return strings.ToUpper(hex.EncodeToString(sum[:32]))
}

// Account is an account root held by the fake ledger.
type Account struct {
	Drops    uint64
	Sequence uint32
}

// Handler overrides a method. It returns the HTTP status and the value placed
// under "result".
type Handler func(params map[string]any) (int, any)

// Server is a scripted rippled. Zero values mean: tesSUCCESS everywhere and
// transactions validate on the first tx poll.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	Accounts      map[string]Account
	LedgerIndex   uint32
	LedgerStep    uint32 // added to LedgerIndex after every ledger call
	OpenLedgerFee uint64
	EngineResult  string // preliminary submit result
	FinalResult   string // meta.TransactionResult once validated
	ValidateAfter int    // tx polls answered "not validated" first; negative never validates

	handlers  map[string]Handler
	calls     map[string]int
	methods   []string
	submitted []string
	polls     map[string]int
}

// NewServer starts a fake server. Call Close when done.
func NewServer() *Server {
	s := &Server{
		Accounts:      map[string]Account{},
		LedgerIndex:   1000,
		OpenLedgerFee: 10,
		EngineResult:  "tesSUCCESS",
		FinalResult:   "tesSUCCESS",
		handlers:      map[string]Handler{},
		calls:         map[string]int{},
		polls:         map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Handle overrides one method.
func (s *Server) Handle(method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// SetAccount creates or replaces an account root.
func (s *Server) SetAccount(address string, drops uint64, sequence uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Accounts[address] = Account{Drops: drops, Sequence: sequence}
}

// Calls returns how many times method was invoked.
func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// Methods returns every method received, in arrival order.
func (s *Server) Methods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.methods...)
}

// Submitted returns the blobs received by submit, in order.
func (s *Server) Submitted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.submitted...)
}

type rpcRequest struct {
	Method string           `json:"method"`
	Params []map[string]any `json:"params"`
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	params := map[string]any{}
	if len(req.Params) > 0 {
		params = req.Params[0]
	}

	s.mu.Lock()
	s.calls[req.Method]++
	s.methods = append(s.methods, req.Method)
	h, ok := s.handlers[req.Method]
	s.mu.Unlock()

	status, result := http.StatusOK, any(nil)
	if ok {
		status, result = h(params)
	} else {
		result = s.builtin(req.Method, params)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
}

func rpcError(code, message string) map[string]any {
	return map[string]any{"status": "error", "error": code, "error_message": message}
}

func (s *Server) builtin(method string, params map[string]any) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch method {
	case "account_info":
		addr, _ := params["account"].(string)
		acct, ok := s.Accounts[addr]
		if !ok {
			return rpcError("actNotFound", "Account not found.")
		}
		return map[string]any{
			"status": "success",
			"account_data": map[string]any{
				"Account":  addr,
				"Balance":  strconv.FormatUint(acct.Drops, 10),
				"Sequence": acct.Sequence,
			},
			"ledger_index": s.LedgerIndex,
			"validated":    true,
		}

	case "fee":
		return map[string]any{
			"status": "success",
			"drops": map[string]any{
				"base_fee":        "10",
				"minimum_fee":     "10",
				"open_ledger_fee": strconv.FormatUint(s.OpenLedgerFee, 10),
			},
			"ledger_current_index": s.LedgerIndex + 1,
		}

	case "ledger":
		idx := s.LedgerIndex
		s.LedgerIndex += s.LedgerStep
		return map[string]any{"status": "success", "ledger_index": idx, "validated": true}

	case "server_info":
		return map[string]any{"status": "success", "info": map[string]any{"server_state": "full"}}

	case "submit":
		blob, _ := params["tx_blob"].(string)
		hash := HashBlob(blob)
		if hash == "" {
			return rpcError("invalidParams", "Invalid field 'tx_blob'.")
		}
		s.submitted = append(s.submitted, blob)
		s.polls[hash] = 0
		return map[string]any{
			"status":                "success",
			"engine_result":         s.EngineResult,
			"engine_result_code":    0,
			"engine_result_message": "scripted",
			"accepted":              true,
			"tx_blob":               blob,
			"tx_json":               map[string]any{"hash": hash},
		}

	case "tx":
		hash, _ := params["transaction"].(string)
		n, ok := s.polls[hash]
		if !ok {
			return rpcError("txnNotFound", "Transaction not found.")
		}
		s.polls[hash] = n + 1
		if s.ValidateAfter < 0 || n < s.ValidateAfter {
			return map[string]any{"status": "success", "hash": hash, "validated": false}
		}
		return map[string]any{
			"status":       "success",
			"hash":         hash,
			"validated":    true,
			"ledger_index": s.LedgerIndex,
			"meta":         map[string]any{"TransactionResult": s.FinalResult},
		}
	}
	return rpcError("unknownCmd", "Unknown method.")
}

package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Process exit codes. 0 is success; everything else maps to a taxonomy entry.
const (
	ExitOK                  = 0
	ExitInternal            = 1
	ExitUsage               = 2
	ExitInvalidSeed         = 3
	ExitInvalidInput        = 4
	ExitRetrievalFailed     = 5
	ExitSubmissionFailed    = 6
	ExitTransactionRejected = 7
	ExitTransactionExpired  = 8
)

// AppError is a structured error that maps to HTTP responses and process exit codes.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	Result     string `json:"result,omitempty"` // Ledger result code (TransactionRejected only)
	Hash       string `json:"hash,omitempty"`   // Transaction hash when one is known
	HTTPStatus int    `json:"-"`
	ExitCode   int    `json:"-"`
	Err        error  `json:"-"` // Wrapped cause (not exposed to API clients)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can compare against a constructor result.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string, httpStatus int, exitCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		ExitCode:   exitCode,
	}
}

// Wrap wraps a cause with an AppError.
func Wrap(code string, message string, httpStatus int, exitCode int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		ExitCode:   exitCode,
		Err:        err,
	}
}

// ---- Wallet input (WAL) ----

func ErrInvalidSeed(err error) *AppError {
	return Wrap("WAL_001", "Invalid seed", http.StatusBadRequest, ExitInvalidSeed, err)
}

func ErrInvalidAmount(message string) *AppError {
	return New("WAL_002", message, http.StatusBadRequest, ExitInvalidInput)
}

func ErrInvalidAddress(err error) *AppError {
	return Wrap("WAL_003", "Invalid address", http.StatusBadRequest, ExitInvalidInput, err)
}

// ---- Ledger boundary (LED) ----

func ErrRetrievalFailed(err error) *AppError {
	return Wrap("LED_001", "Account retrieval failed", http.StatusBadGateway, ExitRetrievalFailed, err)
}

func ErrSubmissionFailed(err error) *AppError {
	return Wrap("LED_002", "Transaction submission failed", http.StatusBadGateway, ExitSubmissionFailed, err)
}

// ErrSubmissionOutcomeUnknown is a SubmissionFailed that happened after the blob
// reached the network. The hash must be re-queried before any retry.
func ErrSubmissionOutcomeUnknown(hash string, err error) *AppError {
	e := ErrSubmissionFailed(err)
	e.Message = "Transaction outcome unknown"
	e.Hash = hash
	return e
}

func ErrTransactionRejected(hash, result string) *AppError {
	e := New("LED_003", fmt.Sprintf("Transaction rejected: %s", result), http.StatusUnprocessableEntity, ExitTransactionRejected)
	e.Result = result
	e.Hash = hash
	return e
}

func ErrTransactionExpired(hash string, lastLedger uint32) *AppError {
	e := New("LED_004", fmt.Sprintf("Transaction not validated by ledger %d", lastLedger), http.StatusGatewayTimeout, ExitTransactionExpired)
	e.Hash = hash
	return e
}

func ErrFaucetFailed(err error) *AppError {
	return Wrap("LED_005", "Faucet request failed", http.StatusBadGateway, ExitRetrievalFailed, err)
}

// ---- API (AUTH / PAY / REQ) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized, ExitUsage)
}

func ErrPaymentInProgress() *AppError {
	return New("PAY_001", "Another payment from this address is in progress", http.StatusConflict, ExitSubmissionFailed)
}

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Too many requests", http.StatusTooManyRequests, ExitUsage)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("REQ_001", message, http.StatusBadRequest, ExitUsage)
}

// ---- System (SYS) ----

// InternalError wraps an unexpected error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal error", http.StatusInternalServerError, ExitInternal, err)
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return ExitInternal
}

// ResultCode returns the ledger result code carried by a TransactionRejected error.
func ResultCode(err error) (string, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Result != "" {
		return appErr.Result, true
	}
	return "", false
}

// OutcomeUnknown reports whether err is a SubmissionFailed raised after the
// transaction may have reached the network, and returns its hash.
func OutcomeUnknown(err error) (string, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == "LED_002" && appErr.Hash != "" {
		return appErr.Hash, true
	}
	return "", false
}

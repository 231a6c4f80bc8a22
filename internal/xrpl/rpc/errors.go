package rpc

import (
	"errors"
	"fmt"
)

// Error is an error object returned inside a well-formed JSON-RPC response.
type Error struct {
	Method  string
	Code    string // e.g. "actNotFound"
	Number  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rpc %s: %s: %s", e.Method, e.Code, e.Message)
	}
	return fmt.Sprintf("rpc %s: %s", e.Method, e.Code)
}

// Is maps well-known codes onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrAccountNotFound:
		return e.Code == "actNotFound"
	case ErrTxnNotFound:
		return e.Code == "txnNotFound"
	}
	return false
}

func newError(method string, st statusFields) *Error {
	return &Error{Method: method, Code: st.Error, Number: st.ErrorCode, Message: st.ErrorMessage}
}

// TransportError is a failure to complete a round trip with the server.
type TransportError struct {
	Op        string
	Retryable bool // the request cannot have changed ledger state
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rpc %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SafeToRetry reports whether the request cannot have changed ledger state.
func (e *TransportError) SafeToRetry() bool {
	return e.Retryable
}

// IsRetryable reports whether err is a transport failure that is safe to retry.
func IsRetryable(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr) && tErr.Retryable
}

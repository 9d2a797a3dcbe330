package rpc

import (
	"errors"
	"fmt"
)

// Error codes from the node's JSON-RPC error catalog. Only the codes the
// client reacts to are named; every other code still round-trips inside
// *Error untouched.
const (
	CodeTxnHashNotFound            = 29
	CodeInvalidTransactionNonce    = 52
	CodeInsufficientMaxFee         = 53
	CodeInsufficientAccountBalance = 54
	CodeValidationFailure          = 55
	CodeDuplicateTx                = 59
	CodeUnsupportedTxVersion       = 61
	CodeUnexpectedError            = 63
)

// Error is a node-reported JSON-RPC error. Code and Message are preserved
// verbatim so callers can branch on the node's own taxonomy.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

// IsNonceConflict reports whether err is the node rejecting a transaction
// for a stale or reused nonce. This is the only error class worth a
// resubmission with a fresh nonce.
func IsNonceConflict(err error) bool {
	var rpcErr *Error
	return errors.As(err, &rpcErr) && rpcErr.Code == CodeInvalidTransactionNonce
}

// IsNotFound reports whether err is the node not knowing the transaction
// hash, which while polling for a receipt just means "not yet".
func IsNotFound(err error) bool {
	var rpcErr *Error
	return errors.As(err, &rpcErr) && rpcErr.Code == CodeTxnHashNotFound
}

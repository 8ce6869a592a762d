package chain

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrRPCUnavailable means the node rejected or failed the call even after
	// the single rate-limit retry.
	ErrRPCUnavailable = goerr.New("rpc endpoint unavailable")
	// ErrReceiptNotFound means the transaction is known but not yet mined.
	ErrReceiptNotFound = goerr.New("transaction receipt not found")
	// ErrNonceMismatch means the node rejected the transaction nonce; the
	// attempt must be rebuilt from a fresh pending nonce.
	ErrNonceMismatch = goerr.New("transaction nonce rejected")
	// ErrSignatureMismatch means the configured private key does not control
	// the sender address.
	ErrSignatureMismatch = goerr.New("signing key does not match sender address")
)

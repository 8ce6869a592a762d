package usecase

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNotRecognized is the only failure detail a caller sees when a face
	// does not match any registration. Similarity scores stay internal.
	ErrNotRecognized = goerr.New("no matching face found")
	// ErrInsufficientBalance aborts a payment during preflight, before any
	// transaction is built or submitted.
	ErrInsufficientBalance = goerr.New("insufficient token balance")
	// ErrReverted means the transaction was mined but the transfer failed
	// on-chain.
	ErrReverted = goerr.New("transaction reverted")
	// ErrConfirmTimeout means the transaction was submitted but no receipt
	// appeared within the confirmation window. The transfer may still land.
	ErrConfirmTimeout = goerr.New("confirmation timed out")
	// ErrNotConfigured means a flow was invoked without its required
	// dependency (recognizer, matcher, or chain client).
	ErrNotConfigured = goerr.New("usecase dependency not configured")
)

package repository

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared by all storage backends
var (
	// ErrNotFound is returned by Get for an unregistered account. Remove of
	// an absent account is a no-op, not an error.
	ErrNotFound = goerr.New("registration not found")
)

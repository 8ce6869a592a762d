package model

import (
	"time"

	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Registration binds a wallet account to its registered face embedding.
// The store keeps at most one registration per account; re-registration
// replaces the record wholesale.
type Registration struct {
	AccountID    types.AccountID
	DisplayName  string
	Embedding    Embedding
	Provenance   types.Provenance
	RegisteredAt time.Time
}

// Validate checks the registration invariants before it enters the store.
func (r *Registration) Validate() error {
	if err := r.AccountID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid registration account")
	}
	if r.DisplayName == "" {
		return goerr.New("display name is required", goerr.V("account_id", r.AccountID))
	}
	if err := r.Embedding.Validate(); err != nil {
		return goerr.Wrap(err, "invalid registration embedding", goerr.V("account_id", r.AccountID))
	}
	if !r.Provenance.IsValid() {
		return goerr.New("invalid provenance", goerr.V("provenance", r.Provenance))
	}
	return nil
}

// Clone returns a deep copy so that stored registrations are never aliased
// by callers.
func (r *Registration) Clone() *Registration {
	if r == nil {
		return nil
	}
	return &Registration{
		AccountID:    r.AccountID,
		DisplayName:  r.DisplayName,
		Embedding:    r.Embedding.Clone(),
		Provenance:   r.Provenance,
		RegisteredAt: r.RegisteredAt,
	}
}

package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/facepay-lab/facepay/pkg/utils/logging"
)

// Status is the health summary of the running service.
type Status struct {
	// Recognizer is the provenance tag of the active embedding backend, or
	// empty when no recognizer is configured.
	Recognizer string
	// RegisteredFaces is the number of stored registrations.
	RegisteredFaces int
	// ChainEnabled reports whether payments are configured.
	ChainEnabled bool
}

// Status reports the recognizer mode, the registration count, and whether
// the chain side is wired.
func (uc *UseCases) Status(ctx context.Context) (*Status, error) {
	regs, err := uc.repo.Registration().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count registrations")
	}

	st := &Status{
		RegisteredFaces: len(regs),
		ChainEnabled:    uc.chain != nil && uc.payment != nil,
	}
	if uc.recognizer != nil {
		st.Recognizer = uc.recognizer.Provenance().String()
	}
	return st, nil
}

// VerifyChain probes the RPC endpoint by reading the token decimals. A
// misconfigured endpoint or token surfaces here instead of on the first
// payment.
func (uc *UseCases) VerifyChain(ctx context.Context) error {
	if uc.chain == nil || uc.payment == nil {
		return goerr.Wrap(ErrNotConfigured, "chain client is not configured")
	}

	decimals, err := uc.chain.TokenDecimals(ctx, uc.payment.Token)
	if err != nil {
		return goerr.Wrap(err, "chain probe failed",
			goerr.V("token", uc.payment.Token.Hex()))
	}

	logging.From(ctx).Info("chain probe succeeded",
		"token", uc.payment.Token.Hex(),
		"decimals", decimals,
	)
	return nil
}

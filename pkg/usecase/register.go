package usecase

import (
	"context"
	"time"

	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Register extracts an averaged embedding from the given face samples and
// binds it to the account. An existing registration for the same account is
// replaced wholesale.
func (uc *UseCases) Register(ctx context.Context, accountID types.AccountID, displayName string, images [][]byte) (*model.Registration, error) {
	if uc.recognizer == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "recognizer is not configured")
	}

	accountID = accountID.Normalize()
	if err := accountID.Validate(); err != nil {
		return nil, err
	}
	if displayName == "" {
		return nil, goerr.New("display name is required", goerr.V("account_id", accountID))
	}

	emb, err := uc.recognizer.ExtractAverage(ctx, images)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract face embedding", goerr.V("account_id", accountID))
	}

	reg := &model.Registration{
		AccountID:    accountID,
		DisplayName:  displayName,
		Embedding:    emb,
		Provenance:   uc.recognizer.Provenance(),
		RegisteredAt: time.Now().UTC(),
	}
	if err := uc.repo.Registration().Put(ctx, reg); err != nil {
		return nil, goerr.Wrap(err, "failed to store registration", goerr.V("account_id", accountID))
	}

	logging.From(ctx).Info("registered face",
		"account_id", accountID,
		"display_name", displayName,
		"provenance", reg.Provenance,
		"samples", len(images),
	)

	return reg, nil
}

// Deregister removes the registration for the account. Removing an absent
// account is a no-op.
func (uc *UseCases) Deregister(ctx context.Context, accountID types.AccountID) error {
	accountID = accountID.Normalize()
	if err := accountID.Validate(); err != nil {
		return err
	}
	if err := uc.repo.Registration().Remove(ctx, accountID); err != nil {
		return goerr.Wrap(err, "failed to remove registration", goerr.V("account_id", accountID))
	}
	logging.From(ctx).Info("removed registration", "account_id", accountID)
	return nil
}

// Reset wipes every registration. Demo use only.
func (uc *UseCases) Reset(ctx context.Context) error {
	if err := uc.repo.Registration().Clear(ctx); err != nil {
		return goerr.Wrap(err, "failed to clear registrations")
	}
	logging.From(ctx).Info("cleared all registrations")
	return nil
}

// Faces lists every registration sorted by account ID. Embeddings stay
// internal; callers receive only identity metadata.
func (uc *UseCases) Faces(ctx context.Context) ([]*model.Registration, error) {
	regs, err := uc.repo.Registration().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list registrations")
	}
	return regs, nil
}

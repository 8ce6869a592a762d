package usecase

import (
	"context"

	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// Match identifies the registered account the face in image belongs to. A
// nil result means no registration cleared the acceptance threshold; that is
// an expected outcome, not an error.
func (uc *UseCases) Match(ctx context.Context, image []byte) (*model.MatchResult, error) {
	if uc.recognizer == nil || uc.matcher == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "recognizer and matcher are required")
	}

	query, err := uc.recognizer.Extract(ctx, image)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract query embedding")
	}

	regs, err := uc.repo.Registration().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load registrations")
	}

	candidates := make([]model.Registration, 0, len(regs))
	for _, reg := range regs {
		candidates = append(candidates, *reg)
	}

	return uc.matcher.FindBestMatch(ctx, query, uc.recognizer.Provenance(), candidates)
}

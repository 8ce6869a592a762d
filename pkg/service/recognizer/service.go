// Package recognizer turns raw camera frames into fixed-size face
// embeddings. Three interchangeable strategies exist: a geometric backend
// built on local face detection, a neural backend that calls a descriptor
// network over HTTP, and a deterministic hash fallback that needs no
// detector at all.
package recognizer

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// Backend produces an embedding from a decoded frame. Implementations must
// be deterministic: the same frame always yields the same embedding.
type Backend interface {
	Extract(ctx context.Context, img image.Image) (model.Embedding, error)
	Provenance() types.Provenance
}

// Service decodes image bytes and drives a Backend.
type Service struct {
	backend Backend
}

func New(backend Backend) *Service {
	return &Service{backend: backend}
}

// Provenance reports which extraction strategy this service records on
// stored embeddings.
func (s *Service) Provenance() types.Provenance {
	return s.backend.Provenance()
}

// Extract decodes data as JPEG or PNG and extracts a single embedding.
func (s *Service) Extract(ctx context.Context, data []byte) (model.Embedding, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(ErrImageDecodeFailed, "failed to decode image", goerr.V("cause", err.Error()))
	}

	logging.From(ctx).Debug("decoded frame",
		"format", format,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
	)

	return s.backend.Extract(ctx, normalizeFrame(img))
}

// ExtractAverage extracts an embedding from each sample concurrently and
// returns the element-wise mean of the successful ones. Samples that fail
// extraction are dropped with a warning. If no sample yields an embedding,
// ErrNoUsableSamples is returned.
func (s *Service) ExtractAverage(ctx context.Context, samples [][]byte) (model.Embedding, error) {
	if len(samples) == 0 {
		return nil, goerr.Wrap(ErrNoUsableSamples, "no samples provided")
	}

	results := make([]model.Embedding, len(samples))
	g, gctx := errgroup.WithContext(ctx)

	for i, sample := range samples {
		g.Go(func() error {
			emb, err := s.Extract(gctx, sample)
			if err != nil {
				logging.From(ctx).Warn("dropping sample from enrollment set",
					"index", i,
					"error", err,
				)
				return nil
			}
			results[i] = emb
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to extract samples")
	}

	usable := make([]model.Embedding, 0, len(results))
	for _, emb := range results {
		if emb != nil {
			usable = append(usable, emb)
		}
	}
	if len(usable) == 0 {
		return nil, goerr.Wrap(ErrNoUsableSamples, "all samples failed extraction",
			goerr.V("samples", len(samples)))
	}

	mean, err := model.MeanEmbedding(usable)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to average samples")
	}

	logging.From(ctx).Debug("averaged enrollment samples",
		"total", len(samples),
		"usable", len(usable),
	)

	return mean, nil
}

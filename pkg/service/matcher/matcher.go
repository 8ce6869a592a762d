// Package matcher scores a query embedding against registered candidates and
// selects the single best acceptable match. Every comparison is written to
// the audit log; similarity scores never cross the process boundary.
package matcher

import (
	"context"
	"math"

	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Service performs 1:N identification with a fixed policy.
type Service struct {
	policy model.MatchPolicy
}

func New(policy model.MatchPolicy) (*Service, error) {
	if err := policy.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid match policy")
	}
	return &Service{policy: policy}, nil
}

// Policy returns the active match policy.
func (s *Service) Policy() model.MatchPolicy {
	return s.policy
}

// FindBestMatch scores query against every candidate, selects the single
// highest-scoring candidate, and returns it iff that score clears the
// applicable acceptance threshold. Selection runs before thresholding: a
// lower-scoring candidate never wins because a higher-scoring one was
// rejected. Ties keep the earlier candidate: a later candidate replaces the
// current best only with a strictly greater score.
//
// queryProv is the provenance of the query embedding. When either the query
// or the selected candidate carries a hash-fallback embedding, the lenient
// fallback threshold applies instead of the primary one.
func (s *Service) FindBestMatch(ctx context.Context, query model.Embedding, queryProv types.Provenance, candidates []model.Registration) (*model.MatchResult, error) {
	if err := query.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid query embedding")
	}

	logger := logging.From(ctx)

	var best *model.MatchResult
	var bestThreshold float64
	for _, cand := range candidates {
		score, err := Similarity(s.policy.Metric, query, cand.Embedding)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to score candidate", goerr.V("account_id", cand.AccountID))
		}

		threshold := s.policy.Threshold
		if queryProv.IsFallback() || cand.Provenance.IsFallback() {
			threshold = s.policy.FallbackThreshold
		}

		// Audit record for every comparison.
		logger.Info("face comparison",
			"account_id", cand.AccountID,
			"metric", s.policy.Metric,
			"score", score,
			"threshold", threshold,
			"accepted", score >= threshold,
		)

		if best == nil || score > best.Score {
			best = &model.MatchResult{
				AccountID:   cand.AccountID,
				DisplayName: cand.DisplayName,
				Score:       score,
			}
			bestThreshold = threshold
		}
	}

	if best == nil || best.Score < bestThreshold {
		logger.Info("no acceptable match", "candidates", len(candidates))
		return nil, nil
	}

	best.Accepted = true
	logger.Info("best match selected", "account_id", best.AccountID)
	return best, nil
}

// Similarity computes the similarity of two embeddings under metric. The
// result is in [0, 1] for equal-length inputs with cosine in the usual
// non-negative embedding space.
func Similarity(metric types.Metric, a, b model.Embedding) (float64, error) {
	if len(a) != len(b) {
		return 0, goerr.New("embedding dimension mismatch",
			goerr.V("left", len(a)),
			goerr.V("right", len(b)))
	}

	switch metric {
	case types.MetricCosine:
		return cosineSimilarity(a, b), nil
	case types.MetricEuclidean:
		return euclideanSimilarity(a, b), nil
	default:
		return 0, goerr.New("unsupported metric", goerr.V("metric", metric))
	}
}

// cosineSimilarity returns the normalized dot product, or 0 when either
// vector has zero magnitude.
func cosineSimilarity(a, b model.Embedding) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// euclideanSimilarity converts the root-mean-square distance between the
// vectors into a similarity via max(0, 1-distance).
func euclideanSimilarity(a, b model.Embedding) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	dist := math.Sqrt(sum / float64(len(a)))
	if sim := 1 - dist; sim > 0 {
		return sim
	}
	return 0
}

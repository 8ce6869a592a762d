package model

import (
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// MatchPolicy controls how a query embedding is scored against registered
// candidates and when the best candidate is accepted. Changing the metric or
// thresholds is a security-relevant change: a false acceptance directly
// authorizes an on-chain transfer.
type MatchPolicy struct {
	Metric types.Metric
	// Threshold is the minimum similarity score for acceptance.
	Threshold float64
	// FallbackThreshold replaces Threshold when either side of a comparison
	// carries a hash-fallback embedding.
	FallbackThreshold float64
}

// DefaultMatchPolicy is the strict cosine policy used unless configured
// otherwise.
func DefaultMatchPolicy() MatchPolicy {
	return MatchPolicy{
		Metric:            types.MetricCosine,
		Threshold:         0.75,
		FallbackThreshold: 0.3,
	}
}

// Validate checks policy invariants.
func (p MatchPolicy) Validate() error {
	if !p.Metric.IsValid() {
		return goerr.New("invalid match metric", goerr.V("metric", p.Metric))
	}
	if p.Threshold <= 0 || p.Threshold > 1 {
		return goerr.New("match threshold must be in (0, 1]", goerr.V("threshold", p.Threshold))
	}
	if p.FallbackThreshold <= 0 || p.FallbackThreshold > 1 {
		return goerr.New("fallback threshold must be in (0, 1]", goerr.V("threshold", p.FallbackThreshold))
	}
	return nil
}

// MatchResult is the transient outcome of one query against the store. It is
// recomputed per query and never persisted.
type MatchResult struct {
	AccountID   types.AccountID
	DisplayName string
	// Score is the similarity of the accepted candidate. It stays inside the
	// process boundary: outward surfaces report only accept/reject.
	Score    float64
	Accepted bool
}

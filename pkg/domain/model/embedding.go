package model

import (
	"github.com/m-mizutani/goerr/v2"
)

// EmbeddingDimension is the dimension of a face embedding vector. Both the
// geometric feature backend and descriptor networks produce 128 dimensions.
const EmbeddingDimension = 128

// Embedding is a fixed-length face feature vector. It is immutable once
// created; registration averages several sample embeddings into one new
// vector rather than updating in place.
type Embedding []float32

// Validate checks that the embedding has the expected dimension.
func (e Embedding) Validate() error {
	if len(e) != EmbeddingDimension {
		return goerr.New("invalid embedding dimension",
			goerr.V("expected", EmbeddingDimension),
			goerr.V("actual", len(e)))
	}
	return nil
}

// Clone returns a deep copy of the embedding.
func (e Embedding) Clone() Embedding {
	if e == nil {
		return nil
	}
	c := make(Embedding, len(e))
	copy(c, e)
	return c
}

// MeanEmbedding computes the element-wise mean of the given sample vectors.
// All samples must share the same dimension.
func MeanEmbedding(samples []Embedding) (Embedding, error) {
	if len(samples) == 0 {
		return nil, goerr.New("no samples to average")
	}

	dim := len(samples[0])
	for i, s := range samples {
		if len(s) != dim {
			return nil, goerr.New("sample dimension mismatch",
				goerr.V("index", i),
				goerr.V("expected", dim),
				goerr.V("actual", len(s)))
		}
	}

	mean := make(Embedding, dim)
	for _, s := range samples {
		for i, v := range s {
			mean[i] += v
		}
	}

	n := float32(len(samples))
	for i := range mean {
		mean[i] /= n
	}

	return mean, nil
}

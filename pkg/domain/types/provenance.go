package types

import "fmt"

// Provenance records which embedding backend produced a face embedding.
// It is persisted with each registration so that the matcher can apply
// the looser fallback threshold when hash-derived embeddings are involved.
type Provenance string

const (
	// ProvenanceEngineered marks embeddings built from geometric face-box features.
	ProvenanceEngineered Provenance = "engineered-feature"
	// ProvenanceNeural marks embeddings produced by a descriptor network.
	ProvenanceNeural Provenance = "neural"
	// ProvenanceHashFallback marks hash-derived embeddings produced when no
	// detection model is available.
	ProvenanceHashFallback Provenance = "hash-fallback"
)

// AllProvenances returns all valid provenance tags
func AllProvenances() []Provenance {
	return []Provenance{
		ProvenanceEngineered,
		ProvenanceNeural,
		ProvenanceHashFallback,
	}
}

// IsValid checks if the provenance tag is valid
func (p Provenance) IsValid() bool {
	switch p {
	case ProvenanceEngineered, ProvenanceNeural, ProvenanceHashFallback:
		return true
	default:
		return false
	}
}

// IsFallback reports whether the embedding was produced by the degraded
// hash backend.
func (p Provenance) IsFallback() bool {
	return p == ProvenanceHashFallback
}

// String returns the string representation of the provenance tag
func (p Provenance) String() string {
	return string(p)
}

// ParseProvenance parses a string into a Provenance
func ParseProvenance(s string) (Provenance, error) {
	p := Provenance(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid provenance: %s", s)
	}
	return p, nil
}

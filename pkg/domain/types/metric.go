package types

import "fmt"

// Metric selects the similarity computation used by the matcher.
type Metric string

const (
	// MetricCosine scores by normalized dot product; higher is better.
	MetricCosine Metric = "cosine"
	// MetricEuclidean scores by normalized euclidean distance converted to
	// similarity via max(0, 1-distance).
	MetricEuclidean Metric = "euclidean"
)

// AllMetrics returns all valid metrics
func AllMetrics() []Metric {
	return []Metric{MetricCosine, MetricEuclidean}
}

// IsValid checks if the metric is valid
func (m Metric) IsValid() bool {
	switch m {
	case MetricCosine, MetricEuclidean:
		return true
	default:
		return false
	}
}

// String returns the string representation of the metric
func (m Metric) String() string {
	return string(m)
}

// ParseMetric parses a string into a Metric
func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid metric: %s", s)
	}
	return m, nil
}

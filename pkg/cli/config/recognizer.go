package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/service/matcher"
	"github.com/facepay-lab/facepay/pkg/service/recognizer"
	"github.com/facepay-lab/facepay/pkg/utils/logging"
)

// Recognizer holds CLI flags for face embedding extraction and matching
type Recognizer struct {
	backend           string
	cascadePath       string
	descriptorURL     string
	minConfidence     float64
	metric            string
	threshold         float64
	fallbackThreshold float64
}

// Flags returns CLI flags for recognizer configuration
func (r *Recognizer) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "recognizer-backend",
			Usage:       "Embedding backend (geometric, remote, or hash)",
			Value:       "geometric",
			Sources:     cli.EnvVars("FACEPAY_RECOGNIZER_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "cascade-path",
			Usage:       "Path to the pigo facefinder cascade (geometric backend)",
			Value:       "assets/facefinder",
			Sources:     cli.EnvVars("FACEPAY_CASCADE_PATH"),
			Destination: &r.cascadePath,
		},
		&cli.StringFlag{
			Name:        "descriptor-url",
			Usage:       "Descriptor service endpoint (remote backend)",
			Sources:     cli.EnvVars("FACEPAY_DESCRIPTOR_URL"),
			Destination: &r.descriptorURL,
		},
		&cli.FloatFlag{
			Name:        "min-confidence",
			Usage:       "Minimum face detection confidence",
			Value:       0.80,
			Sources:     cli.EnvVars("FACEPAY_MIN_CONFIDENCE"),
			Destination: &r.minConfidence,
		},
		&cli.StringFlag{
			Name:        "match-metric",
			Usage:       "Similarity metric (cosine or euclidean)",
			Value:       string(types.MetricCosine),
			Sources:     cli.EnvVars("FACEPAY_MATCH_METRIC"),
			Destination: &r.metric,
		},
		&cli.FloatFlag{
			Name:        "match-threshold",
			Usage:       "Similarity threshold for accepting a match",
			Value:       0.75,
			Sources:     cli.EnvVars("FACEPAY_MATCH_THRESHOLD"),
			Destination: &r.threshold,
		},
		&cli.FloatFlag{
			Name:        "fallback-threshold",
			Usage:       "Similarity threshold when either embedding is hash-fallback",
			Value:       0.3,
			Sources:     cli.EnvVars("FACEPAY_FALLBACK_THRESHOLD"),
			Destination: &r.fallbackThreshold,
		},
	}
}

// Backend returns the configured backend type
func (r *Recognizer) Backend() string {
	return r.backend
}

// Policy returns the match policy assembled from the configured flags.
func (r *Recognizer) Policy() model.MatchPolicy {
	return model.MatchPolicy{
		Metric:            types.Metric(r.metric),
		Threshold:         r.threshold,
		FallbackThreshold: r.fallbackThreshold,
	}
}

// Configure builds the recognizer and matcher services from the configured
// flags.
func (r *Recognizer) Configure() (*recognizer.Service, *matcher.Service, error) {
	var backend recognizer.Backend
	switch r.backend {
	case "geometric":
		detector, err := recognizer.NewPigoDetector(r.cascadePath)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to load face detection cascade",
				goerr.V("path", r.cascadePath))
		}
		backend = recognizer.NewGeometricBackend(detector, r.minConfidence)
		logging.Default().Info("Using geometric recognizer", "cascade", r.cascadePath)

	case "remote":
		b, err := recognizer.NewRemoteBackend(r.descriptorURL, r.minConfidence)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize remote recognizer")
		}
		backend = b
		logging.Default().Info("Using remote recognizer", "endpoint", r.descriptorURL)

	case "hash":
		backend = recognizer.NewHashBackend()
		logging.Default().Warn("Using hash-fallback recognizer; matches are low fidelity")

	default:
		return nil, nil, goerr.New("invalid recognizer backend", goerr.V("backend", r.backend))
	}

	m, err := matcher.New(r.Policy())
	if err != nil {
		return nil, nil, goerr.Wrap(err, "invalid match policy")
	}

	return recognizer.New(backend), m, nil
}

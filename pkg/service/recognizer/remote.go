package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// remoteBackend delegates embedding generation to a descriptor-network
// inference service over HTTP. The service receives a PNG-encoded frame and
// responds with the face count, detection confidence, and a 128-d
// descriptor.
type remoteBackend struct {
	endpoint      string
	httpClient    *http.Client
	minConfidence float64
}

// RemoteOption is a functional option for the remote backend.
type RemoteOption func(*remoteBackend)

// WithHTTPClient overrides the HTTP client, used by tests.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(b *remoteBackend) {
		b.httpClient = c
	}
}

// NewRemoteBackend returns the neural descriptor strategy backed by the
// inference service at endpoint.
func NewRemoteBackend(endpoint string, minConfidence float64, opts ...RemoteOption) (Backend, error) {
	if endpoint == "" {
		return nil, goerr.New("descriptor service endpoint is required")
	}

	b := &remoteBackend{
		endpoint:      endpoint,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		minConfidence: minConfidence,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *remoteBackend) Provenance() types.Provenance {
	return types.ProvenanceNeural
}

type descriptorResponse struct {
	FaceCount  int       `json:"face_count"`
	Confidence float64   `json:"confidence"`
	Descriptor []float32 `json:"descriptor"`
}

func (b *remoteBackend) Extract(ctx context.Context, img image.Image) (model.Embedding, error) {
	var body bytes.Buffer
	if err := png.Encode(&body, img); err != nil {
		return nil, goerr.Wrap(err, "failed to encode frame for descriptor service")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, &body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build descriptor request")
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "descriptor service unreachable", goerr.V("endpoint", b.endpoint))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("descriptor service returned error",
			goerr.V("endpoint", b.endpoint),
			goerr.V("status", resp.StatusCode))
	}

	var out descriptorResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, goerr.Wrap(err, "failed to decode descriptor response")
	}

	switch {
	case out.FaceCount == 0:
		return nil, ErrNoFaceDetected
	case out.FaceCount > 1:
		return nil, ErrMultipleFacesDetected
	case out.Confidence < b.minConfidence:
		return nil, goerr.Wrap(ErrLowConfidenceDetection, "descriptor confidence below threshold",
			goerr.V("confidence", out.Confidence),
			goerr.V("required", b.minConfidence))
	}

	emb := model.Embedding(out.Descriptor)
	if err := emb.Validate(); err != nil {
		return nil, goerr.Wrap(err, "descriptor service returned malformed embedding")
	}
	return emb, nil
}

package recognizer_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/service/recognizer"
	"github.com/m-mizutani/gt"
)

func descriptorServer(t *testing.T, faceCount int, confidence float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("Content-Type")).Equal("image/png")

		desc := make([]float32, model.EmbeddingDimension)
		for i := range desc {
			desc[i] = float32(i) / float32(model.EmbeddingDimension)
		}
		resp := map[string]any{
			"face_count": faceCount,
			"confidence": confidence,
			"descriptor": desc,
		}
		gt.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestRemoteBackendExtract(t *testing.T) {
	srv := descriptorServer(t, 1, 0.97)
	defer srv.Close()

	backend, err := recognizer.NewRemoteBackend(srv.URL, 0.8)
	gt.NoError(t, err).Required()
	gt.Value(t, backend.Provenance()).Equal(types.ProvenanceNeural)

	emb, err := recognizer.New(backend).Extract(context.Background(), encodePNG(t, 9))
	gt.NoError(t, err).Required()
	gt.Array(t, emb).Length(model.EmbeddingDimension)
	gt.NoError(t, emb.Validate())
}

func TestRemoteBackendRejections(t *testing.T) {
	cases := map[string]struct {
		faceCount  int
		confidence float64
		wantErr    error
	}{
		"no face":        {0, 0.0, recognizer.ErrNoFaceDetected},
		"multiple faces": {2, 0.9, recognizer.ErrMultipleFacesDetected},
		"low confidence": {1, 0.4, recognizer.ErrLowConfidenceDetection},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := descriptorServer(t, tc.faceCount, tc.confidence)
			defer srv.Close()

			backend, err := recognizer.NewRemoteBackend(srv.URL, 0.8)
			gt.NoError(t, err).Required()

			_, err = recognizer.New(backend).Extract(context.Background(), encodePNG(t, 9))
			gt.Bool(t, errors.Is(err, tc.wantErr)).True()
		})
	}
}

func TestRemoteBackendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	backend, err := recognizer.NewRemoteBackend(srv.URL, 0.8)
	gt.NoError(t, err).Required()

	_, err = recognizer.New(backend).Extract(context.Background(), encodePNG(t, 9))
	gt.Error(t, err)
}

func TestRemoteBackendRequiresEndpoint(t *testing.T) {
	_, err := recognizer.NewRemoteBackend("", 0.8)
	gt.Error(t, err)
}

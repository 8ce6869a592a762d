package recognizer_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
	"github.com/facepay-lab/facepay/pkg/service/recognizer"
	"github.com/m-mizutani/gt"
)

type fakeDetector struct {
	detections []recognizer.Detection
	err        error
}

func (d *fakeDetector) Detect(img image.Image) ([]recognizer.Detection, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.detections, nil
}

func encodePNG(t *testing.T, seed uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x) + seed,
				G: uint8(y) * seed,
				B: seed,
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	gt.NoError(t, png.Encode(&buf, img)).Required()
	return buf.Bytes()
}

func singleFace() []recognizer.Detection {
	return []recognizer.Detection{
		{Box: image.Rect(10, 12, 50, 52), Confidence: 0.95, Roll: 0.1, Yaw: -0.05},
	}
}

func TestGeometricDeterminism(t *testing.T) {
	svc := recognizer.New(recognizer.NewGeometricBackend(&fakeDetector{detections: singleFace()}, 0.8))
	data := encodePNG(t, 7)

	first, err := svc.Extract(context.Background(), data)
	gt.NoError(t, err).Required()
	second, err := svc.Extract(context.Background(), data)
	gt.NoError(t, err).Required()

	gt.Array(t, first).Length(model.EmbeddingDimension)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("embedding not deterministic at dim %d: %v != %v", i, first[i], second[i])
		}
	}
	gt.NoError(t, first.Validate())
}

func TestGeometricRejectsMultipleFaces(t *testing.T) {
	dets := []recognizer.Detection{
		{Box: image.Rect(0, 0, 30, 30), Confidence: 0.9},
		{Box: image.Rect(32, 0, 62, 30), Confidence: 0.92},
	}
	svc := recognizer.New(recognizer.NewGeometricBackend(&fakeDetector{detections: dets}, 0.8))

	_, err := svc.Extract(context.Background(), encodePNG(t, 1))
	gt.Bool(t, errors.Is(err, recognizer.ErrMultipleFacesDetected)).True()
}

func TestGeometricRejectsNoFace(t *testing.T) {
	svc := recognizer.New(recognizer.NewGeometricBackend(&fakeDetector{}, 0.8))

	_, err := svc.Extract(context.Background(), encodePNG(t, 1))
	gt.Bool(t, errors.Is(err, recognizer.ErrNoFaceDetected)).True()
}

func TestGeometricRejectsLowConfidence(t *testing.T) {
	dets := []recognizer.Detection{
		{Box: image.Rect(10, 10, 40, 40), Confidence: 0.5},
	}
	svc := recognizer.New(recognizer.NewGeometricBackend(&fakeDetector{detections: dets}, 0.8))

	_, err := svc.Extract(context.Background(), encodePNG(t, 1))
	gt.Bool(t, errors.Is(err, recognizer.ErrLowConfidenceDetection)).True()
}

func TestGeometricIgnoresLowConfidenceNeighbors(t *testing.T) {
	// Two detections but only one above threshold: not ambiguous.
	dets := []recognizer.Detection{
		{Box: image.Rect(10, 10, 40, 40), Confidence: 0.95},
		{Box: image.Rect(2, 2, 8, 8), Confidence: 0.3},
	}
	svc := recognizer.New(recognizer.NewGeometricBackend(&fakeDetector{detections: dets}, 0.8))

	emb, err := svc.Extract(context.Background(), encodePNG(t, 1))
	gt.NoError(t, err).Required()
	gt.Array(t, emb).Length(model.EmbeddingDimension)
}

func TestExtractRejectsGarbage(t *testing.T) {
	svc := recognizer.New(recognizer.NewHashBackend())

	_, err := svc.Extract(context.Background(), []byte("not an image"))
	gt.Bool(t, errors.Is(err, recognizer.ErrImageDecodeFailed)).True()
}

func TestHashFallbackDeterministicAndDistinct(t *testing.T) {
	svc := recognizer.New(recognizer.NewHashBackend())
	gt.Value(t, svc.Provenance()).Equal(types.ProvenanceHashFallback)

	a1, err := svc.Extract(context.Background(), encodePNG(t, 3))
	gt.NoError(t, err).Required()
	a2, err := svc.Extract(context.Background(), encodePNG(t, 3))
	gt.NoError(t, err).Required()
	b, err := svc.Extract(context.Background(), encodePNG(t, 4))
	gt.NoError(t, err).Required()

	gt.Array(t, a1).Length(model.EmbeddingDimension)
	gt.Value(t, a1).Equal(a2)
	gt.Value(t, a1).NotEqual(b)
}

func TestExtractAverageDropsFailedSamples(t *testing.T) {
	svc := recognizer.New(recognizer.NewGeometricBackend(&fakeDetector{detections: singleFace()}, 0.8))

	samples := [][]byte{
		encodePNG(t, 1),
		[]byte("broken sample"),
		encodePNG(t, 1),
	}

	avg, err := svc.ExtractAverage(context.Background(), samples)
	gt.NoError(t, err).Required()
	gt.Array(t, avg).Length(model.EmbeddingDimension)

	// Every usable sample is identical here, so the mean equals a single
	// extraction.
	single, err := svc.Extract(context.Background(), samples[0])
	gt.NoError(t, err).Required()
	gt.Value(t, avg).Equal(single)
}

func TestExtractAverageAllFailed(t *testing.T) {
	svc := recognizer.New(recognizer.NewGeometricBackend(&fakeDetector{}, 0.8))

	samples := [][]byte{encodePNG(t, 1), encodePNG(t, 2)}
	_, err := svc.ExtractAverage(context.Background(), samples)
	gt.Bool(t, errors.Is(err, recognizer.ErrNoUsableSamples)).True()

	_, err = svc.ExtractAverage(context.Background(), nil)
	gt.Bool(t, errors.Is(err, recognizer.ErrNoUsableSamples)).True()
}

type boundsRecorder struct {
	bounds image.Rectangle
}

func (b *boundsRecorder) Extract(ctx context.Context, img image.Image) (model.Embedding, error) {
	b.bounds = img.Bounds()
	return make(model.Embedding, model.EmbeddingDimension), nil
}

func (b *boundsRecorder) Provenance() types.Provenance {
	return types.ProvenanceEngineered
}

func TestExtractDownscalesLargeFrames(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2048, 1024))
	var buf bytes.Buffer
	gt.NoError(t, png.Encode(&buf, img)).Required()

	rec := &boundsRecorder{}
	svc := recognizer.New(rec)
	_, err := svc.Extract(context.Background(), buf.Bytes())
	gt.NoError(t, err).Required()

	gt.Value(t, rec.bounds.Dx()).Equal(1024)
	gt.Value(t, rec.bounds.Dy()).Equal(512)
}

func TestExtractKeepsSmallFrames(t *testing.T) {
	rec := &boundsRecorder{}
	svc := recognizer.New(rec)
	_, err := svc.Extract(context.Background(), encodePNG(t, 3))
	gt.NoError(t, err).Required()

	gt.Value(t, rec.bounds.Dx()).Equal(64)
	gt.Value(t, rec.bounds.Dy()).Equal(64)
}

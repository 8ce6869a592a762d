package recognizer

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"image"

	"github.com/facepay-lab/facepay/pkg/domain/model"
	"github.com/facepay-lab/facepay/pkg/domain/types"
)

// hashBackend is the total-fallback strategy used when no detection model is
// available: a SHA-256 digest of the pixel data expanded to the embedding
// dimension. It cannot generalize across different photos of the same face,
// so the matcher applies the lenient fallback threshold to embeddings tagged
// with this provenance.
type hashBackend struct{}

// NewHashBackend returns the hash-derived fallback embedding strategy.
func NewHashBackend() Backend {
	return &hashBackend{}
}

func (b *hashBackend) Provenance() types.Provenance {
	return types.ProvenanceHashFallback
}

func (b *hashBackend) Extract(ctx context.Context, img image.Image) (model.Embedding, error) {
	digest := hashPixels(img)

	emb := make(model.Embedding, model.EmbeddingDimension)
	for i := range emb {
		// Walk the digest cyclically, one byte per dimension, scaled to [0, 1].
		emb[i] = float32(digest[i%len(digest)]) / 255.0
	}
	return emb, nil
}

// hashPixels digests the decoded pixel values so the embedding depends on
// image content, not on container encoding details.
func hashPixels(img image.Image) []byte {
	h := sha256.New()
	bounds := img.Bounds()

	var buf [8]byte
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			binary.BigEndian.PutUint16(buf[0:2], uint16(r))
			binary.BigEndian.PutUint16(buf[2:4], uint16(g))
			binary.BigEndian.PutUint16(buf[4:6], uint16(b))
			binary.BigEndian.PutUint16(buf[6:8], uint16(a))
			h.Write(buf[:])
		}
	}
	return h.Sum(nil)
}

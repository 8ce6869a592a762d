package recognizer

import (
	"image"

	"golang.org/x/image/draw"
)

// maxFrameSide bounds the longest side of a frame before detection. Camera
// captures often arrive at full sensor resolution; detection quality does
// not improve past this size while CPU cost does.
const maxFrameSide = 1024

// normalizeFrame downscales img so its longest side is at most
// maxFrameSide, preserving aspect ratio. Smaller frames pass through
// unchanged.
func normalizeFrame(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := max(w, h)
	if longest <= maxFrameSide {
		return img
	}

	scale := float64(maxFrameSide) / float64(longest)
	dst := image.NewRGBA(image.Rect(0, 0,
		int(float64(w)*scale), int(float64(h)*scale)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

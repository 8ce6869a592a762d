package recognizer

import (
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
	"github.com/m-mizutani/goerr/v2"
)

// Detection is one candidate face region with its detection confidence in
// [0, 1]. Roll and yaw are radians when the detector provides them, 0
// otherwise.
type Detection struct {
	Box        image.Rectangle
	Confidence float64
	Roll       float64
	Yaw        float64
}

// FaceDetector locates candidate face regions in a decoded image. The
// geometric backend is written against this interface so extraction logic
// can be tested with a fake detector.
type FaceDetector interface {
	Detect(img image.Image) ([]Detection, error)
}

// pigoQualityScale maps pigo's unbounded cluster quality score onto [0, 1].
// Quality around 10 and above is a solid detection for the frontal cascade.
const pigoQualityScale = 10.0

type pigoDetector struct {
	classifier *pigo.Pigo
}

// NewPigoDetector loads the pigo cascade at path and returns a pure-Go
// detector.
func NewPigoDetector(cascadePath string) (FaceDetector, error) {
	cascade, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read cascade file", goerr.V("path", cascadePath))
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unpack cascade", goerr.V("path", cascadePath))
	}

	return &pigoDetector{classifier: classifier}, nil
}

func (d *pigoDetector) Detect(img image.Image) ([]Detection, error) {
	src := pigo.ImgToNRGBA(img)
	pixels := pigo.RgbToGrayscale(src)
	bounds := src.Bounds()
	cols, rows := bounds.Dx(), bounds.Dy()

	cParams := pigo.CascadeParams{
		MinSize:     60,
		MaxSize:     max(cols, rows),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(cParams, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	out := make([]Detection, 0, len(dets))
	for _, det := range dets {
		half := det.Scale / 2
		conf := float64(det.Q) / pigoQualityScale
		if conf > 1.0 {
			conf = 1.0
		}
		out = append(out, Detection{
			Box:        image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half),
			Confidence: conf,
		})
	}
	return out, nil
}

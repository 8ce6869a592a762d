package recognizer

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for face extraction. All of these are recoverable by the
// caller (retake the image); none of them are silently downgraded to a
// degraded embedding.
var (
	ErrImageDecodeFailed = goerr.New("failed to decode image")
	ErrNoFaceDetected    = goerr.New("no face detected in image")
	// ErrMultipleFacesDetected rejects ambiguous frames outright rather than
	// guessing which face authorizes the payment.
	ErrMultipleFacesDetected  = goerr.New("multiple faces detected")
	ErrLowConfidenceDetection = goerr.New("face detection confidence too low")
	// ErrNoUsableSamples means every image of a registration batch failed
	// extraction.
	ErrNoUsableSamples = goerr.New("no usable face samples")
)

// Package emotion turns raw facial-emotion scores into a mood classification.
//
// Emotion inference and face detection are delegated to an external model
// service; this package owns only the label aggregation and the fallback
// policy used when that service cannot answer.
package emotion

import (
	"context"
	"errors"
)

// Scores maps raw emotion labels reported by the model (for example
// "happy" or "disgust") to a percentage score in [0, 100].
type Scores map[string]float64

// Inferrer runs facial emotion inference on an encoded image.
type Inferrer interface {
	InferEmotion(ctx context.Context, image []byte) (Scores, error)
}

// FaceDetector reports whether an encoded image contains at least one face.
type FaceDetector interface {
	DetectFace(ctx context.Context, image []byte) (bool, error)
}

var (
	// ErrInferenceUnavailable is returned when the model service fails to
	// produce emotion scores.
	ErrInferenceUnavailable = errors.New("emotion inference unavailable")

	// ErrNoFace is returned when face detection finds no face.
	ErrNoFace = errors.New("no face detected in image")

	// ErrInvalidImage is returned when uploaded bytes are not a decodable image.
	ErrInvalidImage = errors.New("invalid image")
)

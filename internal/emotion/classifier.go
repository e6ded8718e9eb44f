package emotion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/justestif/go-mood-music-player/internal/mood"
)

// DefaultConfidenceThreshold marks classifications below it as low confidence.
const DefaultConfidenceThreshold = 0.6

// Messages reported in Classification.Message.
const (
	msgSuccess       = "Detection successful"
	msgNoScores      = "No emotion scores returned"
	msgFaceFallback  = "Face detected, emotion analysis unavailable - using neutral"
	msgNoFace        = "No face detected in image"
	msgFailurePrefix = "Detection failed: "
)

// Confidence values used by the fallback paths.
const (
	faceFallbackConfidence = 0.5
	failureConfidence      = 0.3
)

// Classifier maps model output to a mood, falling back to face presence
// detection when the model cannot answer.
type Classifier struct {
	infer     Inferrer
	faces     FaceDetector
	threshold float64
	logger    *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithConfidenceThreshold sets the threshold below which a successful
// classification is flagged LowConfidence. Zero disables the flag.
func WithConfidenceThreshold(t float64) Option {
	return func(c *Classifier) {
		c.threshold = t
	}
}

// WithLogger sets the logger used for detection events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClassifier creates a Classifier. Either collaborator may be nil, in
// which case the corresponding step is treated as failed.
func NewClassifier(infer Inferrer, faces FaceDetector, opts ...Option) *Classifier {
	c := &Classifier{
		infer:     infer,
		faces:     faces,
		threshold: DefaultConfidenceThreshold,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify aggregates raw scores into moods and picks the dominant one.
// An empty score set yields the neutral fallback flagged as an error.
func (c *Classifier) Classify(scores Scores) mood.Classification {
	aggregated := make(map[mood.Label]float64, len(scores))
	for raw, score := range scores {
		if !usable(score) {
			continue
		}
		aggregated[MapLabel(raw)] += score
	}

	if len(aggregated) == 0 {
		return failure(msgNoScores)
	}

	// Canonical label order makes ties deterministic.
	var dominant mood.Label
	best := -1.0
	for _, l := range mood.Labels() {
		score, ok := aggregated[l]
		if !ok {
			continue
		}
		if score > best {
			dominant = l
			best = score
		}
	}

	emotions := make(map[mood.Label]float64, len(aggregated))
	for l, score := range aggregated {
		emotions[l] = score / 100.0
	}

	result := mood.Classification{
		Mood:       dominant,
		Confidence: best / 100.0,
		Emotions:   emotions,
		Message:    msgSuccess,
	}
	result.LowConfidence = c.threshold > 0 && result.Confidence < c.threshold
	return result
}

// Detect runs the full pipeline on an encoded image: model inference, then
// face-presence fallback when inference fails or returns nothing.
func (c *Classifier) Detect(ctx context.Context, image []byte) mood.Classification {
	scores, err := c.inferScores(ctx, image)
	if err == nil {
		result := c.Classify(scores)
		c.logger.Info("emotion detection successful",
			"mood", result.Mood,
			"confidence", fmt.Sprintf("%.2f", result.Confidence))
		return result
	}

	c.logger.Warn("emotion inference failed, trying face detection", "error", err)
	return c.fallback(ctx, image)
}

func (c *Classifier) inferScores(ctx context.Context, image []byte) (Scores, error) {
	if c.infer == nil {
		return nil, ErrInferenceUnavailable
	}

	scores, err := c.infer.InferEmotion(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInferenceUnavailable, err)
	}
	for _, score := range scores {
		if usable(score) {
			return scores, nil
		}
	}
	return nil, fmt.Errorf("%w: no usable scores", ErrInferenceUnavailable)
}

// usable reports whether a raw score can be aggregated.
func usable(score float64) bool {
	return !math.IsNaN(score) && score >= 0
}

func (c *Classifier) fallback(ctx context.Context, image []byte) mood.Classification {
	if c.faces == nil {
		c.logger.Error("fallback detection failed", "error", "face detector not configured")
		return failure(msgFailurePrefix + "face detector not configured")
	}

	found, err := c.faces.DetectFace(ctx, image)
	if err != nil {
		c.logger.Error("fallback detection failed", "error", err)
		return failure(msgFailurePrefix + err.Error())
	}

	if !found {
		c.logger.Warn("no face detected in image")
		return failure(msgNoFace)
	}

	c.logger.Info("face detected, returning neutral mood as fallback")
	result := mood.Classification{
		Mood:       mood.Neutral,
		Confidence: faceFallbackConfidence,
		Emotions: map[mood.Label]float64{
			mood.Neutral:  0.5,
			mood.Happy:    0.125,
			mood.Sad:      0.125,
			mood.Angry:    0.125,
			mood.Surprise: 0.125,
			mood.Fear:     0.0,
		},
		Message: msgFaceFallback,
	}
	result.LowConfidence = c.threshold > 0 && result.Confidence < c.threshold
	return result
}

// failure builds the neutral error result. Mood is always set.
func failure(message string) mood.Classification {
	return mood.Classification{
		Mood:       mood.Default,
		Confidence: failureConfidence,
		Emotions:   map[mood.Label]float64{mood.Neutral: 1.0},
		Error:      true,
		Message:    message,
	}
}

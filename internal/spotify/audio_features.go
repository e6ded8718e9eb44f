package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-mood-music-player/internal/mood"
)

// ErrNoAudioFeatures is returned when the catalog has no analysis for a track.
var ErrNoAudioFeatures = errors.New("no audio features for track")

// FetchAudioFeatures retrieves the audio analysis used for mood lookup.
func (c *Client) FetchAudioFeatures(ctx context.Context, id string) (mood.AudioFeatures, error) {
	if err := c.wait(ctx); err != nil {
		return mood.AudioFeatures{}, err
	}

	features, err := c.api.GetAudioFeatures(ctx, trackID(id))
	if err != nil {
		return mood.AudioFeatures{}, fmt.Errorf("fetching audio features for %s: %w", id, err)
	}
	if len(features) == 0 || features[0] == nil {
		return mood.AudioFeatures{}, fmt.Errorf("%w: %s", ErrNoAudioFeatures, id)
	}

	return applyAudioFeatures(features[0]), nil
}

// applyAudioFeatures copies the feature values mood lookup needs.
func applyAudioFeatures(f *spotify.AudioFeatures) mood.AudioFeatures {
	return mood.AudioFeatures{
		Valence: float64(f.Valence),
		Energy:  float64(f.Energy),
	}
}

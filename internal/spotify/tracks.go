package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-mood-music-player/internal/mood"
)

// MaxSearchLimit is the largest page size the search endpoint accepts.
const MaxSearchLimit = 50

// ErrMissingField is returned when a catalog track lacks a required field.
var ErrMissingField = errors.New("missing track field")

// SearchTracks runs a track search and returns the formatted results.
// Entries missing required fields are skipped and logged.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]mood.Track, error) {
	if limit <= 0 || limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching tracks %q: %w", query, err)
	}
	if result.Tracks == nil {
		return []mood.Track{}, nil
	}

	return c.formatTracks(result.Tracks.Tracks), nil
}

// formatTracks converts raw catalog tracks, dropping malformed ones.
func (c *Client) formatTracks(raw []spotify.FullTrack) []mood.Track {
	tracks := make([]mood.Track, 0, len(raw))
	for _, t := range raw {
		track, err := convertTrack(t)
		if err != nil {
			c.logger.Warn("skipping catalog track", "error", err)
			continue
		}
		tracks = append(tracks, track)
	}
	return tracks
}

// convertTrack converts a Spotify FullTrack to mood.Track.
// Artist names are joined by ", " and the first album image becomes ImageURL.
func convertTrack(t spotify.FullTrack) (mood.Track, error) {
	switch {
	case t.ID == "":
		return mood.Track{}, fmt.Errorf("%w: id", ErrMissingField)
	case t.Name == "":
		return mood.Track{}, fmt.Errorf("%w: name (track %s)", ErrMissingField, t.ID)
	case t.URI == "":
		return mood.Track{}, fmt.Errorf("%w: uri (track %s)", ErrMissingField, t.ID)
	}

	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	track := mood.Track{
		ID:          t.ID.String(),
		Name:        t.Name,
		Artist:      strings.Join(artists, ", "),
		Album:       t.Album.Name,
		DurationMs:  int(t.Duration),
		Explicit:    t.Explicit,
		Popularity:  int(t.Popularity),
		ExternalURL: t.ExternalURLs["spotify"],
		URI:         string(t.URI),
	}

	if t.PreviewURL != "" {
		preview := t.PreviewURL
		track.PreviewURL = &preview
	}
	if len(t.Album.Images) > 0 && t.Album.Images[0].URL != "" {
		image := t.Album.Images[0].URL
		track.ImageURL = &image
	}

	return track, nil
}

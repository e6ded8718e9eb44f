package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-mood-music-player/internal/mood"
)

const maxTracksPerRequest = 100

// CreatePlaylist creates a new playlist owned by userID.
func (c *Client) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (mood.RemotePlaylist, error) {
	if err := c.wait(ctx); err != nil {
		return mood.RemotePlaylist{}, err
	}
	playlist, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return mood.RemotePlaylist{}, fmt.Errorf("creating playlist: %w", err)
	}

	return mood.RemotePlaylist{
		ID:   playlist.ID.String(),
		URL:  playlist.ExternalURLs["spotify"],
		Name: playlist.Name,
	}, nil
}

// AddTracksToPlaylist adds tracks to a playlist, handling batching for large sets.
// Spotify allows max 100 tracks per request. Both bare IDs and
// "spotify:track:<id>" URIs are accepted.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, trackURIs []string) error {
	if len(trackURIs) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(trackURIs))
	for i, uri := range trackURIs {
		ids[i] = trackID(uri)
	}

	// Batch in chunks of 100
	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))
		batch := ids[i:end]

		if err := c.wait(ctx); err != nil {
			return err
		}
		_, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), batch...)
		if err != nil {
			return fmt.Errorf("adding tracks (batch %d-%d): %w", i+1, end, err)
		}
	}

	return nil
}

// trackID extracts the ID from a track URI.
func trackID(uri string) spotify.ID {
	return spotify.ID(strings.TrimPrefix(uri, "spotify:track:"))
}

package playlist

import (
	"context"
	"fmt"

	"github.com/justestif/go-mood-music-player/internal/mood"
)

// Remote creates playlists in the catalog service for the token's owner.
type Remote interface {
	UserID(ctx context.Context) (string, error)
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (mood.RemotePlaylist, error)
	AddTracksToPlaylist(ctx context.Context, playlistID string, trackURIs []string) error
}

// Materialize creates a private remote playlist for l and fills it with trackURIs.
func Materialize(ctx context.Context, remote Remote, l mood.Label, trackURIs []string) (mood.RemotePlaylist, error) {
	userID, err := remote.UserID(ctx)
	if err != nil {
		return mood.RemotePlaylist{}, err
	}

	name := fmt.Sprintf("AI Mood: %s", l.Title())
	description := fmt.Sprintf("AI-generated playlist for %s mood - Created by Mood Music Player", l)

	created, err := remote.CreatePlaylist(ctx, userID, name, description, false)
	if err != nil {
		return mood.RemotePlaylist{}, err
	}
	created.Name = name

	if err := remote.AddTracksToPlaylist(ctx, created.ID, trackURIs); err != nil {
		return created, fmt.Errorf("filling playlist %s: %w", created.ID, err)
	}

	return created, nil
}

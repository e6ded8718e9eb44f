package playlist

import (
	"context"
	"errors"
	"testing"

	"github.com/justestif/go-mood-music-player/internal/mood"
)

type fakeRemote struct {
	userErr   error
	createErr error
	addErr    error

	createdFor  string
	name        string
	description string
	public      bool
	addedTo     string
	added       []string
}

func (f *fakeRemote) UserID(_ context.Context) (string, error) {
	return "user-1", f.userErr
}

func (f *fakeRemote) CreatePlaylist(_ context.Context, userID, name, description string, public bool) (mood.RemotePlaylist, error) {
	if f.createErr != nil {
		return mood.RemotePlaylist{}, f.createErr
	}
	f.createdFor, f.name, f.description, f.public = userID, name, description, public
	return mood.RemotePlaylist{ID: "pl-9", URL: "https://open.spotify.com/playlist/pl-9"}, nil
}

func (f *fakeRemote) AddTracksToPlaylist(_ context.Context, playlistID string, uris []string) error {
	f.addedTo = playlistID
	f.added = uris
	return f.addErr
}

func TestMaterialize(t *testing.T) {
	remote := &fakeRemote{}
	uris := []string{"spotify:track:1", "spotify:track:2"}

	got, err := Materialize(context.Background(), remote, mood.Happy, uris)
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	if got.ID != "pl-9" || got.Name != "AI Mood: Happy" {
		t.Errorf("playlist = %+v", got)
	}
	if remote.createdFor != "user-1" {
		t.Errorf("created for %q, want user-1", remote.createdFor)
	}
	if remote.public {
		t.Error("playlist created public, want private")
	}
	if remote.description != "AI-generated playlist for happy mood - Created by Mood Music Player" {
		t.Errorf("description = %q", remote.description)
	}
	if remote.addedTo != "pl-9" || len(remote.added) != 2 {
		t.Errorf("added %v to %q", remote.added, remote.addedTo)
	}
}

func TestMaterializeErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		remote *fakeRemote
	}{
		{"user lookup fails", &fakeRemote{userErr: boom}},
		{"create fails", &fakeRemote{createErr: boom}},
		{"add fails", &fakeRemote{addErr: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Materialize(context.Background(), tt.remote, mood.Sad, []string{"spotify:track:1"})
			if !errors.Is(err, boom) {
				t.Errorf("error = %v, want boom", err)
			}
		})
	}
}

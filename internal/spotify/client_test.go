package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// plainTokenClient ignores the token and returns an unauthenticated client.
type plainTokenClient struct {
	tokens []*oauth2.Token
}

func (p *plainTokenClient) Client(_ context.Context, token *oauth2.Token) *http.Client {
	p.tokens = append(p.tokens, token)
	return &http.Client{}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	conn := NewConnector(&plainTokenClient{}, WithBaseURL(server.URL+"/"), WithRateLimit(0))
	return conn.Connect(context.Background(), &oauth2.Token{AccessToken: "tok"})
}

const searchResponse = `{
  "tracks": {
    "href": "https://api.spotify.com/v1/search?query=pop",
    "limit": 10, "offset": 0, "total": 3,
    "items": [
      {
        "id": "t1", "name": "First", "uri": "spotify:track:t1",
        "artists": [{"name": "A"}, {"name": "B"}],
        "album": {"name": "Album One", "images": [{"url": "https://img/1-large"}, {"url": "https://img/1-small"}]},
        "duration_ms": 180000, "explicit": true, "popularity": 71,
        "preview_url": "https://p/1",
        "external_urls": {"spotify": "https://open.spotify.com/track/t1"}
      },
      {
        "id": "t2", "name": "Second", "uri": "spotify:track:t2",
        "artists": [{"name": "C"}],
        "album": {"name": "Album Two", "images": []},
        "duration_ms": 200000, "explicit": false, "popularity": 10,
        "preview_url": null,
        "external_urls": {"spotify": "https://open.spotify.com/track/t2"}
      },
      {
        "name": "No ID", "uri": "spotify:track:",
        "artists": [{"name": "D"}],
        "album": {"name": "Album Three", "images": []},
        "duration_ms": 1000, "explicit": false, "popularity": 1
      }
    ]
  }
}`

func TestSearchTracks(t *testing.T) {
	var gotQuery, gotType, gotLimit string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("q")
		gotType = r.URL.Query().Get("type")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, searchResponse)
	}))

	tracks, err := client.SearchTracks(context.Background(), `genre:"pop"`, 10)
	if err != nil {
		t.Fatalf("SearchTracks() error = %v", err)
	}

	if gotQuery != `genre:"pop"` {
		t.Errorf("query = %q, want %q", gotQuery, `genre:"pop"`)
	}
	if gotType != "track" {
		t.Errorf("type = %q, want track", gotType)
	}
	if gotLimit != "10" {
		t.Errorf("limit = %q, want 10", gotLimit)
	}

	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2 (entry without id skipped)", len(tracks))
	}

	first := tracks[0]
	if first.ID != "t1" || first.Name != "First" {
		t.Errorf("first = %+v", first)
	}
	if first.Artist != "A, B" {
		t.Errorf("Artist = %q, want %q", first.Artist, "A, B")
	}
	if first.Album != "Album One" {
		t.Errorf("Album = %q, want %q", first.Album, "Album One")
	}
	if first.DurationMs != 180000 || !first.Explicit || first.Popularity != 71 {
		t.Errorf("numeric fields = %d/%v/%d", first.DurationMs, first.Explicit, first.Popularity)
	}
	if first.PreviewURL == nil || *first.PreviewURL != "https://p/1" {
		t.Errorf("PreviewURL = %v, want https://p/1", first.PreviewURL)
	}
	if first.ImageURL == nil || *first.ImageURL != "https://img/1-large" {
		t.Errorf("ImageURL = %v, want first album image", first.ImageURL)
	}
	if first.ExternalURL != "https://open.spotify.com/track/t1" {
		t.Errorf("ExternalURL = %q", first.ExternalURL)
	}
	if first.URI != "spotify:track:t1" {
		t.Errorf("URI = %q", first.URI)
	}

	second := tracks[1]
	if second.PreviewURL != nil {
		t.Errorf("PreviewURL = %q, want nil", *second.PreviewURL)
	}
	if second.ImageURL != nil {
		t.Errorf("ImageURL = %q, want nil", *second.ImageURL)
	}
}

func TestSearchTracksError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"status":400,"message":"bad query"}}`)
	}))

	if _, err := client.SearchTracks(context.Background(), "x", 10); err == nil {
		t.Fatal("SearchTracks() error = nil, want error")
	}
}

func TestConvertTrack(t *testing.T) {
	tests := []struct {
		name           string
		track          spotify.FullTrack
		wantErr        bool
		expectedArtist string
	}{
		{
			name: "single artist",
			track: spotify.FullTrack{SimpleTrack: spotify.SimpleTrack{
				ID: "track123", Name: "Test Song", URI: "spotify:track:track123",
				Artists: []spotify.SimpleArtist{{Name: "Artist One"}},
			}},
			expectedArtist: "Artist One",
		},
		{
			name: "multiple artists",
			track: spotify.FullTrack{SimpleTrack: spotify.SimpleTrack{
				ID: "track456", Name: "Collab Track", URI: "spotify:track:track456",
				Artists: []spotify.SimpleArtist{{Name: "Artist A"}, {Name: "Artist B"}, {Name: "Artist C"}},
			}},
			expectedArtist: "Artist A, Artist B, Artist C",
		},
		{
			name: "no artists",
			track: spotify.FullTrack{SimpleTrack: spotify.SimpleTrack{
				ID: "track000", Name: "Unknown Track", URI: "spotify:track:track000",
			}},
			expectedArtist: "",
		},
		{
			name: "missing id",
			track: spotify.FullTrack{SimpleTrack: spotify.SimpleTrack{
				Name: "Orphan", URI: "spotify:track:",
			}},
			wantErr: true,
		},
		{
			name: "missing name",
			track: spotify.FullTrack{SimpleTrack: spotify.SimpleTrack{
				ID: "nameless", URI: "spotify:track:nameless",
			}},
			wantErr: true,
		},
		{
			name: "missing uri",
			track: spotify.FullTrack{SimpleTrack: spotify.SimpleTrack{
				ID: "nouri", Name: "No URI",
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convertTrack(tt.track)
			if tt.wantErr {
				if !errors.Is(err, ErrMissingField) {
					t.Fatalf("convertTrack() error = %v, want ErrMissingField", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("convertTrack() error = %v", err)
			}
			if got.Artist != tt.expectedArtist {
				t.Errorf("Artist = %q, want %q", got.Artist, tt.expectedArtist)
			}
			if got.PreviewURL != nil {
				t.Errorf("PreviewURL = %q, want nil", *got.PreviewURL)
			}
		})
	}
}

func TestUserProfile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "user1", "display_name": "User One", "email": "u1@example.com",
			"followers": {"total": 42}, "country": "SE", "product": "premium"
		}`)
	}))

	profile, err := client.UserProfile(context.Background())
	if err != nil {
		t.Fatalf("UserProfile() error = %v", err)
	}
	if profile.UserID != "user1" || profile.DisplayName != "User One" {
		t.Errorf("profile = %+v", profile)
	}
	if profile.Email != "u1@example.com" || profile.Followers != 42 {
		t.Errorf("profile = %+v", profile)
	}
	if profile.Country != "SE" || profile.Product != "premium" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestCreatePlaylistAndAddTracks(t *testing.T) {
	var added [][]string
	var created map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/users/user1/playlists":
			_ = json.NewDecoder(r.Body).Decode(&created)
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":"pl1","name":"AI Mood: Happy",
				"external_urls":{"spotify":"https://open.spotify.com/playlist/pl1"}}`)
		case r.Method == http.MethodPost && r.URL.Path == "/playlists/pl1/tracks":
			var body struct {
				URIs []string `json:"uris"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			added = append(added, body.URIs)
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"snapshot_id":"snap"}`)
		default:
			http.NotFound(w, r)
		}
	}))

	pl, err := client.CreatePlaylist(context.Background(), "user1", "AI Mood: Happy", "desc", false)
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}
	if pl.ID != "pl1" || pl.URL != "https://open.spotify.com/playlist/pl1" {
		t.Errorf("playlist = %+v", pl)
	}
	if created["public"] != false {
		t.Errorf("public = %v, want false", created["public"])
	}

	uris := make([]string, 150)
	for i := range uris {
		uris[i] = "spotify:track:id" + strings.Repeat("x", i%3)
	}
	if err := client.AddTracksToPlaylist(context.Background(), "pl1", uris); err != nil {
		t.Fatalf("AddTracksToPlaylist() error = %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("batches = %d, want 2", len(added))
	}
	if len(added[0]) != 100 || len(added[1]) != 50 {
		t.Errorf("batch sizes = %d, %d, want 100, 50", len(added[0]), len(added[1]))
	}
	if added[0][0] != "spotify:track:id" {
		t.Errorf("first uri = %q, want spotify:track:id", added[0][0])
	}
}

func TestAddTracksToPlaylistEmpty(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))

	if err := client.AddTracksToPlaylist(context.Background(), "pl1", nil); err != nil {
		t.Fatalf("AddTracksToPlaylist() error = %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", calls.Load())
	}
}

func TestFetchAudioFeatures(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("ids") {
		case "t1":
			_, _ = io.WriteString(w, `{"audio_features":[{"id":"t1","valence":0.81,"energy":0.79}]}`)
		default:
			_, _ = io.WriteString(w, `{"audio_features":[null]}`)
		}
	}))

	f, err := client.FetchAudioFeatures(context.Background(), "spotify:track:t1")
	if err != nil {
		t.Fatalf("FetchAudioFeatures() error = %v", err)
	}
	if f.Valence < 0.80 || f.Valence > 0.82 || f.Energy < 0.78 || f.Energy > 0.80 {
		t.Errorf("features = %+v", f)
	}

	if _, err := client.FetchAudioFeatures(context.Background(), "missing"); !errors.Is(err, ErrNoAudioFeatures) {
		t.Errorf("error = %v, want ErrNoAudioFeatures", err)
	}
}

func TestConnectUsesToken(t *testing.T) {
	source := &plainTokenClient{}
	conn := NewConnector(source, WithTimeout(5*time.Second))
	token := &oauth2.Token{AccessToken: "abc"}

	conn.Connect(context.Background(), token)

	if len(source.tokens) != 1 || source.tokens[0] != token {
		t.Errorf("token source saw %v, want the caller's token", source.tokens)
	}
}

func TestTrackID(t *testing.T) {
	tests := map[string]spotify.ID{
		"spotify:track:abc": "abc",
		"abc":               "abc",
	}
	for in, want := range tests {
		if got := trackID(in); got != want {
			t.Errorf("trackID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRateLimitCoversEveryCall(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id": "user1", "display_name": "User One"}`)
	}))
	t.Cleanup(server.Close)

	// One call per second: the first call spends the burst and every
	// following call must wait longer than its deadline allows.
	conn := NewConnector(&plainTokenClient{}, WithBaseURL(server.URL+"/"), WithRateLimit(1))
	client := conn.Connect(context.Background(), &oauth2.Token{AccessToken: "tok"})

	if _, err := client.UserProfile(context.Background()); err != nil {
		t.Fatalf("first UserProfile() error = %v", err)
	}

	calls := map[string]func(ctx context.Context) error{
		"UserID": func(ctx context.Context) error {
			_, err := client.UserID(ctx)
			return err
		},
		"UserProfile": func(ctx context.Context) error {
			_, err := client.UserProfile(ctx)
			return err
		},
		"CreatePlaylist": func(ctx context.Context) error {
			_, err := client.CreatePlaylist(ctx, "user1", "Happy", "", false)
			return err
		},
		"AddTracksToPlaylist": func(ctx context.Context) error {
			return client.AddTracksToPlaylist(ctx, "pl1", []string{"spotify:track:t1"})
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			if err := call(ctx); err == nil {
				t.Fatal("error = nil, want rate limiter error")
			}
		})
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
}

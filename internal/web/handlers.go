package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/oauth2"

	"github.com/justestif/go-mood-music-player/internal/auth"
	"github.com/justestif/go-mood-music-player/internal/emotion"
	"github.com/justestif/go-mood-music-player/internal/metrics"
	"github.com/justestif/go-mood-music-player/internal/mood"
	"github.com/justestif/go-mood-music-player/internal/playlist"
	"github.com/justestif/go-mood-music-player/internal/spotify"
)

const (
	serviceName    = "mood-music-backend"
	serviceTitle   = "Mood-Based Music Player API"
	serviceVersion = "1.0.0"
	authPath       = "/api/spotify/auth"
	trackURIPrefix = "spotify:track:"

	healthPingTimeout = 2 * time.Second

	// multipartOverhead leaves room for boundaries and headers around the image part.
	multipartOverhead = 512 << 10
)

// Detector classifies the mood in an encoded image.
type Detector interface {
	Detect(ctx context.Context, image []byte) mood.Classification
}

// Authenticator runs the OAuth authorization code flow.
type Authenticator interface {
	Begin() (authURL, state string)
	Complete(ctx context.Context, code, state, bound string) (*oauth2.Token, error)
}

// CatalogClient is the music catalog acting on behalf of one user.
type CatalogClient interface {
	playlist.Catalog
	playlist.Remote
	UserProfile(ctx context.Context) (mood.UserProfile, error)
	FetchAudioFeatures(ctx context.Context, id string) (mood.AudioFeatures, error)
	Token() (*oauth2.Token, error)
}

// Connector binds a user's token to a CatalogClient.
type Connector interface {
	Connect(ctx context.Context, token *oauth2.Token) CatalogClient
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context, token *oauth2.Token) CatalogClient

// Connect calls f.
func (f ConnectorFunc) Connect(ctx context.Context, token *oauth2.Token) CatalogClient {
	return f(ctx, token)
}

// Handlers contains the HTTP handlers for the JSON API.
type Handlers struct {
	auth      Authenticator
	sessions  SessionManager
	detector  Detector
	resolver  *playlist.Resolver
	connector Connector
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Auth      Authenticator
	Sessions  SessionManager
	Detector  Detector
	Resolver  *playlist.Resolver
	Connector Connector
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(d Deps) *Handlers {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := d.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &Handlers{
		auth:      d.Auth,
		sessions:  d.Sessions,
		detector:  d.Detector,
		resolver:  d.Resolver,
		connector: d.Connector,
		metrics:   m,
		logger:    logger,
	}
}

// errorResponse is the body of every non-2xx JSON reply.
type errorResponse struct {
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	Mood       string   `json:"mood,omitempty"`
	AuthURL    string   `json:"auth_url,omitempty"`
	ValidMoods []string `json:"valid_moods,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, errorResponse{Error: errType, Message: message})
}

func (h *Handlers) log(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", middleware.GetReqID(r.Context()))
}

// Root describes the service (GET /).
func (h *Handlers) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": serviceTitle,
		"version": serviceVersion,
		"status":  "running",
		"endpoints": []string{
			"/api/detect-mood",
			"/api/get-playlist/<mood>",
			"/api/create-playlist",
			"/api/moods",
			"/api/user/profile",
			"/api/session/status",
			"/api/spotify/auth",
			"/api/spotify/callback",
			"/health",
			"/metrics",
		},
	})
}

// Pinger is implemented by session stores backed by an external database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness (GET /health). When sessions live in a database
// it must answer a ping, otherwise the service reports 503.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{
		"status":  "healthy",
		"service": serviceName,
	}
	p, ok := h.sessions.(Pinger)
	if !ok {
		writeJSON(w, http.StatusOK, body)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		h.log(r).Error("database ping failed", "error", err)
		body["status"] = "unhealthy"
		body["database"] = "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	body["database"] = "ok"
	writeJSON(w, http.StatusOK, body)
}

// DetectMood classifies the uploaded photo (POST /api/detect-mood).
// Detection failures are reported with status 200 and a neutral mood.
func (h *Handlers) DetectMood(w http.ResponseWriter, r *http.Request) {
	logger := h.log(r)

	r.Body = http.MaxBytesReader(w, r.Body, emotion.MaxImageSize+multipartOverhead)
	if err := r.ParseMultipartForm(emotion.MaxImageSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Image too large", "Images must be 5MB or smaller")
			return
		}
		writeError(w, http.StatusBadRequest, "No image provided", "Please upload an image file")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image provided", "Please upload an image file")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "Empty filename", "Please select a valid image file")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, emotion.MaxImageSize+1))
	if err != nil {
		logger.Error("reading uploaded image failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Processing failed",
			Message: "Unable to process image",
			Mood:    string(mood.Default),
		})
		return
	}
	switch {
	case len(data) == 0:
		writeError(w, http.StatusBadRequest, "Empty image", "Please select a valid image file")
		return
	case len(data) > emotion.MaxImageSize:
		writeError(w, http.StatusRequestEntityTooLarge, "Image too large", "Images must be 5MB or smaller")
		return
	}

	info, err := emotion.InspectImage(data)
	if err != nil {
		logger.Warn("rejected undecodable image", "filename", header.Filename, "error", err)
		writeError(w, http.StatusBadRequest, "Invalid image", "Unable to decode image; upload a JPEG, PNG or GIF")
		return
	}
	logger.Debug("received image", "format", info.Format, "width", info.Width, "height", info.Height)

	result := h.detector.Detect(r.Context(), data)

	outcome := metrics.OutcomeOK
	if result.Error {
		outcome = metrics.OutcomeError
	}
	h.metrics.RecordDetection(string(result.Mood), outcome)

	if !result.Error {
		logger.Info("detected mood", "mood", result.Mood, "confidence", fmt.Sprintf("%.2f", result.Confidence))
	}
	writeJSON(w, http.StatusOK, result)
}

// GetPlaylist resolves a playlist for the mood in the path
// (GET /api/get-playlist/{mood}).
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	label, err := mood.Parse(chi.URLParam(r, "mood"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:      "Invalid mood",
			Message:    err.Error(),
			ValidMoods: mood.Names(),
		})
		return
	}

	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	client := h.connector.Connect(r.Context(), session.Token)
	result := h.resolver.Resolve(r.Context(), label, client)
	h.persistToken(r.Context(), session, client)

	if result.Error {
		h.metrics.RecordResolution(string(label), metrics.OutcomeError)
		writeJSON(w, http.StatusBadRequest, result)
		return
	}

	h.metrics.RecordResolution(string(label), metrics.OutcomeOK)
	h.log(r).Info("retrieved playlist", "mood", label, "tracks", result.TotalTracks)
	writeJSON(w, http.StatusOK, result)
}

type createPlaylistRequest struct {
	Mood      string   `json:"mood"`
	TrackURIs []string `json:"track_uris"`
}

type createPlaylistResponse struct {
	mood.RemotePlaylist
	Error bool `json:"error"`
}

// CreatePlaylist saves resolved tracks as a private playlist in the user's
// account (POST /api/create-playlist).
func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Expected JSON body with mood and track_uris")
		return
	}

	label, err := mood.Parse(req.Mood)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:      "Invalid mood",
			Message:    err.Error(),
			ValidMoods: mood.Names(),
		})
		return
	}
	for _, uri := range req.TrackURIs {
		if !strings.HasPrefix(uri, trackURIPrefix) || len(uri) == len(trackURIPrefix) {
			writeError(w, http.StatusBadRequest, "Invalid track URI", fmt.Sprintf("%q is not a Spotify track URI", uri))
			return
		}
	}

	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	client := h.connector.Connect(r.Context(), session.Token)
	created, err := playlist.Materialize(r.Context(), client, label, req.TrackURIs)
	h.persistToken(r.Context(), session, client)
	if err != nil {
		h.log(r).Error("playlist creation failed", "mood", label, "error", err)
		writeError(w, http.StatusBadGateway, "Playlist creation failed", "Failed to create playlist: "+err.Error())
		return
	}

	h.log(r).Info("created playlist", "playlist_id", created.ID, "tracks", len(req.TrackURIs))
	writeJSON(w, http.StatusOK, createPlaylistResponse{RemotePlaylist: created})
}

type userProfileResponse struct {
	mood.UserProfile
	Error bool `json:"error"`
}

// UserProfile returns the signed-in user's catalog profile (GET /api/user/profile).
func (h *Handlers) UserProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	client := h.connector.Connect(r.Context(), session.Token)
	profile, err := client.UserProfile(r.Context())
	h.persistToken(r.Context(), session, client)
	if err != nil {
		h.log(r).Error("fetching user profile failed", "error", err)
		writeError(w, http.StatusBadGateway, "Profile retrieval failed", "Failed to get user profile: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, userProfileResponse{UserProfile: profile})
}

// TrackMood maps a track's audio features to the nearest mood
// (GET /api/tracks/{id}/mood).
func (h *Handlers) TrackMood(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	client := h.connector.Connect(r.Context(), session.Token)
	features, err := client.FetchAudioFeatures(r.Context(), id)
	h.persistToken(r.Context(), session, client)
	if errors.Is(err, spotify.ErrNoAudioFeatures) {
		writeError(w, http.StatusNotFound, "No audio features", "No audio features available for track "+id)
		return
	}
	if err != nil {
		h.log(r).Error("fetching audio features failed", "track_id", id, "error", err)
		writeError(w, http.StatusBadGateway, "Audio features unavailable", "Failed to get audio features: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"track_id": id,
		"mood":     mood.NearestLabel(features),
		"valence":  features.Valence,
		"energy":   features.Energy,
	})
}

// Moods lists the supported moods (GET /api/moods).
func (h *Handlers) Moods(w http.ResponseWriter, _ *http.Request) {
	moods := mood.Supported()
	writeJSON(w, http.StatusOK, map[string]any{
		"moods":   moods,
		"count":   len(moods),
		"default": mood.Default,
	})
}

// SpotifyAuth starts the OAuth flow (GET /api/spotify/auth). The issued
// state is also pinned to the caller's browser in a short-lived cookie.
func (h *Handlers) SpotifyAuth(w http.ResponseWriter, _ *http.Request) {
	authURL, state := h.auth.Begin()
	setStateCookie(w, state)
	writeJSON(w, http.StatusOK, map[string]string{
		"auth_url": authURL,
		"message":  "Visit the auth_url to authenticate with Spotify",
	})
}

type callbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// SpotifyCallback redeems the authorization code relayed by the frontend
// and opens a session (POST /api/spotify/callback).
func (h *Handlers) SpotifyCallback(w http.ResponseWriter, r *http.Request) {
	logger := h.log(r)

	var req callbackRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "Missing authorization code", "Authorization code is required")
		return
	}

	bound := stateFromRequest(r)
	clearStateCookie(w)

	token, err := h.auth.Complete(r.Context(), req.Code, req.State, bound)
	switch {
	case errors.Is(err, auth.ErrStateMismatch):
		writeError(w, http.StatusBadRequest, "Invalid state", "Authorization state is unknown or expired; start again")
		return
	case err != nil:
		logger.Warn("token exchange failed", "error", err)
		writeError(w, http.StatusBadRequest, "Authentication failed", "Token exchange failed: "+err.Error())
		return
	}

	client := h.connector.Connect(r.Context(), token)
	profile, err := client.UserProfile(r.Context())
	if err != nil {
		logger.Error("fetching profile after login failed", "error", err)
		writeError(w, http.StatusBadGateway, "Authentication failed", "Unable to complete Spotify authentication")
		return
	}
	if refreshed, err := client.Token(); err == nil && refreshed != nil {
		token = refreshed
	}

	if old := h.sessions.GetFromRequest(r); old != nil {
		h.sessions.Delete(r.Context(), old.ID)
	}

	session, err := h.sessions.Create(r.Context(), token, profile)
	if err != nil {
		logger.Error("creating session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Authentication failed", "Unable to complete Spotify authentication")
		return
	}
	h.sessions.SetCookie(w, session)

	logger.Info("spotify authentication successful", "user_id", profile.UserID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Successfully authenticated with Spotify",
		"expires_in": auth.ExpiresIn(token),
	})
}

// SessionStatus reports whether the caller is signed in (GET /api/session/status).
func (h *Handlers) SessionStatus(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	hasToken := session != nil && session.Token != nil && session.Token.AccessToken != ""
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": session != nil,
		"has_token":     hasToken,
		"session_keys":  session.Keys(),
	})
}

// Logout ends the session (POST /api/session/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessions.GetFromRequest(r); session != nil {
		h.sessions.Delete(r.Context(), session.ID)
	}
	h.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out",
	})
}

// requireSession writes a 401 pointing at the auth endpoint when the
// caller has no usable session.
func (h *Handlers) requireSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	session := h.sessions.GetFromRequest(r)
	if session == nil || session.Token == nil || session.Token.AccessToken == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error:   "Not authenticated",
			Message: "Please authenticate with Spotify first",
			AuthURL: authPath,
		})
		return nil, false
	}
	return session, true
}

// persistToken stores a token the catalog client refreshed during the request.
func (h *Handlers) persistToken(ctx context.Context, session *Session, client CatalogClient) {
	token, err := client.Token()
	if err != nil || token == nil {
		return
	}
	if token.AccessToken != session.Token.AccessToken {
		h.sessions.UpdateToken(ctx, session.ID, token)
	}
}

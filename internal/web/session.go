package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"

	"github.com/justestif/go-mood-music-player/internal/auth"
	"github.com/justestif/go-mood-music-player/internal/db"
	"github.com/justestif/go-mood-music-player/internal/mood"
)

const (
	sessionCookieName = "session_id"
	sessionTTL        = 24 * time.Hour

	stateCookieName = "oauth_state"
	stateCookiePath = "/api/spotify"
)

// Session represents an authenticated user session.
type Session struct {
	ID        string
	Token     *oauth2.Token
	UserID    string
	UserName  string
	CreatedAt time.Time
}

// Keys lists the populated session attributes, as reported by the status endpoint.
func (s *Session) Keys() []string {
	if s == nil {
		return []string{}
	}
	keys := make([]string, 0, 4)
	if s.Token != nil && s.Token.AccessToken != "" {
		keys = append(keys, "spotify_token")
	}
	if s.Token != nil && !s.Token.Expiry.IsZero() {
		keys = append(keys, "token_expires")
	}
	if s.UserID != "" {
		keys = append(keys, "user_id")
	}
	if s.UserName != "" {
		keys = append(keys, "user_name")
	}
	return keys
}

// SessionManager defines the interface for session management.
type SessionManager interface {
	Create(ctx context.Context, token *oauth2.Token, user mood.UserProfile) (*Session, error)
	Get(ctx context.Context, id string) *Session
	Delete(ctx context.Context, id string)
	UpdateToken(ctx context.Context, id string, token *oauth2.Token)
	GetFromRequest(r *http.Request) *Session
	SetCookie(w http.ResponseWriter, session *Session)
	ClearCookie(w http.ResponseWriter)
}

// ============================================================================
// In-Memory Session Store (for development/testing)
// ============================================================================

// SessionStore keeps sessions in process memory and expires them after a day.
type SessionStore struct {
	sessions *cache.Cache
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: cache.New(sessionTTL, time.Hour),
	}
}

// Create generates a new session with the given token and user info.
func (s *SessionStore) Create(_ context.Context, token *oauth2.Token, user mood.UserProfile) (*Session, error) {
	session := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    user.UserID,
		UserName:  user.DisplayName,
		CreatedAt: time.Now(),
	}
	s.sessions.SetDefault(session.ID, session)
	return session, nil
}

// Get retrieves a session by ID. Expired sessions are never returned.
func (s *SessionStore) Get(_ context.Context, id string) *Session {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil
	}
	session := *v.(*Session)
	return &session
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(_ context.Context, id string) {
	s.sessions.Delete(id)
}

// UpdateToken replaces the OAuth token for a session, keeping its expiry.
func (s *SessionStore) UpdateToken(_ context.Context, id string, token *oauth2.Token) {
	v, expiry, ok := s.sessions.GetWithExpiration(id)
	if !ok {
		return
	}
	updated := *v.(*Session)
	updated.Token = token
	s.sessions.Set(id, &updated, time.Until(expiry))
}

// GetFromRequest extracts the session from the request cookie.
func (s *SessionStore) GetFromRequest(r *http.Request) *Session {
	return sessionFromRequest(r, s)
}

// SetCookie sets the session cookie on the response.
func (s *SessionStore) SetCookie(w http.ResponseWriter, session *Session) {
	setCookie(w, session)
}

// ClearCookie removes the session cookie from the response.
func (s *SessionStore) ClearCookie(w http.ResponseWriter) {
	clearCookie(w)
}

// ============================================================================
// Database-Backed Session Store
// ============================================================================

// DBSessionStore manages user sessions in PostgreSQL.
type DBSessionStore struct {
	database *db.DB
	logger   *slog.Logger
}

// NewDBSessionStore creates a new database-backed session store.
func NewDBSessionStore(database *db.DB, logger *slog.Logger) *DBSessionStore {
	return &DBSessionStore{database: database, logger: logger}
}

// Create records a new session. Only the user's ID and display name are
// kept, and they go when the session does.
func (s *DBSessionStore) Create(ctx context.Context, token *oauth2.Token, user mood.UserProfile) (*Session, error) {
	now := time.Now()
	dbSession := &db.Session{
		ID:           uuid.NewString(),
		UserID:       user.UserID,
		UserName:     user.DisplayName,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
		CreatedAt:    now,
		ExpiresAt:    now.Add(sessionTTL),
	}

	if err := s.database.Sessions().Create(ctx, dbSession); err != nil {
		return nil, err
	}

	return &Session{
		ID:        dbSession.ID,
		Token:     token,
		UserID:    user.UserID,
		UserName:  user.DisplayName,
		CreatedAt: now,
	}, nil
}

// Get retrieves a session by ID from the database.
func (s *DBSessionStore) Get(ctx context.Context, id string) *Session {
	dbSession, err := s.database.Sessions().Get(ctx, id)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.logger.Error("loading session failed", "error", err)
		}
		return nil
	}

	return &Session{
		ID: dbSession.ID,
		Token: &oauth2.Token{
			AccessToken:  dbSession.AccessToken,
			RefreshToken: dbSession.RefreshToken,
			Expiry:       dbSession.TokenExpiry,
			TokenType:    "Bearer",
		},
		UserID:    dbSession.UserID,
		UserName:  dbSession.UserName,
		CreatedAt: dbSession.CreatedAt,
	}
}

// Delete removes a session from the database.
func (s *DBSessionStore) Delete(ctx context.Context, id string) {
	if err := s.database.Sessions().Delete(ctx, id); err != nil {
		s.logger.Error("deleting session failed", "error", err)
	}
}

// UpdateToken updates the OAuth token for a session in the database.
func (s *DBSessionStore) UpdateToken(ctx context.Context, id string, token *oauth2.Token) {
	if err := s.database.Sessions().UpdateToken(ctx, id, token.AccessToken, token.RefreshToken, token.Expiry); err != nil {
		s.logger.Error("updating session token failed", "error", err)
	}
}

// Ping checks that the session database is reachable.
func (s *DBSessionStore) Ping(ctx context.Context) error {
	return s.database.Ping(ctx)
}

// GetFromRequest extracts the session from the request cookie.
func (s *DBSessionStore) GetFromRequest(r *http.Request) *Session {
	return sessionFromRequest(r, s)
}

// SetCookie sets the session cookie on the response.
func (s *DBSessionStore) SetCookie(w http.ResponseWriter, session *Session) {
	setCookie(w, session)
}

// ClearCookie removes the session cookie from the response.
func (s *DBSessionStore) ClearCookie(w http.ResponseWriter) {
	clearCookie(w)
}

// PurgeExpired deletes expired sessions until ctx is done.
func (s *DBSessionStore) PurgeExpired(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.database.Sessions().DeleteExpired(ctx)
			if err != nil {
				s.logger.Error("purging expired sessions failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("purged expired sessions", "count", n)
			}
		}
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

func sessionFromRequest(r *http.Request, m SessionManager) *Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return m.Get(r.Context(), cookie.Value)
}

// setCookie sets the session cookie on the response.
func setCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
}

// clearCookie removes the session cookie from the response.
func clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// setStateCookie pins an OAuth state to the browser that started the flow.
func setStateCookie(w http.ResponseWriter, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     stateCookiePath,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.StateTTL.Seconds()),
	})
}

func stateFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     stateCookiePath,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// Ensure both stores implement SessionManager.
var (
	_ SessionManager = (*SessionStore)(nil)
	_ SessionManager = (*DBSessionStore)(nil)
	_ Pinger         = (*DBSessionStore)(nil)
)

// Package auth runs the server side of the Spotify authorization code flow.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// StateTTL is how long an issued OAuth state stays redeemable.
const StateTTL = 5 * time.Minute

var (
	// ErrMissingCredentials is returned when the client ID or secret is empty.
	ErrMissingCredentials = errors.New("missing Spotify client ID or client secret")

	// ErrMissingCode is returned when the callback carries no authorization code.
	ErrMissingCode = errors.New("authorization code is required")

	// ErrStateMismatch is returned when the OAuth state was never issued, has
	// expired, or does not match the state bound to the caller's browser.
	ErrStateMismatch = errors.New("OAuth state mismatch")
)

// Scopes requested from the user.
var Scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// Authenticator issues authorization URLs and redeems callback codes.
// Tokens are handed back to the caller and never retained here.
type Authenticator struct {
	auth    *spotifyauth.Authenticator
	pending *cache.Cache
}

// Option configures an Authenticator.
type Option func(*options)

type options struct {
	stateTTL time.Duration
}

// WithStateTTL overrides how long issued states remain valid.
func WithStateTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.stateTTL = d
		}
	}
}

// New creates an Authenticator. Returns ErrMissingCredentials if either
// credential is empty.
func New(clientID, clientSecret, redirectURL string, opts ...Option) (*Authenticator, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	o := options{stateTTL: StateTTL}
	for _, opt := range opts {
		opt(&o)
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(clientID),
		spotifyauth.WithClientSecret(clientSecret),
		spotifyauth.WithRedirectURL(redirectURL),
		spotifyauth.WithScopes(Scopes...),
	)

	return &Authenticator{
		auth:    auth,
		pending: cache.New(o.stateTTL, 2*o.stateTTL),
	}, nil
}

// Begin issues a fresh state and returns the URL the user should visit.
func (a *Authenticator) Begin() (authURL, state string) {
	state = uuid.NewString()
	a.pending.SetDefault(state, struct{}{})
	return a.auth.AuthURL(state), state
}

// Complete redeems an authorization code. The state must have been issued
// by Begin, not yet used or expired, and equal to bound, the copy the caller
// kept from Begin (the web layer keeps it in a cookie).
func (a *Authenticator) Complete(ctx context.Context, code, state, bound string) (*oauth2.Token, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	if state == "" || state != bound {
		return nil, ErrStateMismatch
	}
	if _, ok := a.pending.Get(state); !ok {
		return nil, ErrStateMismatch
	}
	a.pending.Delete(state)

	token, err := a.auth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}
	return token, nil
}

// Client returns an HTTP client that authorizes requests with token and
// refreshes it when it expires.
func (a *Authenticator) Client(ctx context.Context, token *oauth2.Token) *http.Client {
	return a.auth.Client(ctx, token)
}

// ExpiresIn reports the seconds left on token, or zero if it has no expiry.
func ExpiresIn(token *oauth2.Token) int {
	if token == nil || token.Expiry.IsZero() {
		return 0
	}
	return max(0, int(time.Until(token.Expiry).Seconds()))
}

// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Client wraps the Spotify API client with convenience methods.
// A Client is bound to one user's token and is not shared across requests.
type Client struct {
	api     *spotify.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{
		api:    api,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// wait blocks until the shared limiter admits another catalog call.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return nil
}

// UserID returns the current user's Spotify ID.
func (c *Client) UserID(ctx context.Context) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, nil
}

// Token returns the client's current token, which may have been refreshed
// since Connect.
func (c *Client) Token() (*oauth2.Token, error) {
	return c.api.Token()
}

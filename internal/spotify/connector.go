package spotify

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Defaults for outbound catalog calls.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 10 // requests per second, process wide
)

// TokenClient produces an HTTP client that authorizes requests with token.
// *spotifyauth.Authenticator satisfies it.
type TokenClient interface {
	Client(ctx context.Context, token *oauth2.Token) *http.Client
}

// Connector creates per-request Clients from opaque user tokens. All
// Clients it creates share one rate limiter.
type Connector struct {
	source  TokenClient
	limiter *rate.Limiter
	timeout time.Duration
	baseURL string
	logger  *slog.Logger
}

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithTimeout bounds every catalog HTTP call.
func WithTimeout(d time.Duration) ConnectorOption {
	return func(c *Connector) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit caps catalog calls per second across all users.
// A non-positive value disables limiting.
func WithRateLimit(perSecond float64) ConnectorOption {
	return func(c *Connector) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithBaseURL points clients at a different API root. Used in tests.
func WithBaseURL(url string) ConnectorOption {
	return func(c *Connector) {
		c.baseURL = url
	}
}

// WithLogger sets the logger handed to every Client.
func WithLogger(l *slog.Logger) ConnectorOption {
	return func(c *Connector) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewConnector creates a Connector that authorizes through source.
func NewConnector(source TokenClient, opts ...ConnectorOption) *Connector {
	c := &Connector{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		timeout: DefaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect returns a Client acting on behalf of token. Whether an expired
// token is refreshed depends on source; Client.Token reports the result.
func (c *Connector) Connect(ctx context.Context, token *oauth2.Token) *Client {
	httpClient := c.source.Client(ctx, token)
	httpClient.Timeout = c.timeout

	opts := []spotify.ClientOption{spotify.WithRetry(true)}
	if c.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(c.baseURL))
	}

	client := New(spotify.New(httpClient, opts...))
	client.limiter = c.limiter
	client.logger = c.logger
	return client
}

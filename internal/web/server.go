// Package web provides the HTTP server and JSON API for the mood music player.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/oauth2"

	"github.com/justestif/go-mood-music-player/internal/metrics"
	"github.com/justestif/go-mood-music-player/internal/spotify"
)

// DefaultAddr is the default server address.
const DefaultAddr = ":5000"

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr        string
	FrontendURL string
}

// Server is the HTTP server for the API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig, deps Deps) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	router := chi.NewRouter()

	s := &Server{
		router:   router,
		handlers: NewHandlers(deps),
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}

	// Configure middleware
	s.setupMiddleware(cfg.FrontendURL)

	// Configure routes
	s.setupRoutes()

	// Create HTTP server
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// SpotifyConnector adapts a spotify.Connector to Connector.
func SpotifyConnector(c *spotify.Connector) Connector {
	return ConnectorFunc(func(ctx context.Context, token *oauth2.Token) CatalogClient {
		return c.Connect(ctx, token)
	})
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware(frontendURL string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.metrics.Middleware)
	s.router.Use(CORS(frontendURL))
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.Get("/", h.Root)
	s.router.Get("/health", h.Health)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/detect-mood", h.DetectMood)
		r.Get("/get-playlist/{mood}", h.GetPlaylist)
		r.Post("/create-playlist", h.CreatePlaylist)
		r.Get("/moods", h.Moods)
		r.Get("/user/profile", h.UserProfile)
		r.Get("/tracks/{id}/mood", h.TrackMood)

		r.Get("/spotify/auth", h.SpotifyAuth)
		r.Post("/spotify/callback", h.SpotifyCallback)

		r.Get("/session/status", h.SessionStatus)
		r.Post("/session/logout", h.Logout)
	})
}

// ServeHTTP lets the server be exercised without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down server")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

var _ CatalogClient = (*spotify.Client)(nil)

// Command mood-music-player runs the mood music player backend: it detects
// the mood in an uploaded photo and builds a matching Spotify playlist.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justestif/go-mood-music-player/internal/auth"
	"github.com/justestif/go-mood-music-player/internal/config"
	"github.com/justestif/go-mood-music-player/internal/db"
	"github.com/justestif/go-mood-music-player/internal/emotion"
	"github.com/justestif/go-mood-music-player/internal/metrics"
	"github.com/justestif/go-mood-music-player/internal/playlist"
	"github.com/justestif/go-mood-music-player/internal/spotify"
	"github.com/justestif/go-mood-music-player/internal/web"
)

const (
	emotionTimeout = 30 * time.Second
	purgeInterval  = time.Hour
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authenticator, err := auth.New(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURI)
	if err != nil {
		return fmt.Errorf("creating authenticator: %w", err)
	}

	m := metrics.New()

	// The inference service also answers face-presence checks.
	emotionClient := emotion.NewClient(cfg.EmotionServiceURL, emotionTimeout)
	classifier := emotion.NewClassifier(emotionClient, emotionClient,
		emotion.WithConfidenceThreshold(cfg.ConfidenceThreshold),
		emotion.WithLogger(logger.With("component", "emotion")),
	)

	resolver := playlist.NewResolver(
		playlist.WithPolicy(cfg.SearchPolicy),
		playlist.WithSearchTimeout(cfg.SearchTimeout),
		playlist.WithSearchObserver(m.RecordSearch),
		playlist.WithLogger(logger.With("component", "playlist")),
	)

	connector := spotify.NewConnector(authenticator,
		spotify.WithTimeout(cfg.SearchTimeout),
		spotify.WithRateLimit(cfg.SearchRateLimit),
		spotify.WithLogger(logger.With("component", "spotify")),
	)

	sessions, closeSessions, err := openSessions(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	server := web.NewServer(web.ServerConfig{
		Addr:        cfg.Addr,
		FrontendURL: cfg.FrontendURL,
	}, web.Deps{
		Auth:      authenticator,
		Sessions:  sessions,
		Detector:  classifier,
		Resolver:  resolver,
		Connector: web.SpotifyConnector(connector),
		Metrics:   m,
		Logger:    logger.With("component", "web"),
	})

	logger.Info("mood music player backend configured",
		"addr", cfg.Addr,
		"frontend", cfg.FrontendURL,
		"search_policy", cfg.SearchPolicy.String(),
		"persistent_sessions", cfg.DatabaseURL != "")

	return server.Run(ctx)
}

// openSessions uses PostgreSQL when DATABASE_URL is set and process memory otherwise.
func openSessions(ctx context.Context, cfg *config.Config, logger *slog.Logger) (web.SessionManager, func(), error) {
	if cfg.DatabaseURL == "" {
		return web.NewSessionStore(), func() {}, nil
	}

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}

	store := web.NewDBSessionStore(database, logger.With("component", "sessions"))
	go store.PurgeExpired(ctx, purgeInterval)

	return store, database.Close, nil
}

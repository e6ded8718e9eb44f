// Package config loads service configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/justestif/go-mood-music-player/internal/playlist"
)

// ErrMissingCredentials is returned when SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET is not set.
var ErrMissingCredentials = errors.New("missing SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET environment variable")

// Defaults for optional settings.
const (
	DefaultRedirectURI         = "http://localhost:3000/callback"
	DefaultFrontendURL         = "http://localhost:3000"
	DefaultAddr                = ":5000"
	DefaultEmotionServiceURL   = "http://127.0.0.1:5005"
	DefaultConfidenceThreshold = 0.6
	DefaultSearchTimeout       = 10 * time.Second
	DefaultSearchRateLimit     = 10.0
)

// Config holds the service configuration.
type Config struct {
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURI  string

	FrontendURL string
	Addr        string
	DatabaseURL string

	EmotionServiceURL   string
	ConfidenceThreshold float64

	SearchTimeout   time.Duration
	SearchRateLimit float64
	SearchPolicy    playlist.Policy

	LogLevel  slog.Level
	LogFormat string
}

// Load reads .env files (the default ".env" when none are given) into the
// process environment without overriding variables already set, then
// builds a Config. Missing .env files are ignored.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv. Returns ErrMissingCredentials if
// either Spotify credential is empty.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		SpotifyClientID:     getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: getenv("SPOTIFY_CLIENT_SECRET"),
		SpotifyRedirectURI:  stringOr(getenv("SPOTIFY_REDIRECT_URI"), DefaultRedirectURI),
		FrontendURL:         strings.TrimRight(stringOr(getenv("FRONTEND_URL"), DefaultFrontendURL), "/"),
		Addr:                DefaultAddr,
		DatabaseURL:         getenv("DATABASE_URL"),
		EmotionServiceURL:   stringOr(getenv("EMOTION_SERVICE_URL"), DefaultEmotionServiceURL),
		LogFormat:           strings.ToLower(stringOr(getenv("LOG_FORMAT"), "text")),
	}

	if cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	if port := getenv("BACKEND_PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if addr := getenv("BACKEND_ADDR"); addr != "" {
		cfg.Addr = addr
	}

	var err error
	if cfg.ConfidenceThreshold, err = floatOr(getenv("EMOTION_CONFIDENCE_THRESHOLD"), DefaultConfidenceThreshold); err != nil {
		return nil, fmt.Errorf("parsing EMOTION_CONFIDENCE_THRESHOLD: %w", err)
	}
	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 1 {
		return nil, fmt.Errorf("EMOTION_CONFIDENCE_THRESHOLD must be within [0, 1], got %v", cfg.ConfidenceThreshold)
	}

	if cfg.SearchTimeout, err = durationOr(getenv("SEARCH_TIMEOUT"), DefaultSearchTimeout); err != nil {
		return nil, fmt.Errorf("parsing SEARCH_TIMEOUT: %w", err)
	}
	if cfg.SearchRateLimit, err = floatOr(getenv("SEARCH_RATE_LIMIT"), DefaultSearchRateLimit); err != nil {
		return nil, fmt.Errorf("parsing SEARCH_RATE_LIMIT: %w", err)
	}
	if cfg.SearchPolicy, err = playlist.ParsePolicy(getenv("SEARCH_POLICY")); err != nil {
		return nil, fmt.Errorf("parsing SEARCH_POLICY: %w", err)
	}

	if level := getenv("LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("parsing LOG_LEVEL: %w", err)
		}
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// NewLogger builds the root logger described by the configuration.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func floatOr(v string, fallback float64) (float64, error) {
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

// durationOr accepts Go durations ("750ms") or bare seconds ("10").
func durationOr(v string, fallback time.Duration) (time.Duration, error) {
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}

// Package playlist resolves a mood into a bounded, deduplicated track list
// by searching the music catalog with the mood's static query profile.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/justestif/go-mood-music-player/internal/mood"
)

// Search fan-out bounds. Four catalog calls per resolution, ten results each.
const (
	GenreQueries   = 2
	KeywordQueries = 2
	SearchLimit    = 10
	MaxTracks      = 20
)

// DefaultSearchTimeout bounds each catalog search.
const DefaultSearchTimeout = 10 * time.Second

// ErrNoTracksFound is returned when every search came back empty or failed.
var ErrNoTracksFound = errors.New("no tracks found")

// Catalog searches the music catalog on behalf of one authenticated user.
type Catalog interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]mood.Track, error)
}

// SearchObserver is told the outcome ("ok" or "error") and latency of each search.
type SearchObserver func(outcome string, elapsed time.Duration)

// Resolver turns moods into playlists. It is safe for concurrent use.
type Resolver struct {
	policy   Policy
	timeout  time.Duration
	logger   *slog.Logger
	observer SearchObserver

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPolicy selects how failing searches affect the result.
func WithPolicy(p Policy) Option {
	return func(r *Resolver) {
		r.policy = p
	}
}

// WithSearchTimeout bounds each individual catalog search.
func WithSearchTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRand injects the random source used to shuffle results.
func WithRand(rng *rand.Rand) Option {
	return func(r *Resolver) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithLogger sets the logger for search failures and results.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithSearchObserver registers a callback for every catalog search.
func WithSearchObserver(o SearchObserver) Option {
	return func(r *Resolver) {
		r.observer = o
	}
}

// NewResolver creates a Resolver with partial-success aggregation.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		policy:  PartialSuccess,
		timeout: DefaultSearchTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Queries returns the catalog queries issued for l, genres first.
func Queries(l mood.Label) []string {
	profile := mood.ProfileFor(l)

	queries := make([]string, 0, GenreQueries+KeywordQueries)
	for _, genre := range profile.Genres[:min(GenreQueries, len(profile.Genres))] {
		queries = append(queries, fmt.Sprintf("genre:%q", genre))
	}
	for _, keyword := range profile.Keywords[:min(KeywordQueries, len(profile.Keywords))] {
		queries = append(queries, fmt.Sprintf("%q", keyword))
	}
	return queries
}

// Resolve searches the catalog for l and packages up to MaxTracks unique
// tracks. Failures are reported in the result, never returned.
func (r *Resolver) Resolve(ctx context.Context, l mood.Label, catalog Catalog) mood.PlaylistResult {
	batches, err := r.search(ctx, Queries(l), catalog)
	if err != nil {
		r.logger.Error("playlist generation failed", "mood", l, "error", err)
		return failed(l, fmt.Sprintf("Failed to generate playlist: %v", err))
	}

	tracks := dedupe(batches)
	if len(tracks) == 0 {
		r.logger.Warn("no tracks found", "mood", l)
		return failed(l, fmt.Sprintf("No tracks found for mood: %s", l))
	}

	r.shuffle(tracks)
	if len(tracks) > MaxTracks {
		tracks = tracks[:MaxTracks]
	}

	r.logger.Info("generated track recommendations", "mood", l, "tracks", len(tracks))
	return mood.PlaylistResult{
		Mood:         l,
		Tracks:       tracks,
		TotalTracks:  len(tracks),
		PlaylistName: fmt.Sprintf("%s Vibes", l.Title()),
		Description:  fmt.Sprintf("AI-generated playlist for %s mood", l),
	}
}

// search issues all queries concurrently and returns their results in
// query order. Under PartialSuccess a failed query contributes nothing;
// under AllOrNothing the first failure cancels the rest and is returned.
func (r *Resolver) search(ctx context.Context, queries []string, catalog Catalog) ([][]mood.Track, error) {
	batches := make([][]mood.Track, len(queries))

	g := &errgroup.Group{}
	gctx := ctx
	if r.policy == AllOrNothing {
		g, gctx = errgroup.WithContext(ctx)
	}

	for i, query := range queries {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, r.timeout)
			defer cancel()

			start := time.Now()
			tracks, err := catalog.SearchTracks(callCtx, query, SearchLimit)
			r.observe(err, time.Since(start))
			if err != nil {
				r.logger.Warn("track search failed", "query", query, "error", err)
				if r.policy == AllOrNothing {
					return fmt.Errorf("searching %s: %w", query, err)
				}
				return nil
			}

			batches[i] = tracks
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *Resolver) observe(err error, elapsed time.Duration) {
	if r.observer == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.observer(outcome, elapsed)
}

func (r *Resolver) shuffle(tracks []mood.Track) {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	r.rng.Shuffle(len(tracks), func(i, j int) {
		tracks[i], tracks[j] = tracks[j], tracks[i]
	})
}

// dedupe flattens batches keeping the first occurrence of each track ID.
func dedupe(batches [][]mood.Track) []mood.Track {
	seen := make(map[string]struct{})
	var unique []mood.Track
	for _, batch := range batches {
		for _, t := range batch {
			if _, ok := seen[t.ID]; ok {
				continue
			}
			seen[t.ID] = struct{}{}
			unique = append(unique, t)
		}
	}
	return unique
}

func failed(l mood.Label, message string) mood.PlaylistResult {
	return mood.PlaylistResult{
		Mood:    l,
		Tracks:  []mood.Track{},
		Error:   true,
		Message: message,
	}
}

// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aromabalance/balance/internal/adapters/cache"
	"github.com/aromabalance/balance/internal/adapters/videosearch"
	"github.com/aromabalance/balance/internal/domain/model"
	"github.com/aromabalance/balance/internal/domain/scoring"
	"github.com/aromabalance/balance/internal/domain/search"
	"github.com/aromabalance/balance/pkg/logger"
	"github.com/aromabalance/balance/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// VideoRequest asks for a cooking video matching a recipe. Query is a
// free-text hint used as the recipe name when Recipe.Name is blank.
type VideoRequest struct {
	Query  string
	Recipe model.RecipeQuery
}

// VideoResult is the outcome of a lookup. Found is false when the provider
// returned no candidates; that is not an error.
type VideoResult struct {
	Found    bool
	VideoID  string
	VideoURL string
	Title    string
	Score    int
	Cached   bool
}

const defaultSearchTimeout = 10 * time.Second

// Service finds the best matching video for a recipe.
type Service struct {
	searcher  videosearch.Searcher
	cache     cache.Cache
	selector  *scoring.Selector
	embedHost string
	timeout   time.Duration
	group     singleflight.Group

	lookups   atomic.Int64
	hits      atomic.Int64
	misses    atomic.Int64
	notFound  atomic.Int64
	failures  atomic.Int64
	startedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSearcher sets the video provider. Without one every lookup fails with
// ErrNotConfigured.
func WithSearcher(searcher videosearch.Searcher) Option {
	return func(s *Service) {
		s.searcher = searcher
	}
}

// WithCache sets the search result cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithSelector sets the candidate selector, e.g. one with a pinned clock.
func WithSelector(selector *scoring.Selector) Option {
	return func(s *Service) {
		if selector != nil {
			s.selector = selector
		}
	}
}

// WithEmbedHost sets the host used for returned embed URLs.
func WithEmbedHost(host string) Option {
	return func(s *Service) {
		if host != "" {
			s.embedHost = host
		}
	}
}

// WithSearchTimeout bounds a shared provider search. It runs detached from
// the caller that started it, so this is its only deadline.
func WithSearchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cache:     cache.Noop{},
		selector:  scoring.NewSelector(),
		embedHost: search.DefaultEmbedHost,
		timeout:   defaultSearchTimeout,
		startedAt: time.Now(),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindVideo builds a search query from the recipe, fetches candidates from the
// cache or provider and returns the highest scoring one as an embed URL.
func (s *Service) FindVideo(ctx context.Context, req VideoRequest) (VideoResult, error) {
	s.lookups.Add(1)

	recipe, err := resolveRecipe(req)
	if err != nil {
		metrics.RecordVideoLookup(metrics.OutcomeInvalid)
		return VideoResult{}, err
	}
	if s.searcher == nil {
		s.failures.Add(1)
		metrics.RecordVideoLookup(metrics.OutcomeNotConfigured)
		return VideoResult{}, ErrNotConfigured
	}

	query := search.BuildQuery(recipe)
	candidates, cached, err := s.candidates(ctx, query)
	if err != nil {
		s.failures.Add(1)
		if errors.Is(err, videosearch.ErrNotConfigured) {
			metrics.RecordVideoLookup(metrics.OutcomeNotConfigured)
			return VideoResult{}, fmt.Errorf("%w: %w", ErrNotConfigured, err)
		}
		metrics.RecordVideoLookup(metrics.OutcomeFailed)
		s.logger.Error(ctx, "video search failed",
			logger.String("query", query),
			logger.Error(err))
		return VideoResult{}, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	metrics.RecordCandidates(len(candidates))

	best, err := s.selector.Select(candidates, recipe)
	if errors.Is(err, scoring.ErrNoCandidates) {
		s.notFound.Add(1)
		metrics.RecordVideoLookup(metrics.OutcomeNotFound)
		s.logger.Info(ctx, "no video found", logger.String("recipe", recipe.Name))
		return VideoResult{Cached: cached}, nil
	}
	if err != nil {
		s.failures.Add(1)
		metrics.RecordVideoLookup(metrics.OutcomeFailed)
		return VideoResult{}, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}

	metrics.RecordVideoLookup(metrics.OutcomeFound)
	metrics.RecordSelectionScore(best.Score)
	s.logger.Debug(ctx, "video selected",
		logger.String("recipe", recipe.Name),
		logger.String("videoId", best.VideoID),
		logger.Int("score", best.Score),
		logger.Int("candidates", len(candidates)),
		logger.Bool("cached", cached))

	return VideoResult{
		Found:    true,
		VideoID:  best.VideoID,
		VideoURL: search.EmbedURL(s.embedHost, best.VideoID),
		Title:    best.Title,
		Score:    best.Score,
		Cached:   cached,
	}, nil
}

// candidates returns cached results for query or asks the provider once,
// collapsing concurrent identical lookups.
func (s *Service) candidates(ctx context.Context, query string) ([]model.VideoCandidate, bool, error) {
	if hit, ok := s.cache.Get(ctx, query); ok {
		s.hits.Add(1)
		metrics.RecordCacheHit()
		return hit, true, nil
	}
	s.misses.Add(1)
	metrics.RecordCacheMiss()

	// Waiters share the search, so one caller going away must not cancel it
	// for the rest.
	ch := s.group.DoChan(query, func() (interface{}, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		start := time.Now()
		found, err := s.searcher.Search(sctx, query)
		metrics.RecordProviderRequest(err == nil, float64(time.Since(start).Milliseconds()))
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			s.cache.Put(sctx, query, found)
			metrics.UpdateCacheSize(s.cache.Size())
		}
		return found, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.([]model.VideoCandidate), false, nil
	}
}

// resolveRecipe falls back to the free-text hint for a blank recipe name.
func resolveRecipe(req VideoRequest) (model.RecipeQuery, error) {
	recipe := req.Recipe
	recipe.Name = strings.TrimSpace(recipe.Name)
	recipe.Cuisine = strings.TrimSpace(recipe.Cuisine)
	if recipe.Name == "" {
		recipe.Name = strings.TrimSpace(req.Query)
	}
	if recipe.Name == "" {
		return model.RecipeQuery{}, fmt.Errorf("%w: recipe name or query is required", ErrInvalidRequest)
	}
	return recipe, nil
}

// Configured reports whether a usable provider is wired in.
func (s *Service) Configured() bool {
	if s.searcher == nil {
		return false
	}
	if c, ok := s.searcher.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"configured":    s.Configured(),
		"lookups":       s.lookups.Load(),
		"cacheHits":     s.hits.Load(),
		"cacheMisses":   s.misses.Load(),
		"notFound":      s.notFound.Load(),
		"failures":      s.failures.Load(),
		"cacheSize":     s.cache.Size(),
		"uptimeSeconds": int64(time.Since(s.startedAt).Seconds()),
	}
}

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cinedex/cinedex/internal/domain"
	"github.com/cinedex/cinedex/internal/metrics"
)

// Config bounds the external calls the orchestrator makes. Zero timeouts
// mean no per-call deadline beyond the request context.
type Config struct {
	CacheTTL     time.Duration
	ScanCap      int
	DefaultLimit int
	MaxLimit     int
	CacheTimeout time.Duration
	IndexTimeout time.Duration
	ScanTimeout  time.Duration
	EmbedTimeout time.Duration
}

// Service orchestrates semantic search: cache check, query embedding,
// index retrieval, and brute-force fallback when the index is unavailable.
type Service struct {
	primary PrimaryRetriever
	movies  MovieScanner
	cache   ResultCache
	embed   Embedder
	cfg     Config
	logger  *zap.Logger
}

// New creates a search service.
func New(
	primary PrimaryRetriever, movies MovieScanner, cache ResultCache,
	embed Embedder, cfg Config, log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		primary: primary,
		movies:  movies,
		cache:   cache,
		embed:   embed,
		cfg:     cfg,
		logger:  log,
	}
}

// Search answers a natural-language query with movies ranked by similarity.
// Results never carry embedding vectors.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]domain.ScoredMovie, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	limit = s.clampLimit(limit)

	start := time.Now()

	// The generation read once here pins the fingerprint for both the
	// lookup and the eventual write. A concurrent invalidation lands the
	// write under the old generation where nothing will read it again.
	gen, cacheable := s.currentGeneration(ctx)

	var fingerprint string
	if cacheable {
		fingerprint = s.cache.Fingerprint(gen, query, limit)
		if results, ok := s.cacheLookup(ctx, fingerprint); ok {
			s.observe("cache", start)
			return results, nil
		}
	}

	vector, err := s.embedQuery(ctx, query)
	if err != nil {
		s.observe("error", start)
		return nil, err
	}

	tier := "primary"
	results, err := s.searchPrimary(ctx, vector, limit)
	if err != nil {
		s.logger.Warn("Vector index unavailable, using brute-force fallback",
			zap.Error(err), zap.Int("limit", limit))
		tier = "fallback"
		results, err = s.searchFallback(ctx, vector, limit)
		if err != nil {
			s.observe("error", start)
			return nil, err
		}
	}

	if cacheable {
		s.cacheStore(ctx, fingerprint, results)
	}

	s.observe(tier, start)
	return results, nil
}

// Invalidate makes every cached result list unreachable in one step.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	ctx, cancel := withTimeout(ctx, s.cfg.CacheTimeout)
	defer cancel()
	return s.cache.BumpGeneration(ctx)
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	return limit
}

func (s *Service) currentGeneration(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	ctx, cancel := withTimeout(ctx, s.cfg.CacheTimeout)
	defer cancel()
	return s.cache.CurrentGeneration(ctx)
}

func (s *Service) cacheLookup(ctx context.Context, fingerprint string) ([]domain.ScoredMovie, bool) {
	ctx, cancel := withTimeout(ctx, s.cfg.CacheTimeout)
	defer cancel()

	payload, ok := s.cache.Get(ctx, fingerprint)
	if !ok {
		return nil, false
	}

	var results []domain.ScoredMovie
	if err := json.Unmarshal(payload, &results); err != nil {
		s.logger.Warn("Discarding undecodable cache entry", zap.Error(err))
		return nil, false
	}
	return results, true
}

// cacheStore writes a fully computed result list. An abandoned request
// skips the write entirely rather than racing its own cancellation.
func (s *Service) cacheStore(ctx context.Context, fingerprint string, results []domain.ScoredMovie) {
	if ctx.Err() != nil {
		return
	}

	payload, err := json.Marshal(results)
	if err != nil {
		s.logger.Warn("Failed to encode results for cache", zap.Error(err))
		return
	}

	putCtx, cancel := withTimeout(context.WithoutCancel(ctx), s.cfg.CacheTimeout)
	defer cancel()
	s.cache.Put(putCtx, fingerprint, payload, s.cfg.CacheTTL)
}

func (s *Service) embedQuery(ctx context.Context, query string) ([]float32, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.EmbedTimeout)
	defer cancel()

	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	if len(res.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding for non-blank query", domain.ErrEmbeddingProviderError)
	}
	return res.Embedding, nil
}

func (s *Service) searchPrimary(ctx context.Context, vector []float32, limit int) ([]domain.ScoredMovie, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.IndexTimeout)
	defer cancel()
	return s.primary.Search(ctx, vector, limit)
}

func (s *Service) observe(tier string, start time.Time) {
	metrics.SearchTierTotal.WithLabelValues(tier).Inc()
	metrics.SearchDuration.WithLabelValues(tier).Observe(time.Since(start).Seconds())
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

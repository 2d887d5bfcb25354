package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cinedex/cinedex/internal/db"
	"github.com/cinedex/cinedex/internal/domain"
)

var (
	generationKey  = domain.KeyPrefix + "search_gen"
	cacheKeyPrefix = domain.KeyPrefix + "search_cache:"
)

// store is the consumer interface for the query cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Cache stores serialized search results keyed by a generation-tagged
// fingerprint. Bumping the generation retags every future key, which
// bulk-invalidates prior entries without enumerating them; the stale
// entries simply age out via TTL.
//
// Reads and writes fail open: a broken cache store degrades to a miss,
// never to a caller-visible error.
type Cache struct {
	store      store
	cacheTotal *prometheus.CounterVec
	bumpTotal  prometheus.Counter
	logger     *zap.Logger
}

// New creates a query result cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"); bumpTotal
// counts generation bumps. Either may be nil.
func New(s store, cacheTotal *prometheus.CounterVec, bumpTotal prometheus.Counter, logger *zap.Logger) *Cache {
	return &Cache{
		store:      s,
		cacheTotal: cacheTotal,
		bumpTotal:  bumpTotal,
		logger:     logger,
	}
}

// CurrentGeneration returns the active cache generation. A missing counter
// means generation 0. ok=false means the backing store is unreachable and
// the caller should skip caching entirely for this request.
func (c *Cache) CurrentGeneration(ctx context.Context) (gen int64, ok bool) {
	data, err := c.store.Get(ctx, generationKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, true
		}
		c.logger.Warn("Failed to read cache generation", zap.Error(err))
		return 0, false
	}

	gen, err = strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		c.logger.Warn("Malformed cache generation", zap.ByteString("value", data), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// BumpGeneration atomically increments the generation counter, invalidating
// every previously cached result. Called on any catalog mutation.
func (c *Cache) BumpGeneration(ctx context.Context) error {
	gen, err := c.store.Incr(ctx, generationKey)
	if err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	if c.bumpTotal != nil {
		c.bumpTotal.Inc()
	}
	c.logger.Debug("Cache generation bumped", zap.Int64("generation", gen))
	return nil
}

// Get returns a cached payload by fingerprint. Any store error is a miss.
func (c *Cache) Get(ctx context.Context, fingerprint string) ([]byte, bool) {
	data, err := c.store.Get(ctx, cacheKeyPrefix+fingerprint)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read cached search result",
				zap.String("fingerprint", fingerprint), zap.Error(err))
		}
		c.incCache("miss")
		return nil, false
	}
	if len(data) == 0 {
		c.incCache("miss")
		return nil, false
	}

	c.incCache("hit")
	return data, true
}

// Put stores a payload under the fingerprint with the given TTL. Best-effort:
// failure is logged, never propagated.
func (c *Cache) Put(ctx context.Context, fingerprint string, payload []byte, ttl time.Duration) {
	if err := c.store.SetWithTTL(ctx, cacheKeyPrefix+fingerprint, payload, ttl); err != nil {
		c.logger.Warn("Failed to cache search result",
			zap.String("fingerprint", fingerprint), zap.Error(err))
	}
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// Fingerprint implements the orchestrator's cache contract.
func (c *Cache) Fingerprint(generation int64, query string, limit int) string {
	return Fingerprint(generation, query, limit)
}

// Fingerprint derives the deterministic cache key for a query. The hash
// covers the generation, the normalized query text and the result limit,
// so it is stable across restarts and changes whenever the catalog does.
func Fingerprint(generation int64, query string, limit int) string {
	norm := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	h := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%d", generation, norm, limit)))
	return hex.EncodeToString(h[:])
}

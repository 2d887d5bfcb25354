package search

import (
	"context"
	"time"

	"github.com/cinedex/cinedex/internal/domain"
)

// PrimaryRetriever runs KNN search against the vector index.
type PrimaryRetriever interface {
	Search(ctx context.Context, vector []float32, limit int) ([]domain.ScoredMovie, error)
}

// MovieScanner loads the candidate working set for the brute-force tier.
type MovieScanner interface {
	ScanAll(ctx context.Context, limit int) ([]domain.Movie, error)
}

// ResultCache stores serialized result lists keyed by query fingerprint.
// All methods are fail-open: a broken cache degrades to recomputation.
type ResultCache interface {
	CurrentGeneration(ctx context.Context) (int64, bool)
	BumpGeneration(ctx context.Context) error
	Fingerprint(generation int64, query string, limit int) string
	Get(ctx context.Context, fingerprint string) ([]byte, bool)
	Put(ctx context.Context, fingerprint string, payload []byte, ttl time.Duration)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

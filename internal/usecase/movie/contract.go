package movie

import (
	"context"

	"github.com/cinedex/cinedex/internal/domain"
)

// Repository defines the storage contract for catalog entries.
type Repository interface {
	Put(ctx context.Context, m *domain.Movie) error
	Get(ctx context.Context, id string) (domain.Movie, error)
	Delete(ctx context.Context, id string) error
	ScanAll(ctx context.Context, limit int) ([]domain.Movie, error)
}

// Embedder vectorizes the movie's descriptive text for indexing.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Invalidator drops cached search results after catalog mutations.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

package review

import (
	"context"

	"github.com/cinedex/cinedex/internal/domain"
)

// Repository defines the storage contract for reviews.
type Repository interface {
	Put(ctx context.Context, rev *domain.Review) error
	Get(ctx context.Context, reviewID string) (domain.Review, error)
	ListByMovie(ctx context.Context, movieID string, limit int) ([]domain.Review, error)
	FindByMovieAndUser(ctx context.Context, movieID, userID string) (domain.Review, error)
	Delete(ctx context.Context, rev *domain.Review) error
}

// MovieStore reads and rewrites movies so the rating aggregate tracks
// the review set.
type MovieStore interface {
	Get(ctx context.Context, id string) (domain.Movie, error)
	Put(ctx context.Context, m *domain.Movie) error
}

// Invalidator drops cached search results after a rating change.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

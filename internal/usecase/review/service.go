package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cinedex/cinedex/internal/domain"
)

// aggregateLimit bounds how many reviews feed one movie's average.
const aggregateLimit = 10000

// Service manages reviews and keeps each movie's rating aggregate in
// step with its review set.
type Service struct {
	repo   Repository
	movies MovieStore
	inval  Invalidator
	logger *zap.Logger
	now    func() time.Time
}

// New creates a review service.
func New(repo Repository, movies MovieStore, inval Invalidator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, movies: movies, inval: inval, logger: log, now: time.Now}
}

// Input carries the writable fields of a review.
type Input struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (in Input) validate() error {
	if in.Rating < domain.MinRating || in.Rating > domain.MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d",
			domain.ErrInvalidArgument, domain.MinRating, domain.MaxRating)
	}
	return nil
}

// Create adds the caller's review for a movie. Each user reviews a
// movie at most once.
func (s *Service) Create(ctx context.Context, caller domain.User, movieID string, in Input) (domain.Review, error) {
	if err := in.validate(); err != nil {
		return domain.Review{}, err
	}
	if _, err := s.movies.Get(ctx, movieID); err != nil {
		return domain.Review{}, err
	}

	_, err := s.repo.FindByMovieAndUser(ctx, movieID, caller.ID)
	switch {
	case err == nil:
		return domain.Review{}, domain.ErrDuplicateReview
	case !errors.Is(err, domain.ErrReviewNotFound):
		return domain.Review{}, fmt.Errorf("check existing review: %w", err)
	}

	rev := domain.Review{
		ID:        uuid.NewString(),
		MovieID:   movieID,
		UserID:    caller.ID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Put(ctx, &rev); err != nil {
		return domain.Review{}, fmt.Errorf("store review: %w", err)
	}

	s.refreshAggregate(ctx, movieID)
	return rev, nil
}

// Update rewrites a review. Only its author or an admin may do so.
func (s *Service) Update(ctx context.Context, caller domain.User, reviewID string, in Input) (domain.Review, error) {
	if err := in.validate(); err != nil {
		return domain.Review{}, err
	}

	rev, err := s.repo.Get(ctx, reviewID)
	if err != nil {
		return domain.Review{}, err
	}
	if rev.UserID != caller.ID && !caller.IsAdmin() {
		return domain.Review{}, domain.ErrForbidden
	}

	rev.Rating = in.Rating
	rev.Comment = in.Comment
	rev.UpdatedAt = s.now().UTC()
	if err := s.repo.Put(ctx, &rev); err != nil {
		return domain.Review{}, fmt.Errorf("store review: %w", err)
	}

	s.refreshAggregate(ctx, rev.MovieID)
	return rev, nil
}

// Delete removes a review. Only its author or an admin may do so.
func (s *Service) Delete(ctx context.Context, caller domain.User, reviewID string) error {
	rev, err := s.repo.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if rev.UserID != caller.ID && !caller.IsAdmin() {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, &rev); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	s.refreshAggregate(ctx, rev.MovieID)
	return nil
}

// ListByMovie returns all reviews for one movie.
func (s *Service) ListByMovie(ctx context.Context, movieID string) ([]domain.Review, error) {
	if _, err := s.movies.Get(ctx, movieID); err != nil {
		return nil, err
	}
	return s.repo.ListByMovie(ctx, movieID, aggregateLimit)
}

// refreshAggregate recomputes the movie's average rating from its
// current review set. Cached search results show the rating, so a
// change also bumps the cache generation. Both steps are best-effort;
// the review write already succeeded.
func (s *Service) refreshAggregate(ctx context.Context, movieID string) {
	reviews, err := s.repo.ListByMovie(ctx, movieID, aggregateLimit)
	if err != nil {
		s.logger.Warn("Failed to load reviews for rating aggregate",
			zap.String("movie_id", movieID), zap.Error(err))
		return
	}

	m, err := s.movies.Get(ctx, movieID)
	if err != nil {
		s.logger.Warn("Failed to load movie for rating aggregate",
			zap.String("movie_id", movieID), zap.Error(err))
		return
	}

	m.Rating, m.RatingCount = averageRating(reviews)
	if err := s.movies.Put(ctx, &m); err != nil {
		s.logger.Warn("Failed to store rating aggregate",
			zap.String("movie_id", movieID), zap.Error(err))
		return
	}

	if s.inval != nil {
		if err := s.inval.Invalidate(ctx); err != nil {
			s.logger.Warn("Failed to invalidate search cache after rating change",
				zap.String("movie_id", movieID), zap.Error(err))
		}
	}
}

func averageRating(reviews []domain.Review) (float64, int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews)), len(reviews)
}

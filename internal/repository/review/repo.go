package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cinedex/cinedex/internal/db"
	"github.com/cinedex/cinedex/internal/domain"
)

const keyPrefix = domain.KeyPrefix + "review:"

// store is the consumer interface for review persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string, limit int) ([]string, error)
}

// Repo implements review persistence. Keys are review:<movieID>:<reviewID>
// so a prefix scan lists one movie's reviews without an index.
type Repo struct {
	store store
}

// New creates a review repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

func key(movieID, reviewID string) string {
	return keyPrefix + movieID + ":" + reviewID
}

// Put creates or replaces a review.
func (r *Repo) Put(ctx context.Context, rev *domain.Review) error {
	data, err := json.Marshal(rev)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}
	k := key(rev.MovieID, rev.ID)
	if err := r.store.JSONSet(ctx, k, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", k, err)
	}
	return nil
}

// Get finds a review by ID alone, scanning across movies.
func (r *Repo) Get(ctx context.Context, reviewID string) (domain.Review, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*:"+reviewID, 1)
	if err != nil {
		return domain.Review{}, fmt.Errorf("scan review %s: %w", reviewID, err)
	}
	if len(keys) == 0 {
		return domain.Review{}, domain.ErrReviewNotFound
	}

	raw, err := r.store.JSONGet(ctx, keys[0], "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Review{}, domain.ErrReviewNotFound
		}
		return domain.Review{}, fmt.Errorf("json.get %s: %w", keys[0], err)
	}
	return parseDoc(raw)
}

// ListByMovie returns up to limit reviews for one movie.
func (r *Repo) ListByMovie(ctx context.Context, movieID string, limit int) ([]domain.Review, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+movieID+":*", limit)
	if err != nil {
		return nil, fmt.Errorf("scan reviews for %s: %w", movieID, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	docs, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("bulk load reviews: %w", err)
	}

	reviews := make([]domain.Review, 0, len(docs))
	for _, raw := range docs {
		if raw == nil {
			continue
		}
		rev, err := parseDoc(raw)
		if err != nil {
			continue
		}
		reviews = append(reviews, rev)
	}
	return reviews, nil
}

// FindByMovieAndUser returns the user's review of a movie, if any.
func (r *Repo) FindByMovieAndUser(ctx context.Context, movieID, userID string) (domain.Review, error) {
	reviews, err := r.ListByMovie(ctx, movieID, 0)
	if err != nil {
		return domain.Review{}, err
	}
	for _, rev := range reviews {
		if rev.UserID == userID {
			return rev, nil
		}
	}
	return domain.Review{}, domain.ErrReviewNotFound
}

// Delete removes a review.
func (r *Repo) Delete(ctx context.Context, rev *domain.Review) error {
	if err := r.store.Del(ctx, key(rev.MovieID, rev.ID)); err != nil {
		return fmt.Errorf("del review %s: %w", rev.ID, err)
	}
	return nil
}

func parseDoc(raw []byte) (domain.Review, error) {
	var docs []domain.Review
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domain.Review{}, fmt.Errorf("unmarshal review: %w", err)
	}
	if len(docs) == 0 {
		return domain.Review{}, domain.ErrReviewNotFound
	}
	return docs[0], nil
}

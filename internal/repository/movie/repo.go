package movie

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cinedex/cinedex/internal/db"
	"github.com/cinedex/cinedex/internal/domain"
)

// KeyPrefix is the storage prefix for movie documents; the FT index
// is declared over the same prefix.
const KeyPrefix = domain.KeyPrefix + "movie:"

// store is the consumer interface for movie persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string, limit int) ([]string, error)
}

// Repo implements movie persistence over JSON documents.
type Repo struct {
	store store
}

// New creates a movie repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

func key(id string) string {
	return KeyPrefix + id
}

// Put creates or replaces a movie document, embedding included.
func (r *Repo) Put(ctx context.Context, m *domain.Movie) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal movie: %w", err)
	}
	if err := r.store.JSONSet(ctx, key(m.ID), "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key(m.ID), err)
	}
	return nil
}

// Get returns a movie by ID, embedding included. Callers must project
// the embedding out before returning the movie to anyone.
func (r *Repo) Get(ctx context.Context, id string) (domain.Movie, error) {
	raw, err := r.store.JSONGet(ctx, key(id), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Movie{}, domain.ErrMovieNotFound
		}
		return domain.Movie{}, fmt.Errorf("json.get %s: %w", key(id), err)
	}
	return parseDoc(raw)
}

// Delete removes a movie.
func (r *Repo) Delete(ctx context.Context, id string) error {
	exists, err := r.store.Exists(ctx, key(id))
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key(id), err)
	}
	if !exists {
		return domain.ErrMovieNotFound
	}
	if err := r.store.Del(ctx, key(id)); err != nil {
		return fmt.Errorf("del %s: %w", key(id), err)
	}
	return nil
}

// ScanAll loads up to limit movies in one pipelined round-trip after a key
// scan. Used by the fallback retriever and the filtered listing; the cap
// bounds memory, not correctness.
func (r *Repo) ScanAll(ctx context.Context, limit int) ([]domain.Movie, error) {
	keys, err := r.store.Scan(ctx, KeyPrefix+"*", limit)
	if err != nil {
		return nil, fmt.Errorf("scan movies: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	docs, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("bulk load movies: %w", err)
	}

	movies := make([]domain.Movie, 0, len(docs))
	for _, raw := range docs {
		if raw == nil {
			continue // deleted between scan and fetch
		}
		m, err := parseDoc(raw)
		if err != nil {
			continue
		}
		movies = append(movies, m)
	}
	return movies, nil
}

// parseDoc unmarshals a JSON.GET result. A "$" path query wraps the
// document in a one-element array.
func parseDoc(raw []byte) (domain.Movie, error) {
	var docs []domain.Movie
	if err := json.Unmarshal(raw, &docs); err != nil {
		var m domain.Movie
		if err2 := json.Unmarshal(raw, &m); err2 == nil {
			return m, nil
		}
		return domain.Movie{}, fmt.Errorf("unmarshal movie: %w", err)
	}
	if len(docs) == 0 {
		return domain.Movie{}, domain.ErrMovieNotFound
	}
	return docs[0], nil
}

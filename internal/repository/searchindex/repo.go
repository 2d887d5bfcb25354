package searchindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cinedex/cinedex/internal/db"
	"github.com/cinedex/cinedex/internal/domain"
	movierepo "github.com/cinedex/cinedex/internal/repository/movie"
)

// IndexName identifies the FT vector index over movie documents.
const IndexName = domain.KeyPrefix + "movies:idx"

const scoreField = "__embedding_score"

// store is the consumer interface for the primary retriever (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
}

// Repo is the primary retriever: an ANN query against the store's FT
// vector index. Any index failure is reported as domain.ErrIndexUnavailable
// so the orchestrator can distinguish "index broken" from "zero hits" and
// switch to the brute-force fallback.
type Repo struct {
	store      store
	dimensions int
	oversample int
}

// New creates a primary search retriever.
func New(s store, dimensions, oversample int) *Repo {
	return &Repo{store: s, dimensions: dimensions, oversample: oversample}
}

// EnsureIndex creates the movie vector index if it does not exist.
// ErrIndexExists is fine; ErrSearchUnsupported means every query will go
// through the fallback path.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def := &db.IndexDefinition{
		Name:        IndexName,
		StorageType: db.StorageJSON,
		Prefixes:    []string{movierepo.KeyPrefix},
		Fields: []db.IndexField{
			{
				Name:           "$.embedding",
				Alias:          "embedding",
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorHNSW,
				VectorDim:      r.dimensions,
				VectorDistance: db.DistanceCosine,
			},
		},
	}

	err := r.store.CreateIndex(ctx, def)
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", IndexName, err)
	}
	return nil
}

// IndexExists reports whether the movie vector index is present.
func (r *Repo) IndexExists(ctx context.Context) (bool, error) {
	return r.store.IndexExists(ctx, IndexName)
}

// Search runs a KNN query for the top limit movies. The index searches a
// candidate pool of limit x oversample to preserve recall, and the query
// returns only IDs and scores: display fields are bulk-fetched afterwards
// and embeddings are stripped before anything leaves this repo.
func (r *Repo) Search(ctx context.Context, vector []float32, limit int) ([]domain.ScoredMovie, error) {
	q := &db.KNNQuery{
		IndexName:    IndexName,
		Vector:       vector,
		K:            limit,
		Candidates:   limit * r.oversample,
		ReturnFields: []string{scoreField},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		// Any index-side failure, including an absent search module or a
		// dropped index, is an availability fault rather than a user error.
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		keys = append(keys, e.Key)
	}

	docs, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("%w: load hits: %w", domain.ErrIndexUnavailable, err)
	}

	results := make([]domain.ScoredMovie, 0, len(sr.Entries))
	for i, e := range sr.Entries {
		if i >= len(docs) || docs[i] == nil {
			continue
		}
		m, err := parseDoc(docs[i])
		if err != nil {
			continue
		}
		results = append(results, domain.ScoredMovie{MovieView: m.View(), Score: e.Score})
	}
	return results, nil
}

func parseDoc(raw []byte) (domain.Movie, error) {
	var docs []domain.Movie
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domain.Movie{}, fmt.Errorf("unmarshal search hit: %w", err)
	}
	if len(docs) == 0 {
		return domain.Movie{}, errors.New("empty search hit")
	}
	return docs[0], nil
}

package search

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/cinedex/cinedex/internal/domain"
)

// searchFallback ranks the scanned working set by exact cosine similarity.
// It only sees the catalog up to the scan cap, so results are best-effort
// while the index is down.
func (s *Service) searchFallback(ctx context.Context, vector []float32, limit int) ([]domain.ScoredMovie, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.ScanTimeout)
	defer cancel()

	movies, err := s.movies.ScanAll(ctx, s.cfg.ScanCap)
	if err != nil {
		return nil, fmt.Errorf("load fallback candidates: %w", err)
	}
	return rankByCosine(movies, vector, limit), nil
}

// rankByCosine scores every embedded candidate, sorts descending, and
// truncates. The sort is stable so equal scores keep retrieval order.
func rankByCosine(movies []domain.Movie, query []float32, limit int) []domain.ScoredMovie {
	scored := make([]domain.ScoredMovie, 0, len(movies))
	for _, m := range movies {
		if len(m.Embedding) == 0 {
			continue
		}
		scored = append(scored, domain.ScoredMovie{
			MovieView: m.View(),
			Score:     cosineSimilarity(query, m.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// cosineSimilarity accumulates in float64 regardless of stored precision.
// Zero-norm or mismatched vectors score 0 rather than erroring out.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

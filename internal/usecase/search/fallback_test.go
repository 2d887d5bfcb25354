package search

import (
	"math"
	"testing"

	"github.com/cinedex/cinedex/internal/domain"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero norm left", []float32{0, 0}, []float32{1, 0}, 0.0},
		{"zero norm right", []float32{1, 0}, []float32{0, 0}, 0.0},
		{"dimension mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0.0},
		{"empty", nil, nil, 0.0},
		{"scale invariant", []float32{2, 0}, []float32{5, 0}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCosineSimilaritySymmetryAndBounds(t *testing.T) {
	a := []float32{0.3, -0.7, 0.2, 0.9}
	b := []float32{-0.1, 0.4, 0.8, 0.5}

	ab, ba := cosineSimilarity(a, b), cosineSimilarity(b, a)
	if math.Abs(ab-ba) > 1e-12 {
		t.Errorf("similarity not symmetric: %v vs %v", ab, ba)
	}
	if ab < -1.0-1e-9 || ab > 1.0+1e-9 {
		t.Errorf("similarity %v outside [-1, 1]", ab)
	}
}

func TestRankByCosineOrdering(t *testing.T) {
	movies := []domain.Movie{
		{ID: "doc1", Title: "Exact", Embedding: []float32{1, 0}},
		{ID: "doc2", Title: "Orthogonal", Embedding: []float32{0, 1}},
		{ID: "doc3", Title: "Near", Embedding: []float32{0.9, 0.1}},
		{ID: "doc4", Title: "Degenerate", Embedding: []float32{0, 0}},
	}

	got := rankByCosine(movies, []float32{1, 0}, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].ID != "doc1" {
		t.Errorf("rank 0 = %s, want doc1", got[0].ID)
	}
	if math.Abs(got[0].Score-1.0) > 1e-9 {
		t.Errorf("doc1 score = %v, want 1.0", got[0].Score)
	}
	if got[1].ID != "doc3" {
		t.Errorf("rank 1 = %s, want doc3", got[1].ID)
	}
	wantNear := 0.9 / math.Sqrt(0.9*0.9+0.1*0.1)
	if math.Abs(got[1].Score-wantNear) > 1e-9 {
		t.Errorf("doc3 score = %v, want %v", got[1].Score, wantNear)
	}
	// doc2 and doc4 both score 0; stable sort keeps doc2 first.
	if got[2].ID != "doc2" {
		t.Errorf("rank 2 = %s, want doc2", got[2].ID)
	}
	if got[2].Score != 0 {
		t.Errorf("doc2 score = %v, want 0", got[2].Score)
	}

	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %v > %v", i, got[i].Score, got[i-1].Score)
		}
	}
}

func TestRankByCosineDiscardsUnembedded(t *testing.T) {
	movies := []domain.Movie{
		{ID: "m1", Embedding: []float32{1, 0}},
		{ID: "m2"},
		{ID: "m3", Embedding: []float32{0.5, 0.5}},
	}

	got := rankByCosine(movies, []float32{1, 0}, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	for _, r := range got {
		if r.ID == "m2" {
			t.Error("movie without embedding was ranked")
		}
	}
}

func TestRankByCosineEmptyCandidates(t *testing.T) {
	if got := rankByCosine(nil, []float32{1, 0}, 5); len(got) != 0 {
		t.Errorf("expected empty result for no candidates, got %+v", got)
	}

	unembedded := []domain.Movie{{ID: "m1"}, {ID: "m2"}}
	if got := rankByCosine(unembedded, []float32{1, 0}, 5); len(got) != 0 {
		t.Errorf("expected empty result when nothing is embedded, got %+v", got)
	}
}

func TestRankByCosineStripsEmbeddings(t *testing.T) {
	movies := []domain.Movie{
		{ID: "m1", Title: "Kept", Embedding: []float32{1, 0}},
	}

	got := rankByCosine(movies, []float32{1, 0}, 5)
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Title != "Kept" {
		t.Errorf("display fields lost: %+v", got[0])
	}
	// MovieView carries no embedding field at all; encoding must not leak one.
}

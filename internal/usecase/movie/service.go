package movie

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cinedex/cinedex/internal/domain"
)

// Service manages the movie catalog. Mutations are admin-only and each
// one invalidates cached search results.
type Service struct {
	repo    Repository
	embed   Embedder
	inval   Invalidator
	scanCap int
	logger  *zap.Logger
}

// New creates a catalog service.
func New(repo Repository, embed Embedder, inval Invalidator, scanCap int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, embed: embed, inval: inval, scanCap: scanCap, logger: log}
}

// Input carries the writable fields of a catalog entry.
type Input struct {
	Title       string   `json:"title"`
	Year        int      `json:"year"`
	Director    string   `json:"director"`
	Genres      []string `json:"genre"`
	Description string   `json:"description"`
	Cast        []string `json:"cast"`
	PosterURL   string   `json:"poster_url"`
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidArgument)
	}
	if in.Year < 0 {
		return fmt.Errorf("%w: year must not be negative", domain.ErrInvalidArgument)
	}
	return nil
}

// Create adds a movie with a freshly computed embedding.
func (s *Service) Create(ctx context.Context, caller domain.User, in Input) (domain.MovieView, error) {
	if !caller.IsAdmin() {
		return domain.MovieView{}, domain.ErrForbidden
	}
	if err := in.validate(); err != nil {
		return domain.MovieView{}, err
	}

	emb, err := s.embed.Embed(ctx, embedText(in))
	if err != nil {
		return domain.MovieView{}, fmt.Errorf("embed movie: %w", err)
	}

	m := domain.Movie{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Year:        in.Year,
		Director:    in.Director,
		Genres:      in.Genres,
		Description: in.Description,
		Cast:        in.Cast,
		PosterURL:   in.PosterURL,
		Embedding:   emb.Embedding,
	}
	if err := s.repo.Put(ctx, &m); err != nil {
		return domain.MovieView{}, fmt.Errorf("store movie: %w", err)
	}

	s.invalidate(ctx, "create", m.ID)
	return m.View(), nil
}

// Update rewrites a movie's fields and recomputes its embedding. The
// aggregated rating survives the update.
func (s *Service) Update(ctx context.Context, caller domain.User, id string, in Input) (domain.MovieView, error) {
	if !caller.IsAdmin() {
		return domain.MovieView{}, domain.ErrForbidden
	}
	if err := in.validate(); err != nil {
		return domain.MovieView{}, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.MovieView{}, err
	}

	emb, err := s.embed.Embed(ctx, embedText(in))
	if err != nil {
		return domain.MovieView{}, fmt.Errorf("embed movie: %w", err)
	}

	m := domain.Movie{
		ID:          existing.ID,
		Title:       in.Title,
		Year:        in.Year,
		Director:    in.Director,
		Genres:      in.Genres,
		Description: in.Description,
		Cast:        in.Cast,
		PosterURL:   in.PosterURL,
		Rating:      existing.Rating,
		RatingCount: existing.RatingCount,
		Embedding:   emb.Embedding,
	}
	if err := s.repo.Put(ctx, &m); err != nil {
		return domain.MovieView{}, fmt.Errorf("store movie: %w", err)
	}

	s.invalidate(ctx, "update", m.ID)
	return m.View(), nil
}

// Delete removes a movie from the catalog.
func (s *Service) Delete(ctx context.Context, caller domain.User, id string) error {
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, "delete", id)
	return nil
}

// Get returns a single movie without its embedding.
func (s *Service) Get(ctx context.Context, id string) (domain.MovieView, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.MovieView{}, err
	}
	return m.View(), nil
}

// List returns catalog entries matching the filter, uncached. Exact
// field search does not go through the semantic pipeline.
func (s *Service) List(ctx context.Context, f domain.MovieFilter, limit int) ([]domain.MovieView, error) {
	movies, err := s.repo.ScanAll(ctx, s.scanCap)
	if err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}

	views := make([]domain.MovieView, 0, len(movies))
	for _, m := range movies {
		if !matchesFilter(m, f) {
			continue
		}
		views = append(views, m.View())
		if limit > 0 && len(views) >= limit {
			break
		}
	}
	return views, nil
}

// invalidate bumps the search generation. A failed bump leaves stale
// cache entries behind, which expire by TTL, so it only warns.
func (s *Service) invalidate(ctx context.Context, op, id string) {
	if s.inval == nil {
		return
	}
	if err := s.inval.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate search cache after catalog change",
			zap.String("op", op), zap.String("movie_id", id), zap.Error(err))
	}
}

func matchesFilter(m domain.Movie, f domain.MovieFilter) bool {
	if f.Title != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(f.Title)) {
		return false
	}
	if f.Director != "" && !strings.Contains(strings.ToLower(m.Director), strings.ToLower(f.Director)) {
		return false
	}
	if f.Year != 0 && m.Year != f.Year {
		return false
	}
	if f.Genre != "" {
		found := false
		for _, g := range m.Genres {
			if strings.EqualFold(g, f.Genre) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// embedText builds the text the embedding is computed from. Keeping the
// field order fixed keeps vectors comparable across rewrites.
func embedText(in Input) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{in.Title, in.Director, strings.Join(in.Genres, " "), in.Description} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

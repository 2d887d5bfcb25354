package chi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cinedex/cinedex/internal/domain"
	movieuc "github.com/cinedex/cinedex/internal/usecase/movie"
)

// SearchMovies handles GET /api/movies/search.
func (s *Server) SearchMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := queryInt(r, "limit")

	results, err := s.search.Search(r.Context(), query, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if results == nil {
		results = []domain.ScoredMovie{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

// ListMovies handles GET /api/movies.
func (s *Server) ListMovies(w http.ResponseWriter, r *http.Request) {
	f := domain.MovieFilter{
		Title:    r.URL.Query().Get("title"),
		Director: r.URL.Query().Get("director"),
		Genre:    r.URL.Query().Get("genre"),
		Year:     queryInt(r, "year"),
	}

	movies, err := s.movies.List(r.Context(), f, queryInt(r, "limit"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if movies == nil {
		movies = []domain.MovieView{}
	}

	writeJSON(w, http.StatusOK, movies)
}

// GetMovie handles GET /api/movies/{movieID}.
func (s *Server) GetMovie(w http.ResponseWriter, r *http.Request) {
	view, err := s.movies.Get(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CreateMovie handles POST /api/movies.
func (s *Server) CreateMovie(w http.ResponseWriter, r *http.Request) {
	caller, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing session")
		return
	}

	var in movieuc.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	view, err := s.movies.Create(r.Context(), caller, in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/movies/"+view.ID)
	writeJSON(w, http.StatusCreated, view)
}

// UpdateMovie handles PUT /api/movies/{movieID}.
func (s *Server) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	caller, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing session")
		return
	}

	var in movieuc.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	view, err := s.movies.Update(r.Context(), caller, chi.URLParam(r, "movieID"), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// DeleteMovie handles DELETE /api/movies/{movieID}.
func (s *Server) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	caller, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing session")
		return
	}

	if err := s.movies.Delete(r.Context(), caller, chi.URLParam(r, "movieID")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cinedex/cinedex/internal/domain"
	reviewuc "github.com/cinedex/cinedex/internal/usecase/review"
)

// ListReviews handles GET /api/movies/{movieID}/reviews.
func (s *Server) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.reviews.ListByMovie(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	writeJSON(w, http.StatusOK, reviews)
}

// CreateReview handles POST /api/movies/{movieID}/reviews.
func (s *Server) CreateReview(w http.ResponseWriter, r *http.Request) {
	caller, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing session")
		return
	}

	var in reviewuc.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rev, err := s.reviews.Create(r.Context(), caller, chi.URLParam(r, "movieID"), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rev)
}

// UpdateReview handles PUT /api/reviews/{reviewID}.
func (s *Server) UpdateReview(w http.ResponseWriter, r *http.Request) {
	caller, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing session")
		return
	}

	var in reviewuc.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rev, err := s.reviews.Update(r.Context(), caller, chi.URLParam(r, "reviewID"), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rev)
}

// DeleteReview handles DELETE /api/reviews/{reviewID}.
func (s *Server) DeleteReview(w http.ResponseWriter, r *http.Request) {
	caller, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing session")
		return
	}

	if err := s.reviews.Delete(r.Context(), caller, chi.URLParam(r, "reviewID")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

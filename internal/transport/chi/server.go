package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cinedex/cinedex/internal/domain"
	agentuc "github.com/cinedex/cinedex/internal/usecase/agent"
	authuc "github.com/cinedex/cinedex/internal/usecase/auth"
	healthuc "github.com/cinedex/cinedex/internal/usecase/health"
	movieuc "github.com/cinedex/cinedex/internal/usecase/movie"
	reviewuc "github.com/cinedex/cinedex/internal/usecase/review"
	searchuc "github.com/cinedex/cinedex/internal/usecase/search"
)

// Error codes returned to clients.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeUnauthorized      = "unauthorized"
	codeForbidden         = "forbidden"
	codeMovieNotFound     = "movie_not_found"
	codeReviewNotFound    = "review_not_found"
	codeUserNotFound      = "user_not_found"
	codeEmailTaken        = "email_taken"
	codeDuplicateReview   = "duplicate_review"
	codeEmbeddingProvider = "embedding_provider_error"
	codeAgentUnavailable  = "agent_unavailable"
	codeInternalError     = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server carries the HTTP handlers for the catalog API.
type Server struct {
	auth          *authuc.Service
	movies        *movieuc.Service
	reviews       *reviewuc.Service
	search        *searchuc.Service
	agent         *agentuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. agent may be nil when no chat
// provider is configured.
func NewServer(
	auth *authuc.Service,
	movies *movieuc.Service,
	reviews *reviewuc.Service,
	search *searchuc.Service,
	agent *agentuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		auth:    auth,
		movies:  movies,
		reviews: reviews,
		search:  search,
		agent:   agent,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidCredentials, http.StatusUnauthorized, codeUnauthorized),
		sentinelHandler(domain.ErrForbidden, http.StatusForbidden, codeForbidden),
		sentinelHandler(domain.ErrMovieNotFound, http.StatusNotFound, codeMovieNotFound),
		sentinelHandler(domain.ErrReviewNotFound, http.StatusNotFound, codeReviewNotFound),
		sentinelHandler(domain.ErrUserNotFound, http.StatusNotFound, codeUserNotFound),
		sentinelHandler(domain.ErrEmailTaken, http.StatusConflict, codeEmailTaken),
		sentinelHandler(domain.ErrDuplicateReview, http.StatusConflict, codeDuplicateReview),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
	}
	return s
}

// Routes mounts every endpoint on the router. Reads are public; every
// mutation and the agent require a session.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.Register)
		r.Post("/auth/login", s.Login)

		r.Get("/movies", s.ListMovies)
		r.Get("/movies/search", s.SearchMovies)
		r.Get("/movies/{movieID}", s.GetMovie)
		r.Get("/movies/{movieID}/reviews", s.ListReviews)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireAuth)

			r.Post("/movies", s.CreateMovie)
			r.Put("/movies/{movieID}", s.UpdateMovie)
			r.Delete("/movies/{movieID}", s.DeleteMovie)

			r.Post("/movies/{movieID}/reviews", s.CreateReview)
			r.Put("/reviews/{reviewID}", s.UpdateReview)
			r.Delete("/reviews/{reviewID}", s.DeleteReview)

			r.Post("/agent/chat", s.AgentChat)
		})
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// safeDomainMessage returns a sentinel error message for the client
// without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrInvalidArgument,
		domain.ErrVectorDimMismatch,
		domain.ErrInvalidCredentials,
		domain.ErrForbidden,
		domain.ErrMovieNotFound,
		domain.ErrReviewNotFound,
		domain.ErrUserNotFound,
		domain.ErrEmailTaken,
		domain.ErrDuplicateReview,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler matching a single sentinel.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

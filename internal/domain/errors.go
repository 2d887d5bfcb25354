package domain

import "errors"

var (
	// ErrMovieNotFound signals a missing movie.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrReviewNotFound signals a missing review.
	ErrReviewNotFound = errors.New("review not found")
	// ErrUserNotFound signals a missing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken signals a registration attempt with an already used email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrDuplicateReview signals a second review by the same user for the same movie.
	ErrDuplicateReview = errors.New("movie already reviewed by this user")
	// ErrInvalidCredentials signals a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden signals a caller lacking the required role or ownership.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidArgument signals a malformed request payload.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyQuery signals blank search text. Input fault, not a retrieval failure:
	// the orchestrator short-circuits before touching the embedder or any retriever.
	ErrEmptyQuery = errors.New("empty query")
	// ErrIndexUnavailable signals that the vector index cannot serve the query
	// (feature missing or store error). Distinct from zero hits; triggers fallback.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)

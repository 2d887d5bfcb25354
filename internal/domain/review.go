package domain

import "time"

// Rating bounds for reviews.
const (
	MinRating = 1
	MaxRating = 10
)

// Review is a user's rating and comment for one movie.
// One review per (movie, user) pair.
type Review struct {
	ID        string    `json:"id"`
	MovieID   string    `json:"movie_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

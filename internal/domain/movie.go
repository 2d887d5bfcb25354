package domain

// KeyPrefix namespaces every key this service writes to the store.
const KeyPrefix = "cinedex:"

// Movie is a catalog entry as persisted, embedding included.
// The embedding never leaves the service: every read path projects it out.
type Movie struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Year        int       `json:"year"`
	Director    string    `json:"director"`
	Genres      []string  `json:"genres"`
	Description string    `json:"description"`
	Cast        []string  `json:"cast,omitempty"`
	PosterURL   string    `json:"poster_url,omitempty"`
	Rating      float64   `json:"rating"`
	RatingCount int       `json:"rating_count"`
	Embedding   []float32 `json:"embedding,omitempty"`
}

// MovieView is the caller-facing projection of a Movie, without the embedding.
type MovieView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Year        int      `json:"year"`
	Director    string   `json:"director"`
	Genres      []string `json:"genres"`
	Description string   `json:"description"`
	Cast        []string `json:"cast,omitempty"`
	PosterURL   string   `json:"poster_url,omitempty"`
	Rating      float64  `json:"rating"`
	RatingCount int      `json:"rating_count"`
}

// View strips the embedding from a movie.
func (m Movie) View() MovieView {
	return MovieView{
		ID:          m.ID,
		Title:       m.Title,
		Year:        m.Year,
		Director:    m.Director,
		Genres:      m.Genres,
		Description: m.Description,
		Cast:        m.Cast,
		PosterURL:   m.PosterURL,
		Rating:      m.Rating,
		RatingCount: m.RatingCount,
	}
}

// ScoredMovie is a search hit: a projection plus a relevance score.
// The score is index-native similarity on the primary path and exact
// cosine similarity on the fallback path.
type ScoredMovie struct {
	MovieView
	Score float64 `json:"score"`
}

// MovieFilter holds exact-search criteria. Zero values mean "no constraint".
type MovieFilter struct {
	Title    string
	Director string
	Genre    string
	Year     int
}

// IsEmpty reports whether no criterion is set.
func (f MovieFilter) IsEmpty() bool {
	return f.Title == "" && f.Director == "" && f.Genre == "" && f.Year == 0
}

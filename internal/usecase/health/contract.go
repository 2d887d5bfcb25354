package health

import "context"

// StorePinger checks storage availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// IndexChecker reports whether the vector index exists. With the index
// gone, search still answers through the brute-force tier, so a missing
// index only degrades the report.
type IndexChecker interface {
	IndexExists(ctx context.Context) (bool, error)
}

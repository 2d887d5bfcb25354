package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and query-cache Prometheus metrics.
var (
	// SearchTierTotal counts searches by the tier that produced the response:
	// "cache", "primary", "fallback" or "error".
	SearchTierTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinedex",
			Name:      "search_tier_total",
			Help:      "Semantic searches by answering tier",
		},
		[]string{"tier"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cinedex",
			Name:      "search_duration_seconds",
			Help:      "Semantic search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"tier"},
	)

	// QueryCacheTotal counts result-cache lookups with label "result" ("hit"/"miss").
	QueryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinedex",
			Name:      "query_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"},
	)

	CacheGenerationBumps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cinedex",
			Name:      "cache_generation_bumps_total",
			Help:      "Catalog mutations that invalidated the search cache",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search Prometheus metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchTierTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(QueryCacheTotal)
	prometheus.MustRegister(CacheGenerationBumps)
	searchMetricsRegistered = true
}

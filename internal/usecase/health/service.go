package health

import "context"

// Status is the aggregated health of the service.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the service still answers but with reduced
	// capability, e.g. search running on the brute-force tier.
	Degraded Status = "degraded"
	// Unhealthy indicates the service cannot answer requests.
	Unhealthy Status = "error"
)

// CheckResult is an individual component outcome.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
)

// Report aggregates component checks.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	embedding EmbeddingChecker
	index     IndexChecker
}

// New creates a Service. embedding and index can be nil.
func New(store StorePinger, embedding EmbeddingChecker, index IndexChecker) *Service {
	return &Service{store: store, embedding: embedding, index: index}
}

// Check probes every component. Storage failure is fatal because
// nothing works without it; the rest only degrades the report.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	storeOK := s.store.Ping(ctx) == nil
	if storeOK {
		checks["storage"] = CheckOK
	} else {
		checks["storage"] = CheckError
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	if s.index != nil {
		if exists, err := s.index.IndexExists(ctx); err != nil || !exists {
			checks["vector_index"] = CheckError
		} else {
			checks["vector_index"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if !storeOK {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status    Status
	Checks    map[string]CheckResult
	Providers int
	StoreSize int
}

// Service coordinates health checks. The cache store and the remote
// embedder are both optional: the engine runs degraded without them.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	store     StoreSizer
	providers int
}

// New creates a Service. db and embedding can be nil.
func New(db DBPinger, embedding EmbeddingChecker, store StoreSizer, providers int) *Service {
	return &Service{db: db, embedding: embedding, store: store, providers: providers}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	report := Report{Status: status, Checks: checks, Providers: s.providers}
	if s.store != nil {
		report.StoreSize = s.store.Len()
	}
	return report
}

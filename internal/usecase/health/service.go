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
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db       DBPinger
	analyzer AnalyzerChecker
}

// New creates a Service. Both collaborators are optional: the quota store
// runs in memory without Redis and the assistant may be unconfigured.
func New(db DBPinger, analyzer AnalyzerChecker) *Service {
	return &Service{db: db, analyzer: analyzer}
}

// Check runs health checks against all configured components.
// With nothing configured the service is healthy: both sources are
// stateless HTTP clients checked per request.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			checks["database"] = CheckError
		} else {
			checks["database"] = CheckOK
		}
	}

	if s.analyzer != nil {
		if err := s.analyzer.HealthCheck(ctx); err != nil {
			checks["analyzer"] = CheckError
		} else {
			checks["analyzer"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

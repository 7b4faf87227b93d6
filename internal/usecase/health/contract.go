package health

import "context"

// DBPinger checks quota store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// AnalyzerChecker checks text analysis provider availability.
type AnalyzerChecker interface {
	HealthCheck(ctx context.Context) error
}

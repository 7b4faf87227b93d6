package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upstream source and reconciliation metrics.
var (
	SourceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Total number of upstream source requests",
		},
		[]string{"source", "status"},
	)

	SourceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Upstream source request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"source"},
	)

	SourceCandidatesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_candidates_dropped_total",
			Help:      "Raw candidates that did not yield a business",
		},
		[]string{"source"},
	)

	SourceQuotaRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_quota_remaining",
			Help:      "Remaining daily request quota per source",
		},
		[]string{"source"},
	)

	ReconcileBranchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_branch_total",
			Help:      "Combined search branch outcomes",
		},
		[]string{"branch", "outcome"}, // outcome: ok / error / timeout
	)

	ReconcileResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_results",
			Help:      "Businesses per combined search",
			Buckets:   []float64{0, 1, 5, 10, 20, 40, 60},
		},
		[]string{"kind"}, // kind: merged / duplicate
	)

	AnalyzerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyzer_requests_total",
			Help:      "Total number of text analysis requests",
		},
		[]string{"provider", "status"},
	)
)

var sourceMetricsRegistered bool

// RegisterSourceMetrics registers source and reconciliation metrics. Must be called once from main.
func RegisterSourceMetrics() {
	if sourceMetricsRegistered {
		return
	}
	prometheus.MustRegister(SourceRequestsTotal)
	prometheus.MustRegister(SourceRequestDuration)
	prometheus.MustRegister(SourceCandidatesDropped)
	prometheus.MustRegister(SourceQuotaRemaining)
	prometheus.MustRegister(ReconcileBranchTotal)
	prometheus.MustRegister(ReconcileResults)
	prometheus.MustRegister(AnalyzerRequestsTotal)
	sourceMetricsRegistered = true
}

package usage

import "github.com/gana36/YELPB/internal/domain/usage/budget"

// Period is the aggregation granularity. Quotas are daily.
type Period string

// PeriodDay is the only period sources are metered on.
const PeriodDay Period = "day"

// Source is one upstream source's usage for the period.
type Source struct {
	name     string
	requests int64
	budget   budget.Budget
}

// NewSource creates a per-source usage entry.
func NewSource(name string, requests int64, b budget.Budget) Source {
	return Source{name: name, requests: requests, budget: b}
}

// Name returns the source name.
func (s Source) Name() string { return s.name }

// Requests returns the calls made this period.
func (s Source) Requests() int64 { return s.requests }

// Budget returns the quota state.
func (s Source) Budget() budget.Budget { return s.budget }

// Report is an upstream source usage report for a time period.
type Report struct {
	period      Period
	periodStart int64
	periodEnd   int64
	sources     []Source
}

// NewReport creates a usage report.
func NewReport(period Period, start, end int64, sources []Source) Report {
	return Report{
		period:      period,
		periodStart: start,
		periodEnd:   end,
		sources:     sources,
	}
}

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis).
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// Sources returns per-source usage in registration order.
func (r *Report) Sources() []Source { return r.sources }

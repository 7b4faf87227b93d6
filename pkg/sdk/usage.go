package yelpb

import (
	"context"
	"time"

	domusage "github.com/gana36/YELPB/internal/domain/usage"
)

// UsageReport contains today's per-source request counts.
type UsageReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Sources     []SourceUsage
}

// SourceUsage is one source's request count and quota state.
type SourceUsage struct {
	Source   string
	Requests int64
	Budget   BudgetStatus
}

// BudgetStatus tracks daily quota state. A zero RequestsLimit means unlimited.
type BudgetStatus struct {
	RequestsLimit     int64
	RequestsRemaining int64
	IsExhausted       bool
	ResetsAt          time.Time
}

// Usage returns today's usage report (UTC day).
// Observer always records success: the report is built from in-memory counters.
func (c *Client) Usage(ctx context.Context) UsageReport {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, nil) }()

	report := c.usageSvc.GetReport(ctx)
	out := UsageReport{
		PeriodStart: time.UnixMilli(report.PeriodStart()).UTC(),
		PeriodEnd:   time.UnixMilli(report.PeriodEnd()).UTC(),
		Sources:     make([]SourceUsage, 0, len(report.Sources())),
	}
	for _, s := range report.Sources() {
		b := s.Budget()
		out.Sources = append(out.Sources, SourceUsage{
			Source:   s.Name(),
			Requests: s.Requests(),
			Budget: BudgetStatus{
				RequestsLimit:     b.RequestsLimit(),
				RequestsRemaining: b.RequestsRemaining(),
				IsExhausted:       b.IsExhausted(),
				ResetsAt:          time.UnixMilli(b.ResetsAt()).UTC(),
			},
		})
	}
	return out
}

// usageUseCase is the internal interface for usage reports.
type usageUseCase interface {
	GetReport(ctx context.Context) domusage.Report
}

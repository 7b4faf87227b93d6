package usage

import (
	"context"
	"time"

	domusage "github.com/gana36/YELPB/internal/domain/usage"
	"github.com/gana36/YELPB/internal/domain/usage/budget"
)

// Service handles usage reporting.
type Service struct {
	readers []QuotaReader
	now     func() time.Time
}

// New creates a Service over the given per-source quota readers.
func New(readers ...QuotaReader) *Service {
	return &Service{readers: readers, now: func() time.Time { return time.Now().UTC() }}
}

// GetReport builds today's usage report, one entry per source.
func (s *Service) GetReport(_ context.Context) domusage.Report {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	sources := make([]domusage.Source, 0, len(s.readers))
	for _, r := range s.readers {
		limit := r.DailyLimit()
		remaining := r.RemainingDaily()
		exhausted := limit > 0 && remaining <= 0
		b := budget.New(limit, remaining, exhausted, dayEnd.UnixMilli())
		sources = append(sources, domusage.NewSource(r.Source(), r.DailyUsed(), b))
	}

	return domusage.NewReport(domusage.PeriodDay, dayStart.UnixMilli(), dayEnd.UnixMilli(), sources)
}

package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gana36/YELPB/internal/domain"
	"github.com/gana36/YELPB/internal/domain/business"
	"github.com/gana36/YELPB/internal/domain/search/request"
	"github.com/gana36/YELPB/internal/metrics"
)

// Branch names, in merge priority order.
const (
	BranchConversational = "conversational"
	BranchListing        = "listing"
)

type branchOutcome struct {
	businesses []business.Business
	err        error
	duration   time.Duration
}

// Combined queries both sources concurrently and merges their businesses.
//
// Conversational records come first in their source order, followed by
// listing records whose id the conversational branch did not return. A
// failed or timed-out branch contributes nothing; if both fail the result
// is empty, not an error. Cancellation of ctx aborts the whole call.
func (s *Service) Combined(ctx context.Context, req request.Combined) ([]business.Business, error) {
	var conv, list branchOutcome

	// Branches never return errors to the group: one failing must not cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		conv = s.runBranch(ctx, BranchConversational, func(bctx context.Context) ([]business.Business, error) {
			res, err := s.chat.Invoke(bctx, req.Chat())
			return res.Businesses, err
		})
		return nil
	})
	g.Go(func() error {
		list = s.runBranch(ctx, BranchListing, func(bctx context.Context) ([]business.Business, error) {
			res, err := s.listing.Search(bctx, req.Listing())
			return res.Businesses, err
		})
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("combined search: %w", err)
	}

	s.recordOutcome(ctx, BranchConversational, conv)
	s.recordOutcome(ctx, BranchListing, list)

	merged, duplicates := mergeByPriority(conv.businesses, list.businesses)

	metrics.ReconcileResults.WithLabelValues("merged").Observe(float64(len(merged)))
	metrics.ReconcileResults.WithLabelValues("duplicate").Observe(float64(duplicates))

	s.logger.Debug("Combined search merged",
		zap.Int("conversational", len(conv.businesses)),
		zap.Int("listing", len(list.businesses)),
		zap.Int("duplicates", duplicates),
		zap.Int("total", len(merged)),
	)
	return merged, nil
}

// runBranch calls fn under the branch timeout and captures its outcome,
// including a panic, so that nothing escapes the branch.
func (s *Service) runBranch(
	ctx context.Context, name string,
	fn func(context.Context) ([]business.Business, error),
) (out branchOutcome) {
	bctx, cancel := context.WithTimeout(ctx, s.branchTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = branchOutcome{err: fmt.Errorf("%s branch panic: %v", name, r)}
		}
		out.duration = time.Since(start)
	}()

	bs, err := fn(bctx)
	if err != nil {
		return branchOutcome{err: err}
	}
	return branchOutcome{businesses: bs}
}

func (s *Service) recordOutcome(ctx context.Context, name string, o branchOutcome) {
	if o.err == nil {
		metrics.ReconcileBranchTotal.WithLabelValues(name, "ok").Inc()
		return
	}

	outcome := "error"
	if errors.Is(o.err, context.DeadlineExceeded) {
		outcome = "timeout"
	}
	metrics.ReconcileBranchTotal.WithLabelValues(name, outcome).Inc()
	domain.SourceUsageFromContext(ctx).MarkFailed(name)

	s.logger.Warn("Combined search branch failed, continuing without it",
		zap.String("branch", name),
		zap.String("outcome", outcome),
		zap.Duration("duration", o.duration),
		zap.Error(o.err),
	)
}

// mergeByPriority returns primary in order, then the secondary records whose
// id is not already present, and the number of secondary records skipped.
// An id repeated within primary keeps its first occurrence.
func mergeByPriority(primary, secondary []business.Business) ([]business.Business, int) {
	set := newOrderedBusinesses(len(primary) + len(secondary))
	for _, b := range primary {
		set.insert(b)
	}
	duplicates := 0
	for _, b := range secondary {
		if !set.insert(b) {
			duplicates++
		}
	}
	return set.values(), duplicates
}

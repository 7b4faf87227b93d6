package quota

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gana36/YELPB/internal/domain/search/request"
	"github.com/gana36/YELPB/internal/domain/search/result"
	"github.com/gana36/YELPB/internal/metrics"
)

// Checker is the local interface for quota enforcement.
type Checker interface {
	Reserve(ctx context.Context) error
	RemainingDaily() int64
}

type chatSource interface {
	Invoke(ctx context.Context, req request.Chat) (result.Chat, error)
}

type listingSource interface {
	Search(ctx context.Context, req request.Listing) (result.Listing, error)
}

// guard runs call under the quota. The slot is reserved before the call, so
// every attempted call counts, failed ones included.
func guard(ctx context.Context, source string, q Checker, logger *zap.Logger, call func() error) error {
	if q == nil {
		return call()
	}
	if err := q.Reserve(ctx); err != nil {
		logger.Warn("Source call rejected by quota", zap.String("source", source), zap.Error(err))
		return fmt.Errorf("quota check: %w", err)
	}
	metrics.SourceQuotaRemaining.WithLabelValues(source).Set(float64(q.RemainingDaily()))

	return call()
}

// GuardedChat wraps the conversational source with a daily quota.
type GuardedChat struct {
	inner  chatSource
	source string
	quota  Checker
	logger *zap.Logger
}

// NewGuardedChat decorates inner. A nil quota passes every call through.
func NewGuardedChat(inner chatSource, source string, q Checker, logger *zap.Logger) *GuardedChat {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuardedChat{inner: inner, source: source, quota: q, logger: logger}
}

// Invoke checks the quota, delegates, and records the call.
func (g *GuardedChat) Invoke(ctx context.Context, req request.Chat) (result.Chat, error) {
	var res result.Chat
	err := guard(ctx, g.source, g.quota, g.logger, func() error {
		var err error
		res, err = g.inner.Invoke(ctx, req)
		return err
	})
	return res, err
}

// GuardedListing wraps the listing source with a daily quota.
type GuardedListing struct {
	inner  listingSource
	source string
	quota  Checker
	logger *zap.Logger
}

// NewGuardedListing decorates inner. A nil quota passes every call through.
func NewGuardedListing(inner listingSource, source string, q Checker, logger *zap.Logger) *GuardedListing {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuardedListing{inner: inner, source: source, quota: q, logger: logger}
}

// Search checks the quota, delegates, and records the call.
func (g *GuardedListing) Search(ctx context.Context, req request.Listing) (result.Listing, error) {
	var res result.Listing
	err := guard(ctx, g.source, g.quota, g.logger, func() error {
		var err error
		res, err = g.inner.Search(ctx, req)
		return err
	})
	return res, err
}

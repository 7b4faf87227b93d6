package quota

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gana36/YELPB/internal/domain"
)

// Action defines behavior when a daily quota is reached.
type Action string

const (
	// ActionWarn logs a warning but allows the call.
	ActionWarn Action = "warn"
	// ActionReject blocks the call with domain.ErrQuotaExceeded.
	ActionReject Action = "reject"
)

// Store persists daily counters. IncrBy may be called repeatedly.
type Store interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// Tracker counts outbound calls to one source per UTC day.
// Reserve and Record update memory first, then write behind to the store.
type Tracker struct {
	mu           sync.Mutex
	source       string
	keyPrefix    string
	dailyUsed    int64
	dailyLimit   int64
	action       Action
	lastDayReset time.Time
	store        Store
	now          func() time.Time
	logger       *zap.Logger
}

// NewTracker creates a tracker. dailyLimit 0 means unlimited.
func NewTracker(source, keyPrefix string, dailyLimit int64, action Action, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		source:     source,
		keyPrefix:  keyPrefix,
		dailyLimit: dailyLimit,
		action:     action,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
	t.lastDayReset = truncateToDay(t.now())
	return t
}

// WithStore attaches a persistence store and loads today's counter.
func (t *Tracker) WithStore(ctx context.Context, store Store) *Tracker {
	t.store = store
	t.loadFromStore(ctx)
	return t
}

func (t *Tracker) loadFromStore(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := t.dailyKey(t.now())
	val, err := t.store.Get(ctx, key)
	if err != nil {
		t.logger.Warn("Failed to load quota counter from store",
			zap.String("source", t.source), zap.String("key", key), zap.Error(err))
		return
	}
	t.dailyUsed = val
	t.logger.Info("Quota counter loaded from store",
		zap.String("source", t.source),
		zap.Int64("daily_used", t.dailyUsed),
	)
}

func (t *Tracker) dailyKey(at time.Time) string {
	return fmt.Sprintf("%squota:%s:%s", t.keyPrefix, t.source, at.Format("2006-01-02"))
}

// Reserve claims one call for today. The limit check and the increment share
// one critical section, so concurrent callers cannot overshoot a reject quota.
// A rejected call is not counted.
func (t *Tracker) Reserve(_ context.Context) error {
	t.mu.Lock()
	t.resetIfNeeded()
	if t.dailyLimit > 0 && t.dailyUsed >= t.dailyLimit {
		if t.action == ActionReject {
			t.mu.Unlock()
			return fmt.Errorf("%s: %w", t.source, domain.ErrQuotaExceeded)
		}
		t.logger.Warn("Daily source quota exceeded",
			zap.String("source", t.source),
			zap.Int64("daily_used", t.dailyUsed),
			zap.Int64("daily_limit", t.dailyLimit),
		)
	}
	t.dailyUsed++
	store, key := t.store, t.dailyKey(t.now())
	t.mu.Unlock()

	t.persist(store, key, 1)
	return nil
}

// Record registers n outbound calls made outside Reserve.
func (t *Tracker) Record(n int64) {
	t.mu.Lock()
	t.resetIfNeeded()
	t.dailyUsed += n
	store, key := t.store, t.dailyKey(t.now())
	t.mu.Unlock()

	t.persist(store, key, n)
}

func (t *Tracker) persist(store Store, key string, n int64) {
	if store == nil {
		return
	}

	// background context: the caller's deadline must not drop the write
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := store.IncrBy(ctx, key, n); err != nil {
		t.logger.Warn("Failed to persist quota counter", zap.String("key", key), zap.Error(err))
	}
}

// Source returns the tracked source name.
func (t *Tracker) Source() string { return t.source }

// DailyLimit returns the daily call cap (0 = unlimited).
func (t *Tracker) DailyLimit() int64 { return t.dailyLimit }

// DailyUsed returns calls made today.
func (t *Tracker) DailyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.dailyUsed
}

// RemainingDaily returns calls left today (-1 if unlimited).
func (t *Tracker) RemainingDaily() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded()
	if t.dailyLimit == 0 {
		return -1
	}
	return max(t.dailyLimit-t.dailyUsed, 0)
}

// resetIfNeeded zeroes the counter when the UTC day rolls over.
func (t *Tracker) resetIfNeeded() {
	today := truncateToDay(t.now())
	if today.After(t.lastDayReset) {
		t.dailyUsed = 0
		t.lastDayReset = today
	}
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

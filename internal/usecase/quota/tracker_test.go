package quota

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gana36/YELPB/internal/domain"
)

type mockStore struct {
	mu     sync.Mutex
	values map[string]int64
	getErr error
	incErr error
}

func newMockStore() *mockStore { return &mockStore{values: map[string]int64{}} }

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incErr != nil {
		return m.incErr
	}
	m.values[key] += val
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.values[key], nil
}

func fixedClock(t *Tracker, at time.Time) *time.Time {
	now := at
	t.now = func() time.Time { return now }
	t.lastDayReset = truncateToDay(now)
	return &now
}

func TestTracker_RejectWhenExceeded(t *testing.T) {
	tr := NewTracker("listing", "yelpb:", 2, ActionReject, zap.NewNop())
	tr.Record(2)

	err := tr.Reserve(context.Background())
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestTracker_WarnWhenExceeded(t *testing.T) {
	tr := NewTracker("listing", "yelpb:", 2, ActionWarn, zap.NewNop())
	tr.Record(5)

	if err := tr.Reserve(context.Background()); err != nil {
		t.Fatalf("warn action must allow the call, got %v", err)
	}
}

func TestTracker_Unlimited(t *testing.T) {
	tr := NewTracker("chat", "yelpb:", 0, ActionReject, nil)
	tr.Record(1_000_000)

	if err := tr.Reserve(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.RemainingDaily() != -1 {
		t.Errorf("expected -1 for unlimited, got %d", tr.RemainingDaily())
	}
}

func TestTracker_Remaining(t *testing.T) {
	tr := NewTracker("chat", "yelpb:", 10, ActionWarn, zap.NewNop())
	tr.Record(3)
	if got := tr.RemainingDaily(); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	tr.Record(20)
	if got := tr.RemainingDaily(); got != 0 {
		t.Errorf("remaining must not go negative, got %d", got)
	}
	if tr.DailyUsed() != 23 || tr.DailyLimit() != 10 || tr.Source() != "chat" {
		t.Errorf("used=%d limit=%d source=%s", tr.DailyUsed(), tr.DailyLimit(), tr.Source())
	}
}

func TestTracker_DayRollover(t *testing.T) {
	tr := NewTracker("chat", "yelpb:", 5, ActionReject, zap.NewNop())
	now := fixedClock(tr, time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC))

	tr.Record(5)
	if err := tr.Reserve(context.Background()); err == nil {
		t.Fatal("expected rejection before midnight")
	}

	*now = now.Add(2 * time.Minute)
	if err := tr.Reserve(context.Background()); err != nil {
		t.Fatalf("counter should reset at UTC midnight, got %v", err)
	}
	if tr.DailyUsed() != 1 {
		t.Errorf("expected only the new reservation after rollover, got %d", tr.DailyUsed())
	}
}

func TestTracker_WithStorePersistsAndLoads(t *testing.T) {
	store := newMockStore()
	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	first := NewTracker("listing", "yelpb:", 100, ActionWarn, zap.NewNop())
	fixedClock(first, at)
	first.WithStore(context.Background(), store)
	first.Record(4)

	if got := store.values["yelpb:quota:listing:2026-10-18"]; got != 4 {
		t.Fatalf("stored counter = %d, want 4 (keys %v)", got, store.values)
	}

	second := NewTracker("listing", "yelpb:", 100, ActionWarn, zap.NewNop())
	fixedClock(second, at)
	second.WithStore(context.Background(), store)
	if second.DailyUsed() != 4 {
		t.Errorf("restarted tracker should load 4, got %d", second.DailyUsed())
	}
}

func TestTracker_StoreErrorsAreNotFatal(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("down")
	store.incErr = errors.New("down")

	tr := NewTracker("chat", "yelpb:", 10, ActionReject, zap.NewNop()).WithStore(context.Background(), store)
	tr.Record(1)

	if tr.DailyUsed() != 1 {
		t.Errorf("in-memory counter must still advance, got %d", tr.DailyUsed())
	}
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	tr := NewTracker("chat", "yelpb:", 0, ActionWarn, zap.NewNop())

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Record(1)
		}()
	}
	wg.Wait()

	if tr.DailyUsed() != 50 {
		t.Errorf("expected 50, got %d", tr.DailyUsed())
	}
}

func TestTracker_ReserveCountsAndRejects(t *testing.T) {
	tr := NewTracker("listing", "yelpb:", 2, ActionReject, zap.NewNop())
	ctx := context.Background()

	for i := range 2 {
		if err := tr.Reserve(ctx); err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
	}
	if err := tr.Reserve(ctx); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if tr.DailyUsed() != 2 {
		t.Errorf("rejected reserve must not count, used = %d", tr.DailyUsed())
	}
}

func TestTracker_ConcurrentReserveNeverOvershoots(t *testing.T) {
	const limit = 10
	tr := NewTracker("chat", "yelpb:", limit, ActionReject, zap.NewNop())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.Reserve(context.Background()) == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != limit || tr.DailyUsed() != limit {
		t.Errorf("granted=%d used=%d, want %d", granted, tr.DailyUsed(), limit)
	}
}

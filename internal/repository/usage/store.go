package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gana36/YELPB/internal/db"
)

// DefaultTTL keeps a daily counter around for one day past its own.
const DefaultTTL = 48 * time.Hour

// store is the consumer interface for counter operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store persists daily request counters (INCRBY + GET with TTL).
type Store struct {
	store store
	ttl   time.Duration
}

// New creates a counter store. ttl <= 0 uses DefaultTTL.
func New(s store, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{store: s, ttl: ttl}
}

// IncrBy atomically increments the counter and sets its TTL once.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	if _, err := s.store.IncrBy(ctx, key, val); err != nil {
		return fmt.Errorf("usage INCRBY %s: %w", key, err)
	}

	// NX: later increments must not push the expiry forward
	if err := s.store.Expire(ctx, key, s.ttl, true); err != nil {
		return fmt.Errorf("usage EXPIRE %s: %w", key, err)
	}
	return nil
}

// Get returns the counter value, 0 when the key does not exist.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("usage GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("usage GET %s parse: %w", key, err)
	}
	return val, nil
}

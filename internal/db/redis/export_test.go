package redis

import "github.com/redis/rueidis"

// newStoreForTest wraps a mock rueidis client.
func newStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}

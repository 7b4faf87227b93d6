package search

import "github.com/gana36/YELPB/internal/domain/business"

// orderedBusinesses is an insertion-ordered set of businesses keyed by id.
// The first insertion of an id wins; later inserts of the same id are
// ignored. Iteration order is first-insertion order.
type orderedBusinesses struct {
	index map[string]struct{}
	items []business.Business
}

func newOrderedBusinesses(capacity int) *orderedBusinesses {
	return &orderedBusinesses{
		index: make(map[string]struct{}, capacity),
		items: make([]business.Business, 0, capacity),
	}
}

// insert adds b unless its id is already present. It reports whether b was added.
func (o *orderedBusinesses) insert(b business.Business) bool {
	if _, ok := o.index[b.ID]; ok {
		return false
	}
	o.index[b.ID] = struct{}{}
	o.items = append(o.items, b)
	return true
}

// values returns the businesses in first-insertion order.
func (o *orderedBusinesses) values() []business.Business { return o.items }

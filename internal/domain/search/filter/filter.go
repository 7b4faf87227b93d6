package filter

import (
	"fmt"
	"slices"
	"strings"
)

// MaxValuesPerFilter is the maximum number of values in one listing filter.
const MaxValuesPerFilter = 32

// Listing holds the optional filters of a listing search.
type Listing struct {
	categories []string
	prices     []int
	attributes []string
	openNow    bool
}

// NewListing validates and normalizes listing filters.
// Blank and duplicate values are dropped; price levels outside 1-4 are
// ignored and the rest sorted ascending.
func NewListing(categories []string, prices []int, attributes []string, openNow bool) (Listing, error) {
	cats := cleanValues(categories)
	if len(cats) > MaxValuesPerFilter {
		return Listing{}, fmt.Errorf("too many categories (max %d)", MaxValuesPerFilter)
	}
	attrs := cleanValues(attributes)
	if len(attrs) > MaxValuesPerFilter {
		return Listing{}, fmt.Errorf("too many attributes (max %d)", MaxValuesPerFilter)
	}

	var levels []int
	for _, p := range prices {
		if p >= 1 && p <= 4 && !slices.Contains(levels, p) {
			levels = append(levels, p)
		}
	}
	slices.Sort(levels)

	return Listing{categories: cats, prices: levels, attributes: attrs, openNow: openNow}, nil
}

// Categories returns category aliases in request order.
func (l Listing) Categories() []string { return l.categories }

// Prices returns price levels 1-4, ascending.
func (l Listing) Prices() []int { return l.prices }

// Attributes returns attribute filters in request order.
func (l Listing) Attributes() []string { return l.attributes }

// OpenNow reports whether only open businesses are requested.
func (l Listing) OpenNow() bool { return l.openNow }

// IsEmpty reports whether no filter is set.
func (l Listing) IsEmpty() bool {
	return len(l.categories) == 0 && len(l.prices) == 0 && len(l.attributes) == 0 && !l.openNow
}

func cleanValues(in []string) []string {
	var out []string
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

package request

import (
	"strings"

	"github.com/gana36/YELPB/internal/domain"
	"github.com/gana36/YELPB/internal/domain/business"
	"github.com/gana36/YELPB/internal/domain/search/filter"
	"github.com/gana36/YELPB/internal/domain/search/sortby"
)

// Listing search limits imposed by the source.
const (
	MaxRadiusMeters = 40000
	MaxListingLimit = 50
	MaxOffset       = 1000
	DefaultTerm     = "restaurants"
)

// ListingParams are the raw inputs of a listing search.
type ListingParams struct {
	Coordinates *business.Coordinates
	Term        string
	Radius      int
	Categories  []string
	Price       []int
	OpenNow     bool
	Attributes  []string
	SortBy      sortby.SortBy
	Limit       int
	Offset      int
	Locale      string
}

// Listing is a validated listing search request with source bounds applied.
type Listing struct {
	coordinates business.Coordinates
	term        string
	radius      int
	filters     filter.Listing
	sortBy      sortby.SortBy
	limit       int
	offset      int
	locale      string
}

// NewListing validates and clamps listing parameters.
// Defaults: term=restaurants, sort_by=best_match, limit=50.
// Radius is capped at 40000m, limit at 50, offset at 1000.
func NewListing(p ListingParams) (Listing, error) {
	if p.Coordinates == nil {
		return Listing{}, domain.InvalidArgument("latitude and longitude are required")
	}
	term := strings.TrimSpace(p.Term)
	if term == "" {
		term = DefaultTerm
	}
	if len(term) > MaxQueryLength {
		return Listing{}, domain.InvalidArgument("term too long (max %d chars)", MaxQueryLength)
	}
	sb := p.SortBy
	if sb == "" {
		sb = sortby.BestMatch
	}
	if !sb.IsValid() {
		return Listing{}, domain.InvalidArgument("invalid sort_by: %q", sb)
	}
	filters, err := filter.NewListing(p.Categories, p.Price, p.Attributes, p.OpenNow)
	if err != nil {
		return Listing{}, domain.InvalidArgument("%s", err.Error())
	}
	loc, err := NormalizeLocale(p.Locale)
	if err != nil {
		return Listing{}, err
	}

	return Listing{
		coordinates: *p.Coordinates,
		term:        term,
		radius:      clamp(p.Radius, 0, MaxRadiusMeters),
		filters:     filters,
		sortBy:      sb,
		limit:       clampDefault(p.Limit, MaxListingLimit, MaxListingLimit),
		offset:      clamp(p.Offset, 0, MaxOffset),
		locale:      loc,
	}, nil
}

// Coordinates returns the search center.
func (l Listing) Coordinates() business.Coordinates { return l.coordinates }

// Term returns the search term.
func (l Listing) Term() string { return l.term }

// Radius returns the radius in meters; 0 means source default.
func (l Listing) Radius() int { return l.radius }

// Filters returns categories, prices, attributes and open_now.
func (l Listing) Filters() filter.Listing { return l.filters }

// SortBy returns the requested ordering.
func (l Listing) SortBy() sortby.SortBy { return l.sortBy }

// Limit returns the page size (1-50).
func (l Listing) Limit() int { return l.limit }

// Offset returns the page offset (0-1000).
func (l Listing) Offset() int { return l.offset }

// Locale returns the normalized locale.
func (l Listing) Locale() string { return l.locale }

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// clampDefault replaces non-positive v with def, then caps it at hi.
func clampDefault(v, def, hi int) int {
	if v <= 0 {
		v = def
	}
	return min(v, hi)
}

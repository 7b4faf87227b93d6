package request

import (
	"strings"

	"github.com/gana36/YELPB/internal/domain"
	"github.com/gana36/YELPB/internal/domain/business"
)

// Combined search defaults.
const (
	DefaultCombinedQuery = "best restaurants"
	DefaultCombinedLimit = 10
)

// CombinedParams are the raw inputs of a combined search.
type CombinedParams struct {
	Query       string
	Term        string
	Coordinates *business.Coordinates
	Radius      int
	Categories  []string
	Price       []int
	Limit       int
	Locale      string
}

// Combined carries the per-source requests of one combined search.
type Combined struct {
	chat    Chat
	listing Listing
}

// NewCombined validates a combined search and derives both source requests.
// Defaults: query="best restaurants", term="restaurants", limit=10.
func NewCombined(p CombinedParams) (Combined, error) {
	if p.Coordinates == nil {
		return Combined{}, domain.InvalidArgument("latitude and longitude are required")
	}
	query := strings.TrimSpace(p.Query)
	if query == "" {
		query = DefaultCombinedQuery
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultCombinedLimit
	}

	chat, err := NewChat(query, p.Coordinates, p.Locale, "")
	if err != nil {
		return Combined{}, err
	}
	listing, err := NewListing(ListingParams{
		Coordinates: p.Coordinates,
		Term:        p.Term,
		Radius:      p.Radius,
		Categories:  p.Categories,
		Price:       p.Price,
		Limit:       limit,
		Locale:      p.Locale,
	})
	if err != nil {
		return Combined{}, err
	}
	return Combined{chat: chat, listing: listing}, nil
}

// Chat returns the conversational branch request (never carries a chat id).
func (c Combined) Chat() Chat { return c.chat }

// Listing returns the listing branch request.
func (c Combined) Listing() Listing { return c.listing }

package search

import (
	"context"

	"github.com/gana36/YELPB/internal/domain/search/request"
	"github.com/gana36/YELPB/internal/domain/search/result"
)

// ConversationalSource answers natural-language queries and threads a
// conversation through a continuation token.
type ConversationalSource interface {
	Invoke(ctx context.Context, req request.Chat) (result.Chat, error)
}

// ListingSource runs structured, paginated listing searches.
type ListingSource interface {
	Search(ctx context.Context, req request.Listing) (result.Listing, error)
}

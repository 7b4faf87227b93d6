package yelp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gana36/YELPB/internal/domain/search/request"
	"github.com/gana36/YELPB/internal/domain/search/result"
	"github.com/gana36/YELPB/internal/metrics"
)

const listingPath = "/v3/businesses/search"

// ListingClient is the listing source.
type ListingClient struct {
	client *Client
}

// NewListingClient creates the listing source on a shared client.
func NewListingClient(c *Client) *ListingClient {
	return &ListingClient{client: c}
}

// Search runs one listing page. Bounds are already applied by request.NewListing.
func (c *ListingClient) Search(ctx context.Context, req request.Listing) (result.Listing, error) {
	u := c.client.baseURL + listingPath + "?" + listingParams(req).Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return result.Listing{}, fmt.Errorf("build listing request: %w", err)
	}

	body, err := c.client.do(ctx, SourceListing, httpReq)
	if err != nil {
		return result.Listing{}, err
	}

	env, err := envelope(SourceListing, body)
	if err != nil {
		return result.Listing{}, err
	}
	items, _ := env.Array("businesses")
	businesses, dropped := c.client.extractor.List(SourceListing, items)
	if dropped > 0 {
		metrics.SourceCandidatesDropped.WithLabelValues(SourceListing).Add(float64(dropped))
	}

	total := len(businesses)
	if n, ok := env.Number("total"); ok && n >= 0 {
		total = int(n)
	}
	return result.Listing{Businesses: businesses, Total: total}, nil
}

func listingParams(req request.Listing) url.Values {
	coords := req.Coordinates()
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	q.Set("term", req.Term())
	q.Set("sort_by", string(req.SortBy()))
	q.Set("limit", strconv.Itoa(req.Limit()))
	q.Set("offset", strconv.Itoa(req.Offset()))
	q.Set("locale", req.Locale())
	if req.Radius() > 0 {
		q.Set("radius", strconv.Itoa(req.Radius()))
	}

	f := req.Filters()
	if f.IsEmpty() {
		return q
	}
	if cats := f.Categories(); len(cats) > 0 {
		q.Set("categories", strings.Join(cats, ","))
	}
	if prices := f.Prices(); len(prices) > 0 {
		levels := make([]string, len(prices))
		for i, p := range prices {
			levels[i] = strconv.Itoa(p)
		}
		q.Set("price", strings.Join(levels, ","))
	}
	if f.OpenNow() {
		q.Set("open_now", "true")
	}
	if attrs := f.Attributes(); len(attrs) > 0 {
		q.Set("attributes", strings.Join(attrs, ","))
	}
	return q
}

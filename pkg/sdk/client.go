package yelpb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gana36/YELPB/internal/db"
	dbRedis "github.com/gana36/YELPB/internal/db/redis"
	"github.com/gana36/YELPB/internal/domain"
	"github.com/gana36/YELPB/internal/domain/business"
	"github.com/gana36/YELPB/internal/domain/search/request"
	"github.com/gana36/YELPB/internal/domain/search/result"
	"github.com/gana36/YELPB/internal/domain/search/sortby"
	usagerepo "github.com/gana36/YELPB/internal/repository/usage"
	"github.com/gana36/YELPB/internal/transport/yelp"
	healthuc "github.com/gana36/YELPB/internal/usecase/health"
	"github.com/gana36/YELPB/internal/usecase/quota"
	searchuc "github.com/gana36/YELPB/internal/usecase/search"
	usageuc "github.com/gana36/YELPB/internal/usecase/usage"
)

const defaultReadinessTimeout = 10 * time.Second

// Business is a normalized business record.
type Business = business.Business

// Coordinates is a geographic point.
type Coordinates = business.Coordinates

// Internal interface for substitution in tests.
type searchUseCase interface {
	Chat(ctx context.Context, req request.Chat) (result.Chat, error)
	Search(ctx context.Context, req request.Chat) ([]business.Business, error)
	Book(ctx context.Context, req request.Booking) (result.Chat, error)
	Listing(ctx context.Context, req request.Listing) (result.Listing, error)
	Combined(ctx context.Context, req request.Combined) ([]business.Business, error)
}

// Client is the yelpb SDK entry point.
type Client struct {
	store     db.Store
	searchSvc searchUseCase
	healthSvc healthUseCase
	usageSvc  usageUseCase
	obs       *observer
}

// New creates a Client. WithAPIKey is required; with WithRedis the quota
// store must become ready within ctx and a readiness timeout.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.apiKey == "" {
		return nil, errors.New("yelpb: api key required (use WithAPIKey)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if len(cfg.redisAddrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPass,
		})
		if err != nil {
			return nil, fmt.Errorf("yelpb: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("yelpb: quota store not ready: %w", err)
		}
		store = s
	}

	return wireClient(ctx, store, cfg, obs), nil
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) *Client {
	yc := yelp.NewClient(yelp.Config{
		APIKey:            cfg.apiKey,
		BaseURL:           cfg.baseURL,
		Timeout:           cfg.timeout,
		RequestsPerSecond: cfg.requestsPerSecond,
		Burst:             cfg.burst,
		HTTPClient:        cfg.httpClient,
	})

	action := quota.ActionWarn
	if cfg.rejectOver {
		action = quota.ActionReject
	}
	trackers := make([]*quota.Tracker, 0, 2)
	for _, source := range []string{yelp.SourceChat, yelp.SourceListing} {
		t := quota.NewTracker(source, cfg.redisPrefix, cfg.dailyLimit, action, zap.NewNop())
		if store != nil {
			t.WithStore(ctx, usagerepo.New(store, usagerepo.DefaultTTL))
		}
		trackers = append(trackers, t)
	}

	chat := quota.NewGuardedChat(yelp.NewChatClient(yc), yelp.SourceChat, trackers[0], nil)
	listing := quota.NewGuardedListing(yelp.NewListingClient(yc), yelp.SourceListing, trackers[1], nil)
	searchSvc := searchuc.New(chat, listing, nil).WithBranchTimeout(cfg.branchTimeout)

	// Pass nil interface (not typed nil pointer!) without a store.
	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}

	return &Client{
		store:     store,
		searchSvc: searchSvc,
		healthSvc: healthuc.New(pinger, nil),
		usageSvc:  usageuc.New(trackers[0], trackers[1]),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// ChatParams is one conversational turn. An empty ChatID starts a new conversation.
type ChatParams struct {
	Query     string
	ChatID    string
	Locale    string
	Latitude  *float64
	Longitude *float64
}

// ChatResult is the answer to one conversational turn.
type ChatResult struct {
	ResponseText string
	// ChatID continues the conversation on the next call.
	ChatID     string
	Businesses []Business
	Types      json.RawMessage
}

// Chat sends one conversational turn.
func (c *Client) Chat(ctx context.Context, p ChatParams) (_ ChatResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("chat", start, err) }()

	req, err := chatRequest(p, p.ChatID)
	if err != nil {
		return ChatResult{}, err
	}
	res, err := c.searchSvc.Chat(ctx, req)
	if err != nil {
		return ChatResult{}, err
	}
	return ChatResult{
		ResponseText: res.ResponseText,
		ChatID:       res.ChatID,
		Businesses:   res.Businesses,
		Types:        res.Types,
	}, nil
}

// Search runs a one-shot conversational search. ChatID is ignored.
func (c *Client) Search(ctx context.Context, p ChatParams) (_ []Business, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	req, err := chatRequest(p, "")
	if err != nil {
		return nil, err
	}
	return c.searchSvc.Search(ctx, req)
}

// BookingParams describes a table reservation. PartySize defaults to 2.
type BookingParams struct {
	BusinessName string
	PartySize    int
	Date         string
	Time         string
	Locale       string
	ChatID       string
	Latitude     *float64
	Longitude    *float64
}

// Book sends a reservation command through the conversational source.
func (c *Client) Book(ctx context.Context, p BookingParams) (_ ChatResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("book", start, err) }()

	coords, err := coordinates(p.Latitude, p.Longitude)
	if err != nil {
		return ChatResult{}, err
	}
	req, err := request.NewBooking(p.BusinessName, p.PartySize, p.Date, p.Time, coords, p.Locale, p.ChatID)
	if err != nil {
		return ChatResult{}, err
	}
	res, err := c.searchSvc.Book(ctx, req)
	if err != nil {
		return ChatResult{}, err
	}
	return ChatResult{
		ResponseText: res.ResponseText,
		ChatID:       res.ChatID,
		Businesses:   res.Businesses,
		Types:        res.Types,
	}, nil
}

// ListingParams is a structured listing search. Radius is capped at
// 40000m, Limit at 50 and Offset at 1000.
type ListingParams struct {
	Latitude   float64
	Longitude  float64
	Term       string
	Radius     int
	Categories []string
	Price      []int
	OpenNow    bool
	Attributes []string
	// SortBy is best_match (default), rating, review_count or distance.
	SortBy string
	Limit  int
	Offset int
	Locale string
}

// ListingPage is one page of listing results.
type ListingPage struct {
	Businesses []Business
	// Total counts all matches, not just this page.
	Total int
}

// Listing runs a single listing search page.
func (c *Client) Listing(ctx context.Context, p ListingParams) (_ ListingPage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("listing", start, err) }()

	coords, err := coordinates(&p.Latitude, &p.Longitude)
	if err != nil {
		return ListingPage{}, err
	}
	req, err := request.NewListing(request.ListingParams{
		Coordinates: coords,
		Term:        p.Term,
		Radius:      p.Radius,
		Categories:  p.Categories,
		Price:       p.Price,
		OpenNow:     p.OpenNow,
		Attributes:  p.Attributes,
		SortBy:      sortby.SortBy(p.SortBy),
		Limit:       p.Limit,
		Offset:      p.Offset,
		Locale:      p.Locale,
	})
	if err != nil {
		return ListingPage{}, err
	}
	res, err := c.searchSvc.Listing(ctx, req)
	if err != nil {
		return ListingPage{}, err
	}
	return ListingPage{Businesses: res.Businesses, Total: res.Total}, nil
}

// CombinedParams is a search over both sources. Query defaults to
// "best restaurants", Term to "restaurants" and Limit to 10.
type CombinedParams struct {
	Query      string
	Term       string
	Latitude   float64
	Longitude  float64
	Radius     int
	Categories []string
	Price      []int
	Limit      int
	Locale     string
}

// CombinedResult holds merged businesses, conversational first.
type CombinedResult struct {
	Businesses []Business
	// Degraded names the sources that failed and contributed nothing.
	Degraded []string
}

// Combined queries both sources concurrently and merges the results.
// A failed source degrades the result instead of failing the call.
func (c *Client) Combined(ctx context.Context, p CombinedParams) (_ CombinedResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("combined", start, err) }()

	coords, err := coordinates(&p.Latitude, &p.Longitude)
	if err != nil {
		return CombinedResult{}, err
	}
	req, err := request.NewCombined(request.CombinedParams{
		Query:       p.Query,
		Term:        p.Term,
		Coordinates: coords,
		Radius:      p.Radius,
		Categories:  p.Categories,
		Price:       p.Price,
		Limit:       p.Limit,
		Locale:      p.Locale,
	})
	if err != nil {
		return CombinedResult{}, err
	}

	ctx, usage := domain.NewContextWithSourceUsage(ctx)
	bs, err := c.searchSvc.Combined(ctx, req)
	if err != nil {
		return CombinedResult{}, err
	}
	return CombinedResult{Businesses: bs, Degraded: usage.Failed()}, nil
}

func chatRequest(p ChatParams, chatID string) (request.Chat, error) {
	coords, err := coordinates(p.Latitude, p.Longitude)
	if err != nil {
		return request.Chat{}, err
	}
	return request.NewChat(p.Query, coords, p.Locale, chatID)
}

func coordinates(lat, lon *float64) (*business.Coordinates, error) {
	if lat == nil && lon == nil {
		return nil, nil
	}
	if lat == nil || lon == nil {
		return nil, domain.InvalidArgument("latitude and longitude must be given together")
	}
	c, err := business.NewCoordinates(*lat, *lon)
	if err != nil {
		return nil, domain.InvalidArgument("%s", err.Error())
	}
	return &c, nil
}

package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gana36/YELPB/internal/domain"
	domassistant "github.com/gana36/YELPB/internal/domain/assistant"
	"github.com/gana36/YELPB/internal/domain/business"
	"github.com/gana36/YELPB/internal/domain/search/request"
)

// MaxTextLength bounds the text sent to the analyzer.
const MaxTextLength = 2000

// SearchInput is a free-text search near a point.
type SearchInput struct {
	Text        string
	Coordinates *business.Coordinates
	Locale      string
	Limit       int
}

// SearchResult is the analysis together with the businesses it found.
type SearchResult struct {
	Analysis    domassistant.Preferences
	SearchQuery string
	Businesses  []business.Business
}

// Service turns free text into preferences and preferences into searches.
type Service struct {
	analyzer Analyzer
	search   CombinedSearcher
	logger   *zap.Logger
}

// New creates a Service. A nil analyzer makes every call fail with domain.ErrNotConfigured.
func New(analyzer Analyzer, search CombinedSearcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{analyzer: analyzer, search: search, logger: logger}
}

// Analyze extracts preferences only, without searching.
func (s *Service) Analyze(ctx context.Context, text string) (domassistant.Preferences, error) {
	text, err := s.validate(text)
	if err != nil {
		return domassistant.Preferences{}, err
	}
	prefs, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		return domassistant.Preferences{}, fmt.Errorf("analyze: %w", err)
	}
	return prefs, nil
}

// Search analyzes the text, then runs a combined search with the analyzer's
// query and price range. Without an analyzer query the user's text is searched.
func (s *Service) Search(ctx context.Context, in SearchInput) (SearchResult, error) {
	if in.Coordinates == nil {
		return SearchResult{}, domain.InvalidArgument("latitude and longitude are required")
	}
	prefs, err := s.Analyze(ctx, in.Text)
	if err != nil {
		return SearchResult{}, err
	}

	query := prefs.Query(in.Text)
	req, err := request.NewCombined(request.CombinedParams{
		Query:       query,
		Term:        query,
		Coordinates: in.Coordinates,
		Price:       prefs.PriceLevels(),
		Limit:       in.Limit,
		Locale:      in.Locale,
	})
	if err != nil {
		return SearchResult{}, err
	}

	businesses, err := s.search.Combined(ctx, req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("assistant search: %w", err)
	}

	s.logger.Info("Assistant search completed",
		zap.String("search_query", query),
		zap.Int("businesses", len(businesses)),
	)
	return SearchResult{Analysis: prefs, SearchQuery: query, Businesses: businesses}, nil
}

func (s *Service) validate(text string) (string, error) {
	if s.analyzer == nil {
		return "", fmt.Errorf("assistant: %w", domain.ErrNotConfigured)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.InvalidArgument("text_query is required")
	}
	if len(text) > MaxTextLength {
		return "", domain.InvalidArgument("text_query too long (max %d chars)", MaxTextLength)
	}
	return text, nil
}

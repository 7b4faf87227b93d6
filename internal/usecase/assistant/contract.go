package assistant

import (
	"context"

	domassistant "github.com/gana36/YELPB/internal/domain/assistant"
	"github.com/gana36/YELPB/internal/domain/business"
	"github.com/gana36/YELPB/internal/domain/search/request"
)

// Analyzer extracts dining preferences from free text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (domassistant.Preferences, error)
}

// CombinedSearcher runs a reconciled search over both sources.
type CombinedSearcher interface {
	Combined(ctx context.Context, req request.Combined) ([]business.Business, error)
}

package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gana36/YELPB/internal/domain/business"
	"github.com/gana36/YELPB/internal/domain/search/request"
	"github.com/gana36/YELPB/internal/domain/search/result"
)

// DefaultBranchTimeout bounds each source call of a combined search.
const DefaultBranchTimeout = 30 * time.Second

// Service runs conversational, listing and combined restaurant searches.
type Service struct {
	chat          ConversationalSource
	listing       ListingSource
	branchTimeout time.Duration
	logger        *zap.Logger
}

// New creates a search service.
func New(chat ConversationalSource, listing ListingSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		chat:          chat,
		listing:       listing,
		branchTimeout: DefaultBranchTimeout,
		logger:        logger,
	}
}

// WithBranchTimeout overrides the per-branch timeout of combined searches.
func (s *Service) WithBranchTimeout(d time.Duration) *Service {
	if d > 0 {
		s.branchTimeout = d
	}
	return s
}

// Chat sends one turn of a conversation. The returned ChatID continues it.
func (s *Service) Chat(ctx context.Context, req request.Chat) (result.Chat, error) {
	res, err := s.chat.Invoke(ctx, req)
	if err != nil {
		return result.Chat{}, fmt.Errorf("chat: %w", err)
	}
	return res, nil
}

// Search runs a one-shot conversational search and returns only businesses.
func (s *Service) Search(ctx context.Context, req request.Chat) ([]business.Business, error) {
	res, err := s.chat.Invoke(ctx, req.OneShot())
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return res.Businesses, nil
}

// Book sends a reservation command through the conversational source.
func (s *Service) Book(ctx context.Context, req request.Booking) (result.Chat, error) {
	res, err := s.chat.Invoke(ctx, req.Chat())
	if err != nil {
		return result.Chat{}, fmt.Errorf("book reservation: %w", err)
	}
	s.logger.Info("Reservation command sent",
		zap.String("business", req.BusinessName()),
		zap.Int("party_size", req.PartySize()),
		zap.String("chat_id", res.ChatID),
	)
	return res, nil
}

// Listing runs a single listing search page.
func (s *Service) Listing(ctx context.Context, req request.Listing) (result.Listing, error) {
	res, err := s.listing.Search(ctx, req)
	if err != nil {
		return result.Listing{}, fmt.Errorf("listing search: %w", err)
	}
	return res, nil
}

package request

import (
	"strings"

	"github.com/gana36/YELPB/internal/domain"
	"github.com/gana36/YELPB/internal/domain/business"
)

// MaxQueryLength is the maximum allowed natural-language query length.
const MaxQueryLength = 4096

// Chat is a validated conversational search request.
type Chat struct {
	query       string
	coordinates *business.Coordinates
	locale      string
	chatID      string
}

// NewChat validates a conversational query. An empty chatID starts a new
// conversation; a non-empty one continues it.
func NewChat(query string, coords *business.Coordinates, locale, chatID string) (Chat, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Chat{}, domain.InvalidArgument("query is required")
	}
	if len(query) > MaxQueryLength {
		return Chat{}, domain.InvalidArgument("query too long (max %d chars)", MaxQueryLength)
	}
	loc, err := NormalizeLocale(locale)
	if err != nil {
		return Chat{}, err
	}
	return Chat{
		query:       query,
		coordinates: coords,
		locale:      loc,
		chatID:      strings.TrimSpace(chatID),
	}, nil
}

// Query returns the natural-language query.
func (c Chat) Query() string { return c.query }

// Coordinates returns the caller position, nil when unknown.
func (c Chat) Coordinates() *business.Coordinates { return c.coordinates }

// Locale returns the normalized locale, e.g. en_US.
func (c Chat) Locale() string { return c.locale }

// ChatID returns the continuation token, empty for a new conversation.
func (c Chat) ChatID() string { return c.chatID }

// OneShot returns a copy without a continuation token.
func (c Chat) OneShot() Chat {
	c.chatID = ""
	return c
}

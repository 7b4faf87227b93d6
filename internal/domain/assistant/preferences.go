// Package assistant holds dining preferences extracted from free text.
package assistant

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gana36/YELPB/internal/domain"
	"github.com/gana36/YELPB/internal/domain/business"
	"github.com/gana36/YELPB/internal/domain/entity"
)

// DefaultSearchQuery is used when neither the analyzer nor the user supplies one.
const DefaultSearchQuery = "restaurants"

// Preferences are what a text analyzer extracted from the user's message.
// Only explicitly mentioned preferences are set.
type Preferences struct {
	Cuisines    []string            `json:"cuisine_preferences"`
	Dietary     []string            `json:"dietary_restrictions"`
	Ambiance    []string            `json:"ambiance_preferences"`
	PriceRange  *business.PriceTier `json:"price_range,omitempty"`
	Intent      string              `json:"user_intent,omitempty"`
	SearchQuery string              `json:"unified_search_query,omitempty"`
	Confidence  *float64            `json:"confidence,omitempty"`
}

// ParsePreferences decodes analyzer output leniently. Models sometimes wrap
// JSON in a markdown fence and mix strings with arrays; unusable fields are
// left empty. Only output that is not a JSON object is an error.
func ParsePreferences(raw []byte) (Preferences, error) {
	c, ok := entity.ParseCandidate(stripFence(raw))
	if !ok {
		return Preferences{}, fmt.Errorf("analyzer output is not a JSON object: %w", domain.ErrAnalyzerError)
	}

	p := Preferences{
		Cuisines: nonNil(c.Strings("cuisine_preferences")),
		Dietary:  nonNil(firstStrings(c, "dietary_restrictions", "dietary_requirements")),
		Ambiance: nonNil(c.Strings("ambiance_preferences")),
	}
	if s, ok := c.String("price_range"); ok {
		if tier, ok := business.ParsePriceTier(s); ok {
			p.PriceRange = &tier
		}
	}
	p.Intent = firstString(c, "user_intent", "combined_intent")
	p.SearchQuery, _ = c.String("unified_search_query")
	if f, ok := c.Number("confidence"); ok && f >= 0 && f <= 1 {
		p.Confidence = &f
	}
	return p, nil
}

// Query returns the search query to run: the analyzer's, else the
// user's own text, else DefaultSearchQuery.
func (p Preferences) Query(fallback string) string {
	if p.SearchQuery != "" {
		return p.SearchQuery
	}
	if s := strings.TrimSpace(fallback); s != "" {
		return s
	}
	return DefaultSearchQuery
}

// PriceLevels converts the price range into listing price filter levels.
func (p Preferences) PriceLevels() []int {
	if p.PriceRange == nil {
		return nil
	}
	return []int{p.PriceRange.Level()}
}

func stripFence(raw []byte) []byte {
	raw = bytes.TrimSpace(raw)
	if !bytes.HasPrefix(raw, []byte("```")) {
		return raw
	}
	raw = bytes.TrimPrefix(raw, []byte("```"))
	raw = bytes.TrimPrefix(raw, []byte("json"))
	raw = bytes.TrimSuffix(bytes.TrimSpace(raw), []byte("```"))
	return bytes.TrimSpace(raw)
}

func firstStrings(c entity.Candidate, keys ...string) []string {
	for _, k := range keys {
		if v := c.Strings(k); len(v) > 0 {
			return v
		}
	}
	return nil
}

func firstString(c entity.Candidate, keys ...string) string {
	for _, k := range keys {
		if s, ok := c.String(k); ok {
			return s
		}
	}
	return ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

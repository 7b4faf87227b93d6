package assistant

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gana36/YELPB/internal/domain"
)

func TestParsePreferences_Full(t *testing.T) {
	p, err := ParsePreferences([]byte(`{
		"cuisine_preferences": ["Italian", "Japanese"],
		"price_range": "$$",
		"ambiance_preferences": "Romantic",
		"dietary_restrictions": ["Vegetarian"],
		"user_intent": "date night",
		"unified_search_query": "romantic italian restaurant",
		"confidence": 0.8
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(p.Cuisines, []string{"Italian", "Japanese"}) {
		t.Errorf("cuisines = %v", p.Cuisines)
	}
	if !reflect.DeepEqual(p.Ambiance, []string{"Romantic"}) {
		t.Errorf("ambiance = %v", p.Ambiance)
	}
	if p.PriceRange == nil || *p.PriceRange != "$$" {
		t.Errorf("price = %v", p.PriceRange)
	}
	if !reflect.DeepEqual(p.PriceLevels(), []int{2}) {
		t.Errorf("price levels = %v", p.PriceLevels())
	}
	if p.Intent != "date night" || p.SearchQuery != "romantic italian restaurant" {
		t.Errorf("intent=%q query=%q", p.Intent, p.SearchQuery)
	}
	if p.Confidence == nil || *p.Confidence != 0.8 {
		t.Errorf("confidence = %v", p.Confidence)
	}
}

func TestParsePreferences_FencedAndSparse(t *testing.T) {
	p, err := ParsePreferences([]byte("```json\n{\"price_range\": \"cheap\", \"dietary_requirements\": \"Vegan\", \"confidence\": 4}\n```"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PriceRange != nil || p.PriceLevels() != nil {
		t.Errorf("non-tier price should be dropped, got %v", p.PriceRange)
	}
	if !reflect.DeepEqual(p.Dietary, []string{"Vegan"}) {
		t.Errorf("dietary = %v", p.Dietary)
	}
	if p.Cuisines == nil || len(p.Cuisines) != 0 {
		t.Errorf("cuisines should be an empty slice, got %#v", p.Cuisines)
	}
	if p.Confidence != nil {
		t.Errorf("out-of-range confidence should be dropped, got %v", *p.Confidence)
	}
}

func TestParsePreferences_NotAnObject(t *testing.T) {
	for _, in := range []string{`I think you want pizza`, `["pizza"]`, ``} {
		if _, err := ParsePreferences([]byte(in)); !errors.Is(err, domain.ErrAnalyzerError) {
			t.Errorf("%q: expected ErrAnalyzerError, got %v", in, err)
		}
	}
}

func TestPreferences_QueryFallback(t *testing.T) {
	if got := (Preferences{SearchQuery: "ramen"}).Query("noodles please"); got != "ramen" {
		t.Errorf("analyzer query should win, got %q", got)
	}
	if got := (Preferences{}).Query("  noodles please "); got != "noodles please" {
		t.Errorf("user text fallback, got %q", got)
	}
	if got := (Preferences{}).Query(""); got != DefaultSearchQuery {
		t.Errorf("default fallback, got %q", got)
	}
}

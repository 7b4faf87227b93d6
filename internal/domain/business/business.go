package business

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gana36/YELPB/internal/domain/geo"
)

// PriceTier is a relative price level: one to four dollar signs.
type PriceTier string

// Known price tiers.
const (
	PriceCheap     PriceTier = "$"
	PriceModerate  PriceTier = "$$"
	PriceExpensive PriceTier = "$$$"
	PriceLuxury    PriceTier = "$$$$"
)

// ParsePriceTier accepts "$".."$$$$" (surrounding spaces ignored).
func ParsePriceTier(s string) (PriceTier, bool) {
	p := PriceTier(strings.TrimSpace(s))
	switch p {
	case PriceCheap, PriceModerate, PriceExpensive, PriceLuxury:
		return p, true
	}
	return "", false
}

// Level returns the numeric level 1-4 used by listing filters.
func (p PriceTier) Level() int { return len(p) }

// Coordinates is a geographic point. It is either fully present or absent.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinates validates a latitude/longitude pair.
func NewCoordinates(lat, lon float64) (Coordinates, error) {
	if !geo.ValidPoint(lat, lon) {
		return Coordinates{}, fmt.Errorf("coordinates out of range: %v,%v", lat, lon)
	}
	return Coordinates{Latitude: lat, Longitude: lon}, nil
}

// Business is the normalized business record emitted to callers.
// Name is always set; ID is unique within one result set.
type Business struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Rating      *float64        `json:"rating,omitempty"`
	ReviewCount int             `json:"review_count"`
	Price       *PriceTier      `json:"price,omitempty"`
	Distance    *string         `json:"distance,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
	Tags        []string        `json:"tags"`
	Votes       int             `json:"votes"`
	Location    json.RawMessage `json:"location,omitempty"`
	Coordinates *Coordinates    `json:"coordinates,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	URL         *string         `json:"url,omitempty"`
	MenuURL     *string         `json:"menu_url,omitempty"`
	Categories  json.RawMessage `json:"categories,omitempty"`
}

// FormatDistance renders a source distance in meters as "X.Y mi".
func FormatDistance(meters float64) string {
	return geo.FormatMiles(meters)
}

// IDs returns the ids of bs in order.
func IDs(bs []Business) []string {
	ids := make([]string, len(bs))
	for i := range bs {
		ids[i] = bs[i].ID
	}
	return ids
}

package entity

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/gana36/YELPB/internal/domain/business"
)

// Extract converts one candidate into a normalized business.
// It returns false when the candidate carries no name. Missing or
// malformed optional fields never fail extraction; they are left absent.
func Extract(c Candidate) (business.Business, bool) {
	name, ok := c.String("name")
	if !ok {
		return business.Business{}, false
	}

	b := business.Business{
		Name:        name,
		Tags:        tags(c),
		Coordinates: coordinates(c),
		Location:    c.Raw("location"),
		Categories:  c.Raw("categories"),
		ImageURL:    imageURL(c),
		MenuURL:     menuURL(c),
		Phone:       firstString(c, "phone", "display_phone"),
		URL:         firstString(c, "url"),
	}
	b.ID = DeriveID(c, name, b.Coordinates)

	if r, ok := c.Number("rating"); ok && r >= 0 && r <= 5 {
		b.Rating = &r
	}
	if n, ok := c.Number("review_count"); ok && n >= 0 {
		b.ReviewCount = int(n)
	}
	if s, ok := c.String("price"); ok {
		if p, ok := business.ParsePriceTier(s); ok {
			b.Price = &p
		}
	}
	// zero meters is a real distance
	if m, ok := c.Number("distance"); ok && m >= 0 {
		d := business.FormatDistance(m)
		b.Distance = &d
	}
	return b, true
}

func tags(c Candidate) []string {
	out := []string{}
	items, ok := c.Array("categories")
	if !ok {
		return out
	}
	for _, item := range items {
		cat, ok := asObject(item)
		if !ok {
			continue
		}
		if title, ok := cat.String("title"); ok {
			out = append(out, title)
		}
	}
	return out
}

func coordinates(c Candidate) *business.Coordinates {
	obj, ok := c.Object("coordinates")
	if !ok {
		return nil
	}
	lat, okLat := obj.Number("latitude")
	lon, okLon := obj.Number("longitude")
	if !okLat || !okLon {
		return nil
	}
	coords, err := business.NewCoordinates(lat, lon)
	if err != nil {
		return nil
	}
	return &coords
}

// imageURL: image_url, then contextual_info.photos[0], then photos[0].
func imageURL(c Candidate) *string {
	if s, ok := c.String("image_url"); ok {
		return &s
	}
	if info, ok := c.Object("contextual_info"); ok {
		if s, ok := firstPhoto(info); ok {
			return &s
		}
	}
	if s, ok := firstPhoto(c); ok {
		return &s
	}
	return nil
}

// firstPhoto reads photos[0] as either {"original_url": ...} or a bare URL.
func firstPhoto(c Candidate) (string, bool) {
	photos, ok := c.Array("photos")
	if !ok || len(photos) == 0 {
		return "", false
	}
	if obj, ok := asObject(photos[0]); ok {
		return obj.String("original_url")
	}
	return asString(photos[0])
}

func menuURL(c Candidate) *string {
	if attrs, ok := c.Object("attributes"); ok {
		if s, ok := attrs.String("MenuUrl"); ok {
			return &s
		}
	}
	return firstString(c, "menu_url")
}

func firstString(c Candidate, keys ...string) *string {
	for _, k := range keys {
		if s, ok := c.String(k); ok {
			return &s
		}
	}
	return nil
}

// Extractor applies Extract over payloads, isolating each candidate.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an extractor that logs dropped candidates.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Entities flattens an entities payload and extracts every candidate in it.
// It also reports how many candidates were dropped.
func (e *Extractor) Entities(source string, entities json.RawMessage) ([]business.Business, int) {
	candidates, shape := Flatten(entities)
	if shape == ShapeUnrecognized {
		e.logger.Warn("unrecognized entities shape, no businesses extracted",
			zap.String("source", source),
			zap.Int("payload_bytes", len(entities)),
		)
	}
	out := e.All(source, candidates)
	return out, len(candidates) - len(out)
}

// List extracts businesses from a flat list of raw business objects and
// reports how many items were dropped.
func (e *Extractor) List(source string, items []json.RawMessage) ([]business.Business, int) {
	out := e.All(source, FlattenList(items))
	return out, len(items) - len(out)
}

// All extracts candidates in order. A candidate that has no name, or whose
// extraction fails, is dropped without affecting the others. Ids are unique
// in the result: the first business with a given id is kept.
func (e *Extractor) All(source string, candidates []Candidate) []business.Business {
	out := make([]business.Business, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for i, c := range candidates {
		b, ok, err := safeExtract(c)
		if err != nil {
			e.logger.Warn("candidate extraction failed",
				zap.String("source", source),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			e.logger.Debug("candidate without name skipped",
				zap.String("source", source),
				zap.Int("index", i),
			)
			continue
		}
		if _, dup := seen[b.ID]; dup {
			e.logger.Debug("duplicate business skipped",
				zap.String("source", source),
				zap.String("id", b.ID),
			)
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}
	return out
}

func safeExtract(c Candidate) (b business.Business, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract: %v", r)
		}
	}()
	b, ok = Extract(c)
	return b, ok, nil
}

package entity

import (
	"bytes"
	"encoding/json"
)

// Shape names the top-level layout of an entities payload.
type Shape string

// Recognized and fallback shapes.
const (
	ShapeAbsent       Shape = "absent"
	ShapeList         Shape = "list"
	ShapeWrapper      Shape = "wrapper"
	ShapeSingle       Shape = "single"
	ShapeKeyed        Shape = "keyed"
	ShapeUnrecognized Shape = "unrecognized"
)

// maxWrapperDepth bounds how deep container objects are unwrapped.
const maxWrapperDepth = 8

// topLevelDecoder turns one payload layout into a sequence of raw entities.
type topLevelDecoder struct {
	shape  Shape
	decode func(json.RawMessage) ([]json.RawMessage, bool)
}

// Tried in order; the first decoder that accepts the payload wins.
var topLevelDecoders = []topLevelDecoder{
	{shape: ShapeList, decode: asArray},
	{shape: ShapeWrapper, decode: whenObject(unwrapContainer)},
	{shape: ShapeSingle, decode: whenObject(directBusiness)},
	{shape: ShapeKeyed, decode: objectValues},
}

// entityDecoder appends the candidates found in one entity. It returns false
// when the entity is not its shape, so the next decoder is tried.
type entityDecoder func(c Candidate, depth int, out []Candidate) ([]Candidate, bool)

var entityDecoders []entityDecoder

func init() {
	entityDecoders = []entityDecoder{unwrapContainer, directBusiness}
}

// Flatten returns every business candidate in an entities payload in
// document order, unwrapping container entities. Payloads in no known
// layout yield no candidates and ShapeUnrecognized.
func Flatten(entities json.RawMessage) ([]Candidate, Shape) {
	if isNull(entities) {
		return nil, ShapeAbsent
	}
	for _, d := range topLevelDecoders {
		items, ok := d.decode(entities)
		if !ok {
			continue
		}
		var out []Candidate
		for _, item := range items {
			out = flattenEntity(item, 0, out)
		}
		return out, d.shape
	}
	return nil, ShapeUnrecognized
}

// FlattenList treats items as a list of entities, as a listing response carries them.
func FlattenList(items []json.RawMessage) []Candidate {
	var out []Candidate
	for _, item := range items {
		out = flattenEntity(item, 0, out)
	}
	return out
}

func flattenEntity(raw json.RawMessage, depth int, out []Candidate) []Candidate {
	if depth > maxWrapperDepth {
		return out
	}
	c, ok := asObject(raw)
	if !ok {
		return out
	}
	for _, d := range entityDecoders {
		if next, ok := d(c, depth, out); ok {
			return next
		}
	}
	return out
}

func unwrapContainer(c Candidate, depth int, out []Candidate) ([]Candidate, bool) {
	items, ok := c.Array("businesses")
	if !ok {
		return out, false
	}
	for _, item := range items {
		out = flattenEntity(item, depth+1, out)
	}
	return out, true
}

func directBusiness(c Candidate, _ int, out []Candidate) ([]Candidate, bool) {
	if !c.Has("name") {
		return out, false
	}
	return append(out, c), true
}

// whenObject accepts a top-level object that the entity decoder d recognizes,
// yielding it as the only entity.
func whenObject(d entityDecoder) func(json.RawMessage) ([]json.RawMessage, bool) {
	return func(raw json.RawMessage) ([]json.RawMessage, bool) {
		c, ok := asObject(raw)
		if !ok {
			return nil, false
		}
		if _, ok := d(c, 0, nil); !ok {
			return nil, false
		}
		return []json.RawMessage{raw}, true
	}
}

// objectValues decodes a JSON object's values in document key order.
func objectValues(raw json.RawMessage) ([]json.RawMessage, bool) {
	if firstByte(raw) != '{' {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, false
	}
	var values []json.RawMessage
	for dec.More() {
		if _, err := dec.Token(); err != nil { // key
			return nil, false
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, false
	}
	return values, true
}

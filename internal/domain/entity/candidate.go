package entity

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Candidate is one raw, business-like JSON object from a source payload.
// Field values stay undecoded until an accessor asks for them, so a
// malformed field only affects that field.
type Candidate map[string]json.RawMessage

// ParseCandidate decodes a JSON object into a Candidate.
func ParseCandidate(raw json.RawMessage) (Candidate, bool) {
	return asObject(raw)
}

// Has reports whether key is present and not null.
func (c Candidate) Has(key string) bool {
	raw, ok := c[key]
	return ok && !isNull(raw)
}

// String returns a non-blank string field.
func (c Candidate) String(key string) (string, bool) {
	return asString(c[key])
}

// Identifier is String that also accepts numeric ids.
func (c Candidate) Identifier(key string) (string, bool) {
	raw := c[key]
	if s, ok := asString(raw); ok {
		return s, true
	}
	switch firstByte(raw) {
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", false
		}
		return n.String(), true
	}
	return "", false
}

// Number returns a numeric field, tolerating string-encoded numbers.
func (c Candidate) Number(key string) (float64, bool) {
	return asNumber(c[key])
}

// Object returns a nested object field.
func (c Candidate) Object(key string) (Candidate, bool) {
	return asObject(c[key])
}

// Array returns an array field.
func (c Candidate) Array(key string) ([]json.RawMessage, bool) {
	return asArray(c[key])
}

// Strings reads a single string or an array of strings, skipping blanks
// and non-string items. It returns nil when nothing usable is present.
func (c Candidate) Strings(key string) []string {
	if s, ok := asString(c[key]); ok {
		return []string{s}
	}
	items, ok := asArray(c[key])
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := asString(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// Raw returns the undecoded field, or nil when absent or null.
func (c Candidate) Raw(key string) json.RawMessage {
	raw, ok := c[key]
	if !ok || isNull(raw) {
		return nil
	}
	return raw
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func firstByte(raw json.RawMessage) byte {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return 0
	}
	return t[0]
}

func asString(raw json.RawMessage) (string, bool) {
	if firstByte(raw) != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func asNumber(raw json.RawMessage) (float64, bool) {
	switch firstByte(raw) {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func asObject(raw json.RawMessage) (Candidate, bool) {
	if firstByte(raw) != '{' {
		return nil, false
	}
	var c Candidate
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, false
	}
	return c, true
}

func asArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	if firstByte(raw) != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

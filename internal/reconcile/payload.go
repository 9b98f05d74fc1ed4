package reconcile

import (
	"math"
	"strconv"
	"strings"
)

// Payload wraps one decoded LLM JSON object. It is the tagged boundary type
// for untyped model output: accessors tolerate missing keys, wrong-typed
// values, and extra unknown keys, reading any malformed shape as absent.
// Untyped values never propagate past this package.
type Payload map[string]any

// List returns the value under key when it is a JSON array, nil otherwise.
func (p Payload) List(key string) []any {
	if p == nil {
		return nil
	}
	items, ok := p[key].([]any)
	if !ok {
		return nil
	}
	return items
}

// Text returns the trimmed string value under key, coercing JSON numbers.
// Missing or non-scalar values read as fallback.
func (p Payload) Text(key, fallback string) string {
	if p == nil {
		return fallback
	}
	s, ok := coerceString(p[key])
	if !ok {
		return fallback
	}
	if trimmed := strings.TrimSpace(s); trimmed != "" {
		return trimmed
	}
	return fallback
}

// coerceString accepts strings and JSON numbers. Everything else (booleans,
// nulls, nested containers) is rejected rather than stringified.
func coerceString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	}
	return "", false
}

// textField reads a trimmable string field from a raw object.
func textField(obj map[string]any, key string) string {
	s, _ := coerceString(obj[key])
	return s
}

// intField reads a count field, treating anything unparsable as zero.
// Counts are never negative, so declared negatives clamp to zero.
func intField(obj map[string]any, key string) int {
	n := 0
	switch v := obj[key].(type) {
	case float64:
		n = int(v)
	case int:
		n = v
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			n = parsed
		}
	}
	return max(n, 0)
}

// stringList coerces a raw value into a string slice, dropping elements that
// are neither strings nor numbers.
func stringList(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := coerceString(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// stringOnlyList is stringList restricted to genuine strings; organisation
// names are never numeric.
func stringOnlyList(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

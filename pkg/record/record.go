// Package record reads fields out of the loosely typed records returned by
// the campus-services backend.
package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is one backend object decoded from JSON. Records are never mutated
// by list views; they only read fields named by page configuration.
type Record map[string]any

// Lookup resolves a dotted field path such as "user.name".
func (r Record) Lookup(path string) (any, bool) {
	if r == nil || path == "" {
		return nil, false
	}
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	default:
		return nil, false
	}
}

// ID returns the record identifier, preferring the Mongo-style "_id".
func (r Record) ID() string {
	for _, key := range []string{"_id", "id"} {
		if s := r.String(key); s != "" {
			return s
		}
	}
	return ""
}

// String renders a scalar field as text. Missing fields and nested objects
// render as the empty string.
func (r Record) String(path string) string {
	v, ok := r.Lookup(path)
	if !ok {
		return ""
	}
	return Text(v)
}

// Text renders a decoded JSON scalar the way the backend would print it.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := Text(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// IsText reports whether the field holds a JSON string.
func (r Record) IsText(path string) bool {
	v, ok := r.Lookup(path)
	if !ok {
		return false
	}
	_, isString := v.(string)
	return isString
}

// Number reads a numeric field. Strings holding numbers are accepted;
// anything else (including NaN and infinities) reports false.
func (r Record) Number(path string) (float64, bool) {
	v, ok := r.Lookup(path)
	if !ok {
		return 0, false
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Time reads a timestamp field, either an ISO-8601 string or epoch
// milliseconds.
func (r Record) Time(path string) (time.Time, bool) {
	v, ok := r.Lookup(path)
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case string:
		parsed, err := ParseTime(t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	case time.Time:
		return t, !t.IsZero()
	}
	ms, ok := r.Number(path)
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

// CreatedAt is shorthand for Time("createdAt").
func (r Record) CreatedAt() (time.Time, bool) {
	return r.Time("createdAt")
}

var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts the ISO-8601 shapes the backend emits. Layouts without a
// zone are read as UTC.
func ParseTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, firstErr
}

// FormatTime renders a timestamp for display.
func FormatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format("2006-01-02 15:04")
}

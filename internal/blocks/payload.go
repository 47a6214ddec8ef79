package blocks

import (
	"encoding/json"
	"strconv"
	"strings"

	"sitepages/internal/domain"
)

// Payload reads block data with an explicit default at every read site.
// Absent keys and values of the wrong shape both yield the default.
type Payload domain.BlockData

// String returns the string at key, formatting numbers and booleans.
func (p Payload) String(key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return def
	}
}

// Text is String that also treats blank values as absent.
func (p Payload) Text(key, def string) string {
	s := strings.TrimSpace(p.String(key, ""))
	if s == "" {
		return def
	}
	return s
}

// Bool returns the boolean at key. The strings "true" and "false" are accepted.
func (p Payload) Bool(key string, def bool) bool {
	switch t := p[key].(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(t); err == nil {
			return b
		}
	}
	return def
}

// Int returns the integer at key. Numeric strings are accepted.
func (p Payload) Int(key string, def int) int {
	switch t := p[key].(type) {
	case float64:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return def
}

// Map returns the object at key.
func (p Payload) Map(key string) (Payload, bool) {
	switch t := p[key].(type) {
	case map[string]any:
		return Payload(t), true
	case domain.BlockData:
		return Payload(t), true
	}
	return nil, false
}

// List returns the objects of the list at key, skipping non-object entries.
func (p Payload) List(key string) []Payload {
	var out []Payload
	switch t := p[key].(type) {
	case []any:
		for _, v := range t {
			if m, ok := v.(map[string]any); ok {
				out = append(out, Payload(m))
			}
		}
	case []map[string]any:
		for _, m := range t {
			out = append(out, Payload(m))
		}
	}
	return out
}

// Strings returns the non-empty strings of the list at key.
func (p Payload) Strings(key string) []string {
	var out []string
	switch t := p[key].(type) {
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range t {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// clampColumns bounds a grid column count.
func clampColumns(n, def int) int {
	if n < 1 || n > 6 {
		return def
	}
	return n
}

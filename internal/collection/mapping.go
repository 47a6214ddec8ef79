package collection

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"sitepages/internal/domain"
)

// itemFromMap builds an item from a decoded record using fields.
func itemFromMap(m map[string]any, fields FieldMap) domain.CollectionItem {
	return domain.CollectionItem{
		ID:          toString(lookup(m, fields.ID)),
		Title:       toString(lookup(m, fields.Title)),
		Slug:        toString(lookup(m, fields.Slug)),
		ImageURL:    toString(lookup(m, fields.ImageURL)),
		Content:     toString(lookup(m, fields.Content)),
		PublishedAt: toTime(lookup(m, fields.PublishedAt)),
	}
}

// lookup resolves a dot-separated key into nested maps.
func lookup(m map[string]any, key string) any {
	if key == "" {
		return nil
	}
	if v, ok := m[key]; ok {
		return v
	}
	return navigatePath(m, key)
}

// navigatePath walks a dot-separated path into nested maps.
func navigatePath(obj any, path string) any {
	current := obj
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

// itemsFromJSON converts a decoded JSON value into items.
func itemsFromJSON(raw any, dataPath string, fields FieldMap) ([]domain.CollectionItem, error) {
	if dataPath != "" {
		raw = navigatePath(raw, dataPath)
	}
	list, ok := raw.([]any)
	if !ok {
		if raw == nil {
			return nil, fmt.Errorf("data path %q not found", dataPath)
		}
		return nil, fmt.Errorf("expected a JSON array, got %T", raw)
	}
	items := make([]domain.CollectionItem, 0, len(list))
	for _, entry := range list {
		if m, ok := entry.(map[string]any); ok {
			items = append(items, itemFromMap(m, fields))
		}
	}
	return items, nil
}

// mostRecent orders items newest first and keeps at most count.
func mostRecent(items []domain.CollectionItem, count int) []domain.CollectionItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if len(items) > count {
		items = items[:count]
	}
	return items
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	case []byte:
		return toTime(string(t))
	case float64:
		return time.Unix(int64(t), 0).UTC()
	case int64:
		return time.Unix(t, 0).UTC()
	}
	return time.Time{}
}

package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"sitepages/internal/domain"
)

// JSONFileSource reads items from a local JSON file on every query.
type JSONFileSource struct {
	path     string
	dataPath string
	fields   FieldMap
}

func NewJSONFileSource(path, dataPath string, fields FieldMap) (*JSONFileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("file is required")
	}
	return &JSONFileSource{path: path, dataPath: dataPath, fields: fields.WithDefaults()}, nil
}

func (s *JSONFileSource) QueryRecent(ctx context.Context, entity string, count int) ([]domain.CollectionItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, NewSourceError(KindJSONFile, "read", entity, err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, NewSourceError(KindJSONFile, "decode", entity, err)
	}
	items, err := itemsFromJSON(raw, s.dataPath, s.fields)
	if err != nil {
		return nil, NewSourceError(KindJSONFile, "decode", entity, err)
	}
	return mostRecent(items, count), nil
}

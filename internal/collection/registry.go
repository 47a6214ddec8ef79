package collection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"sitepages/internal/domain"
)

// Registry routes queries to the source bound to each entity.
// Populate it at startup; it is read-only afterwards.
type Registry struct {
	sources map[string]named
}

type named struct {
	kind   string
	source domain.CollectionSource
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]named)}
}

// Register binds entity to source. kind names the source in errors and logs.
func (r *Registry) Register(entity, kind string, source domain.CollectionSource) {
	r.sources[entity] = named{kind: kind, source: source}
}

// Entities lists bound entities in name order.
func (r *Registry) Entities() []string {
	out := make([]string, 0, len(r.sources))
	for e := range r.sources {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Kind returns the source kind bound to entity.
func (r *Registry) Kind(entity string) string {
	return r.sources[entity].kind
}

// QueryRecent queries the source bound to entity. Errors are SourceErrors.
// A count of zero or less yields no items without touching the source.
func (r *Registry) QueryRecent(ctx context.Context, entity string, count int) ([]domain.CollectionItem, error) {
	n, ok := r.sources[entity]
	if !ok {
		return nil, &SourceError{Source: "registry", Operation: "lookup", Entity: entity, Err: ErrUnknownEntity}
	}
	if count <= 0 {
		return []domain.CollectionItem{}, nil
	}
	items, err := n.source.QueryRecent(ctx, entity, count)
	if err != nil {
		return nil, asSourceError(n.kind, entity, err)
	}
	if len(items) > count {
		items = items[:count]
	}
	return items, nil
}

// Close closes every source that holds resources.
func (r *Registry) Close() error {
	var errs []error
	for entity, n := range r.sources {
		if c, ok := n.source.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s source: %w", entity, err))
			}
		}
	}
	return errors.Join(errs...)
}

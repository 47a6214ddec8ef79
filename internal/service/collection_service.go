package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sitepages/internal/collection"
	"sitepages/internal/domain"
)

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrCollectionReadOnly = errors.New("collection is not locally managed")
	ErrItemIDRequired     = errors.New("item id is required")
)

// ─────────────────────────────────────────────────────────────
// Collection Service: locally managed collection items
// ─────────────────────────────────────────────────────────────

// CollectionWriter persists locally managed collection items.
type CollectionWriter interface {
	Upsert(ctx context.Context, entity string, item domain.CollectionItem) error
	SetPublished(ctx context.Context, entity, id string, published bool) error
	Delete(ctx context.Context, entity, id string) error
}

// CollectionCatalog reports which entities are bound and to what kind of source.
type CollectionCatalog interface {
	Entities() []string
	Kind(entity string) string
}

// CacheInvalidator drops cached query results of an entity.
type CacheInvalidator interface {
	InvalidateEntity(entity string)
}

// CollectionInfo describes one bound entity.
type CollectionInfo struct {
	Entity   string `json:"entity"`
	Kind     string `json:"kind"`
	Writable bool   `json:"writable"`
}

type CollectionServiceOptions struct {
	Emitter EventEmitter
	Logger  zerolog.Logger
}

// CollectionService edits items of entities served from the local store.
// Every change drops the entity's cached results so dynamic blocks show it
// on the next render.
type CollectionService struct {
	store   CollectionWriter
	catalog CollectionCatalog
	cache   CacheInvalidator
	emitter EventEmitter
	log     zerolog.Logger
}

func NewCollectionService(store CollectionWriter, catalog CollectionCatalog, cache CacheInvalidator, opts CollectionServiceOptions) *CollectionService {
	if opts.Emitter == nil {
		opts.Emitter = NewLogEmitter(opts.Logger)
	}
	return &CollectionService{
		store:   store,
		catalog: catalog,
		cache:   cache,
		emitter: opts.Emitter,
		log:     opts.Logger.With().Str("component", "collections").Logger(),
	}
}

// List returns every bound entity in name order.
func (s *CollectionService) List() []CollectionInfo {
	entities := s.catalog.Entities()
	out := make([]CollectionInfo, 0, len(entities))
	for _, e := range entities {
		kind := s.catalog.Kind(e)
		out = append(out, CollectionInfo{Entity: e, Kind: kind, Writable: kind == collection.KindLocal})
	}
	return out
}

// Upsert stores item under entity and returns what was stored.
func (s *CollectionService) Upsert(ctx context.Context, entity string, item domain.CollectionItem) (domain.CollectionItem, error) {
	if err := s.writable(entity); err != nil {
		return item, err
	}
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		return item, ErrItemIDRequired
	}
	if item.PublishedAt.IsZero() {
		item.PublishedAt = time.Now().UTC()
	}
	if err := s.store.Upsert(ctx, entity, item); err != nil {
		return item, err
	}
	s.changed(ctx, entity, item.ID, "upserted")
	return item, nil
}

// SetPublished hides or shows an item.
func (s *CollectionService) SetPublished(ctx context.Context, entity, id string, published bool) error {
	if err := s.writable(entity); err != nil {
		return err
	}
	if err := s.store.SetPublished(ctx, entity, id, published); err != nil {
		return err
	}
	action := "hidden"
	if published {
		action = "published"
	}
	s.changed(ctx, entity, id, action)
	return nil
}

// Delete removes an item.
func (s *CollectionService) Delete(ctx context.Context, entity, id string) error {
	if err := s.writable(entity); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, entity, id); err != nil {
		return err
	}
	s.changed(ctx, entity, id, "deleted")
	return nil
}

func (s *CollectionService) writable(entity string) error {
	switch kind := s.catalog.Kind(entity); kind {
	case "":
		return fmt.Errorf("%s: %w", entity, ErrCollectionNotFound)
	case collection.KindLocal:
		return nil
	default:
		return fmt.Errorf("%s (%s): %w", entity, kind, ErrCollectionReadOnly)
	}
}

func (s *CollectionService) changed(ctx context.Context, entity, id, action string) {
	s.cache.InvalidateEntity(entity)
	s.log.Info().Str("entity", entity).Str("item_id", id).Str("action", action).Msg("collection item changed")
	s.emitter.Emit(ctx, EventCollectionChanged, map[string]string{"entity": entity, "itemId": id, "action": action})
}

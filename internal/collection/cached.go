package collection

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"sitepages/internal/domain"
)

// CachedSource serves repeated (entity, count) queries from a short-lived
// cache. Concurrent misses for the same key share one upstream query.
type CachedSource struct {
	inner   domain.CollectionSource
	cache   *MemoryCache
	ttl     time.Duration
	timeout time.Duration
	group   singleflight.Group
	log     zerolog.Logger
}

// CachedOptions tunes a CachedSource.
type CachedOptions struct {
	TTL     time.Duration // how long results are served from cache
	Timeout time.Duration // upper bound for one upstream query
	Logger  zerolog.Logger
}

func NewCachedSource(inner domain.CollectionSource, cache *MemoryCache, opts CachedOptions) *CachedSource {
	if opts.TTL <= 0 {
		opts.TTL = time.Minute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &CachedSource{
		inner:   inner,
		cache:   cache,
		ttl:     opts.TTL,
		timeout: opts.Timeout,
		log:     opts.Logger.With().Str("component", "collection-cache").Logger(),
	}
}

func cacheKey(entity string, count int) string {
	return entity + ":" + strconv.Itoa(count)
}

// QueryRecent returns cached items or queries the inner source.
// The upstream query outlives a cancelled caller so that its result
// still fills the cache; the cancelled caller gets ctx.Err().
func (s *CachedSource) QueryRecent(ctx context.Context, entity string, count int) ([]domain.CollectionItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cacheKey(entity, count)
	if items, ok := s.cache.Get(key); ok {
		return cloneItems(items), nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.fetch(fetchCtx, entity, count)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneItems(res.Val.([]domain.CollectionItem)), nil
	}
}

// Refresh queries the inner source and replaces the cached entry.
func (s *CachedSource) Refresh(ctx context.Context, entity string, count int) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err := s.fetch(ctx, entity, count)
	return err
}

func (s *CachedSource) fetch(ctx context.Context, entity string, count int) ([]domain.CollectionItem, error) {
	items, err := s.inner.QueryRecent(ctx, entity, count)
	if err != nil {
		var se *SourceError
		if errors.As(err, &se) && se.Retryable && ctx.Err() == nil {
			s.log.Debug().Err(err).Str("entity", entity).Int("count", count).Msg("retrying query")
			items, err = s.retry(ctx, entity, count)
		}
		if err != nil {
			return nil, err
		}
	}
	if items == nil {
		items = []domain.CollectionItem{}
	}
	s.cache.Set(cacheKey(entity, count), items, s.ttl)
	s.log.Debug().Str("entity", entity).Int("count", count).Int("items", len(items)).Msg("cached query result")
	return items, nil
}

func (s *CachedSource) retry(ctx context.Context, entity string, count int) ([]domain.CollectionItem, error) {
	t := time.NewTimer(200 * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.C:
	}
	return s.inner.QueryRecent(ctx, entity, count)
}

// InvalidateEntity drops every cached result for entity.
func (s *CachedSource) InvalidateEntity(entity string) {
	s.cache.InvalidatePrefix(entity + ":")
}

func cloneItems(items []domain.CollectionItem) []domain.CollectionItem {
	return append([]domain.CollectionItem(nil), items...)
}

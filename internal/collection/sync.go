package collection

import (
	"context"
	"fmt"
	"time"

	"sitepages/internal/domain"
)

// ── Sync ───────────────────────────────────────────────────
// Copies items from any source into the local collection store:
// source.QueryRecent → Upsert per item.

// ItemWriter stores collection items.
type ItemWriter interface {
	Upsert(ctx context.Context, entity string, item domain.CollectionItem) error
}

// SyncResult is the outcome of one sync run.
type SyncResult struct {
	Entity      string        `json:"entity"`
	RowsRead    int           `json:"rowsRead"`
	RowsWritten int           `json:"rowsWritten"`
	Skipped     int           `json:"skipped"`
	Duration    time.Duration `json:"duration"`
}

// Sync copies the limit most recent items of entity from src into dst.
// Items with neither id nor slug cannot be keyed and are skipped.
func Sync(ctx context.Context, src domain.CollectionSource, dst ItemWriter, entity string, limit int) (*SyncResult, error) {
	start := time.Now()
	result := &SyncResult{Entity: entity}

	items, err := src.QueryRecent(ctx, entity, limit)
	if err != nil {
		return nil, fmt.Errorf("sync %s: read: %w", entity, err)
	}
	result.RowsRead = len(items)

	for _, it := range items {
		if it.ID == "" {
			it.ID = it.Slug
		}
		if it.ID == "" {
			result.Skipped++
			continue
		}
		if err := dst.Upsert(ctx, entity, it); err != nil {
			return nil, fmt.Errorf("sync %s: write %s: %w", entity, it.ID, err)
		}
		result.RowsWritten++
	}
	result.Duration = time.Since(start)
	return result, nil
}

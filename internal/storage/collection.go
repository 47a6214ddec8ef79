package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sitepages/internal/domain"
)

// CollectionStore holds locally managed collection items.
type CollectionStore struct {
	db *DB
}

func NewCollectionStore(db *DB) *CollectionStore {
	return &CollectionStore{db: db}
}

// Upsert inserts or replaces an item of entity.
func (s *CollectionStore) Upsert(ctx context.Context, entity string, item domain.CollectionItem) error {
	if item.PublishedAt.IsZero() {
		item.PublishedAt = time.Now()
	}
	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO collection_items (entity, id, title, slug, image_url, content, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(entity, id) DO UPDATE SET
		   title=excluded.title, slug=excluded.slug, image_url=excluded.image_url,
		   content=excluded.content, published_at=excluded.published_at`,
		entity, item.ID, item.Title, item.Slug, item.ImageURL, item.Content, item.PublishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s item: %w", entity, err)
	}
	return nil
}

// SetPublished hides or shows an item without deleting it.
func (s *CollectionStore) SetPublished(ctx context.Context, entity, id string, published bool) error {
	p := 0
	if published {
		p = 1
	}
	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE collection_items SET published = ? WHERE entity = ? AND id = ?`, p, entity, id,
	)
	if err != nil {
		return fmt.Errorf("set published %s/%s: %w", entity, id, err)
	}
	return expectRow(res, entity, id)
}

// Delete removes an item.
func (s *CollectionStore) Delete(ctx context.Context, entity, id string) error {
	res, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM collection_items WHERE entity = ? AND id = ?`, entity, id,
	)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", entity, id, err)
	}
	return expectRow(res, entity, id)
}

func expectRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s/%s: %w", entity, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s/%s: %w", entity, id, domain.ErrItemNotFound)
	}
	return nil
}

// QueryRecent returns up to count published items of entity, newest first.
func (s *CollectionStore) QueryRecent(ctx context.Context, entity string, count int) ([]domain.CollectionItem, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, title, slug, image_url, content, published_at
		 FROM collection_items
		 WHERE entity = ? AND published = 1
		 ORDER BY published_at DESC
		 LIMIT ?`,
		entity, count,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent %s: %w", entity, err)
	}
	defer rows.Close()

	items := []domain.CollectionItem{}
	for rows.Next() {
		var it domain.CollectionItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Slug, &it.ImageURL, &it.Content, &it.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan %s item: %w", entity, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"sitepages/internal/domain"
)

// PageStore persists page documents as one JSON row per page key.
type PageStore struct {
	db *DB
}

func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

// Get returns the document at pageKey, or nil if none was saved yet.
func (s *PageStore) Get(ctx context.Context, pageKey string) (*domain.PageDocument, error) {
	var data string
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT data FROM page_documents WHERE page_key = ?`, pageKey,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get page %s: %w", pageKey, err)
	}

	doc := &domain.PageDocument{}
	if err := json.Unmarshal([]byte(data), doc); err != nil {
		return nil, fmt.Errorf("decode page %s: %w", pageKey, err)
	}
	doc.Normalize()
	return doc, nil
}

// Put replaces the document at pageKey wholesale.
func (s *PageStore) Put(ctx context.Context, pageKey string, doc domain.PageDocument) error {
	doc.Normalize()
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode page %s: %w", pageKey, err)
	}
	_, err = s.db.conn.ExecContext(ctx,
		`INSERT INTO page_documents (page_key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(page_key) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`,
		pageKey, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("put page %s: %w", pageKey, err)
	}
	return nil
}

// List returns every stored page, most recently updated first.
func (s *PageStore) List(ctx context.Context) ([]domain.PageSummary, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT page_key, json_array_length(data, '$.blocks'), updated_at
		 FROM page_documents ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var pages []domain.PageSummary
	for rows.Next() {
		var p domain.PageSummary
		var count sql.NullInt64
		if err := rows.Scan(&p.PageKey, &count, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		p.BlockCount = int(count.Int64)
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

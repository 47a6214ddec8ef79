package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sitepages/internal/domain"
	"sitepages/internal/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "pages.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPageStore_GetMissingReturnsNil(t *testing.T) {
	store := storage.NewPageStore(newTestDB(t))

	doc, err := store.Get(context.Background(), "home_page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc != nil {
		t.Fatalf("expected nil document, got %+v", doc)
	}
}

func TestPageStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewPageStore(newTestDB(t))

	in := domain.PageDocument{
		Blocks: []domain.BlockInstance{
			{ID: "b1", Type: domain.BlockTypeHero, Data: domain.BlockData{"title": "X"}},
			{ID: "b2", Type: "retired_type", Data: domain.BlockData{"nested": map[string]any{"a": []any{"x", "y"}}}},
			{ID: "b3", Type: domain.BlockTypeText, Data: nil},
		},
		SEOTitle: "T",
	}
	if err := store.Put(ctx, "about_page", in); err != nil {
		t.Fatalf("put: %v", err)
	}

	out, err := store.Get(ctx, "about_page")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out == nil {
		t.Fatal("expected document")
	}

	want, _ := in.Canonical()
	got, _ := out.Canonical()
	if string(want) != string(got) {
		t.Errorf("round trip mismatch:\nwant %s\ngot  %s", want, got)
	}
	for i, b := range out.Blocks {
		if b.ID != in.Blocks[i].ID {
			t.Errorf("block %d: expected id %s, got %s", i, in.Blocks[i].ID, b.ID)
		}
	}
}

func TestPageStore_PutReplacesWholeDocument(t *testing.T) {
	ctx := context.Background()
	store := storage.NewPageStore(newTestDB(t))

	first := domain.PageDocument{
		Blocks:         []domain.BlockInstance{{ID: "a", Type: domain.BlockTypeCTA}},
		SEOTitle:       "old",
		SEODescription: "old desc",
	}
	second := domain.PageDocument{
		Blocks:   []domain.BlockInstance{{ID: "b", Type: domain.BlockTypeSteps}},
		SEOTitle: "new",
	}
	if err := store.Put(ctx, "p", first); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "p", second); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "p")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Blocks) != 1 || got.Blocks[0].ID != "b" {
		t.Errorf("expected only block b, got %+v", got.Blocks)
	}
	if got.SEODescription != "" {
		t.Errorf("expected description cleared by replacement, got %q", got.SEODescription)
	}
}

func TestPageStore_List(t *testing.T) {
	ctx := context.Background()
	store := storage.NewPageStore(newTestDB(t))

	store.Put(ctx, "home_page", domain.PageDocument{Blocks: []domain.BlockInstance{{ID: "1"}, {ID: "2"}}})
	store.Put(ctx, "contacts_page", domain.PageDocument{})

	pages, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	counts := map[string]int{}
	for _, p := range pages {
		counts[p.PageKey] = p.BlockCount
	}
	if counts["home_page"] != 2 || counts["contacts_page"] != 0 {
		t.Errorf("unexpected block counts: %v", counts)
	}
}

func TestCollectionStore_QueryRecent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewCollectionStore(newTestDB(t))

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, title := range []string{"oldest", "middle", "newest"} {
		err := store.Upsert(ctx, "news", domain.CollectionItem{
			ID:          title,
			Title:       title,
			Slug:        title,
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	store.Upsert(ctx, "projects", domain.CollectionItem{ID: "p1", Title: "project"})

	items, err := store.QueryRecent(ctx, "news", 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "newest" || items[1].Title != "middle" {
		t.Errorf("expected newest first, got %s, %s", items[0].Title, items[1].Title)
	}

	// More requested than available returns what exists.
	items, err = store.QueryRecent(ctx, "news", 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Errorf("expected 3 items, got %d", len(items))
	}

	if err := store.SetPublished(ctx, "news", "newest", false); err != nil {
		t.Fatal(err)
	}
	items, _ = store.QueryRecent(ctx, "news", 6)
	if len(items) != 2 || items[0].Title != "middle" {
		t.Errorf("expected unpublished item hidden, got %+v", items)
	}

	empty, err := store.QueryRecent(ctx, "events", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no items, got %d", len(empty))
	}
}

func TestCollectionStore_DeleteAndMissingItems(t *testing.T) {
	ctx := context.Background()
	store := storage.NewCollectionStore(newTestDB(t))

	if err := store.Upsert(ctx, "news", domain.CollectionItem{ID: "a", Title: "A"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "news", "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items, _ := store.QueryRecent(ctx, "news", 3)
	if len(items) != 0 {
		t.Errorf("expected deleted item gone, got %+v", items)
	}

	if err := store.Delete(ctx, "news", "a"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound on second delete, got %v", err)
	}
	if err := store.SetPublished(ctx, "news", "ghost", false); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound for unknown item, got %v", err)
	}
}

package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepages/internal/config"
	"sitepages/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "data", "sitepages.db")
	return cfg
}

func TestImportThenRenderDynamicBlock(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	file := filepath.Join(t.TempDir(), "news.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
	  {"id": "a", "title": "Spring catalogue", "slug": "spring", "content": "<b>New</b> items", "published_at": "2026-03-01T09:00:00Z"},
	  {"id": "b", "title": "Winter sale", "slug": "winter", "published_at": "2025-12-01T09:00:00Z"}
	]`), 0644))

	res, err := Import(ctx, cfg, ImportOptions{Entity: "news", File: file}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowsWritten)

	a, err := New(ctx, cfg, "", zerolog.Nop())
	require.NoError(t, err)
	defer a.Shutdown(ctx)

	st, err := a.Editors.Open(ctx, "home_page")
	require.NoError(t, err)
	b, err := a.Editors.AddBlock(st.ID, domain.BlockTypeDynamicNews)
	require.NoError(t, err)
	require.NoError(t, a.Editors.UpdateBlockData(st.ID, b.ID, map[string]any{"count": 4}))
	require.NoError(t, a.Editors.Commit(ctx, st.ID))

	html, err := a.Pages.RenderHTML(ctx, "home_page")
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, "Spring catalogue")
	assert.Contains(t, out, "/news/spring")
	assert.Contains(t, out, "1 March 2026")
	assert.Less(t, strings.Index(out, "Spring catalogue"), strings.Index(out, "Winter sale"))
}

func TestHidingItemDropsCachedResults(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Cache.TTL = "1h"

	a, err := New(ctx, cfg, "", zerolog.Nop())
	require.NoError(t, err)
	defer a.Shutdown(ctx)

	_, err = a.Items.Upsert(ctx, "news", domain.CollectionItem{ID: "a", Title: "Spring catalogue", Slug: "spring"})
	require.NoError(t, err)

	st, err := a.Editors.Open(ctx, "home_page")
	require.NoError(t, err)
	_, err = a.Editors.AddBlock(st.ID, domain.BlockTypeDynamicNews)
	require.NoError(t, err)
	require.NoError(t, a.Editors.Commit(ctx, st.ID))

	html, err := a.Pages.RenderHTML(ctx, "home_page")
	require.NoError(t, err)
	assert.Contains(t, string(html), "Spring catalogue")

	require.NoError(t, a.Items.SetPublished(ctx, "news", "a", false))
	html, err = a.Pages.RenderHTML(ctx, "home_page")
	require.NoError(t, err)
	assert.NotContains(t, string(html), "Spring catalogue")

	err = a.Items.Delete(ctx, "projects", "missing")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestConfigReloadSwapsDefaults(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t), "", zerolog.Nop())
	require.NoError(t, err)
	defer a.Shutdown(ctx)

	doc, err := a.Pages.Document(ctx, "about_page")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.SEOTitle)

	a.onConfigReload(&config.Config{Pages: map[string]domain.SEODefaults{
		"about_page": {Title: "Who we are"},
	}})
	doc, err = a.Pages.Document(ctx, "about_page")
	require.NoError(t, err)
	assert.Equal(t, "Who we are", doc.SEOTitle)
}

func TestNew_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Warmup.Schedule = "not a schedule"
	_, err := New(context.Background(), cfg, "", zerolog.Nop())
	assert.Error(t, err)
}

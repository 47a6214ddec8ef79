package config_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepages/internal/config"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.GetAddr())
	assert.Equal(t, "data/sitepages.db", cfg.GetDBPath())
	assert.Equal(t, time.Minute, cfg.GetCacheTTL())
	assert.Equal(t, 5*time.Second, cfg.GetBlockTimeout())
	assert.Equal(t, "@every 10m", cfg.GetSweepSchedule())
	assert.Equal(t, "", cfg.GetWarmSchedule())
	assert.Contains(t, cfg.Pages, "home_page")
	assert.Contains(t, cfg.Pages, "contacts_page")
}

func TestLoad_ParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitepages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  rate_limit: 5
cache:
  ttl: 30s
  fetch_timeout: nonsense
pages:
  home_page:
    title: Acme
  pricing_page:
    title: Pricing
    description: Plans
collections:
  news:
    type: sql
    connection:
      driver: postgres
      host: db
      password_key: news_db
    table: articles
    fields:
      title: headline
`), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.GetAddr())
	rps, burst := cfg.GetRateLimit()
	assert.Equal(t, 5.0, rps)
	assert.Equal(t, 10, burst)
	assert.Equal(t, 30*time.Second, cfg.GetCacheTTL())
	assert.Equal(t, 10*time.Second, cfg.GetFetchTimeout(), "invalid durations fall back")

	assert.Equal(t, "Acme", cfg.Pages["home_page"].Title)
	assert.Equal(t, "Plans", cfg.Pages["pricing_page"].Description)
	assert.Contains(t, cfg.Pages, "about_page")

	news := cfg.Collections["news"]
	assert.Equal(t, "sql", news.Type)
	assert.Equal(t, "news_db", news.Connection.PasswordKey)
	assert.Equal(t, "headline", news.Fields.Title)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SITEPAGES_ADDR", "127.0.0.1:7000")
	t.Setenv("SITEPAGES_DB", "/tmp/x.db")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.GetAddr())
	assert.Equal(t, "/tmp/x.db", cfg.GetDBPath())
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitepages.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pages:\n  home_page:\n    title: One\n"), 0644))

	var mu sync.Mutex
	var titles []string
	w, err := config.Watch(path, func(cfg *config.Config) {
		mu.Lock()
		titles = append(titles, cfg.Pages["home_page"].Title)
		mu.Unlock()
	}, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("pages:\n  home_page:\n    title: Two\n"), 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(titles) > 0 && titles[len(titles)-1] == "Two"
	}, 2*time.Second, 20*time.Millisecond)
}

package collection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepages/internal/domain"
)

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer c.Stop()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("news:3", []domain.CollectionItem{{ID: "1"}}, time.Minute)
	items, ok := c.Get("news:3")
	assert.True(t, ok)
	assert.Len(t, items, 1)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("news:3")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_CleanupAndInvalidate(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer c.Stop()

	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("news:3", nil, time.Second)
	c.Set("news:6", nil, time.Hour)
	c.Set("projects:3", nil, time.Hour)

	now = now.Add(time.Minute)
	c.cleanup()
	assert.Equal(t, 2, c.Len())

	c.InvalidatePrefix("news:")
	assert.Equal(t, 1, c.Len())

	c.InvalidatePrefix("projects:")
	assert.Equal(t, 0, c.Len())

	c.Stop()
	c.Stop()
}

func TestMemoryCache_ExpiredGetKeepsConcurrentSet(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer c.Stop()

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("news:3", []domain.CollectionItem{{ID: "old"}}, time.Second)

	now = now.Add(time.Minute)
	refreshed := false
	c.now = func() time.Time {
		if !refreshed {
			// another writer stores a fresh result between the read and the delete
			refreshed = true
			c.Set("news:3", []domain.CollectionItem{{ID: "fresh"}}, time.Hour)
		}
		return now
	}

	_, ok := c.Get("news:3")
	assert.False(t, ok)

	items, ok := c.Get("news:3")
	require.True(t, ok)
	assert.Equal(t, "fresh", items[0].ID)
}

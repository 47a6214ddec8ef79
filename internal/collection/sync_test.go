package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepages/internal/domain"
)

type staticSource struct {
	items []domain.CollectionItem
	err   error
}

func (s staticSource) QueryRecent(_ context.Context, _ string, count int) ([]domain.CollectionItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return mostRecent(s.items, count), nil
}

type recordingWriter struct {
	written map[string]domain.CollectionItem
	failOn  string
}

func (w *recordingWriter) Upsert(_ context.Context, entity string, item domain.CollectionItem) error {
	if item.ID == w.failOn {
		return errors.New("constraint failed")
	}
	w.written[entity+"/"+item.ID] = item
	return nil
}

func TestSync_CopiesAndKeysItems(t *testing.T) {
	src := staticSource{items: []domain.CollectionItem{
		{ID: "1", Title: "With id"},
		{Slug: "by-slug", Title: "Slug only"},
		{Title: "No key"},
	}}
	dst := &recordingWriter{written: map[string]domain.CollectionItem{}}

	res, err := Sync(context.Background(), src, dst, "news", 10)
	require.NoError(t, err)
	assert.Equal(t, 3, res.RowsRead)
	assert.Equal(t, 2, res.RowsWritten)
	assert.Equal(t, 1, res.Skipped)
	assert.Contains(t, dst.written, "news/1")
	assert.Contains(t, dst.written, "news/by-slug")
}

func TestSync_Errors(t *testing.T) {
	dst := &recordingWriter{written: map[string]domain.CollectionItem{}, failOn: "2"}

	_, err := Sync(context.Background(), staticSource{err: errors.New("offline")}, dst, "news", 3)
	assert.ErrorContains(t, err, "offline")

	_, err = Sync(context.Background(), staticSource{items: []domain.CollectionItem{{ID: "2"}}}, dst, "news", 3)
	assert.ErrorContains(t, err, "constraint failed")
}

package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"sitepages/internal/collection"
	"sitepages/internal/config"
)

// ImportOptions describes a JSON file to load into the local collection store.
type ImportOptions struct {
	Entity   string
	File     string
	DataPath string
	Fields   collection.FieldMap
	Limit    int
}

// Import copies items from a JSON file into the local collection store,
// where the local collection kind serves them to dynamic blocks. A server
// already running shows them once its cached results expire.
func Import(ctx context.Context, cfg *config.Config, opts ImportOptions, log zerolog.Logger) (*collection.SyncResult, error) {
	if opts.Entity == "" {
		return nil, fmt.Errorf("entity is required")
	}
	if opts.Limit <= 0 {
		opts.Limit = 1000
	}
	src, err := collection.NewJSONFileSource(opts.File, opts.DataPath, opts.Fields)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", opts.Entity, err)
	}

	a, err := New(ctx, cfg, "", log)
	if err != nil {
		return nil, err
	}
	defer a.Shutdown(ctx)

	res, err := collection.Sync(ctx, src, a.Collections(), opts.Entity, opts.Limit)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("entity", res.Entity).
		Int("read", res.RowsRead).
		Int("written", res.RowsWritten).
		Int("skipped", res.Skipped).
		Dur("duration", res.Duration).
		Msg("collection imported")
	return res, nil
}

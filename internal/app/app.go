package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"sitepages/internal/blocks"
	"sitepages/internal/collection"
	"sitepages/internal/config"
	"sitepages/internal/render"
	"sitepages/internal/secret"
	"sitepages/internal/service"
	"sitepages/internal/storage"
)

// App wires storage, collection sources, the block registry and the
// services together for the serve and mcp commands.
type App struct {
	cfg        *config.Config
	configPath string
	log        zerolog.Logger

	db          *storage.DB
	pageStore   *storage.PageStore
	collections *storage.CollectionStore
	sources     *collection.Registry
	cache       *collection.MemoryCache
	cached      *collection.CachedSource

	Registry *blocks.Registry
	Emitter  service.EventEmitter
	Pages    *service.PageService
	Editors  *service.EditorService
	Items    *service.CollectionService

	scheduler *service.Scheduler
	watcher   *config.Watcher
}

// New opens storage and builds every service from cfg.
func New(ctx context.Context, cfg *config.Config, configPath string, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, configPath: configPath, log: log}

	dbPath := cfg.GetDBPath()
	db, err := storage.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.db = db
	a.pageStore = storage.NewPageStore(db)
	a.collections = storage.NewCollectionStore(db)

	// Collection sources: configured backends, cached and deduplicated
	a.sources = collection.Build(ctx, cfg.Collections, collection.OpenDeps{
		Local:   a.collections,
		Secrets: secret.NewEnvStore(""),
		Logger:  log,
	})
	a.cache = collection.NewMemoryCache(cfg.GetCacheCleanupInterval())
	a.cached = collection.NewCachedSource(a.sources, a.cache, collection.CachedOptions{
		TTL:     cfg.GetCacheTTL(),
		Timeout: cfg.GetFetchTimeout(),
		Logger:  log,
	})

	a.Registry = blocks.DefaultRegistry(blocks.Deps{Collections: a.cached})
	a.Emitter = service.NewLogEmitter(log)

	renderer := render.New(a.Registry, render.Options{
		BlockTimeout: cfg.GetBlockTimeout(),
		Logger:       log,
	})
	a.Pages = service.NewPageService(a.pageStore, renderer, service.PageServiceOptions{
		Defaults: cfg.Pages,
		Lang:     cfg.GetLang(),
		Emitter:  a.Emitter,
		Logger:   log,
	})
	a.Editors = service.NewEditorService(a.pageStore, a.Registry, service.EditorServiceOptions{
		SessionTTL: cfg.GetSessionTTL(),
		Emitter:    a.Emitter,
		Logger:     log,
	})

	a.Items = service.NewCollectionService(a.collections, a.sources, a.cached, service.CollectionServiceOptions{
		Emitter: a.Emitter,
		Logger:  log,
	})

	entities := cfg.Warmup.Entities
	if len(entities) == 0 {
		entities = a.sources.Entities()
	}
	a.scheduler, err = service.NewScheduler(a.Editors, a.cached, service.SchedulerOptions{
		SweepSchedule: cfg.GetSweepSchedule(),
		WarmSchedule:  cfg.GetWarmSchedule(),
		Entities:      entities,
		Counts:        blocks.AllowedCounts,
		WarmTimeout:   cfg.GetFetchTimeout(),
		Logger:        log,
	})
	if err != nil {
		a.Shutdown(ctx)
		return nil, err
	}

	kinds := zerolog.Dict()
	for _, e := range a.sources.Entities() {
		kinds.Str(e, a.sources.Kind(e))
	}
	log.Info().
		Str("db", dbPath).
		Dict("collections", kinds).
		Int("block_types", len(a.Registry.Types())).
		Msg("app initialised")
	return a, nil
}

// Start launches the background jobs and the config watcher.
func (a *App) Start() {
	a.scheduler.Start()

	if a.configPath == "" {
		return
	}
	w, err := config.Watch(a.configPath, a.onConfigReload, a.log)
	if err != nil {
		a.log.Warn().Err(err).Str("path", a.configPath).Msg("config hot reload disabled")
		return
	}
	a.watcher = w
}

// onConfigReload applies the reloadable part of the configuration.
func (a *App) onConfigReload(cfg *config.Config) {
	a.Pages.SetDefaults(cfg.Pages)
}

// Collections returns the local collection store.
func (a *App) Collections() *storage.CollectionStore { return a.collections }

// Shutdown waits for in-flight saves and releases every resource.
func (a *App) Shutdown(ctx context.Context) error {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.scheduler != nil {
		a.scheduler.Stop(ctx)
	}
	if a.Editors != nil {
		a.Editors.Wait(ctx)
	}
	if a.cache != nil {
		a.cache.Stop()
	}

	var errs []error
	if a.sources != nil {
		errs = append(errs, a.sources.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

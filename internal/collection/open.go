package collection

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"sitepages/internal/dbclient"
	"sitepages/internal/domain"
	"sitepages/internal/secret"
)

// DefaultEntities are bound to the local store when no collection is configured.
var DefaultEntities = []string{"news", "projects"}

// OpenDeps carries what Open needs to build sources.
type OpenDeps struct {
	Local   domain.CollectionSource // local sqlite collections
	Secrets secret.SecretStore
	Logger  zerolog.Logger
}

// Open builds the source described by cfg.
func Open(ctx context.Context, entity string, cfg Config, deps OpenDeps) (domain.CollectionSource, error) {
	switch cfg.Type {
	case "", KindLocal:
		if deps.Local == nil {
			return nil, fmt.Errorf("collection %s: no local store", entity)
		}
		return deps.Local, nil

	case KindSQL:
		password, err := lookupSecret(deps.Secrets, cfg.Connection.PasswordKey)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", entity, err)
		}
		db, err := dbclient.OpenSQL(ctx, cfg.Connection, password)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", entity, err)
		}
		table := cfg.Table
		if table == "" {
			table = entity
		}
		src, err := NewSQLSource(db, cfg.Connection.Driver, table, cfg.Where, cfg.Fields)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("collection %s: %w", entity, err)
		}
		return src, nil

	case KindMongo:
		password, err := lookupSecret(deps.Secrets, cfg.Connection.PasswordKey)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", entity, err)
		}
		client, dbName, err := dbclient.ConnectMongo(ctx, cfg.Connection, password, deps.Logger)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", entity, err)
		}
		coll := cfg.Table
		if coll == "" {
			coll = entity
		}
		return NewMongoSource(client, dbName, coll, cfg.Filter, cfg.Fields), nil

	case KindHTTP:
		token, err := lookupSecret(deps.Secrets, cfg.TokenKey)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", entity, err)
		}
		src, err := NewHTTPSource(HTTPOptions{
			URL:       cfg.URL,
			Headers:   cfg.Headers,
			Token:     token,
			DataPath:  cfg.DataPath,
			Fields:    cfg.Fields,
			RateLimit: cfg.RateLimit,
			Timeout:   cfg.GetTimeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", entity, err)
		}
		return src, nil

	case KindJSONFile:
		src, err := NewJSONFileSource(cfg.File, cfg.DataPath, cfg.Fields)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", entity, err)
		}
		return src, nil
	}
	return nil, fmt.Errorf("collection %s: unsupported type %q", entity, cfg.Type)
}

// Build opens every configured collection into a Registry. A collection
// that fails to open is logged and left unbound, so its dynamic blocks
// render nothing instead of preventing startup.
func Build(ctx context.Context, cfgs map[string]Config, deps OpenDeps) *Registry {
	reg := NewRegistry()
	if len(cfgs) == 0 && deps.Local != nil {
		for _, entity := range DefaultEntities {
			reg.Register(entity, KindLocal, deps.Local)
		}
		return reg
	}
	for entity, cfg := range cfgs {
		src, err := Open(ctx, entity, cfg, deps)
		if err != nil {
			deps.Logger.Error().Err(err).Str("entity", entity).Str("type", cfg.Type).Msg("collection unavailable")
			continue
		}
		kind := cfg.Type
		if kind == "" {
			kind = KindLocal
		}
		reg.Register(entity, kind, src)
	}
	return reg
}

func lookupSecret(store secret.SecretStore, key string) (string, error) {
	if key == "" || store == nil {
		return "", nil
	}
	v, err := store.Get(key)
	if err != nil {
		return "", fmt.Errorf("read secret %s: %w", key, err)
	}
	return string(v), nil
}

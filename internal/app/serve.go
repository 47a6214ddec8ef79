package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"sitepages/internal/config"
	"sitepages/internal/server"
)

// Serve runs the HTTP server until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, configPath string, log zerolog.Logger) error {
	a, err := New(ctx, cfg, configPath, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := a.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()
	a.Start()

	rps, burst := cfg.GetRateLimit()
	srv := server.New(server.Deps{
		Pages:       a.Pages,
		Editors:     a.Editors,
		Collections: a.Items,
		Registry:    a.Registry,
		Logger:      log,
	}, server.Options{
		Addr:         cfg.GetAddr(),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		RateLimit:    rps,
		RateBurst:    burst,
	})
	return srv.ListenAndServe(ctx)
}

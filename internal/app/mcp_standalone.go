package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"sitepages/internal/config"
	mcpserver "sitepages/internal/mcp"
)

// ServeMCP runs the page editor as an MCP server on stdin/stdout.
// Logs must go to stderr; stdout carries the protocol.
func ServeMCP(ctx context.Context, cfg *config.Config, configPath string, log zerolog.Logger) error {
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

	mcpSrv := mcpserver.New(mcpserver.Deps{
		Emitter:  a.Emitter,
		Pages:    a.Pages,
		Editors:  a.Editors,
		Registry: a.Registry,
		Logger:   log,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- mcpSrv.ServeStdio() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

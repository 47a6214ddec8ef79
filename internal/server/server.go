package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"sitepages/internal/blocks"
	"sitepages/internal/service"
)

// Deps are the services the HTTP surface exposes.
type Deps struct {
	Pages       *service.PageService
	Editors     *service.EditorService
	Collections *service.CollectionService // optional
	Registry    *blocks.Registry
	Logger      zerolog.Logger
}

// Options tunes the HTTP server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RateLimit    float64 // public page views per second, 0 disables
	RateBurst    int
}

// Server serves rendered pages and the editor API.
type Server struct {
	pages       *service.PageService
	editors     *service.EditorService
	collections *service.CollectionService
	registry    *blocks.Registry
	log         zerolog.Logger
	router      chi.Router
	opts        Options
}

// New builds the router.
func New(deps Deps, opts Options) *Server {
	s := &Server{
		pages:       deps.Pages,
		editors:     deps.Editors,
		collections: deps.Collections,
		registry:    deps.Registry,
		log:         deps.Logger.With().Str("component", "http").Logger(),
		opts:        opts,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(rateLimit(s.opts.RateLimit, s.opts.RateBurst))
		}
		r.Get("/", s.handleHomePage)
		r.Get("/pages/{pageKey}", s.handlePage)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/block-types", s.handleBlockTypes)

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", s.handleListPages)
			r.Get("/{pageKey}", s.handleGetPage)
			r.Get("/{pageKey}/render", s.handleRenderPage)
		})

		r.Route("/editor/sessions", func(r chi.Router) {
			r.Post("/", s.handleOpenSession)
			r.Get("/", s.handleListSessions)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleCloseSession)
				r.Post("/blocks", s.handleAddBlock)
				r.Delete("/blocks/{blockID}", s.handleRemoveBlock)
				r.Patch("/blocks/{blockID}", s.handleUpdateBlock)
				r.Post("/blocks/{blockID}/move", s.handleMoveBlock)
				r.Patch("/meta", s.handleUpdateMeta)
				r.Post("/commit", s.handleCommit)
			})
		})

		if s.collections != nil {
			r.Route("/collections", func(r chi.Router) {
				r.Get("/", s.handleListCollections)
				r.Post("/{entity}/items", s.handleUpsertItem)
				r.Patch("/{entity}/items/{itemID}", s.handlePublishItem)
				r.Delete("/{entity}/items/{itemID}", s.handleDeleteItem)
			})
		}
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.opts.Addr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.log.Info().Msg("http server stopped")
	return nil
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"sitepages/internal/domain"
	"sitepages/internal/render"
)

var ErrPageNotFound = errors.New("page not found")

// ─────────────────────────────────────────────────────────────
// Page Service: read side of the page documents
// ─────────────────────────────────────────────────────────────

// PageRepository is the store the page service reads from.
type PageRepository interface {
	domain.PageStore
	domain.PageLister
}

// RenderedPage is a page document together with its render result.
type RenderedPage struct {
	PageKey  string              `json:"pageKey"`
	Found    bool                `json:"found"`
	Document domain.PageDocument `json:"document"`
	Result   *render.Result      `json:"result"`
}

// PageService loads page documents, applies per-page SEO defaults and
// renders them.
type PageService struct {
	store    PageRepository
	renderer *render.Renderer
	emitter  EventEmitter
	lang     string
	log      zerolog.Logger

	mu       sync.RWMutex
	defaults map[string]domain.SEODefaults
}

// PageServiceOptions configures a PageService.
type PageServiceOptions struct {
	Defaults map[string]domain.SEODefaults
	Lang     string
	Emitter  EventEmitter
	Logger   zerolog.Logger
}

// NewPageService creates a PageService.
func NewPageService(store PageRepository, renderer *render.Renderer, opts PageServiceOptions) *PageService {
	s := &PageService{
		store:    store,
		renderer: renderer,
		emitter:  opts.Emitter,
		lang:     opts.Lang,
		log:      opts.Logger.With().Str("component", "pages").Logger(),
	}
	s.defaults = copyDefaults(opts.Defaults)
	return s
}

func copyDefaults(in map[string]domain.SEODefaults) map[string]domain.SEODefaults {
	out := make(map[string]domain.SEODefaults, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// SetDefaults swaps the per-page SEO defaults. Stored documents are not touched.
func (s *PageService) SetDefaults(defaults map[string]domain.SEODefaults) {
	s.mu.Lock()
	s.defaults = copyDefaults(defaults)
	s.mu.Unlock()
	if s.emitter != nil {
		s.emitter.Emit(context.Background(), EventDefaultsReloaded, map[string]int{"pages": len(defaults)})
	}
}

// Defaults returns the SEO defaults configured for pageKey.
func (s *PageService) Defaults(pageKey string) (domain.SEODefaults, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.defaults[pageKey]
	return d, ok
}

// Document returns the stored page with empty SEO fields filled from the
// defaults. A page that was never saved is an empty document.
func (s *PageService) Document(ctx context.Context, pageKey string) (domain.PageDocument, error) {
	doc, _, err := s.lookup(ctx, pageKey)
	return doc, err
}

// lookup loads pageKey and reports whether it is stored or configured.
func (s *PageService) lookup(ctx context.Context, pageKey string) (domain.PageDocument, bool, error) {
	stored, err := s.store.Get(ctx, pageKey)
	if err != nil {
		return domain.PageDocument{}, false, fmt.Errorf("load page %s: %w", pageKey, err)
	}
	defaults, known := s.Defaults(pageKey)

	doc := domain.PageDocument{Blocks: []domain.BlockInstance{}}
	if stored != nil {
		doc = stored.Clone()
		doc.Normalize()
	}
	if doc.SEOTitle == "" {
		doc.SEOTitle = defaults.Title
	}
	if doc.SEODescription == "" {
		doc.SEODescription = defaults.Description
	}
	return doc, stored != nil || known, nil
}

// Render loads and renders pageKey.
func (s *PageService) Render(ctx context.Context, pageKey string) (*RenderedPage, error) {
	doc, found, err := s.lookup(ctx, pageKey)
	if err != nil {
		return nil, err
	}
	res, err := s.renderer.Render(ctx, pageKey, doc.Blocks)
	if err != nil {
		return nil, fmt.Errorf("render page %s: %w", pageKey, err)
	}
	return &RenderedPage{PageKey: pageKey, Found: found, Document: doc, Result: res}, nil
}

// RenderHTML renders pageKey as a complete HTML document. A key that is
// neither stored nor configured is ErrPageNotFound.
func (s *PageService) RenderHTML(ctx context.Context, pageKey string) ([]byte, error) {
	page, err := s.Render(ctx, pageKey)
	if err != nil {
		return nil, err
	}
	if !page.Found {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, pageKey)
	}
	title := page.Document.SEOTitle
	if title == "" {
		title = pageKey
	}
	var buf bytes.Buffer
	meta := render.PageMeta{Lang: s.lang, Title: title, Description: page.Document.SEODescription}
	if err := render.WritePage(&buf, meta, page.Result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// List returns the stored pages.
func (s *PageService) List(ctx context.Context) ([]domain.PageSummary, error) {
	pages, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return pages, nil
}

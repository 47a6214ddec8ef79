package render

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sitepages/internal/blocks"
	"sitepages/internal/domain"
)

// Renderer turns a page's block list into HTML using the registry.
// A block that cannot be rendered is skipped and reported; it never
// affects its siblings.
type Renderer struct {
	registry     *blocks.Registry
	blockTimeout time.Duration
	log          zerolog.Logger
}

// Options tunes a Renderer.
type Options struct {
	BlockTimeout time.Duration // bound for one dynamic block, default 5s
	Logger       zerolog.Logger
}

func New(registry *blocks.Registry, opts Options) *Renderer {
	if opts.BlockTimeout <= 0 {
		opts.BlockTimeout = 5 * time.Second
	}
	return &Renderer{
		registry:     registry,
		blockTimeout: opts.BlockTimeout,
		log:          opts.Logger.With().Str("component", "renderer").Logger(),
	}
}

type outcome struct {
	index int
	html  template.HTML
	diag  *Diagnostic
	err   error
	desc  *blocks.Descriptor
	count int
}

// Render renders blocks in document order. Static blocks render inline;
// dynamic blocks run concurrently, each under its own timeout. If ctx ends
// first, Render returns ctx.Err() and late results are dropped.
func (r *Renderer) Render(ctx context.Context, pageKey string, list []domain.BlockInstance) (*Result, error) {
	log := r.log.With().Str("page_key", pageKey).Logger()
	slots := make([]outcome, len(list))
	pending := make(chan outcome, len(list))
	inflight := 0

	for i, b := range list {
		desc, ok := r.registry.Lookup(b.Type)
		if !ok {
			slots[i] = outcome{index: i, diag: &Diagnostic{
				BlockID:   b.ID,
				BlockType: b.Type,
				Kind:      DiagUnknownType,
				Message:   fmt.Sprintf("no renderer registered for type %q", b.Type),
			}}
			continue
		}
		if !desc.Dynamic {
			slots[i] = r.renderBlock(ctx, i, b, desc)
			continue
		}
		inflight++
		go func(i int, b domain.BlockInstance, desc *blocks.Descriptor) {
			blockCtx, cancel := context.WithTimeout(ctx, r.blockTimeout)
			defer cancel()
			pending <- r.renderBlock(blockCtx, i, b, desc)
		}(i, b, desc)
	}

	for ; inflight > 0; inflight-- {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case o := <-pending:
			slots[o.index] = o
		}
	}

	res := &Result{Blocks: []RenderedBlock{}, Diagnostics: []Diagnostic{}}
	for i, o := range slots {
		b := list[i]
		if o.diag != nil {
			res.Diagnostics = append(res.Diagnostics, *o.diag)
			r.logDiagnostic(log, o)
			continue
		}
		if strings.TrimSpace(string(o.html)) == "" {
			continue
		}
		res.Blocks = append(res.Blocks, RenderedBlock{ID: b.ID, Type: b.Type, HTML: o.html})
	}
	return res, nil
}

// renderBlock invokes the strategy with panic isolation.
func (r *Renderer) renderBlock(ctx context.Context, i int, b domain.BlockInstance, desc *blocks.Descriptor) (o outcome) {
	o.index = i
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Debug().Str("block_id", b.ID).Bytes("stack", debug.Stack()).Msg("block panic stack")
			o.html = ""
			o.diag = &Diagnostic{
				BlockID:   b.ID,
				BlockType: b.Type,
				Kind:      DiagPanic,
				Message:   fmt.Sprint(rec),
			}
		}
	}()

	html, err := desc.Render(ctx, b.Data.Clone())
	if err == nil {
		o.html = html
		return o
	}

	kind := DiagRenderFailed
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = DiagTimeout
	case desc.Dynamic:
		kind = DiagFetchFailed
	}
	o.diag = &Diagnostic{BlockID: b.ID, BlockType: b.Type, Kind: kind, Message: err.Error()}
	o.err = err
	o.desc = desc
	if desc.Dynamic {
		o.count = blocks.BlockCount(b.Data)
	}
	return o
}

func (r *Renderer) logDiagnostic(log zerolog.Logger, o outcome) {
	d := o.diag
	var ev *zerolog.Event
	switch d.Kind {
	case DiagUnknownType:
		ev = log.Warn()
	default:
		ev = log.Error()
	}
	ev = ev.Str("block_id", d.BlockID).
		Str("block_type", string(d.BlockType)).
		Str("kind", string(d.Kind))
	if o.desc != nil && o.desc.Dynamic {
		ev = ev.Str("entity", o.desc.Entity).Int("count", o.count)
	}
	if o.err != nil {
		ev.Err(o.err).Msg("block render failed")
		return
	}
	ev.Msg(d.Message)
}

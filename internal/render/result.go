package render

import (
	"html/template"
	"strings"

	"sitepages/internal/domain"
)

// DiagnosticKind classifies why a block contributed nothing.
type DiagnosticKind string

const (
	DiagUnknownType  DiagnosticKind = "unknown_block_type"
	DiagRenderFailed DiagnosticKind = "render_failed"
	DiagFetchFailed  DiagnosticKind = "fetch_failed"
	DiagTimeout      DiagnosticKind = "timeout"
	DiagPanic        DiagnosticKind = "panic"
)

// Diagnostic records a block that was skipped.
type Diagnostic struct {
	BlockID   string           `json:"blockId"`
	BlockType domain.BlockType `json:"blockType"`
	Kind      DiagnosticKind   `json:"kind"`
	Message   string           `json:"message"`
}

// RenderedBlock is the output of one block, in document order.
type RenderedBlock struct {
	ID   string           `json:"id"`
	Type domain.BlockType `json:"type"`
	HTML template.HTML    `json:"html"`
}

// Result holds the rendered blocks and the diagnostics of skipped ones.
type Result struct {
	Blocks      []RenderedBlock `json:"blocks"`
	Diagnostics []Diagnostic    `json:"diagnostics"`
}

// HTML concatenates the rendered blocks.
func (r *Result) HTML() template.HTML {
	var b strings.Builder
	for i, rb := range r.Blocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(rb.HTML))
	}
	return template.HTML(b.String())
}

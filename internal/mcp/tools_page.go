package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"sitepages/internal/blocks"
	"sitepages/internal/domain"
)

func (s *Server) registerPageTools() {
	// ── list_block_types ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_block_types",
		mcp.WithDescription("List the block types that can be added to a page, with their editable fields and default payload"),
	), s.handleListBlockTypes)

	// ── render_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("render_page",
		mcp.WithDescription("Render the saved version of a page. Returns rendered blocks and diagnostics for skipped blocks, or the full HTML document."),
		mcp.WithString("pageKey", mcp.Description("Page key, e.g. home_page"), mcp.Required()),
		mcp.WithString("format",
			mcp.Description("json (default) or html"),
			mcp.Enum("json", "html"),
		),
	), s.handleRenderPage)

	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List saved pages with their block counts"),
	), s.handleListPages)
}

type blockTypeInfo struct {
	Type    domain.BlockType `json:"type"`
	Label   string           `json:"label"`
	Dynamic bool             `json:"dynamic"`
	Entity  string           `json:"entity,omitempty"`
	Fields  []blocks.Field   `json:"fields"`
	Default domain.BlockData `json:"default"`
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleListBlockTypes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	descs := s.registry.Descriptors()
	out := make([]blockTypeInfo, 0, len(descs))
	for _, d := range descs {
		def, _ := s.registry.DefaultPayload(d.Type)
		out = append(out, blockTypeInfo{
			Type:    d.Type,
			Label:   d.Label,
			Dynamic: d.Dynamic,
			Entity:  d.Entity,
			Fields:  d.Fields,
			Default: def,
		})
	}
	return jsonResult(out)
}

func (s *Server) handleRenderPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageKey, err := requireString(args, "pageKey")
	if err != nil {
		return nil, err
	}

	if format, _ := args["format"].(string); format == "html" {
		html, err := s.pages.RenderHTML(ctx, pageKey)
		if err != nil {
			return nil, err
		}
		return textResult(string(html)), nil
	}

	page, err := s.pages.Render(ctx, pageKey)
	if err != nil {
		return nil, err
	}
	return jsonResult(page)
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pages, err := s.pages.List(ctx)
	if err != nil {
		return nil, err
	}
	if pages == nil {
		pages = []domain.PageSummary{}
	}
	return jsonResult(pages)
}

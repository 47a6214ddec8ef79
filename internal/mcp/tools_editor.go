package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"sitepages/internal/domain"
	"sitepages/internal/editor"
)

func (s *Server) registerEditorTools() {
	// ── open_page ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_page",
		mcp.WithDescription("Open a page for editing. Returns a session whose id the other editor tools accept; it also becomes the default session."),
		mcp.WithString("pageKey", mcp.Description("Page key, e.g. home_page"), mcp.Required()),
	), s.handleOpenPage)

	// ── get_page ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_page",
		mcp.WithDescription("Show the working copy of an open page, including unsaved changes"),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional, defaults to the last opened page)")),
	), s.handleGetPage)

	// ── add_block ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Append a block with its default payload. Use list_block_types to see the available types."),
		mcp.WithString("type", mcp.Description("Block type, e.g. hero, text, dynamic_news"), mcp.Required()),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional)")),
	), s.handleAddBlock)

	// ── remove_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_block",
		mcp.WithDescription("Remove a block from the working copy. Nothing is saved until commit_page."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveBlock)

	// ── move_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move a block one position up or down. Moving past either end does nothing."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("direction", mcp.Description("up or down"), mcp.Required(), mcp.Enum("up", "down")),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional)")),
	), s.handleMoveBlock)

	// ── update_block_data ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_block_data",
		mcp.WithDescription("Merge fields into a block payload. Keys not given keep their values."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("data", mcp.Description(`JSON object of fields to set, e.g. {"title":"Hello"}`), mcp.Required()),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional)")),
	), s.handleUpdateBlockData)

	// ── update_page_meta ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_page_meta",
		mcp.WithDescription("Set the page SEO title and/or description"),
		mcp.WithString("seoTitle", mcp.Description("SEO title (optional)")),
		mcp.WithString("seoDescription", mcp.Description("SEO description (optional)")),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional)")),
	), s.handleUpdatePageMeta)

	// ── commit_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("commit_page",
		mcp.WithDescription("Save the working copy, replacing the stored page. On failure the working copy is kept and the save can be retried."),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional)")),
	), s.handleCommitPage)

	// ── close_page ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("close_page",
		mcp.WithDescription("Close an editing session, discarding unsaved changes"),
		mcp.WithString("sessionId", mcp.Description("Session ID (optional)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleClosePage)
}

func boolPtr(v bool) *bool { return &v }

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleOpenPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageKey, err := requireString(req.GetArguments(), "pageKey")
	if err != nil {
		return nil, err
	}
	st, err := s.editors.Open(ctx, pageKey)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	s.setActiveSession(st.ID)
	return jsonResult(st)
}

func (s *Server) handleGetPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sid, err := s.resolveSessionID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	st, err := s.editors.Get(sid)
	if err != nil {
		return nil, err
	}
	return jsonResult(st)
}

func (s *Server) handleAddBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockType, err := requireString(args, "type")
	if err != nil {
		return nil, err
	}
	sid, err := s.resolveSessionID(args)
	if err != nil {
		return nil, err
	}
	b, err := s.editors.AddBlock(sid, domain.BlockType(blockType))
	if err != nil {
		return nil, err
	}
	s.emitPageChanged(ctx, sid)
	return jsonResult(b)
}

func (s *Server) handleRemoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	sid, err := s.resolveSessionID(args)
	if err != nil {
		return nil, err
	}
	if err := s.editors.RemoveBlock(sid, blockID); err != nil {
		return nil, err
	}
	s.emitPageChanged(ctx, sid)
	return textResult(fmt.Sprintf("Block %s removed", blockID)), nil
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	raw, _ := args["direction"].(string)
	dir, err := editor.ParseDirection(raw)
	if err != nil {
		return nil, err
	}
	sid, err := s.resolveSessionID(args)
	if err != nil {
		return nil, err
	}
	moved, err := s.editors.MoveBlock(sid, blockID, dir)
	if err != nil {
		return nil, err
	}
	if !moved {
		return textResult(fmt.Sprintf("Block %s cannot move %s, it is already at the edge", blockID, dir)), nil
	}
	s.emitPageChanged(ctx, sid)
	return textResult(fmt.Sprintf("Block %s moved %s", blockID, dir)), nil
}

func (s *Server) handleUpdateBlockData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	fields, err := dataArgument(args["data"])
	if err != nil {
		return nil, err
	}
	sid, err := s.resolveSessionID(args)
	if err != nil {
		return nil, err
	}
	if err := s.editors.UpdateBlockData(sid, blockID, fields); err != nil {
		return nil, err
	}
	s.emitPageChanged(ctx, sid)
	return textResult(fmt.Sprintf("Block %s updated (%d field(s))", blockID, len(fields))), nil
}

// dataArgument accepts the payload either as a JSON string or as an object.
func dataArgument(v any) (map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case string:
		var fields map[string]any
		if err := parseJSON(t, &fields); err != nil {
			return nil, fmt.Errorf("data must be a JSON object: %w", err)
		}
		if fields == nil {
			return nil, fmt.Errorf("data must be a JSON object")
		}
		return fields, nil
	}
	return nil, fmt.Errorf("data is required")
}

func (s *Server) handleUpdatePageMeta(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var patch editor.MetaPatch
	if v, ok := args["seoTitle"].(string); ok {
		patch.SEOTitle = &v
	}
	if v, ok := args["seoDescription"].(string); ok {
		patch.SEODescription = &v
	}
	if patch.SEOTitle == nil && patch.SEODescription == nil {
		return nil, fmt.Errorf("seoTitle or seoDescription is required")
	}
	sid, err := s.resolveSessionID(args)
	if err != nil {
		return nil, err
	}
	if err := s.editors.UpdateMeta(sid, patch); err != nil {
		return nil, err
	}
	s.emitPageChanged(ctx, sid)
	return textResult("Page metadata updated"), nil
}

func (s *Server) handleCommitPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sid, err := s.resolveSessionID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	err = s.editors.Commit(ctx, sid)
	var commitErr *editor.CommitError
	switch {
	case errors.As(err, &commitErr):
		return mcp.NewToolResultError(fmt.Sprintf("Save of %s failed: %v. The working copy is kept; retry commit_page.", commitErr.PageKey, commitErr.Err)), nil
	case err != nil:
		return nil, err
	}
	st, err := s.editors.Get(sid)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Page %s saved (%d block(s))", st.PageKey, len(st.Document.Blocks))), nil
}

func (s *Server) handleClosePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sid, err := s.resolveSessionID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.editors.Close(ctx, sid); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.activeSessionID == sid {
		s.activeSessionID = ""
	}
	s.mu.Unlock()
	return textResult(fmt.Sprintf("Session %s closed", sid)), nil
}

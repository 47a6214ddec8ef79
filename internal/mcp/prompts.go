package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("compose_page",
		mcp.WithPromptDescription("Guide through composing a page from blocks and publishing it"),
		mcp.WithArgument("pageKey",
			mcp.ArgumentDescription("Page key, e.g. about_page"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("What the page should communicate"),
			mcp.RequiredArgument(),
		),
	), s.handleComposePagePrompt)
}

func (s *Server) handleComposePagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	pageKey := req.Params.Arguments["pageKey"]
	goal := req.Params.Arguments["goal"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Compose %s", pageKey),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Compose the page %q so that it %s.

Steps:
1. Call list_block_types to see the available blocks, their fields and defaults.
2. Call open_page with pageKey %q and review the current blocks.
3. Use add_block, update_block_data, move_block and remove_block to shape the page.
   Start with a hero block, keep text content as simple HTML, and add a
   dynamic_news or dynamic_projects block if recent items are relevant.
4. Set seoTitle and seoDescription with update_page_meta.
5. Call commit_page to save, then render_page to check the result.
   Blocks listed under diagnostics were skipped; fix or remove them.`, pageKey, goal, pageKey),
				},
			},
		},
	}, nil
}

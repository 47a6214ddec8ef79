package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"sitepages/internal/blocks"
	"sitepages/internal/service"
)

// Server is the MCP server for site pages.
// It exposes editor tools, page resources and prompts so AI agents can
// compose and publish pages.
type Server struct {
	mcp     *server.MCPServer
	emitter service.EventEmitter
	log     zerolog.Logger

	pages    *service.PageService
	editors  *service.EditorService
	registry *blocks.Registry

	// Session used when a tool call omits sessionId (set by open_page)
	mu              sync.Mutex
	activeSessionID string
}

// Deps holds the services exposed through MCP.
type Deps struct {
	Emitter  service.EventEmitter
	Pages    *service.PageService
	Editors  *service.EditorService
	Registry *blocks.Registry
	Logger   zerolog.Logger
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{
		emitter:  deps.Emitter,
		log:      deps.Logger.With().Str("component", "mcp").Logger(),
		pages:    deps.Pages,
		editors:  deps.Editors,
		registry: deps.Registry,
	}
	if s.emitter == nil {
		s.emitter = service.NewLogEmitter(deps.Logger)
	}

	s.mcp = server.NewMCPServer(
		"sitepages-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerPageTools()
	s.registerEditorTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info().Msg("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// emitPageChanged notifies observers that a session's working copy changed.
func (s *Server) emitPageChanged(ctx context.Context, sessionID string) {
	s.emitter.Emit(ctx, "mcp:page-changed", map[string]string{"sessionId": sessionID})
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func (s *Server) setActiveSession(id string) {
	s.mu.Lock()
	s.activeSessionID = id
	s.mu.Unlock()
}

// resolveSessionID returns the sessionId from tool args or falls back to
// the session opened last.
func (s *Server) resolveSessionID(args map[string]any) (string, error) {
	if sid, ok := args["sessionId"].(string); ok && sid != "" {
		return sid, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeSessionID != "" {
		return s.activeSessionID, nil
	}
	return "", fmt.Errorf("no sessionId provided and no page open (use open_page first)")
}

// requireString returns a non-empty string argument.
func requireString(args map[string]any, key string) (string, error) {
	v, _ := args[key].(string)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const pageURIPrefix = "sitepages://pages/"

func (s *Server) registerResources() {
	// ── sitepages://pages ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"sitepages://pages",
		"Saved Pages",
		mcp.WithMIMEType("application/json"),
	), s.handlePagesResource)

	// ── sitepages://pages/{pageKey} ────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"sitepages://pages/{pageKey}",
			"Saved page document",
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handlePageResource,
	)
}

func (s *Server) handlePagesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	pages, err := s.pages.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "sitepages://pages",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePageResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageKey := pageKeyFromURI(uri)
	if pageKey == "" {
		return nil, fmt.Errorf("could not extract pageKey from URI: %s", uri)
	}

	doc, err := s.pages.Document(ctx, pageKey)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// pageKeyFromURI extracts the key from "sitepages://pages/{pageKey}".
func pageKeyFromURI(uri string) string {
	key, ok := strings.CutPrefix(uri, pageURIPrefix)
	if !ok || key == "" || strings.Contains(key, "/") {
		return ""
	}
	return key
}

// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes ideadex tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hack4good/ideadex/internal/index"
	"github.com/hack4good/ideadex/internal/storage"
)

// Server wraps the MCP server with ideadex tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	db    *index.DB
}

// New creates a new MCP server with all ideadex tools registered.
func New(store storage.Provider, db *index.DB) *Server {
	s := &Server{store: store, db: db}

	s.mcp = server.NewMCPServer(
		"ideadex",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_proposals",
		mcp.WithDescription("Full-text search through hackathon proposal projects, descriptions and impact statements."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchProposals)

	s.mcp.AddTool(mcp.NewTool("read_proposal",
		mcp.WithDescription("Read the raw ServiceNow export XML of a proposal."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the proposal export (e.g. app/update/x_snc_hack4good_0_hack4good_proposal_1.xml)")),
	), s.readProposal)

	s.mcp.AddTool(mcp.NewTool("list_proposals",
		mcp.WithDescription("List indexed proposals, optionally filtered by focus area label (e.g. Education)."),
		mcp.WithString("focus", mcp.Description("Optional focus area label to filter by (empty for all)")),
	), s.listProposals)

	s.mcp.AddTool(mcp.NewTool("proposal_stats",
		mcp.WithDescription("Summarise the proposal corpus: total count and per focus area counts."),
	), s.proposalStats)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchProposals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readProposal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listProposals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	focus := ""
	if f, err := req.RequireString("focus"); err == nil {
		focus = f
	}

	rows, _, err := s.db.ListProposals(0, 0, focus)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, r := range rows {
		line := fmt.Sprintf("%s\t%s\t%s", r.Path, r.Project, r.FocusArea)
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no proposals indexed"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) proposalStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	total, counts, err := s.db.Stats()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"total":       total,
		"focus_areas": counts,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

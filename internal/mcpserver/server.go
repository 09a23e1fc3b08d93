// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the documentation framework for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/docservice"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all Ansuz tools registered.
func New(svc *docservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List the project's documentation files, optionally filtered by category."),
		mcp.WithString("category", mcp.Description("Optional category filter: spec, roadmap, progress, phase, stage, report, document")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full content of a documentation file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Project-relative path (e.g. docs/progress.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through document content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Return the inferred knowledge graph: one entity per document plus typed relations "+
			"(informs, tracks, contains, implements, completed_by)."),
	), s.getGraph)

	s.mcp.AddTool(mcp.NewTool("sync_memory",
		mcp.WithDescription("Run the full sync pipeline: regenerate the memory file from the current "+
			"document set and reconcile the local index."),
	), s.syncMemory)

	s.mcp.AddTool(mcp.NewTool("create_stage",
		mcp.WithDescription("Scaffold a new stage document. Titles MUST follow the naming conventions "+
			"(see get_conventions or the ansuz://conventions resource) or relationship inference will miss them."),
		mcp.WithNumber("phase", mcp.Required(), mcp.Description("Phase number (positive integer)")),
		mcp.WithNumber("stage", mcp.Required(), mcp.Description("Stage number (positive integer)")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Human-readable stage name")),
	), s.createStage)

	s.mcp.AddTool(mcp.NewTool("create_report",
		mcp.WithDescription("Scaffold a completion report for an existing stage. When name is omitted it is "+
			"derived from the stage document."),
		mcp.WithNumber("phase", mcp.Required(), mcp.Description("Phase number (positive integer)")),
		mcp.WithNumber("stage", mcp.Required(), mcp.Description("Stage number (positive integer)")),
		mcp.WithString("name", mcp.Description("Optional stage name override")),
	), s.createReport)

	s.mcp.AddTool(mcp.NewTool("get_conventions",
		mcp.WithDescription("Returns the documentation conventions contract: layout, title formats, and "+
			"how relations are inferred. Call this before creating documents."),
	), s.getConventions)

	// Resource: conventions contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://conventions", "Documentation Conventions",
			mcp.WithResourceDescription("Canonical layout and title conventions that drive relationship inference."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readConventionsResource,
	)

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

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := ""
	if c, err := req.RequireString("category"); err == nil {
		category = c
	}
	items, _, err := s.svc.List(ctx, 200, 0, category, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no documents indexed; run sync_memory first"), nil
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", it.Path, it.Category, it.Title)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Get(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(doc.Content), nil
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := s.svc.Graph(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(g, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) syncMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.svc.Sync(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createStage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phase, err := req.RequireInt("phase")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stage, err := req.RequireInt("stage")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if phase < 1 || stage < 1 {
		return mcp.NewToolResultError("phase and stage must be positive integers"), nil
	}

	rel, err := s.svc.CreateStage(ctx, phase, stage, name)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError(fmt.Sprintf("stage document already exists: stage %d.%d", phase, stage)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", rel)), nil
}

func (s *Server) createReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phase, err := req.RequireInt("phase")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stage, err := req.RequireInt("stage")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name := ""
	if v, nErr := req.RequireString("name"); nErr == nil {
		name = v
	}
	if phase < 1 || stage < 1 {
		return mcp.NewToolResultError("phase and stage must be positive integers"), nil
	}

	rel, used, err := s.svc.CreateReport(ctx, phase, stage, name)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("no stage document for stage %d.%d; create the stage first", phase, stage)), nil
		case errors.Is(err, apperr.ErrAlreadyExists):
			return mcp.NewToolResultError(fmt.Sprintf("report already exists for stage %d.%d", phase, stage)), nil
		default:
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (stage name %q)", rel, used)), nil
}

func (s *Server) getConventions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ConventionsContract), nil
}

func (s *Server) readConventionsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://conventions",
			MIMEType: "text/markdown",
			Text:     ConventionsContract,
		},
	}, nil
}

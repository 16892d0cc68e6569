package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/docdex/docdex-mcp/internal/handbook"
	"github.com/docdex/docdex-mcp/internal/refdoc"
	"github.com/docdex/docdex-mcp/internal/render"
	"github.com/docdex/docdex-mcp/internal/template"
	"github.com/docdex/docdex-mcp/internal/vocab"
)

const (
	// ServerName is the MCP server name
	ServerName = "docdex-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Deps carries the constructed subsystems the server exposes as tools.
// Accessor is required. Store, Searcher, and Templates are optional; their
// tools answer with a subsystem-disabled error when absent. A nil Vocab
// falls back to the vocabulary embedded in the binary.
type Deps struct {
	Accessor  *refdoc.Accessor
	Vocab     *vocab.Vocabulary
	Store     handbook.Store
	Searcher  *handbook.Searcher
	Templates *template.Catalog
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	accessor  *refdoc.Accessor
	vocab     *vocab.Vocabulary
	render    *render.Renderer
	store     handbook.Store
	searcher  *handbook.Searcher
	templates *template.Catalog
}

// NewServer creates a new MCP server instance over the injected
// dependencies
func NewServer(deps Deps) (*Server, error) {
	if deps.Accessor == nil {
		return nil, errors.New("accessor is required")
	}

	v := deps.Vocab
	if v == nil {
		var err error
		v, err = vocab.Load("")
		if err != nil {
			return nil, fmt.Errorf("failed to load embedded vocabulary: %w", err)
		}
	}

	searcher := deps.Searcher
	if searcher == nil && deps.Store != nil {
		var err error
		searcher, err = handbook.NewSearcher(deps.Store, handbook.DefaultSearchCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create handbook searcher: %w", err)
		}
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:       mcpServer,
		accessor:  deps.Accessor,
		vocab:     v,
		render:    render.New(v),
		store:     deps.Store,
		searcher:  searcher,
		templates: deps.Templates,
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()
	return server.ServeStdio(s.mcp)
}

// Close releases the handbook store. Safe to call more than once.
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	// Symbol lookup tools
	s.mcp.AddTool(getClassTool(), s.handleGetClass)
	s.mcp.AddTool(getPropertyTool(), s.handleGetProperty)
	s.mcp.AddTool(getMethodTool(), s.handleGetMethod)
	s.mcp.AddTool(getFunctionTool(), s.handleGetFunction)
	s.mcp.AddTool(getConstantTool(), s.handleGetConstant)
	s.mcp.AddTool(searchSymbolsTool(), s.handleSearchSymbols)

	// Handbook tools
	s.mcp.AddTool(searchHandbookTool(), s.handleSearchHandbook)
	s.mcp.AddTool(getHandbookPageTool(), s.handleGetHandbookPage)

	// Template tools
	s.mcp.AddTool(listTemplatesTool(), s.handleListTemplates)
	s.mcp.AddTool(getTemplateTool(), s.handleGetTemplate)

	// Vocabulary and status tools
	s.mcp.AddTool(translateTermTool(), s.handleTranslateTerm)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)

	return nil
}

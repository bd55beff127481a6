package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/codescout/codescout/internal/engine"
)

const (
	// ServerName is the MCP server name
	ServerName = "codescout"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with the search engine it fronts. The
// engine is injected fully constructed; the server never builds its own
// dependencies.
type Server struct {
	mcp    *server.MCPServer
	engine *engine.Engine
	logger *zap.Logger
}

// NewServer creates an MCP server around an existing engine.
func NewServer(eng *engine.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion),
		engine: eng,
		logger: logger,
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdio and blocks until shutdown. Closing the
// engine remains the caller's responsibility.
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(indexCodebaseTool(), s.handleIndexCodebase)
	s.mcp.AddTool(searchCodeTool(), s.handleSearchCode)
	s.mcp.AddTool(getMetricsTool(), s.handleGetMetrics)
}

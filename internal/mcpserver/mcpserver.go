// Package mcpserver exposes the analyzer to MCP clients over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/codepulse/internal/scanner"
	"github.com/panbanda/codepulse/pkg/analyzer"
	"github.com/panbanda/codepulse/pkg/config"
)

// Server wraps the MCP server and registers the codepulse tools.
type Server struct {
	server  *mcp.Server
	engine  *analyzer.Engine
	scanner *scanner.Scanner
}

// NewServer creates an MCP server that analyzes with engine. cfg drives
// file discovery for analyze_files; nil means defaults.
func NewServer(version string, engine *analyzer.Engine, cfg *config.Config) *Server {
	if version == "" {
		version = "dev"
	}
	if engine == nil {
		engine = analyzer.New(analyzer.WithConfig(cfg))
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "codepulse",
			Version: version,
		},
		nil,
	)

	s := &Server{
		server:  server,
		engine:  engine,
		scanner: scanner.New(cfg),
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcp.StdioTransport{})
}

// RunWithTransport serves a single session on t until ctx is done or the
// client disconnects.
func (s *Server) RunWithTransport(ctx context.Context, t mcp.Transport) error {
	return s.server.Run(ctx, t)
}

// tools lists every tool the server registers, in registration order.
var tools = []struct {
	name     string
	describe func() string
}{
	{toolAnalyzeCode, describeAnalyzeCode},
	{toolAnalyzeFiles, describeAnalyzeFiles},
}

const (
	toolAnalyzeCode  = "analyze_code"
	toolAnalyzeFiles = "analyze_files"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolAnalyzeCode,
		Description: describeAnalyzeCode(),
	}, s.handleAnalyzeCode)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        toolAnalyzeFiles,
		Description: describeAnalyzeFiles(),
	}, s.handleAnalyzeFiles)
}

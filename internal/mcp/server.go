package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/toolprobe/internal/history"
	"github.com/ziadkadry99/toolprobe/internal/smoke"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Runner triggers one smoke run. *smoke.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, source history.Source) (*smoke.Result, error)
}

// Server wraps an MCP server that lets agents trigger smoke runs and
// inspect their history.
type Server struct {
	runner Runner
	store  *history.Store
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server. store may be nil, in which case the
// history tools report that no history is available.
func NewServer(runner Runner, store *history.Store) *Server {
	s := &Server{
		runner: runner,
		store:  store,
	}

	s.mcp = server.NewMCPServer(
		"toolprobe",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(runSmokeTestTool, s.handleRunSmokeTest)
	s.mcp.AddTool(listRunsTool, s.handleListRuns)
	s.mcp.AddTool(getRunTool, s.handleGetRun)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

// Package mcp implements the Model Context Protocol server exposing
// the exercise filter as callable tools.
//
// The server is served over stdio by cmd/fitcoach-mcp: stdout carries
// only protocol frames, so every diagnostic in this process must go
// through a stderr-backed logger. Writing anything else to stdout
// corrupts the session.
package mcp

import (
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ashita-ai/fitcoach/internal/exercise"
)

// ServerName identifies this tool server during the MCP handshake.
const ServerName = "fitcoach-exercises"

// ToolSearchExercises is the tool the client bridge invokes; the other
// two are discoverable extras.
const (
	ToolSearchExercises   = "search_exercises"
	ToolGetExerciseByName = "get_exercise_by_name"
	ToolRefreshDataset    = "refresh_dataset"
)

// Server wraps the MCP server with the exercise filter service.
type Server struct {
	mcpServer *mcpserver.MCPServer
	svc       *exercise.Service
	logger    *slog.Logger
}

// New creates and configures an MCP server with all tools registered.
func New(svc *exercise.Service, logger *slog.Logger, version string) *Server {
	s := &Server{
		svc:    svc,
		logger: logger,
	}

	s.mcpServer = mcpserver.NewMCPServer(
		ServerName,
		version,
		mcpserver.WithToolCapabilities(true),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the server over stdin/stdout until EOF or a fatal
// transport error.
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcpServer)
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

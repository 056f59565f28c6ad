package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/ashita-ai/fitcoach/internal/model"
)

// searchToolName is the tool the bridge invokes on the server. It is
// deliberately a client-side constant: if a server version stops
// exposing it, that is ToolNotFound version skew, not a crash.
const searchToolName = "search_exercises"

// ErrToolNotFound indicates client/server version skew: the server's
// tool catalog does not contain the search tool. Not retried.
var ErrToolNotFound = errors.New("bridge: tool not found on server")

// toolSession is the slice of the MCP client the round trip needs;
// narrowed for test fakes. *mcpclient.Client satisfies it.
type toolSession interface {
	Initialize(ctx context.Context, req mcplib.InitializeRequest) (*mcplib.InitializeResult, error)
	ListTools(ctx context.Context, req mcplib.ListToolsRequest) (*mcplib.ListToolsResult, error)
	CallTool(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error)
	Close() error
}

// MCPBridge drives the remote tool path: it spawns the tool server as
// a child process for each call, performs the initialize handshake,
// verifies the tool catalog, invokes the tool and decodes the result.
type MCPBridge struct {
	serverPath string
	args       []string
	timeout    time.Duration
	logger     *slog.Logger

	// connect is swapped out by tests to avoid spawning a real server.
	connect func(ctx context.Context) (toolSession, error)
}

// NewMCPBridge creates the remote transport for a resolved server
// executable.
func NewMCPBridge(serverPath string, args []string, logger *slog.Logger) *MCPBridge {
	b := &MCPBridge{
		serverPath: serverPath,
		args:       args,
		timeout:    RoundTripTimeout,
		logger:     logger,
	}
	b.connect = func(ctx context.Context) (toolSession, error) {
		return mcpclient.NewStdioMCPClient(b.serverPath, nil, b.args...)
	}
	return b
}

// SuggestWorkoutPlan performs the full remote round trip with a
// bounded wait. The exchange runs on its own goroutine; the caller
// blocks on its completion or the 30s deadline, whichever comes first.
// Every failure is folded into a well-formed error result.
func (b *MCPBridge) SuggestWorkoutPlan(ctx context.Context, req model.FilterRequest) model.FilterResult {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	// Buffered so the worker never leaks if the wait expires first.
	done := make(chan model.FilterResult, 1)
	go func() {
		done <- b.roundTrip(callCtx, req)
	}()

	select {
	case result := <-done:
		outcome := "ok"
		if result.Error != "" {
			outcome = "error"
		}
		recordToolCall(ctx, "mcp", outcome)
		return result
	case <-callCtx.Done():
		b.logger.Error("mcp tool round trip timed out", "tool", searchToolName, "timeout", b.timeout)
		recordToolCall(ctx, "mcp", "timeout")
		return model.ErrorResult(req, fmt.Sprintf("tool invocation timed out after %s", b.timeout))
	}
}

// Close is a no-op: sessions are per-call and closed by the round trip.
func (b *MCPBridge) Close() error { return nil }

func (b *MCPBridge) roundTrip(ctx context.Context, req model.FilterRequest) model.FilterResult {
	sess, err := b.connect(ctx)
	if err != nil {
		b.logger.Error("mcp server connection failed", "server", b.serverPath, "error", err)
		return model.ErrorResult(req, fmt.Sprintf("failed to start tool server: %v", err))
	}
	defer func() { _ = sess.Close() }()

	if _, err := sess.Initialize(ctx, mcplib.InitializeRequest{
		Params: mcplib.InitializeParams{
			ClientInfo: mcplib.Implementation{Name: "fitcoach", Version: "1.0"},
		},
	}); err != nil {
		b.logger.Error("mcp initialize failed", "error", err)
		return model.ErrorResult(req, fmt.Sprintf("tool server handshake failed: %v", err))
	}

	tools, err := sess.ListTools(ctx, mcplib.ListToolsRequest{})
	if err != nil {
		b.logger.Error("mcp list tools failed", "error", err)
		return model.ErrorResult(req, fmt.Sprintf("tool discovery failed: %v", err))
	}
	if !hasTool(tools, searchToolName) {
		b.logger.Error("tool missing from server catalog", "tool", searchToolName, "error", ErrToolNotFound)
		return model.ErrorResult(req, fmt.Sprintf("%v: %q", ErrToolNotFound, searchToolName))
	}

	// Arguments() already drops unset keys; nulls are never sent.
	result, err := sess.CallTool(ctx, mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      searchToolName,
			Arguments: req.Arguments(),
		},
	})
	if err != nil {
		b.logger.Error("mcp tool call failed", "tool", searchToolName, "error", err)
		return model.ErrorResult(req, fmt.Sprintf("tool call failed: %v", err))
	}
	if result.IsError {
		msg := firstText(result)
		b.logger.Error("mcp tool returned error", "tool", searchToolName, "message", msg)
		return model.ErrorResult(req, msg)
	}

	return b.decodeResult(req, result)
}

// decodeResult turns the tool response content into a FilterResult:
// text content is JSON-decoded when possible and wrapped as a plain
// text mapping when not; either way the structure is sentinel-cleaned
// before it reaches the agent.
func (b *MCPBridge) decodeResult(req model.FilterRequest, result *mcplib.CallToolResult) model.FilterResult {
	text := firstText(result)
	if text == "" {
		return model.ErrorResult(req, "tool returned no content")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		// Not JSON: hand the raw text through as a wrapped mapping.
		b.logger.Warn("tool result was not JSON, wrapping as text", "error", err)
		payload = map[string]any{"result": text}
	}

	cleaned, _ := Clean(payload).(map[string]any)
	return toFilterResult(req, cleaned)
}

// toFilterResult maps a cleaned payload onto the shared result shape.
// Payloads without an exercises key (wrapped text) become a single-row
// result so the agent still receives the content.
func toFilterResult(req model.FilterRequest, payload map[string]any) model.FilterResult {
	out := model.FilterResult{
		Exercises:      []map[string]any{},
		Source:         model.SourceMCP,
		FiltersApplied: req.Echo(),
	}

	if src, ok := payload["source"].(string); ok {
		out.Source = src
	}
	if msg, ok := payload["error"].(string); ok {
		out.Error = msg
	}
	if echo, ok := payload["filters_applied"].(map[string]any); ok {
		out.FiltersApplied = echo
	}

	if raw, ok := payload["exercises"].([]any); ok {
		for _, item := range raw {
			if row, ok := item.(map[string]any); ok {
				out.Exercises = append(out.Exercises, row)
			}
		}
	} else if _, hasError := payload["error"]; !hasError && len(payload) > 0 {
		out.Exercises = append(out.Exercises, payload)
	}

	out.Count = len(out.Exercises)
	return out
}

func hasTool(tools *mcplib.ListToolsResult, name string) bool {
	if tools == nil {
		return false
	}
	for _, tool := range tools.Tools {
		if tool.Name == name {
			return true
		}
	}
	return false
}

func firstText(result *mcplib.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, content := range result.Content {
		if tc, ok := content.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

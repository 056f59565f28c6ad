// Package bridge connects the conversational agent to the workout
// lookup tool over one of two transports: an MCP tool server running
// as a child process, or a direct in-process call into the exercise
// filter. The transport is chosen once at startup; callers see a
// single synchronous contract either way.
package bridge

import (
	"context"
	"log/slog"
	"os/exec"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/ashita-ai/fitcoach/internal/exercise"
	"github.com/ashita-ai/fitcoach/internal/model"
	"github.com/ashita-ai/fitcoach/internal/telemetry"
)

// RoundTripTimeout bounds the full remote tool exchange: spawn,
// handshake, discovery, invocation and decode.
const RoundTripTimeout = 30 * time.Second

// WorkoutTool is the single contract the agent layer programs against,
// identical for both transports.
type WorkoutTool interface {
	// SuggestWorkoutPlan returns matching exercises for the given
	// filters. It never returns an error: every failure mode is folded
	// into a well-formed FilterResult carrying an error string.
	SuggestWorkoutPlan(ctx context.Context, req model.FilterRequest) model.FilterResult

	// Close releases transport resources.
	Close() error
}

var bridgeMeter = telemetry.Meter("fitcoach/bridge")

// Select picks the transport once at process start: if the configured
// MCP server command resolves, the remote path is used for the rest of
// the process lifetime; otherwise every call goes through the
// in-process filter. The decision is never re-evaluated.
func Select(command string, args []string, svc *exercise.Service, logger *slog.Logger) WorkoutTool {
	if command != "" {
		if path, err := exec.LookPath(command); err == nil {
			logger.Info("workout tool transport selected", "transport", "mcp", "server", path)
			return NewMCPBridge(path, args, logger)
		}
		logger.Warn("mcp server command not found, using in-process filter", "command", command)
	}
	logger.Info("workout tool transport selected", "transport", "local")
	return NewLocalBridge(svc, logger)
}

func recordToolCall(ctx context.Context, transport, outcome string) {
	if counter, err := bridgeMeter.Int64Counter("fitcoach.bridge.tool_calls"); err == nil {
		counter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("transport", transport),
			attribute.String("outcome", outcome),
		))
	}
}

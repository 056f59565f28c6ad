package bridge

import (
	"context"
	"log/slog"

	"github.com/ashita-ai/fitcoach/internal/exercise"
	"github.com/ashita-ai/fitcoach/internal/model"
)

// LocalBridge calls the exercise filter in-process. It has no remote
// failure modes; the only error surface is dataset unavailability,
// which the filter already folds into the result.
type LocalBridge struct {
	svc    *exercise.Service
	logger *slog.Logger
}

// NewLocalBridge creates the in-process fallback transport.
func NewLocalBridge(svc *exercise.Service, logger *slog.Logger) *LocalBridge {
	return &LocalBridge{svc: svc, logger: logger}
}

// SuggestWorkoutPlan filters the dataset directly. Results are passed
// through the same sentinel cleaning as the remote path so the agent
// sees an identical shape regardless of transport.
func (b *LocalBridge) SuggestWorkoutPlan(ctx context.Context, req model.FilterRequest) model.FilterResult {
	result := b.svc.Search(ctx, req)
	result.Exercises = CleanRows(result.Exercises)
	result.Count = len(result.Exercises)

	outcome := "ok"
	if result.Error != "" {
		outcome = "error"
	}
	recordToolCall(ctx, "local", outcome)
	return result
}

// Close is a no-op for the in-process transport.
func (b *LocalBridge) Close() error { return nil }

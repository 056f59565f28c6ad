package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/fitcoach/internal/dataset"
	"github.com/ashita-ai/fitcoach/internal/exercise"
	"github.com/ashita-ai/fitcoach/internal/model"
)

const testCSV = `Title,Type,Equipment,Level
Bench Press,Strength,Barbell,Intermediate
Treadmill Run,Cardio,Machine,Beginner
Plank,Strength,Body Only,Beginner
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "exercises.csv"), []byte(testCSV), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := dataset.NewProvider(dir, "", "", logger)
	return New(exercise.New(provider, logger), logger, "test")
}

func callReq(name string, args map[string]any) mcplib.CallToolRequest {
	req := mcplib.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestHandleSearchExercises(t *testing.T) {
	s := newTestServer(t)

	t.Run("filters by intensity", func(t *testing.T) {
		result, err := s.handleSearchExercises(context.Background(), callReq(ToolSearchExercises, map[string]any{
			"intensity": "beginner",
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		var decoded model.FilterResult
		require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &decoded))
		assert.Equal(t, model.SourceDataset, decoded.Source)
		assert.Equal(t, 2, decoded.Count)
	})

	t.Run("no arguments returns the full set", func(t *testing.T) {
		result, err := s.handleSearchExercises(context.Background(), callReq(ToolSearchExercises, map[string]any{}))
		require.NoError(t, err)

		var decoded model.FilterResult
		require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &decoded))
		assert.Equal(t, 3, decoded.Count)
	})

	t.Run("unmatched filters fall back to a sample", func(t *testing.T) {
		result, err := s.handleSearchExercises(context.Background(), callReq(ToolSearchExercises, map[string]any{
			"intensity": "nonexistent",
		}))
		require.NoError(t, err)

		var decoded model.FilterResult
		require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &decoded))
		assert.Equal(t, model.SourceFallback, decoded.Source)
		assert.NotZero(t, decoded.Count)
	})

	t.Run("limit bounds the result set", func(t *testing.T) {
		result, err := s.handleSearchExercises(context.Background(), callReq(ToolSearchExercises, map[string]any{
			"limit": float64(1),
		}))
		require.NoError(t, err)

		var decoded model.FilterResult
		require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &decoded))
		assert.Equal(t, 1, decoded.Count)
	})
}

func TestHandleGetExerciseByName(t *testing.T) {
	s := newTestServer(t)

	t.Run("partial match", func(t *testing.T) {
		result, err := s.handleGetExerciseByName(context.Background(), callReq(ToolGetExerciseByName, map[string]any{
			"name": "plank",
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		var row map[string]any
		require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &row))
		assert.Equal(t, "Plank", row["title"])
	})

	t.Run("missing name argument", func(t *testing.T) {
		result, err := s.handleGetExerciseByName(context.Background(), callReq(ToolGetExerciseByName, map[string]any{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, textOf(t, result), "name is required")
	})

	t.Run("unknown exercise", func(t *testing.T) {
		result, err := s.handleGetExerciseByName(context.Background(), callReq(ToolGetExerciseByName, map[string]any{
			"name": "burpee",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestHandleRefreshDataset(t *testing.T) {
	// No credentials: the forced download must fail as a tool error,
	// not a transport error.
	s := newTestServer(t)

	result, err := s.handleRefreshDataset(context.Background(), callReq(ToolRefreshDataset, nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "refresh failed")
}

func TestToolRegistration(t *testing.T) {
	s := newTestServer(t)
	assert.NotNil(t, s.MCPServer())
}

package bridge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/fitcoach/internal/dataset"
	"github.com/ashita-ai/fitcoach/internal/exercise"
	"github.com/ashita-ai/fitcoach/internal/model"
)

func newFilterService(t *testing.T) *exercise.Service {
	t.Helper()
	dir := t.TempDir()
	csv := "Title,Level\nPlank,Beginner\nBench Press,Intermediate\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "exercises.csv"), []byte(csv), 0o644))
	return exercise.New(dataset.NewProvider(dir, "", "", testLogger()), testLogger())
}

func TestSelect(t *testing.T) {
	svc := newFilterService(t)

	t.Run("empty command selects local transport", func(t *testing.T) {
		tool := Select("", nil, svc, testLogger())
		_, ok := tool.(*LocalBridge)
		assert.True(t, ok)
	})

	t.Run("unresolvable command falls back to local", func(t *testing.T) {
		tool := Select("definitely-not-a-real-binary-6e1a", nil, svc, testLogger())
		_, ok := tool.(*LocalBridge)
		assert.True(t, ok)
	})

	t.Run("resolvable command selects mcp transport", func(t *testing.T) {
		tool := Select("sh", nil, svc, testLogger())
		_, ok := tool.(*MCPBridge)
		assert.True(t, ok)
	})
}

func TestLocalBridge(t *testing.T) {
	svc := newFilterService(t)
	tool := NewLocalBridge(svc, testLogger())
	defer tool.Close()

	t.Run("filters in process", func(t *testing.T) {
		result := tool.SuggestWorkoutPlan(context.Background(), model.FilterRequest{
			Intensity: strPtr("beginner"),
		})
		assert.Empty(t, result.Error)
		require.Equal(t, 1, result.Count)
		assert.Equal(t, "Plank", result.Exercises[0]["title"])
	})

	t.Run("dataset failure folds into result", func(t *testing.T) {
		broken := NewLocalBridge(
			exercise.New(dataset.NewProvider(t.TempDir(), "", "", testLogger()), testLogger()),
			testLogger(),
		)
		result := broken.SuggestWorkoutPlan(context.Background(), model.FilterRequest{})
		assert.Equal(t, model.SourceError, result.Source)
		assert.NotEmpty(t, result.Error)
	})
}

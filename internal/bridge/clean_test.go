package bridge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	t.Run("drops nil and non-finite map values", func(t *testing.T) {
		in := map[string]any{
			"name":   "Plank",
			"rating": math.NaN(),
			"desc":   nil,
			"reps":   12.0,
		}
		out := Clean(in).(map[string]any)
		assert.Equal(t, map[string]any{"name": "Plank", "reps": 12.0}, out)
	})

	t.Run("drops sentinels from slices", func(t *testing.T) {
		in := []any{"a", nil, math.Inf(1), 1.5}
		out := Clean(in).([]any)
		assert.Equal(t, []any{"a", 1.5}, out)
	})

	t.Run("recurses into nested structures", func(t *testing.T) {
		in := map[string]any{
			"exercises": []any{
				map[string]any{"name": "Squat", "rating": math.NaN()},
			},
		}
		out := Clean(in).(map[string]any)
		rows := out["exercises"].([]any)
		assert.Equal(t, map[string]any{"name": "Squat"}, rows[0])
	})

	t.Run("bare non-finite float becomes nil", func(t *testing.T) {
		assert.Nil(t, Clean(math.NaN()))
		assert.Nil(t, Clean(math.Inf(-1)))
	})

	t.Run("idempotent", func(t *testing.T) {
		in := map[string]any{"a": 1.0, "b": []any{"x", 2.5}}
		once := Clean(in)
		twice := Clean(once)
		assert.Equal(t, once, twice)
	})

	t.Run("scalars pass through", func(t *testing.T) {
		assert.Equal(t, "text", Clean("text"))
		assert.Equal(t, 42, Clean(42))
		assert.Equal(t, true, Clean(true))
	})
}

func TestCleanRows(t *testing.T) {
	rows := []map[string]any{
		{"name": "Squat", "rating": math.NaN()},
		{"name": "Plank", "reps": 10.0},
	}
	out := CleanRows(rows)
	assert.Equal(t, []map[string]any{
		{"name": "Squat"},
		{"name": "Plank", "reps": 10.0},
	}, out)
}

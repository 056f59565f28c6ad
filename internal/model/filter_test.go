package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestEffectiveLimit(t *testing.T) {
	assert.Equal(t, DefaultFilterLimit, FilterRequest{}.EffectiveLimit())
	assert.Equal(t, DefaultFilterLimit, FilterRequest{Limit: -5}.EffectiveLimit())
	assert.Equal(t, 3, FilterRequest{Limit: 3}.EffectiveLimit())
}

func TestArguments(t *testing.T) {
	t.Run("unset fields are absent, not null", func(t *testing.T) {
		args := FilterRequest{Intensity: strPtr("high")}.Arguments()
		assert.Equal(t, map[string]any{
			"limit":     DefaultFilterLimit,
			"intensity": "high",
		}, args)
		_, hasAge := args["age"]
		assert.False(t, hasAge)
	})

	t.Run("all fields set", func(t *testing.T) {
		req := FilterRequest{
			Age:             intPtr(32),
			DailyGoal:       strPtr("build muscle"),
			Intensity:       strPtr("moderate"),
			Mood:            strPtr("focused"),
			Restrictions:    strPtr("knee injury"),
			ExerciseMinutes: intPtr(45),
			Limit:           5,
		}
		assert.Equal(t, map[string]any{
			"age":              32,
			"daily_goal":       "build muscle",
			"intensity":        "moderate",
			"mood":             "focused",
			"restrictions":     "knee injury",
			"exercise_minutes": 45,
			"limit":            5,
		}, req.Arguments())
	})
}

func TestEcho(t *testing.T) {
	assert.Empty(t, FilterRequest{}.Echo())

	echo := FilterRequest{Intensity: strPtr("low"), Age: intPtr(60)}.Echo()
	assert.Equal(t, map[string]any{"intensity": "low", "age": 60}, echo)
}

func TestErrorResult(t *testing.T) {
	req := FilterRequest{Intensity: strPtr("high")}
	result := ErrorResult(req, "dataset offline")

	assert.Equal(t, SourceError, result.Source)
	assert.Equal(t, "dataset offline", result.Error)
	assert.Equal(t, 0, result.Count)
	assert.NotNil(t, result.Exercises)
	assert.Empty(t, result.Exercises)
	assert.Equal(t, map[string]any{"intensity": "high"}, result.FiltersApplied)
}

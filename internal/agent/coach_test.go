package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/fitcoach/internal/gemini"
	"github.com/ashita-ai/fitcoach/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedModel returns one prepared reply per Generate call.
type scriptedModel struct {
	replies [][]gemini.Part
	err     error
	calls   int
	seen    [][]gemini.Content
}

func (m *scriptedModel) Generate(_ context.Context, _, _ string, contents []gemini.Content, _ []gemini.FunctionDeclaration) ([]gemini.Part, error) {
	m.seen = append(m.seen, append([]gemini.Content(nil), contents...))
	if m.err != nil {
		return nil, m.err
	}
	reply := m.replies[m.calls]
	m.calls++
	return reply, nil
}

// recordingTool captures the filter request the coach dispatches.
type recordingTool struct {
	lastReq model.FilterRequest
	result  model.FilterResult
	calls   int
}

func (r *recordingTool) SuggestWorkoutPlan(_ context.Context, req model.FilterRequest) model.FilterResult {
	r.calls++
	r.lastReq = req
	return r.result
}

func (r *recordingTool) Close() error { return nil }

func testProfile() model.UserProfile {
	return model.UserProfile{
		Username:        "alex",
		Age:             32,
		Height:          68,
		Weight:          159,
		ExerciseMinutes: 45,
		Intensity:       "moderate",
	}
}

func TestSummarize(t *testing.T) {
	t.Run("returns the model text", func(t *testing.T) {
		m := &scriptedModel{replies: [][]gemini.Part{
			{{Text: "Strong profile. Try adding a plank today."}},
		}}
		c := New(m, "test-model", &recordingTool{}, NewSessions(), testLogger())

		summary := c.Summarize(context.Background(), testProfile())
		assert.Equal(t, "Strong profile. Try adding a plank today.", summary)
	})

	t.Run("falls back on model error", func(t *testing.T) {
		m := &scriptedModel{err: errors.New("boom")}
		c := New(m, "test-model", &recordingTool{}, NewSessions(), testLogger())

		summary := c.Summarize(context.Background(), testProfile())
		assert.Equal(t, summaryFallback, summary)
	})

	t.Run("does not touch stored sessions", func(t *testing.T) {
		m := &scriptedModel{replies: [][]gemini.Part{{{Text: "ok"}}}}
		sessions := NewSessions()
		c := New(m, "test-model", &recordingTool{}, sessions, testLogger())

		c.Summarize(context.Background(), testProfile())
		_, ok := sessions.Get("alex")
		assert.False(t, ok)
	})
}

func TestGeneratePlanToolLoop(t *testing.T) {
	tool := &recordingTool{result: model.FilterResult{
		Exercises: []map[string]any{{"title": "Plank"}},
		Count:     1,
		Source:    model.SourceDataset,
	}}
	m := &scriptedModel{replies: [][]gemini.Part{
		{{FunctionCall: &gemini.FunctionCall{
			Name: workoutToolName,
			Args: map[string]any{"intensity": "moderate", "limit": float64(5)},
		}}},
		{{Text: "Day 1: Plank, 3 sets of 60s."}},
	}}
	c := New(m, "test-model", tool, NewSessions(), testLogger())

	plan := c.GeneratePlan(context.Background(), testProfile(), "", false)
	assert.Equal(t, "Day 1: Plank, 3 sets of 60s.", plan)

	require.Equal(t, 1, tool.calls)
	require.NotNil(t, tool.lastReq.Intensity)
	assert.Equal(t, "moderate", *tool.lastReq.Intensity)
	assert.Equal(t, 5, tool.lastReq.Limit)

	// Second exchange carries the tool response back to the model.
	require.Equal(t, 2, m.calls)
	last := m.seen[1][len(m.seen[1])-1]
	require.Len(t, last.Parts, 1)
	require.NotNil(t, last.Parts[0].FunctionResponse)
	assert.Equal(t, workoutToolName, last.Parts[0].FunctionResponse.Name)
}

func TestGeneratePlanFollowUpKeepsHistory(t *testing.T) {
	m := &scriptedModel{replies: [][]gemini.Part{
		{{Text: "Initial plan."}},
		{{Text: "Refined plan."}},
	}}
	sessions := NewSessions()
	c := New(m, "test-model", &recordingTool{}, sessions, testLogger())

	first := c.GeneratePlan(context.Background(), testProfile(), "", false)
	assert.Equal(t, "Initial plan.", first)

	second := c.GeneratePlan(context.Background(), testProfile(), "more cardio", true)
	assert.Equal(t, "Refined plan.", second)

	// The refinement exchange sees the entire first conversation.
	require.Equal(t, 2, m.calls)
	assert.Greater(t, len(m.seen[1]), len(m.seen[0]))
}

func TestGeneratePlanFallback(t *testing.T) {
	m := &scriptedModel{err: errors.New("rate limited")}
	c := New(m, "test-model", &recordingTool{}, NewSessions(), testLogger())

	plan := c.GeneratePlan(context.Background(), testProfile(), "", false)
	assert.Equal(t, planFallback, plan)
}

func TestInvokeToolUnknownName(t *testing.T) {
	tool := &recordingTool{}
	c := New(&scriptedModel{}, "test-model", tool, NewSessions(), testLogger())

	response := c.invokeTool(context.Background(), &gemini.FunctionCall{Name: "rm_rf"})
	assert.Contains(t, response["error"], "unknown tool")
	assert.Equal(t, 0, tool.calls)
}

func TestFilterRequestFromArgs(t *testing.T) {
	req := filterRequestFromArgs(map[string]any{
		"age":              float64(40),
		"daily_goal":       "cardio",
		"exercise_minutes": float64(30),
		"limit":            float64(7),
		"mood":             "",
	})
	require.NotNil(t, req.Age)
	assert.Equal(t, 40, *req.Age)
	require.NotNil(t, req.DailyGoal)
	assert.Equal(t, "cardio", *req.DailyGoal)
	require.NotNil(t, req.ExerciseMinutes)
	assert.Equal(t, 30, *req.ExerciseMinutes)
	assert.Equal(t, 7, req.Limit)
	assert.Nil(t, req.Mood)
	assert.Nil(t, req.Intensity)
}

func TestLastTextChunk(t *testing.T) {
	t.Run("skips thought parts", func(t *testing.T) {
		events := []gemini.Content{{
			Role: "model",
			Parts: []gemini.Part{
				{Text: "internal reasoning", Thought: true},
				{Text: "Your plan: squats."},
			},
		}}
		assert.Equal(t, "Your plan: squats.", lastTextChunk(events))
	})

	t.Run("joins multiple text parts", func(t *testing.T) {
		events := []gemini.Content{{
			Role:  "model",
			Parts: []gemini.Part{{Text: "Day 1"}, {Text: "Day 2"}},
		}}
		assert.Equal(t, "Day 1\nDay 2", lastTextChunk(events))
	})

	t.Run("prefers the latest content with text", func(t *testing.T) {
		events := []gemini.Content{
			{Role: "model", Parts: []gemini.Part{{Text: "old"}}},
			{Role: "model", Parts: []gemini.Part{{FunctionCall: &gemini.FunctionCall{Name: "x"}}}},
			{Role: "model", Parts: []gemini.Part{{Text: "new"}}},
		}
		assert.Equal(t, "new", lastTextChunk(events))
	})

	t.Run("empty events", func(t *testing.T) {
		assert.Equal(t, "", lastTextChunk(nil))
	})
}

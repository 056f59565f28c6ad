// Package agent owns the conversational wellness coach: one configured
// model client plus the workout tool, driven through multi-turn
// exchanges for profile summaries and workout plans.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashita-ai/fitcoach/internal/bridge"
	"github.com/ashita-ai/fitcoach/internal/gemini"
	"github.com/ashita-ai/fitcoach/internal/model"
)

// Fixed user-facing fallbacks. Full diagnostic detail is logged; the
// web surface still answers with success-shaped JSON carrying these.
const (
	summaryFallback = "Summary unavailable. Please double-check your Gemini credentials."
	planFallback    = "Workout plan generation unavailable. Please check your configuration."
)

// instruction configures the coach persona and its tool usage.
const instruction = "You are a concise wellness coach. Given JSON structured user data, " +
	"highlight the most relevant traits, fitness focus, and one actionable " +
	"tip for the next workout. Keep it under 80 words. " +
	"When asked to suggest a workout plan, use the suggest_workout_plan tool, " +
	"which queries the gym exercise dataset based on the user's age, daily goal, " +
	"intensity, mood, injury restrictions, and available exercise time. " +
	"Create a personalized workout plan using ONLY exercises from that dataset. " +
	"When users provide additional requirements or want to refine the workout plan, " +
	"remember the previous context and incorporate the new requirements into an " +
	"updated workout plan. Build upon the previous plan rather than starting from scratch."

// workoutToolName is how the tool is declared to the model.
const workoutToolName = "suggest_workout_plan"

// maxToolTurns bounds the tool-call loop so a misbehaving model cannot
// spin the exchange forever.
const maxToolTurns = 4

var workoutToolSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "age": {"type": "integer", "description": "User's age"},
    "daily_goal": {"type": "string", "description": "User's daily fitness goal"},
    "intensity": {"type": "string", "description": "Desired workout intensity (low, moderate, high)"},
    "mood": {"type": "string", "description": "Current mood or energy level"},
    "restrictions": {"type": "string", "description": "Injury restrictions or limitations"},
    "exercise_minutes": {"type": "integer", "description": "Available time for exercise in minutes"},
    "limit": {"type": "integer", "description": "Maximum number of exercises to return"}
  }
}`)

// Model is the slice of the Gemini client the coach uses; narrowed so
// tests can fake the model.
type Model interface {
	Generate(ctx context.Context, model, instruction string, contents []gemini.Content, tools []gemini.FunctionDeclaration) ([]gemini.Part, error)
}

// Coach is the reusable agent wrapper. One instance lives for the
// whole process.
type Coach struct {
	model    Model
	modelID  string
	tool     bridge.WorkoutTool
	sessions *Sessions
	logger   *slog.Logger
}

// New creates a Coach around the given model and workout tool.
func New(m Model, modelID string, tool bridge.WorkoutTool, sessions *Sessions, logger *slog.Logger) *Coach {
	return &Coach{
		model:    m,
		modelID:  modelID,
		tool:     tool,
		sessions: sessions,
		logger:   logger,
	}
}

// Summarize produces a short friendly summary of a profile. It always
// uses a fresh session and never fails outward: any underlying error
// yields the fixed fallback text.
func (c *Coach) Summarize(ctx context.Context, profile model.UserProfile) string {
	payload, _ := json.Marshal(profile)
	prompt := fmt.Sprintf(
		"Summarize the following user fitness profile and mention a single actionable next step:\n%s",
		payload,
	)

	session := &Session{}
	events, err := c.run(ctx, session, prompt)
	if err != nil {
		c.logger.Warn("falling back to static summary", "error", err)
		return summaryFallback
	}
	return lastTextChunk(events)
}

// GeneratePlan creates or refines a personalized workout plan. The
// session mapping decides whether prior context is reused: follow-up
// requests continue the stored conversation, fresh requests replace it.
func (c *Coach) GeneratePlan(ctx context.Context, profile model.UserProfile, additionalRequirements string, isFollowUp bool) string {
	username := profile.Username
	session := c.sessions.Resolve(username, isFollowUp)
	c.logger.Info("generating workout plan",
		"username", username,
		"session_id", session.ID,
		"is_follow_up", isFollowUp,
		"has_additional_requirements", additionalRequirements != "",
	)

	prompt := c.planPrompt(profile, additionalRequirements, isFollowUp)
	events, err := c.run(ctx, session, prompt)
	if err != nil {
		c.logger.Error("workout plan generation failed",
			"username", username, "session_id", session.ID, "error", err)
		return planFallback
	}

	plan := lastTextChunk(events)
	if plan == "" {
		c.logger.Warn("no text content in agent events", "username", username, "events", len(events))
	}
	return plan
}

func (c *Coach) planPrompt(profile model.UserProfile, additionalRequirements string, isFollowUp bool) string {
	if isFollowUp && additionalRequirements != "" {
		return fmt.Sprintf(
			"The user wants to refine their workout plan with the following additional requirements: %s\n\n"+
				"Please update the workout plan using the suggest_workout_plan tool, incorporating "+
				"these new requirements while maintaining consistency with the previous plan. "+
				"Use ONLY exercises from the gym exercise dataset. "+
				"Format the updated workout plan clearly with exercise names, sets, reps, and duration.",
			additionalRequirements,
		)
	}

	payload, _ := json.Marshal(profile)
	prompt := "Based on the following user profile, suggest a personalized workout plan " +
		"using the suggest_workout_plan tool. Use ONLY exercises from the gym exercise " +
		"dataset. Consider the user's age, daily goal, intensity preference, mood, " +
		"injury restrictions, and available exercise time. "
	if additionalRequirements != "" {
		prompt += fmt.Sprintf("\n\nAdditional requirements: %s\n", additionalRequirements)
	}
	prompt += fmt.Sprintf(
		"Format the workout plan clearly with exercise names, sets, reps, and duration.\n\nUser profile: %s",
		payload,
	)
	return prompt
}

// run drives one multi-turn exchange against the model: it sends the
// prompt on top of the session transcript, executes any requested tool
// calls and feeds results back until the model answers in text or the
// turn bound is hit. Returns the model contents produced this exchange.
func (c *Coach) run(ctx context.Context, session *Session, prompt string) ([]gemini.Content, error) {
	session.History = append(session.History, gemini.Content{
		Role:  "user",
		Parts: []gemini.Part{{Text: prompt}},
	})

	tools := []gemini.FunctionDeclaration{{
		Name: workoutToolName,
		Description: "Suggest a workout plan from the gym exercise dataset based on " +
			"age, daily goal, intensity, mood, injury restrictions and available time.",
		Parameters: workoutToolSchema,
	}}

	var events []gemini.Content
	for turn := 0; turn < maxToolTurns; turn++ {
		parts, err := c.model.Generate(ctx, c.modelID, instruction, session.History, tools)
		if err != nil {
			return nil, fmt.Errorf("agent exchange: %w", err)
		}

		content := gemini.Content{Role: "model", Parts: parts}
		session.History = append(session.History, content)
		events = append(events, content)

		calls := functionCalls(parts)
		if len(calls) == 0 {
			return events, nil
		}

		var responses []gemini.Part
		for _, call := range calls {
			responses = append(responses, gemini.Part{
				FunctionResponse: &gemini.FunctionResponse{
					Name:     call.Name,
					Response: c.invokeTool(ctx, call),
				},
			})
		}
		reply := gemini.Content{Role: "user", Parts: responses}
		session.History = append(session.History, reply)
	}
	return events, nil
}

// invokeTool dispatches a model-requested call to the workout tool.
// Unknown tool names get an error mapping back rather than failing the
// exchange.
func (c *Coach) invokeTool(ctx context.Context, call *gemini.FunctionCall) map[string]any {
	if call.Name != workoutToolName {
		c.logger.Warn("model requested unknown tool", "tool", call.Name)
		return map[string]any{"error": fmt.Sprintf("unknown tool %q", call.Name)}
	}

	req := filterRequestFromArgs(call.Args)
	result := c.tool.SuggestWorkoutPlan(ctx, req)

	// JSON round trip keeps the response a plain serializable mapping.
	data, err := json.Marshal(result)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("encode tool result: %v", err)}
	}
	var response map[string]any
	if err := json.Unmarshal(data, &response); err != nil {
		return map[string]any{"error": fmt.Sprintf("decode tool result: %v", err)}
	}
	return response
}

// filterRequestFromArgs maps the model's loosely-typed argument map
// into the shared request shape.
func filterRequestFromArgs(args map[string]any) model.FilterRequest {
	var req model.FilterRequest
	if n, ok := intArg(args, "age"); ok {
		req.Age = &n
	}
	if s, ok := stringArg(args, "daily_goal"); ok {
		req.DailyGoal = &s
	}
	if s, ok := stringArg(args, "intensity"); ok {
		req.Intensity = &s
	}
	if s, ok := stringArg(args, "mood"); ok {
		req.Mood = &s
	}
	if s, ok := stringArg(args, "restrictions"); ok {
		req.Restrictions = &s
	}
	if n, ok := intArg(args, "exercise_minutes"); ok {
		req.ExerciseMinutes = &n
	}
	if n, ok := intArg(args, "limit"); ok {
		req.Limit = n
	}
	return req
}

func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func stringArg(args map[string]any, key string) (string, bool) {
	if s, ok := args[key].(string); ok && s != "" {
		return s, true
	}
	return "", false
}

func functionCalls(parts []gemini.Part) []*gemini.FunctionCall {
	var calls []*gemini.FunctionCall
	for _, part := range parts {
		if part.FunctionCall != nil {
			calls = append(calls, part.FunctionCall)
		}
	}
	return calls
}

// lastTextChunk extracts the most recent human-readable reply: it
// scans the events from the end, skipping thought fragments, and joins
// the text parts of the first content that has any.
func lastTextChunk(events []gemini.Content) string {
	for i := len(events) - 1; i >= 0; i-- {
		var texts []string
		for _, part := range events[i].Parts {
			if part.Text != "" && !part.Thought {
				texts = append(texts, part.Text)
			}
		}
		if len(texts) > 0 {
			return strings.TrimSpace(strings.Join(texts, "\n"))
		}
	}
	return ""
}

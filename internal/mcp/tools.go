package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/ashita-ai/fitcoach/internal/model"
)

func (s *Server) registerTools() {
	// search_exercises: filter the dataset by user attributes.
	s.mcpServer.AddTool(
		mcplib.NewTool(ToolSearchExercises,
			mcplib.WithDescription(`Search the gym exercise dataset for exercises matching user attributes.

Filters are optional and combined: intensity and daily_goal narrow the
result set, restrictions excludes incompatible exercises. When nothing
matches, an unfiltered sample is returned so there is always material
for a plan; check the "source" field to tell the two cases apart.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithNumber("age",
				mcplib.Description("User's age for age-appropriate exercise selection"),
			),
			mcplib.WithString("daily_goal",
				mcplib.Description("Daily fitness goal, e.g. \"build muscle\", \"cardio\", \"flexibility\""),
			),
			mcplib.WithString("intensity",
				mcplib.Description("Desired workout intensity: low, moderate or high"),
			),
			mcplib.WithString("mood",
				mcplib.Description("Current mood or energy level"),
			),
			mcplib.WithString("restrictions",
				mcplib.Description("Physical restrictions; matching exercises are excluded"),
			),
			mcplib.WithNumber("exercise_minutes",
				mcplib.Description("Available time for exercise in minutes"),
			),
			mcplib.WithNumber("limit",
				mcplib.Description("Maximum number of exercises to return"),
				mcplib.Min(1),
				mcplib.Max(100),
				mcplib.DefaultNumber(model.DefaultFilterLimit),
			),
		),
		s.handleSearchExercises,
	)

	// get_exercise_by_name: look up one exercise.
	s.mcpServer.AddTool(
		mcplib.NewTool(ToolGetExerciseByName,
			mcplib.WithDescription("Get a specific exercise from the dataset by (partial) name."),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithString("name",
				mcplib.Description("Name of the exercise to retrieve"),
				mcplib.Required(),
			),
		),
		s.handleGetExerciseByName,
	)

	// refresh_dataset: force a re-download from Kaggle.
	s.mcpServer.AddTool(
		mcplib.NewTool(ToolRefreshDataset,
			mcplib.WithDescription("Force a fresh download of the gym exercise dataset from Kaggle, replacing the cached copy."),
			mcplib.WithDestructiveHintAnnotation(false),
			mcplib.WithOpenWorldHintAnnotation(true),
		),
		s.handleRefreshDataset,
	)
}

func (s *Server) handleSearchExercises(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	req := model.FilterRequest{
		Limit: request.GetInt("limit", model.DefaultFilterLimit),
	}
	if age := request.GetInt("age", 0); age > 0 {
		req.Age = &age
	}
	if v := request.GetString("daily_goal", ""); v != "" {
		req.DailyGoal = &v
	}
	if v := request.GetString("intensity", ""); v != "" {
		req.Intensity = &v
	}
	if v := request.GetString("mood", ""); v != "" {
		req.Mood = &v
	}
	if v := request.GetString("restrictions", ""); v != "" {
		req.Restrictions = &v
	}
	if minutes := request.GetInt("exercise_minutes", 0); minutes > 0 {
		req.ExerciseMinutes = &minutes
	}

	result := s.svc.Search(ctx, req)
	s.logger.Info("search_exercises", "count", result.Count, "source", result.Source)
	return jsonResult(result)
}

func (s *Server) handleGetExerciseByName(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	name := request.GetString("name", "")
	if name == "" {
		return errorResult("name is required"), nil
	}

	row, err := s.svc.GetByName(ctx, name)
	if err != nil {
		return errorResult(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	return jsonResult(row)
}

func (s *Server) handleRefreshDataset(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	rows, err := s.svc.Refresh(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("refresh failed: %v", err)), nil
	}
	s.logger.Info("dataset refreshed", "rows", rows)
	return jsonResult(map[string]any{
		"status": "success",
		"rows":   rows,
	})
}

func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Sprintf("encode result: %v", err)), nil
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(data)},
		},
	}, nil
}

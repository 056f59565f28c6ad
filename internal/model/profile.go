// Package model defines the shared domain types: user profiles, the
// exercise filter request/result pair and the HTTP response envelopes.
package model

import (
	"fmt"
	"strings"
	"time"
)

// UserProfile is a stored fitness profile. Field names mirror the
// users table columns.
type UserProfile struct {
	Username        string    `json:"username"`
	Age             int       `json:"age"`
	Height          float64   `json:"height"`
	Weight          float64   `json:"weight"`
	Restrictions    string    `json:"restrictions,omitempty"`
	Goals           string    `json:"goals,omitempty"`
	Mood            string    `json:"mood,omitempty"`
	ExerciseMinutes int       `json:"exercise_minutes"`
	Intensity       string    `json:"intensity"`
	DailyGoal       string    `json:"daily_goal,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
}

// requiredProfileFields are the fields a profile must carry before it
// can be stored.
var requiredProfileFields = []string{"age", "height", "weight", "exercise_minutes", "intensity"}

// Validate reports which required fields are missing, all at once so
// the caller can surface a single complete message.
func (p UserProfile) Validate() error {
	var missing []string
	for _, field := range requiredProfileFields {
		switch field {
		case "age":
			if p.Age <= 0 {
				missing = append(missing, field)
			}
		case "height":
			if p.Height <= 0 {
				missing = append(missing, field)
			}
		case "weight":
			if p.Weight <= 0 {
				missing = append(missing, field)
			}
		case "exercise_minutes":
			if p.ExerciseMinutes <= 0 {
				missing = append(missing, field)
			}
		case "intensity":
			if strings.TrimSpace(p.Intensity) == "" {
				missing = append(missing, field)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// NormalizeUsername canonicalizes a username for storage and lookup.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

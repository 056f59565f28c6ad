package model

import "time"

// APIResponse is the standard envelope for successful responses.
type APIResponse struct {
	Data any          `json:"data,omitempty"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard envelope for error responses.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ResponseMeta contains request metadata included in every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorCode constants for standard API error codes.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// LookupResponse is returned by POST /api/users/lookup.
type LookupResponse struct {
	Status  string       `json:"status"`
	User    *UserProfile `json:"user,omitempty"`
	Summary string       `json:"summary,omitempty"`
}

// ProfileResponse is returned by profile create/update endpoints.
type ProfileResponse struct {
	Status  string      `json:"status"`
	User    UserProfile `json:"user"`
	Summary string      `json:"summary"`
}

// WorkoutPlanResponse is returned by POST /api/workout-plan.
type WorkoutPlanResponse struct {
	Status      string      `json:"status"`
	WorkoutPlan string      `json:"workout_plan"`
	User        UserProfile `json:"user"`
	IsFollowUp  bool        `json:"is_follow_up"`
}

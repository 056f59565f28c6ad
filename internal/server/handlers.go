package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashita-ai/fitcoach/internal/agent"
	"github.com/ashita-ai/fitcoach/internal/model"
	"github.com/ashita-ai/fitcoach/internal/store"
)

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	repo                store.Repository
	coach               *agent.Coach
	logger              *slog.Logger
	startedAt           time.Time
	version             string
	maxRequestBodyBytes int64
}

// HandlersDeps holds all dependencies for constructing Handlers.
type HandlersDeps struct {
	Repo                store.Repository
	Coach               *agent.Coach
	Logger              *slog.Logger
	Version             string
	MaxRequestBodyBytes int64
}

// NewHandlers creates a new Handlers with all dependencies.
func NewHandlers(d HandlersDeps) *Handlers {
	return &Handlers{
		repo:                d.Repo,
		coach:               d.Coach,
		logger:              d.Logger,
		startedAt:           time.Now(),
		version:             d.Version,
		maxRequestBodyBytes: d.MaxRequestBodyBytes,
	}
}

// profilePayload is the loosely-typed inbound profile body. Numeric
// fields arrive as JSON numbers or are absent; alternate key spellings
// from the UI are accepted.
type profilePayload struct {
	Username        string   `json:"username"`
	Age             *int     `json:"age"`
	Height          *float64 `json:"height"`
	Weight          *float64 `json:"weight"`
	Restrictions    string   `json:"restrictions"`
	Goals           string   `json:"goals"`
	Mood            string   `json:"mood"`
	ExerciseMinutes *int     `json:"exercise_minutes"`
	ExerciseTime    *int     `json:"exercise_time"`
	Intensity       string   `json:"intensity"`
	DailyGoal       string   `json:"daily_goal"`
	DailyGoalAlt    string   `json:"dailyGoal"`
}

func (p profilePayload) toProfile(username string) model.UserProfile {
	profile := model.UserProfile{
		Username:     username,
		Restrictions: p.Restrictions,
		Goals:        p.Goals,
		Mood:         p.Mood,
		Intensity:    p.Intensity,
		DailyGoal:    p.DailyGoal,
	}
	if p.Age != nil {
		profile.Age = *p.Age
	}
	if p.Height != nil {
		profile.Height = *p.Height
	}
	if p.Weight != nil {
		profile.Weight = *p.Weight
	}
	if p.ExerciseMinutes != nil {
		profile.ExerciseMinutes = *p.ExerciseMinutes
	} else if p.ExerciseTime != nil {
		profile.ExerciseMinutes = *p.ExerciseTime
	}
	if profile.DailyGoal == "" {
		profile.DailyGoal = p.DailyGoalAlt
	}
	return profile
}

// HandleLookupUser handles POST /api/users/lookup.
func (h *Handlers) HandleLookupUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := decodeJSON(r, h.maxRequestBodyBytes, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid JSON body")
		return
	}

	username := model.NormalizeUsername(req.Username)
	if username == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "username is required")
		return
	}

	profile, err := h.repo.FetchUser(r.Context(), username)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, r, http.StatusOK, model.LookupResponse{Status: "not_found"})
		return
	}
	if err != nil {
		h.logger.Error("user lookup failed", "username", username, "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "unable to look up user")
		return
	}

	summary := h.coach.Summarize(r.Context(), profile)
	writeJSON(w, r, http.StatusOK, model.LookupResponse{
		Status:  "found",
		User:    &profile,
		Summary: summary,
	})
}

// HandleCreateUser handles POST /api/users.
func (h *Handlers) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload profilePayload
	if err := decodeJSON(r, h.maxRequestBodyBytes, &payload); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid JSON body")
		return
	}

	username := model.NormalizeUsername(payload.Username)
	if username == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "username is required")
		return
	}

	profile := payload.toProfile(username)
	if err := profile.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	stored, err := h.repo.InsertUser(r.Context(), profile)
	if errors.Is(err, store.ErrDuplicate) {
		writeError(w, r, http.StatusConflict, model.ErrCodeConflict, "username already exists")
		return
	}
	if err != nil {
		h.logger.Error("user insert failed", "username", username, "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "unable to save user")
		return
	}

	summary := h.coach.Summarize(r.Context(), stored)
	writeJSON(w, r, http.StatusCreated, model.ProfileResponse{
		Status:  "created",
		User:    stored,
		Summary: summary,
	})
}

// HandleUpdateUser handles PUT /api/users/{username}.
func (h *Handlers) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	username := model.NormalizeUsername(r.PathValue("username"))
	if username == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "username is required")
		return
	}

	if _, err := h.repo.FetchUser(r.Context(), username); errors.Is(err, store.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "user not found")
		return
	} else if err != nil {
		h.logger.Error("user fetch failed", "username", username, "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "unable to update user")
		return
	}

	var payload profilePayload
	if err := decodeJSON(r, h.maxRequestBodyBytes, &payload); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid JSON body")
		return
	}

	profile := payload.toProfile(username)
	if err := profile.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	updated, err := h.repo.UpdateUser(r.Context(), profile)
	if err != nil {
		h.logger.Error("user update failed", "username", username, "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "unable to update user")
		return
	}

	summary := h.coach.Summarize(r.Context(), updated)
	writeJSON(w, r, http.StatusOK, model.ProfileResponse{
		Status:  "updated",
		User:    updated,
		Summary: summary,
	})
}

// HandleWorkoutPlan handles POST /api/workout-plan.
//
// Agent failures do not surface as HTTP errors: the coach degrades to
// fixed fallback text and the response stays success-shaped. Explicit
// error statuses are reserved for this handler's own validation.
func (h *Handlers) HandleWorkoutPlan(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		profilePayload
		AdditionalRequirements string `json:"additional_requirements"`
		IsFollowUp             bool   `json:"is_follow_up"`
	}
	if err := decodeJSON(r, h.maxRequestBodyBytes, &payload); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid JSON body")
		return
	}

	username := model.NormalizeUsername(payload.Username)

	var profile model.UserProfile
	if username != "" {
		stored, err := h.repo.FetchUser(r.Context(), username)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "user not found")
			return
		}
		if err != nil {
			h.logger.Error("user fetch failed", "username", username, "error", err)
			writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "unable to load user")
			return
		}
		profile = stored
	} else {
		// No stored user: run the plan against the inline payload.
		profile = payload.toProfile(username)
	}

	plan := h.coach.GeneratePlan(r.Context(), profile, payload.AdditionalRequirements, payload.IsFollowUp)
	writeJSON(w, r, http.StatusOK, model.WorkoutPlanResponse{
		Status:      "success",
		WorkoutPlan: plan,
		User:        profile,
		IsFollowUp:  payload.IsFollowUp,
	})
}

// HandleHealth handles GET /api/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.repo.Ping(r.Context()); err != nil {
		h.logger.Error("health check database ping failed", "error", err)
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, map[string]any{
		"status":  status,
		"version": h.version,
		"uptime":  time.Since(h.startedAt).String(),
	})
}

package model

// DefaultFilterLimit bounds result sets when the caller does not ask
// for a specific size.
const DefaultFilterLimit = 10

// Source values tag where a FilterResult came from, so callers can
// distinguish a real match from the unfiltered fallback sample.
const (
	SourceDataset  = "dataset"
	SourceFallback = "fallback_sample"
	SourceMCP      = "mcp"
	SourceError    = "error"
)

// FilterRequest carries the optional exercise filter dimensions.
// Pointer fields distinguish "not provided" from a zero value; unset
// fields are omitted from serialized argument maps entirely.
type FilterRequest struct {
	Age             *int    `json:"age,omitempty"`
	DailyGoal       *string `json:"daily_goal,omitempty"`
	Intensity       *string `json:"intensity,omitempty"`
	Mood            *string `json:"mood,omitempty"`
	Restrictions    *string `json:"restrictions,omitempty"`
	ExerciseMinutes *int    `json:"exercise_minutes,omitempty"`
	Limit           int     `json:"limit,omitempty"`
}

// EffectiveLimit returns the requested limit, falling back to the
// default when unset or non-positive.
func (r FilterRequest) EffectiveLimit() int {
	if r.Limit > 0 {
		return r.Limit
	}
	return DefaultFilterLimit
}

// Arguments serializes the request as a tool argument map. Unset
// fields are dropped rather than sent as nulls; limit is always
// present.
func (r FilterRequest) Arguments() map[string]any {
	args := map[string]any{"limit": r.EffectiveLimit()}
	if r.Age != nil {
		args["age"] = *r.Age
	}
	if r.DailyGoal != nil {
		args["daily_goal"] = *r.DailyGoal
	}
	if r.Intensity != nil {
		args["intensity"] = *r.Intensity
	}
	if r.Mood != nil {
		args["mood"] = *r.Mood
	}
	if r.Restrictions != nil {
		args["restrictions"] = *r.Restrictions
	}
	if r.ExerciseMinutes != nil {
		args["exercise_minutes"] = *r.ExerciseMinutes
	}
	return args
}

// Echo returns the filters that were actually provided, for inclusion
// in results.
func (r FilterRequest) Echo() map[string]any {
	echo := make(map[string]any)
	if r.Age != nil {
		echo["age"] = *r.Age
	}
	if r.DailyGoal != nil {
		echo["daily_goal"] = *r.DailyGoal
	}
	if r.Intensity != nil {
		echo["intensity"] = *r.Intensity
	}
	if r.Mood != nil {
		echo["mood"] = *r.Mood
	}
	if r.Restrictions != nil {
		echo["restrictions"] = *r.Restrictions
	}
	if r.ExerciseMinutes != nil {
		echo["exercise_minutes"] = *r.ExerciseMinutes
	}
	return echo
}

// FilterResult is the shared shape for exercise search outcomes. A
// failed search is still a well-formed result with Error set and an
// empty exercise list.
type FilterResult struct {
	Exercises      []map[string]any `json:"exercises"`
	Count          int              `json:"count"`
	Source         string           `json:"source"`
	FiltersApplied map[string]any   `json:"filters_applied,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// ErrorResult builds the canonical failure result for a request.
func ErrorResult(req FilterRequest, msg string) FilterResult {
	return FilterResult{
		Exercises:      []map[string]any{},
		Count:          0,
		Source:         SourceError,
		FiltersApplied: req.Echo(),
		Error:          msg,
	}
}

// Package exercise filters the gym exercise dataset by user
// attributes.
//
// Filtering is deliberately forgiving: each dimension probes an
// ordered list of candidate column names and is skipped entirely when
// none exists, and an empty filtered set falls back to an unfiltered
// sample so the agent always has material to work with. The fallback
// means "no matches" is indistinguishable from a partial success by
// count alone; the Source tag is how callers tell the two apart.
package exercise

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashita-ai/fitcoach/internal/dataset"
	"github.com/ashita-ai/fitcoach/internal/model"
)

// Candidate columns per semantic field, probed in order. The first
// present column wins; no column means no filtering on that dimension.
var (
	intensityColumns   = []string{"intensity", "difficulty", "level"}
	goalColumns        = []string{"goal", "type", "category", "name", "title"}
	restrictionColumns = []string{"equipment", "type", "category", "name"}
	nameColumns        = []string{"name", "title", "exercise", "exercise_name"}
)

// Service answers filter requests against the dataset provider.
type Service struct {
	provider *dataset.Provider
	logger   *slog.Logger
}

// New creates a filter service over the given provider.
func New(provider *dataset.Provider, logger *slog.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Search returns a bounded list of exercises matching the request.
// Dataset failures are converted into an error-carrying result, never
// propagated.
func (s *Service) Search(ctx context.Context, req model.FilterRequest) model.FilterResult {
	table, err := s.provider.Load(ctx)
	if err != nil {
		s.logger.Error("dataset load failed", "error", err)
		return model.ErrorResult(req, fmt.Sprintf("failed to load exercise dataset: %v", err))
	}

	limit := req.EffectiveLimit()
	matched := s.matchRows(table, req)

	source := model.SourceDataset
	if len(matched) == 0 && table.Len() > 0 {
		// Always-give-something policy: an unfiltered sample beats an
		// empty plan. Source tells callers the filters matched nothing.
		source = model.SourceFallback
		for i := 0; i < table.Len() && i < limit; i++ {
			matched = append(matched, i)
		}
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	exercises := make([]map[string]any, 0, len(matched))
	for _, row := range matched {
		exercises = append(exercises, table.RowMap(row))
	}

	return model.FilterResult{
		Exercises:      exercises,
		Count:          len(exercises),
		Source:         source,
		FiltersApplied: req.Echo(),
	}
}

// GetByName returns the first exercise whose name-like column contains
// the given name, probing the usual candidates.
func (s *Service) GetByName(ctx context.Context, name string) (map[string]any, error) {
	table, err := s.provider.Load(ctx)
	if err != nil {
		return nil, err
	}

	col, ok := table.Column(nameColumns...)
	if !ok {
		return nil, fmt.Errorf("exercise: dataset has no name column")
	}
	needle := strings.ToLower(name)
	for i := 0; i < table.Len(); i++ {
		if strings.Contains(strings.ToLower(table.Cell(i, col)), needle) {
			return table.RowMap(i), nil
		}
	}
	return nil, fmt.Errorf("exercise %q not found", name)
}

// Refresh forces a dataset re-download and reports the new row count.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	table, err := s.provider.Refresh(ctx)
	if err != nil {
		return 0, err
	}
	return table.Len(), nil
}

func (s *Service) matchRows(table *dataset.Table, req model.FilterRequest) []int {
	var rows []int
	for i := 0; i < table.Len(); i++ {
		rows = append(rows, i)
	}

	if req.Intensity != nil {
		if col, ok := table.Column(intensityColumns...); ok {
			rows = keepContaining(table, rows, col, *req.Intensity, true)
		}
	}
	if req.DailyGoal != nil {
		if col, ok := table.Column(goalColumns...); ok {
			rows = keepContaining(table, rows, col, *req.DailyGoal, true)
		}
	}
	if req.Restrictions != nil {
		if col, ok := table.Column(restrictionColumns...); ok {
			rows = keepContaining(table, rows, col, *req.Restrictions, false)
		}
	}
	return rows
}

// keepContaining retains rows whose cell does (include=true) or does
// not (include=false) contain needle, case-insensitively.
func keepContaining(table *dataset.Table, rows []int, col, needle string, include bool) []int {
	needle = strings.ToLower(needle)
	kept := rows[:0]
	for _, row := range rows {
		contains := strings.Contains(strings.ToLower(table.Cell(row, col)), needle)
		if contains == include {
			kept = append(kept, row)
		}
	}
	return kept
}

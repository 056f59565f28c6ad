// Package store persists user fitness profiles in SQLite.
package store

import (
	"context"
	"errors"

	"github.com/ashita-ai/fitcoach/internal/model"
)

// ErrNotFound is returned when a requested profile does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicate is returned when inserting an already-taken username.
var ErrDuplicate = errors.New("store: username already exists")

// Repository defines the persistence interface for user profiles.
type Repository interface {
	// FetchUser returns the profile for a username or ErrNotFound.
	FetchUser(ctx context.Context, username string) (model.UserProfile, error)

	// InsertUser stores a new profile; ErrDuplicate if the username is taken.
	InsertUser(ctx context.Context, profile model.UserProfile) (model.UserProfile, error)

	// UpdateUser replaces an existing profile in place.
	UpdateUser(ctx context.Context, profile model.UserProfile) (model.UserProfile, error)

	// SeedDemoData inserts the demo profiles when the table is empty.
	SeedDemoData(ctx context.Context) error

	// SaveExerciseSnapshot replaces the stored copy of the exercise dataset.
	SaveExerciseSnapshot(ctx context.Context, columns []string, rows [][]string) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ashita-ai/fitcoach/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-backed repository at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL keeps concurrent request handlers from tripping over each other.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		age INTEGER,
		height REAL,
		weight REAL,
		restrictions TEXT,
		goals TEXT,
		mood TEXT,
		exercise_minutes INTEGER,
		intensity TEXT,
		daily_goal TEXT,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS exercise_snapshot (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		columns_json TEXT NOT NULL,
		row_json TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const profileColumns = `username, age, height, weight, restrictions, goals, mood,
	exercise_minutes, intensity, daily_goal, created_at`

// FetchUser retrieves a profile by username.
func (s *SQLiteStore) FetchUser(ctx context.Context, username string) (model.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE username = ?`
	row := s.db.QueryRowContext(ctx, query, username)

	var p model.UserProfile
	var createdAt string
	err := row.Scan(
		&p.Username, &p.Age, &p.Height, &p.Weight, &p.Restrictions, &p.Goals,
		&p.Mood, &p.ExerciseMinutes, &p.Intensity, &p.DailyGoal, &createdAt,
	)
	if err == sql.ErrNoRows {
		return model.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("scan user row: %w", err)
	}
	if t, perr := time.Parse("2006-01-02 15:04:05", createdAt); perr == nil {
		p.CreatedAt = t
	}
	return p, nil
}

// InsertUser stores a new profile and returns the stored record.
func (s *SQLiteStore) InsertUser(ctx context.Context, profile model.UserProfile) (model.UserProfile, error) {
	query := `
		INSERT INTO users (
			username, age, height, weight, restrictions, goals, mood,
			exercise_minutes, intensity, daily_goal
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		profile.Username, profile.Age, profile.Height, profile.Weight,
		profile.Restrictions, profile.Goals, profile.Mood,
		profile.ExerciseMinutes, profile.Intensity, profile.DailyGoal,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return model.UserProfile{}, ErrDuplicate
		}
		return model.UserProfile{}, fmt.Errorf("insert user: %w", err)
	}
	return s.FetchUser(ctx, profile.Username)
}

// UpdateUser replaces an existing profile in place.
func (s *SQLiteStore) UpdateUser(ctx context.Context, profile model.UserProfile) (model.UserProfile, error) {
	query := `
		UPDATE users SET
			age = ?, height = ?, weight = ?, restrictions = ?, goals = ?,
			mood = ?, exercise_minutes = ?, intensity = ?, daily_goal = ?
		WHERE username = ?`
	res, err := s.db.ExecContext(ctx, query,
		profile.Age, profile.Height, profile.Weight, profile.Restrictions,
		profile.Goals, profile.Mood, profile.ExerciseMinutes,
		profile.Intensity, profile.DailyGoal, profile.Username,
	)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("update user: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return model.UserProfile{}, ErrNotFound
	}
	return s.FetchUser(ctx, profile.Username)
}

// seedProfiles are the demo users created on first run.
var seedProfiles = []model.UserProfile{
	{
		Username:        "alex",
		Age:             32,
		Height:          68,
		Weight:          159,
		Restrictions:    "knee injury",
		Goals:           "Build lean muscle",
		Mood:            "Focused",
		ExerciseMinutes: 45,
		Intensity:       "moderate",
		DailyGoal:       "Add 20 push-ups",
	},
	{
		Username:        "jordan",
		Age:             41,
		Height:          71,
		Weight:          185,
		Restrictions:    "none",
		Goals:           "Marathon prep",
		Mood:            "Motivated",
		ExerciseMinutes: 60,
		Intensity:       "high",
		DailyGoal:       "Negative split tempo run",
	},
}

// SeedDemoData inserts the demo profiles unless any already exist.
func (s *SQLiteStore) SeedDemoData(ctx context.Context) error {
	for _, p := range seedProfiles {
		if _, err := s.FetchUser(ctx, p.Username); err == nil {
			return nil
		}
	}
	for _, p := range seedProfiles {
		if _, err := s.InsertUser(ctx, p); err != nil {
			return fmt.Errorf("seed %s: %w", p.Username, err)
		}
	}
	return nil
}

// SaveExerciseSnapshot replaces the stored dataset copy with the given
// rows, one JSON-encoded row per record.
func (s *SQLiteStore) SaveExerciseSnapshot(ctx context.Context, columns []string, rows [][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM exercise_snapshot`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	columnsJSON, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO exercise_snapshot (columns_json, row_json) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		rowJSON, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode row: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, string(columnsJSON), string(rowJSON)); err != nil {
			return fmt.Errorf("insert snapshot row: %w", err)
		}
	}
	return tx.Commit()
}

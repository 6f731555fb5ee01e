package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// FeedbackEntry is one row of a user's append-only feedback history.
// Immutable once written; the processed flag and action tag are set at
// write time.
type FeedbackEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Processed bool      `json:"processed"`
	Action    string    `json:"action"`
}

// ProgressEntry is one append-only progress row. Metric pointers are nil
// when the user left the field blank.
type ProgressEntry struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	CreatedAt        time.Time `json:"created_at"`
	Day              int       `json:"day"`
	Weight           *float64  `json:"weight"`
	Height           *float64  `json:"height"`
	WorkoutCompleted bool      `json:"workout_completed"`
	DurationMin      *float64  `json:"duration_min"`
	CaloriesBurned   *float64  `json:"calories_burned"`
	Waist            *float64  `json:"waist"`
	Chest            *float64  `json:"chest"`
}

// AuditRecord is one decision-log row written by the agents.
type AuditRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Agent     string    `json:"agent"`
	Action    string    `json:"action"`
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason,omitempty"`
	Metadata  string    `json:"metadata,omitempty"` // JSON object stored as text; empty when absent
}

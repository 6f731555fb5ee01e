// Package progress records workout sessions on a 7-day cycle and derives
// trend summaries from the accumulated history.
package progress

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/audit"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/storage"
)

// ErrNoData is returned by Summary when the user has no logged sessions.
var ErrNoData = errors.New("no progress data")

// Input is one session's measurements. Pointer fields are optional; a nil
// WorkoutCompleted defaults to true.
type Input struct {
	Weight           *float64 `json:"weight,omitempty"`
	Height           *float64 `json:"height,omitempty"`
	WorkoutCompleted *bool    `json:"workout_completed,omitempty"`
	DurationMin      *float64 `json:"duration_min,omitempty"`
	CaloriesBurned   *float64 `json:"calories_burned,omitempty"`
	Waist            *float64 `json:"waist,omitempty"`
	Chest            *float64 `json:"chest,omitempty"`
}

// Trend is the first-to-last change of one tracked measurement.
type Trend struct {
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// Trends aggregates the per-measurement trends. A measurement needs at least
// two observations to trend; absent ones are omitted.
type Trends struct {
	Weight         *Trend `json:"weight,omitempty"`
	Waist          *Trend `json:"waist,omitempty"`
	Chest          *Trend `json:"chest,omitempty"`
	CompletionRate int    `json:"completion_rate"`
}

// Summary is the user's progress overview.
type Summary struct {
	LastEntry     storage.ProgressEntry   `json:"last_entry"`
	Recent        []storage.ProgressEntry `json:"recent_progress"`
	Trends        Trends                  `json:"trends"`
	TotalSessions int                     `json:"total_sessions"`
}

// Store is the storage surface the Tracker needs.
type Store interface {
	AppendProgress(storage.ProgressEntry) error
	ListProgress(userID string) ([]storage.ProgressEntry, error)
	UsedDays(userID string) ([]int, error)
}

// Tracker logs sessions and computes summaries.
type Tracker struct {
	store Store
	audit audit.Recorder
}

// NewTracker creates a Tracker.
func NewTracker(store Store, rec audit.Recorder) *Tracker {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Tracker{store: store, audit: rec}
}

// Log records one session on the next free day of the user's 7-day cycle.
func (t *Tracker) Log(userID string, in Input) (storage.ProgressEntry, error) {
	day, err := t.nextDay(userID)
	if err != nil {
		return storage.ProgressEntry{}, fmt.Errorf("assigning day for %q: %w", userID, err)
	}

	completed := true
	if in.WorkoutCompleted != nil {
		completed = *in.WorkoutCompleted
	}

	entry := storage.ProgressEntry{
		ID:               uuid.NewString(),
		UserID:           userID,
		CreatedAt:        time.Now(),
		Day:              day,
		Weight:           in.Weight,
		Height:           in.Height,
		DurationMin:      in.DurationMin,
		CaloriesBurned:   in.CaloriesBurned,
		Waist:            in.Waist,
		Chest:            in.Chest,
		WorkoutCompleted: completed,
	}
	if err := t.store.AppendProgress(entry); err != nil {
		return storage.ProgressEntry{}, fmt.Errorf("storing progress for %q: %w", userID, err)
	}

	t.audit.Record("ProgressTracker", "Logged progress", userID, "", map[string]any{
		"day":               day,
		"workout_completed": completed,
	})
	return entry, nil
}

// nextDay returns the first unused day in 1..7, wrapping to 1 when the cycle
// is full.
func (t *Tracker) nextDay(userID string) (int, error) {
	used, err := t.store.UsedDays(userID)
	if err != nil {
		return 0, err
	}
	taken := make(map[int]bool, len(used))
	for _, d := range used {
		taken[d] = true
	}
	for d := 1; d <= 7; d++ {
		if !taken[d] {
			return d, nil
		}
	}
	return 1, nil
}

// History returns the user's sessions in log order.
func (t *Tracker) History(userID string) ([]storage.ProgressEntry, error) {
	return t.store.ListProgress(userID)
}

// Summary computes the trend overview. Returns ErrNoData when the user has
// never logged a session.
func (t *Tracker) Summary(userID string) (Summary, error) {
	entries, err := t.store.ListProgress(userID)
	if err != nil {
		return Summary{}, fmt.Errorf("loading progress for %q: %w", userID, err)
	}
	if len(entries) == 0 {
		return Summary{}, ErrNoData
	}

	recent := entries
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	return Summary{
		LastEntry:     entries[len(entries)-1],
		Recent:        recent,
		Trends:        analyzeTrends(entries),
		TotalSessions: len(entries),
	}, nil
}

func analyzeTrends(entries []storage.ProgressEntry) Trends {
	tr := Trends{
		Weight: trend(entries, func(e storage.ProgressEntry) *float64 { return e.Weight }),
		Waist:  trend(entries, func(e storage.ProgressEntry) *float64 { return e.Waist }),
		Chest:  trend(entries, func(e storage.ProgressEntry) *float64 { return e.Chest }),
	}

	completed := 0
	for _, e := range entries {
		if e.WorkoutCompleted {
			completed++
		}
	}
	tr.CompletionRate = int(math.Round(float64(completed) / float64(len(entries)) * 100))
	return tr
}

// trend computes first-to-last change over the non-nil observations of one
// measurement. Fewer than two observations yield no trend; a zero start
// guards the percent at 0.
func trend(entries []storage.ProgressEntry, get func(storage.ProgressEntry) *float64) *Trend {
	var values []float64
	for _, e := range entries {
		if v := get(e); v != nil {
			values = append(values, *v)
		}
	}
	if len(values) < 2 {
		return nil
	}

	start, end := values[0], values[len(values)-1]
	change := end - start
	percent := 0.0
	if start != 0 {
		percent = change / start * 100
	}
	return &Trend{
		Start:         start,
		End:           end,
		Change:        round2(change),
		ChangePercent: round2(percent),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Package coach runs the full coaching session: persist the profile,
// generate the plans, fold feedback back into the profile, resolve conflicts,
// and regenerate whatever the feedback invalidated.
package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/audit"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/conflict"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/feedback"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/nutrition"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/storage"
)

// Session is the complete output of one coaching run.
type Session struct {
	Profile            profile.UserProfile `json:"profile"`
	WorkoutPlan        string              `json:"workout_text"`
	NutritionPlan      nutrition.Plan      `json:"nutrition_json"`
	Feedback           *feedback.Result    `json:"feedback_result,omitempty"`
	ConflictResolution *conflict.Result    `json:"conflict_resolution,omitempty"`

	Progress     []storage.ProgressEntry `json:"progress"`
	ProgressText string                  `json:"progress_text"`
}

// Profiles is the profile surface the orchestrator needs.
type Profiles interface {
	Save(p profile.UserProfile) error
	ApplyPatch(name string, patch profile.Patch) (profile.UserProfile, error)
}

// WorkoutPlanner generates workout plan text.
type WorkoutPlanner interface {
	Plan(ctx context.Context, prof *profile.UserProfile, resolutions []conflict.Resolution, dynamicRules string) string
}

// NutritionPlanner generates daily meal plans.
type NutritionPlanner interface {
	Generate(ctx context.Context, prof *profile.UserProfile) (nutrition.Plan, error)
}

// FeedbackProcessor classifies and stores feedback.
type FeedbackProcessor interface {
	Process(userName, text string) (feedback.Result, error)
}

// ConflictResolver checks feedback against profile constraints.
type ConflictResolver interface {
	Resolve(ctx context.Context, prof *profile.UserProfile, feedbackText string) conflict.Result
}

// ProgressHistory loads the user's logged sessions.
type ProgressHistory interface {
	History(userID string) ([]storage.ProgressEntry, error)
}

// Orchestrator wires the coaching components into one session flow.
type Orchestrator struct {
	profiles  Profiles
	workout   WorkoutPlanner
	nutrition NutritionPlanner
	feedback  FeedbackProcessor
	conflicts ConflictResolver
	progress  ProgressHistory
	audit     audit.Recorder
}

// New creates an Orchestrator.
func New(profiles Profiles, workout WorkoutPlanner, nutrition NutritionPlanner, fb FeedbackProcessor, conflicts ConflictResolver, progress ProgressHistory, rec audit.Recorder) *Orchestrator {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Orchestrator{
		profiles:  profiles,
		workout:   workout,
		nutrition: nutrition,
		feedback:  fb,
		conflicts: conflicts,
		progress:  progress,
		audit:     rec,
	}
}

// Run executes one coaching session. feedbackText may be empty, in which
// case the feedback, conflict, and regeneration steps are skipped. Plans are
// generated against the profile as it stood when the step ran: a feedback
// patch invalidates the earlier plans, so the affected ones are regenerated
// against the updated profile.
func (o *Orchestrator) Run(ctx context.Context, prof profile.UserProfile, feedbackText string) (Session, error) {
	if err := o.profiles.Save(prof); err != nil {
		return Session{}, fmt.Errorf("saving profile: %w", err)
	}

	session := Session{Profile: prof}
	session.WorkoutPlan = o.workout.Plan(ctx, &prof, nil, "")

	plan, err := o.nutrition.Generate(ctx, &prof)
	if err != nil {
		return Session{}, fmt.Errorf("generating nutrition plan: %w", err)
	}
	session.NutritionPlan = plan

	if feedbackText != "" {
		result, err := o.feedback.Process(prof.Name, feedbackText)
		if err != nil {
			return Session{}, fmt.Errorf("processing feedback: %w", err)
		}
		session.Feedback = &result

		updated, err := o.profiles.ApplyPatch(prof.Name, result.Patch)
		if err != nil {
			return Session{}, fmt.Errorf("applying feedback to profile: %w", err)
		}
		session.Profile = updated

		resolution := o.conflicts.Resolve(ctx, &updated, feedbackText)
		session.ConflictResolution = &resolution

		if len(resolution.Resolutions) > 0 || resolution.Advisory != "" {
			session.WorkoutPlan = o.workout.Plan(ctx, &updated, resolution.Resolutions, resolution.Advisory)
		}
		if result.NutritionAdjustment {
			plan, err := o.nutrition.Generate(ctx, &updated)
			if err != nil {
				return Session{}, fmt.Errorf("regenerating nutrition plan: %w", err)
			}
			session.NutritionPlan = plan
		}
	}

	// Progress is informational: a read failure degrades to an empty history.
	history, err := o.progress.History(prof.Name)
	if err != nil {
		slog.Warn("loading progress history", "user", prof.Name, "error", err)
	}
	session.Progress = history
	session.ProgressText = FormatProgress(history)

	o.audit.Record("Orchestrator", "Completed session", prof.Name, "", map[string]any{
		"had_feedback": feedbackText != "",
	})
	return session, nil
}

// FormatProgress renders the history as one display line per session.
func FormatProgress(entries []storage.ProgressEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf(
			"Day %d | %s | Weight: %skg | Duration: %smin | Calories: %s",
			e.Day,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			num(e.Weight),
			num(e.DurationMin),
			num(e.CaloriesBurned),
		))
	}
	return strings.Join(lines, "\n")
}

func num(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

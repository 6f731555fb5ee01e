package workout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/audit"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/catalog"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/conflict"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
)

const planTimeout = 120 * time.Second

const planPromptTemplate = `You are a professional fitness coach.
Generate a **structured 7-day workout plan** for the user as detailed readable text.
Here is a list of exercises you should use:
%s

Take into account the following conflict resolutions:
%s
And the following dynamic rules:
%s

Include:
- Time of day recommendation (morning/evening)
- Warm-up exercises
- Main exercises with sets, reps, rest, and tips
- Cooldown / stretching
- Daily suggestions and tips
- Progression advice for next week

User Goal: %s
Fitness Level: %s
Preferences: %s

Return ONLY human-readable text. Do NOT use JSON.`

// Completer is the generative text capability the planner depends on.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator produces workout plan text from the filtered catalog.
type Generator struct {
	completer Completer
	exercises []catalog.Exercise
	audit     audit.Recorder
}

// NewGenerator creates a Generator over the full exercise catalog.
func NewGenerator(completer Completer, exercises []catalog.Exercise, rec audit.Recorder) *Generator {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Generator{completer: completer, exercises: exercises, audit: rec}
}

// Plan generates a 7-day plan for the user. Generation failures are folded
// into the returned text so callers always have something to show; the plan
// surface never errors.
func (g *Generator) Plan(ctx context.Context, prof *profile.UserProfile, resolutions []conflict.Resolution, dynamicRules string) string {
	ctx, cancel := context.WithTimeout(ctx, planTimeout)
	defer cancel()

	filtered := ApplyResolutions(Filter(g.exercises, prof), resolutions)

	goal, level, preferences := "general fitness", "Beginner", "none"
	var userID string
	if prof != nil {
		userID = prof.Name
		if prof.Goal != "" {
			goal = prof.Goal
		}
		if prof.Level != "" {
			level = prof.Level
		}
		if prof.Preferences != "" {
			preferences = prof.Preferences
		}
	}

	prompt := fmt.Sprintf(planPromptTemplate,
		FormatExercises(filtered),
		resolutionsSection(resolutions),
		dynamicRulesSection(dynamicRules),
		goal, level, preferences,
	)

	g.audit.Record("WorkoutAgent", "Generating workout plan", userID, "", map[string]any{
		"exercises_after_filter": len(filtered),
		"resolutions":            len(resolutions),
	})

	plan, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		slog.Warn("workout plan generation failed", "user", userID, "error", err)
		return fmt.Sprintf("Failed to generate workout plan: %v", err)
	}
	return strings.TrimSpace(plan)
}

func resolutionsSection(resolutions []conflict.Resolution) string {
	if len(resolutions) == 0 {
		return "(none)"
	}
	data, err := json.Marshal(resolutions)
	if err != nil {
		return "(none)"
	}
	return string(data)
}

func dynamicRulesSection(rules string) string {
	if strings.TrimSpace(rules) == "" {
		return "(none)"
	}
	return rules
}

// Package conflict detects contradictions between a user's stated intent and
// their profile constraints, and maps each conflict to a fixed safe
// resolution. Detection is rule-based and deterministic; the optional
// advisory text from the rule generator never changes the structured outcome.
package conflict

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/audit"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
)

// Statuses reported by Resolve.
const (
	StatusResolved = "resolved"
	StatusNone     = "none"
)

// Resolution is the prescribed adjustment for one detected conflict.
type Resolution struct {
	Adjustment   string `json:"adjustment"`
	SafeFallback string `json:"safe_fallback"`
	Priority     string `json:"priority"` // "high" or "medium"
}

// Result carries the detected conflicts, their resolutions, and an optional
// free-text advisory.
type Result struct {
	Conflicts   []string     `json:"conflicts"`
	Resolutions []Resolution `json:"resolutions"`
	Advisory    string       `json:"advisory,omitempty"`
	Status      string       `json:"status"`
}

// Advisor produces an optional free-text advisory for the detected
// conflicts. Failures are tolerated.
type Advisor interface {
	Generate(ctx context.Context, prof *profile.UserProfile, feedbackText string) (string, error)
}

// detection pairs a predicate over (feedback, health info) with its conflict
// description and resolution. All detections are evaluated: rules are not
// mutually exclusive, a single feedback can trip several.
type detection struct {
	match      func(feedback, health string) bool
	conflict   string
	resolution Resolution
}

var detections = []detection{
	{
		match: func(feedback, health string) bool {
			return strings.Contains(feedback, "high intensity") && strings.Contains(health, "injury")
		},
		conflict: "Increase intensity conflicts with injury status",
		resolution: Resolution{
			Adjustment:   "Decrease intensity and suggest low-impact exercises",
			SafeFallback: "Swap high-impact exercises with cycling or swimming",
			Priority:     "high",
		},
	},
	{
		match: func(feedback, health string) bool {
			return strings.Contains(feedback, "high intensity") &&
				(strings.Contains(health, "heart_condition") || strings.Contains(health, "asthma"))
		},
		conflict: "High-intensity workout conflicts with health condition",
		resolution: Resolution{
			Adjustment:   "Suggest low-intensity exercises",
			SafeFallback: "Replace running with walking or yoga",
			Priority:     "high",
		},
	},
	{
		match: func(feedback, _ string) bool {
			return strings.Contains(feedback, "outdoor") &&
				(strings.Contains(feedback, "rain") || strings.Contains(feedback, "extreme_heat"))
		},
		conflict: "Outdoor workout conflicts with weather conditions",
		resolution: Resolution{
			Adjustment:   "Suggest indoor workouts",
			SafeFallback: "Replace outdoor running with treadmill or indoor cycling",
			Priority:     "medium",
		},
	},
}

// Resolver checks feedback against profile constraints.
type Resolver struct {
	advisor Advisor
	audit   audit.Recorder
}

// NewResolver creates a Resolver. advisor may be nil when no generative
// service is configured.
func NewResolver(advisor Advisor, rec audit.Recorder) *Resolver {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Resolver{advisor: advisor, audit: rec}
}

// Resolve evaluates every detection rule against the feedback text and the
// profile's health info, case-insensitively. The full input context is
// audited before evaluation and the outcome after, so the audit trail shows
// what the decision was based on even when no conflict fires.
func (r *Resolver) Resolve(ctx context.Context, prof *profile.UserProfile, feedbackText string) Result {
	var userID, health string
	if prof != nil {
		userID = prof.Name
		health = strings.ToLower(prof.HealthInfo)
	}
	feedback := strings.ToLower(feedbackText)

	r.audit.Record("ConflictResolver", "Checking conflicts", userID, "", map[string]any{
		"feedback":    feedbackText,
		"health_info": health,
	})

	result := Result{Status: StatusNone}
	for _, d := range detections {
		if d.match(feedback, health) {
			result.Conflicts = append(result.Conflicts, d.conflict)
			result.Resolutions = append(result.Resolutions, d.resolution)
		}
	}
	if len(result.Resolutions) > 0 {
		result.Status = StatusResolved
	}

	// Advisory is best-effort: a generation failure leaves the structured
	// result intact.
	if r.advisor != nil && len(result.Conflicts) > 0 {
		advisory, err := r.advisor.Generate(ctx, prof, feedbackText)
		if err != nil {
			slog.Warn("conflict advisory generation failed", "user", userID, "error", err)
		} else {
			result.Advisory = advisory
		}
	}

	r.audit.Record("ConflictResolver", "Conflicts evaluated", userID, "", map[string]any{
		"conflicts": result.Conflicts,
		"status":    result.Status,
	})

	return result
}

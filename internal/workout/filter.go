// Package workout generates 7-day workout plans: a deterministic filter pass
// narrows the exercise catalog to what is safe and appropriate for the user,
// then a generative model writes the plan text around the surviving rows.
package workout

import (
	"fmt"
	"strings"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/catalog"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/conflict"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
)

// indoorSafe are bodyweight exercises kept by the indoor-workout resolution
// even though they need no equipment.
var indoorSafe = map[string]bool{
	"yoga":     true,
	"push-ups": true,
	"squats":   true,
}

// Filter narrows the catalog by fitness level and profile preferences.
// An empty or unrecognized level passes every difficulty. The filter is
// idempotent: running it twice yields the same set.
func Filter(exercises []catalog.Exercise, prof *profile.UserProfile) []catalog.Exercise {
	var level, preferences string
	if prof != nil {
		level = strings.ToLower(prof.Level)
		preferences = strings.ToLower(prof.Preferences)
	}

	out := make([]catalog.Exercise, 0, len(exercises))
	for _, ex := range exercises {
		difficulty := strings.ToLower(ex.Difficulty)
		switch level {
		case "beginner":
			if difficulty != "beginner" {
				continue
			}
		case "intermediate":
			if difficulty == "advanced" {
				continue
			}
		case "advanced":
			if difficulty != "advanced" && difficulty != "intermediate" {
				continue
			}
		}
		if strings.Contains(preferences, "injury") && strings.EqualFold(ex.InjuryRisk, "high") {
			continue
		}
		if strings.Contains(preferences, "no running") && strings.EqualFold(ex.Name, "running") {
			continue
		}
		out = append(out, ex)
	}
	return out
}

// ApplyResolutions applies each conflict resolution's filter in order.
// Resolutions are matched by their exact adjustment string; unrecognized
// adjustments are ignored rather than rejected.
func ApplyResolutions(exercises []catalog.Exercise, resolutions []conflict.Resolution) []catalog.Exercise {
	for _, res := range resolutions {
		switch res.Adjustment {
		case "Decrease intensity and suggest low-impact exercises":
			exercises = keep(exercises, func(ex catalog.Exercise) bool {
				risk := strings.ToLower(ex.InjuryRisk)
				return risk == "low" || risk == "medium"
			})
		case "Suggest low-intensity exercises":
			exercises = keep(exercises, func(ex catalog.Exercise) bool {
				return strings.EqualFold(ex.Difficulty, "beginner")
			})
		case "Suggest indoor workouts":
			exercises = keep(exercises, func(ex catalog.Exercise) bool {
				return !strings.EqualFold(ex.Equipment, "none") || indoorSafe[strings.ToLower(ex.Name)]
			})
		}
	}
	return exercises
}

func keep(exercises []catalog.Exercise, pred func(catalog.Exercise) bool) []catalog.Exercise {
	out := exercises[:0:0]
	for _, ex := range exercises {
		if pred(ex) {
			out = append(out, ex)
		}
	}
	return out
}

// FormatExercises renders the filtered set as the bullet list embedded in the
// plan prompt.
func FormatExercises(exercises []catalog.Exercise) string {
	lines := make([]string, 0, len(exercises))
	for _, ex := range exercises {
		lines = append(lines, fmt.Sprintf(
			"- %s: Targets %s, Equipment: %s, Difficulty: %s, Injury Risk: %s",
			ex.Name, ex.BodyPart, ex.Equipment, ex.Difficulty, ex.InjuryRisk,
		))
	}
	return strings.Join(lines, "\n")
}

package rules

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/catalog"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/storage"
)

const promptHeader = "Based on the following user data and context, generate appropriate fallback rules:"

// promptExerciseLimit caps how many catalog rows are inlined into the prompt
// so the context stays small for local models.
const promptExerciseLimit = 10

func buildPrompt(prof *profile.UserProfile, feedbackText string, exercises []catalog.Exercise, history []storage.FeedbackEntry, progress []storage.ProgressEntry) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\n")

	b.WriteString("User Profile:\n")
	b.WriteString(jsonSection(prof))
	b.WriteString("\n\n")

	b.WriteString("Workout Data:\n")
	b.WriteString(exerciseSection(exercises))
	b.WriteString("\n\n")

	b.WriteString("Nutrition Data:\n")
	b.WriteString(nutritionSection(prof))
	b.WriteString("\n\n")

	b.WriteString("Progress Data:\n")
	b.WriteString(progressSection(progress))
	b.WriteString("\n\n")

	b.WriteString("Feedback Data:\n")
	b.WriteString(feedbackSection(feedbackText, history))
	b.WriteString("\n\n")

	b.WriteString("Generate concise, actionable coaching rules that reconcile the feedback ")
	b.WriteString("with the profile and history. ")
	b.WriteString("Don't Generate any Pseudo Code. The output should be in Short summary.")
	return b.String()
}

func jsonSection(v any) string {
	if v == nil {
		return "(none)"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "(none)"
	}
	return string(data)
}

func exerciseSection(exercises []catalog.Exercise) string {
	if len(exercises) == 0 {
		return "(none)"
	}
	if len(exercises) > promptExerciseLimit {
		exercises = exercises[:promptExerciseLimit]
	}
	var b strings.Builder
	for _, ex := range exercises {
		fmt.Fprintf(&b, "- %s (%s, difficulty %s, injury risk %s)\n", ex.Name, ex.BodyPart, ex.Difficulty, ex.InjuryRisk)
	}
	return strings.TrimRight(b.String(), "\n")
}

func nutritionSection(prof *profile.UserProfile) string {
	if prof == nil {
		return "(none)"
	}
	var parts []string
	if prof.MealPreference != "" {
		parts = append(parts, "meal preference: "+prof.MealPreference)
	}
	if prof.PortionSize != "" {
		parts = append(parts, "portion size: "+prof.PortionSize)
	}
	if prof.DietaryPreferences != nil {
		parts = append(parts, "dietary preferences: "+jsonSection(prof.DietaryPreferences))
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, "\n")
}

func progressSection(progress []storage.ProgressEntry) string {
	if len(progress) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, e := range progress {
		fmt.Fprintf(&b, "- day %d", e.Day)
		if e.Weight != nil {
			fmt.Fprintf(&b, ", weight %.1fkg", *e.Weight)
		}
		if e.DurationMin != nil {
			fmt.Fprintf(&b, ", duration %.0fmin", *e.DurationMin)
		}
		if e.CaloriesBurned != nil {
			fmt.Fprintf(&b, ", calories %.0f", *e.CaloriesBurned)
		}
		fmt.Fprintf(&b, ", completed %v\n", e.WorkoutCompleted)
	}
	return strings.TrimRight(b.String(), "\n")
}

func feedbackSection(current string, history []storage.FeedbackEntry) string {
	var b strings.Builder
	if current != "" {
		fmt.Fprintf(&b, "current: %s\n", current)
	}
	for _, e := range history {
		fmt.Fprintf(&b, "- %s", e.Text)
		if e.Action != "" {
			fmt.Fprintf(&b, " (action: %s)", e.Action)
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "(none)"
	}
	return strings.TrimRight(b.String(), "\n")
}

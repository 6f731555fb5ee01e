package feedback

import (
	"strings"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
)

// Suggested action tags. Stored with each feedback entry and consumed by the
// orchestrator to decide which plans to regenerate.
const (
	ActionDecreaseIntensity = "decrease_intensity"
	ActionIncreaseIntensity = "increase_intensity"
	ActionFishOnlyMeals     = "fish_only_meals"
	ActionChickenOnlyMeals  = "chicken_only_meals"
	ActionVegetarianMeals   = "vegetarian_meals"
	ActionVeganMeals        = "vegan_meals"
	ActionChangeMeal        = "change_meal"
	ActionReducePortion     = "reduce_portion"
	ActionPositiveFeedback  = "positive_feedback"
	ActionRecorded          = "recorded"
)

// MealPreference carries the structured nutrition intent extracted from a
// diet-related feedback entry.
type MealPreference struct {
	ProteinSource string `json:"protein_source,omitempty"`
	DietType      string `json:"diet_type,omitempty"`
	Exclusive     bool   `json:"exclusive,omitempty"`
	Issue         string `json:"issue,omitempty"`  // "taste" or "portion"
	Action        string `json:"action,omitempty"` // "replace" or "reduce"
}

// rule pairs a match predicate with a classifier. The first rule whose match
// returns true consumes the feedback; later rules are not evaluated. Keeping
// the priority order in this slice makes it explicit and testable instead of
// implicit code order.
type rule struct {
	name     string
	match    func(text string) bool
	classify func(text string, r *Result)
}

// classifierRules is evaluated in order, first match wins.
var classifierRules = []rule{
	{
		name:     "workout",
		match:    func(text string) bool { return strings.Contains(text, "workout") },
		classify: classifyWorkout,
	},
	{
		name: "nutrition",
		match: func(text string) bool {
			return containsAny(text, "meal", "food", "diet", "eat", "fish", "chicken", "vegetarian", "vegan")
		},
		classify: classifyNutrition,
	},
	{
		name:     "general",
		match:    func(text string) bool { return true },
		classify: classifyGeneral,
	},
}

var (
	hardWords     = []string{"hard", "intense", "difficult", "tough"}
	easyWords     = []string{"easy", "simple", "light"}
	tasteWords    = []string{"not tasty", "bad taste", "don't like", "disgusting"}
	portionWords  = []string{"too much", "too large", "big portion"}
	positiveWords = []string{"good", "great", "like", "enjoy"}
)

func classifyWorkout(text string, r *Result) {
	switch {
	case containsAny(text, hardWords...):
		r.SuggestedAction = ActionDecreaseIntensity
		r.AdjustmentsNeeded = true
		r.WorkoutAdjustment = true
		r.Patch.WorkoutIntensity = "lower"
	case containsAny(text, easyWords...):
		r.SuggestedAction = ActionIncreaseIntensity
		r.AdjustmentsNeeded = true
		r.WorkoutAdjustment = true
		r.Patch.WorkoutIntensity = "higher"
	}
	// Workout feedback with no intensity keywords is consumed without action.
}

// classifyNutrition applies the diet sub-rules in fixed priority order:
// exclusive-fish, exclusive-chicken, vegetarian, vegan, taste complaint,
// portion complaint. The first matching sub-rule short-circuits the rest.
func classifyNutrition(text string, r *Result) {
	r.NutritionAdjustment = true
	r.AdjustmentsNeeded = true

	exclusive := strings.Contains(text, "only") || strings.Contains(text, "just")

	switch {
	case strings.Contains(text, "fish") && exclusive:
		r.SuggestedAction = ActionFishOnlyMeals
		r.MealPreference = &MealPreference{ProteinSource: "fish", Exclusive: true}
		r.Patch.DietaryPreferences = &profile.DietaryPreferences{
			ProteinSource: "fish",
			Restrictions:  []string{"no_chicken", "no_mutton", "no_vegetarian"},
		}
	case strings.Contains(text, "chicken") && exclusive:
		r.SuggestedAction = ActionChickenOnlyMeals
		r.MealPreference = &MealPreference{ProteinSource: "chicken", Exclusive: true}
		r.Patch.DietaryPreferences = &profile.DietaryPreferences{
			ProteinSource: "chicken",
			Restrictions:  []string{"no_fish", "no_mutton", "no_vegetarian"},
		}
	case strings.Contains(text, "vegetarian"):
		r.SuggestedAction = ActionVegetarianMeals
		r.MealPreference = &MealPreference{DietType: "vegetarian"}
		r.Patch.DietaryPreferences = &profile.DietaryPreferences{
			DietType:     "vegetarian",
			Restrictions: []string{"no_meat", "no_fish", "no_chicken"},
		}
	case strings.Contains(text, "vegan"):
		r.SuggestedAction = ActionVeganMeals
		r.MealPreference = &MealPreference{DietType: "vegan"}
		r.Patch.DietaryPreferences = &profile.DietaryPreferences{
			DietType:     "vegan",
			Restrictions: []string{"no_meat", "no_fish", "no_chicken", "no_dairy", "no_eggs"},
		}
	case containsAny(text, tasteWords...):
		r.SuggestedAction = ActionChangeMeal
		r.MealPreference = &MealPreference{Issue: "taste", Action: "replace"}
		r.Patch.MealPreferences = "adjusted"
	case containsAny(text, portionWords...):
		r.SuggestedAction = ActionReducePortion
		r.MealPreference = &MealPreference{Issue: "portion", Action: "reduce"}
		r.Patch.PortionSize = "smaller"
	}
}

func classifyGeneral(text string, r *Result) {
	if containsAny(text, positiveWords...) {
		r.SuggestedAction = ActionPositiveFeedback
	} else {
		r.SuggestedAction = ActionRecorded
	}
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Package nutrition generates one-day meal plans: a generative model picks
// five meal names honoring the user's dietary constraints, then each meal is
// priced out in macros via a static estimate table or the Nutritionix API.
package nutrition

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/audit"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/nutritionix"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/storage"
)

const planTimeout = 120 * time.Second

// mealTypes fixes the plan shape: five meals in this order.
var mealTypes = [5]string{"Breakfast", "Morning Snack", "Lunch", "Afternoon Snack", "Dinner"}

const planPromptTemplate = `Create a one-day meal plan with exactly 5 meals in this order:
1. Breakfast
2. Morning Snack
3. Lunch
4. Afternoon Snack
5. Dinner
For a %s looking to %s. %s
%s
Return just the meal names in order, one per line.`

// Meal is one slot of the daily plan with its macro estimate.
type Meal struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
}

// Plan is a full one-day meal plan.
type Plan struct {
	Meals []Meal `json:"meal_plan"`
}

// Completer is the generative text capability the planner depends on.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NutrientLookup resolves a meal description to macros. Implemented by
// *nutritionix.Client; nil disables remote lookups.
type NutrientLookup interface {
	NaturalNutrients(ctx context.Context, query string) (nutritionix.Nutrients, error)
}

// FeedbackStore supplies past feedback folded into the prompt preferences.
type FeedbackStore interface {
	ListFeedback(userID string) ([]storage.FeedbackEntry, error)
}

// defaultNutrients is used whenever a meal cannot be resolved: no estimate
// match, no credentials, or a failed API call.
var defaultNutrients = nutritionix.Nutrients{Calories: 300, Protein: 20, Carbs: 30, Fat: 10}

// estimates are checked by substring before any remote lookup, in order.
var estimates = []struct {
	key       string
	nutrients nutritionix.Nutrients
}{
	{"avocado and egg omelette", nutritionix.Nutrients{Calories: 731.82, Protein: 29.76, Carbs: 33.04, Fat: 55.94}},
	{"cottage cheese with cucumber", nutritionix.Nutrients{Calories: 139.79, Protein: 13.55, Carbs: 11.64, Fat: 4.93}},
	{"grilled chicken with brown rice", nutritionix.Nutrients{Calories: 420.66, Protein: 60.76, Carbs: 28.52, Fat: 7.64}},
	{"carrot sticks with hummus", nutritionix.Nutrients{Calories: 149.62, Protein: 5.87, Carbs: 20.26, Fat: 6.05}},
	{"baked salmon with asparagus", nutritionix.Nutrients{Calories: 889.44, Protein: 84.99, Carbs: 23.56, Fat: 48.72}},
}

// Planner generates daily meal plans for a user profile.
type Planner struct {
	completer Completer
	lookup    NutrientLookup
	store     FeedbackStore
	audit     audit.Recorder
}

// NewPlanner creates a Planner. lookup may be nil when no Nutritionix
// credentials are configured; store may be nil to skip feedback history.
func NewPlanner(completer Completer, lookup NutrientLookup, store FeedbackStore, rec audit.Recorder) *Planner {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Planner{completer: completer, lookup: lookup, store: store, audit: rec}
}

// Generate produces the day's meal plan. Meal selection errors abort the
// plan; nutrient lookups degrade to fixed defaults instead.
func (p *Planner) Generate(ctx context.Context, prof *profile.UserProfile) (Plan, error) {
	ctx, cancel := context.WithTimeout(ctx, planTimeout)
	defer cancel()

	goal, level := "maintain health", "beginner"
	var userID, preferences string
	if prof != nil {
		userID = prof.Name
		if prof.Goal != "" {
			goal = prof.Goal
		}
		if prof.Level != "" {
			level = prof.Level
		}
		preferences = prof.MealPreference
	}
	preferences += pastFeedback(p.store, userID)

	prompt := fmt.Sprintf(planPromptTemplate, level, goal, preferences, restrictions(prof))

	response, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return Plan{}, fmt.Errorf("generating meal plan: %w", err)
	}

	names := mealNames(response)
	plan := Plan{Meals: make([]Meal, 0, len(names))}
	for i, name := range names {
		n := p.nutrients(ctx, name)
		plan.Meals = append(plan.Meals, Meal{
			Type:        mealTypes[i],
			Description: name,
			Calories:    n.Calories,
			Protein:     n.Protein,
			Carbs:       n.Carbs,
			Fat:         n.Fat,
		})
	}

	p.audit.Record("NutritionAgent", "Generated meal plan", userID, "", map[string]any{
		"meals": len(plan.Meals),
	})
	return plan, nil
}

// restrictions maps the profile's dietary preferences to a hard constraint
// line. Exclusive protein source outranks diet type.
func restrictions(prof *profile.UserProfile) string {
	if prof == nil || prof.DietaryPreferences == nil {
		return ""
	}
	switch {
	case prof.DietaryPreferences.ProteinSource == "fish":
		return "All meals must include fish as the primary protein source."
	case prof.DietaryPreferences.DietType == "vegetarian":
		return "All meals must be vegetarian (no meat, fish, or poultry)."
	}
	return ""
}

// pastFeedback folds the user's stored feedback texts into the preference
// section. Read failures degrade to no history.
func pastFeedback(store FeedbackStore, userID string) string {
	if store == nil || userID == "" {
		return ""
	}
	entries, err := store.ListFeedback(userID)
	if err != nil {
		slog.Warn("loading feedback for meal plan", "user", userID, "error", err)
		return ""
	}
	if len(entries) == 0 {
		return ""
	}
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	return " Past feedback: " + strings.Join(texts, "; ")
}

// mealNames extracts up to five non-empty lines from the model response.
func mealNames(response string) []string {
	var names []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		names = append(names, line)
		if len(names) == 5 {
			break
		}
	}
	return names
}

// nutrients resolves one meal's macros: static estimates first, then the
// remote lookup, then the fixed defaults.
func (p *Planner) nutrients(ctx context.Context, meal string) nutritionix.Nutrients {
	lower := strings.ToLower(meal)
	for _, e := range estimates {
		if strings.Contains(lower, e.key) {
			return e.nutrients
		}
	}
	if p.lookup == nil {
		return defaultNutrients
	}
	n, err := p.lookup.NaturalNutrients(ctx, meal)
	if err != nil {
		slog.Warn("nutrient lookup failed, using defaults", "meal", meal, "error", err)
		return defaultNutrients
	}
	return n
}

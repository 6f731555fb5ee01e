// Package feedback maps free-text user feedback to a structured intent via
// ordered keyword matching: a workout-intensity change, a dietary preference,
// a taste or portion complaint, or a neutral acknowledgment.
package feedback

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/audit"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/storage"
)

// Result is the structured interpretation of one feedback entry.
type Result struct {
	Text                string          `json:"feedback_text"`
	Timestamp           time.Time       `json:"timestamp"`
	SuggestedAction     string          `json:"suggested_action"`
	AdjustmentsNeeded   bool            `json:"adjustments_needed"`
	WorkoutAdjustment   bool            `json:"workout_adjustment"`
	NutritionAdjustment bool            `json:"nutrition_adjustment"`
	Patch               profile.Patch   `json:"updated_profile"`
	MealPreference      *MealPreference `json:"meal_preferences,omitempty"`
}

// Store is the storage surface the Interpreter needs.
type Store interface {
	AppendFeedback(storage.FeedbackEntry) error
	ListFeedback(userID string) ([]storage.FeedbackEntry, error)
}

// Interpreter classifies feedback and persists it to the per-user history.
type Interpreter struct {
	store Store
	audit audit.Recorder
}

// NewInterpreter creates an Interpreter. Pass audit.Nop{} to disable
// decision logging.
func NewInterpreter(store Store, rec audit.Recorder) *Interpreter {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Interpreter{store: store, audit: rec}
}

// Classify maps case-folded feedback text to a Result using the ordered rule
// table. Pure: no storage access, usable directly in tests.
func Classify(text string) Result {
	lower := strings.ToLower(text)
	r := Result{Text: text}
	for _, rule := range classifierRules {
		if rule.match(lower) {
			rule.classify(lower, &r)
			break
		}
	}
	return r
}

// Process classifies the feedback and appends it to the user's history as a
// single entry carrying the derived action tag. The entry is written exactly
// once — classification happens before the append, so there is no second
// write to mark it processed.
func (i *Interpreter) Process(userName, text string) (Result, error) {
	result := Classify(text)
	result.Timestamp = time.Now()

	entry := storage.FeedbackEntry{
		ID:        uuid.NewString(),
		UserID:    userName,
		Text:      text,
		CreatedAt: result.Timestamp,
		Processed: true,
		Action:    result.SuggestedAction,
	}
	if err := i.store.AppendFeedback(entry); err != nil {
		return Result{}, fmt.Errorf("storing feedback for %q: %w", userName, err)
	}

	i.audit.Record("FeedbackInterpreter", "Processed feedback", userName, "", map[string]any{
		"suggested_action":     result.SuggestedAction,
		"workout_adjustment":   result.WorkoutAdjustment,
		"nutrition_adjustment": result.NutritionAdjustment,
	})

	return result, nil
}

// History returns the user's full feedback history in append order.
func (i *Interpreter) History(userName string) ([]storage.FeedbackEntry, error) {
	return i.store.ListFeedback(userName)
}

// Recent returns the user's most recent feedback entries, newest first.
func (i *Interpreter) Recent(userName string, count int) ([]storage.FeedbackEntry, error) {
	entries, err := i.store.ListFeedback(userName)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(a, b int) bool {
		return entries[a].CreatedAt.After(entries[b].CreatedAt)
	})
	if count > 0 && len(entries) > count {
		entries = entries[:count]
	}
	return entries, nil
}

// CommonIssues aggregates recurring feedback themes for a user by keyword.
func (i *Interpreter) CommonIssues(userName string) (map[string]int, error) {
	entries, err := i.store.ListFeedback(userName)
	if err != nil {
		return nil, err
	}

	issues := map[string]int{
		"workout_too_hard":    0,
		"workout_too_easy":    0,
		"meal_not_tasty":      0,
		"portion_too_large":   0,
		"positive":            0,
		"dietary_preferences": 0,
	}
	for _, e := range entries {
		text := strings.ToLower(e.Text)
		switch {
		case containsAny(text, hardWords...):
			issues["workout_too_hard"]++
		case containsAny(text, easyWords...):
			issues["workout_too_easy"]++
		case containsAny(text, tasteWords...):
			issues["meal_not_tasty"]++
		case containsAny(text, portionWords...):
			issues["portion_too_large"]++
		case containsAny(text, "fish", "chicken", "vegetarian", "vegan"):
			issues["dietary_preferences"]++
		case containsAny(text, positiveWords...):
			issues["positive"]++
		}
	}
	return issues, nil
}

package nutrition

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/audit"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/nutritionix"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/storage"
)

type stubCompleter struct {
	lastPrompt string
	reply      string
	err        error
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	return s.reply, s.err
}

type stubLookup struct {
	nutrients nutritionix.Nutrients
	err       error
	queries   []string
}

func (s *stubLookup) NaturalNutrients(_ context.Context, query string) (nutritionix.Nutrients, error) {
	s.queries = append(s.queries, query)
	return s.nutrients, s.err
}

type stubFeedback struct {
	entries []storage.FeedbackEntry
}

func (s *stubFeedback) ListFeedback(string) ([]storage.FeedbackEntry, error) {
	return s.entries, nil
}

const fiveMeals = `Avocado and Egg Omelette
Cottage Cheese with Cucumber
Grilled Chicken with Brown Rice
Carrot Sticks with Hummus
Baked Salmon with Asparagus`

func TestGenerateFiveTypedMeals(t *testing.T) {
	completer := &stubCompleter{reply: fiveMeals}
	p := NewPlanner(completer, nil, nil, audit.Nop{})

	plan, err := p.Generate(context.Background(), &profile.UserProfile{Name: "alice", Goal: "lose fat", Level: "beginner"})
	if err != nil {
		t.Fatalf("generating: %v", err)
	}
	if len(plan.Meals) != 5 {
		t.Fatalf("got %d meals, want 5", len(plan.Meals))
	}

	wantTypes := []string{"Breakfast", "Morning Snack", "Lunch", "Afternoon Snack", "Dinner"}
	for i, m := range plan.Meals {
		if m.Type != wantTypes[i] {
			t.Errorf("meal %d type = %q, want %q", i, m.Type, wantTypes[i])
		}
	}

	// All five meals hit the static estimate table, exact values expected.
	if got := plan.Meals[0]; got.Calories != 731.82 || got.Protein != 29.76 || got.Carbs != 33.04 || got.Fat != 55.94 {
		t.Errorf("breakfast macros = %+v", got)
	}
	if got := plan.Meals[4]; got.Calories != 889.44 || got.Protein != 84.99 {
		t.Errorf("dinner macros = %+v", got)
	}
}

func TestGenerateDietaryRestrictionLines(t *testing.T) {
	tests := []struct {
		prefs *profile.DietaryPreferences
		want  string
	}{
		{&profile.DietaryPreferences{ProteinSource: "fish"}, "All meals must include fish as the primary protein source."},
		{&profile.DietaryPreferences{DietType: "vegetarian"}, "All meals must be vegetarian (no meat, fish, or poultry)."},
		// Exclusive protein source wins when both are set.
		{&profile.DietaryPreferences{ProteinSource: "fish", DietType: "vegetarian"}, "All meals must include fish as the primary protein source."},
	}

	for _, tt := range tests {
		completer := &stubCompleter{reply: fiveMeals}
		p := NewPlanner(completer, nil, nil, audit.Nop{})
		prof := &profile.UserProfile{Name: "bob", DietaryPreferences: tt.prefs}

		if _, err := p.Generate(context.Background(), prof); err != nil {
			t.Fatalf("generating: %v", err)
		}
		if !strings.Contains(completer.lastPrompt, tt.want) {
			t.Errorf("prompt missing restriction %q for %+v", tt.want, tt.prefs)
		}
	}
}

func TestGenerateFoldsPastFeedbackIntoPrompt(t *testing.T) {
	completer := &stubCompleter{reply: fiveMeals}
	store := &stubFeedback{entries: []storage.FeedbackEntry{
		{Text: "Prefer vegetarian meals"},
		{Text: "Need higher protein options"},
	}}
	p := NewPlanner(completer, nil, store, audit.Nop{})

	if _, err := p.Generate(context.Background(), &profile.UserProfile{Name: "carol", MealPreference: "spicy food"}); err != nil {
		t.Fatalf("generating: %v", err)
	}
	want := "spicy food Past feedback: Prefer vegetarian meals; Need higher protein options"
	if !strings.Contains(completer.lastPrompt, want) {
		t.Errorf("prompt missing %q\nprompt:\n%s", want, completer.lastPrompt)
	}
}

func TestGenerateUsesLookupForUnknownMeals(t *testing.T) {
	completer := &stubCompleter{reply: "Banana Smoothie\nTrail Mix\nQuinoa Bowl\nApple Slices\nLentil Soup"}
	lookup := &stubLookup{nutrients: nutritionix.Nutrients{Calories: 250, Protein: 12, Carbs: 40, Fat: 5}}
	p := NewPlanner(completer, lookup, nil, audit.Nop{})

	plan, err := p.Generate(context.Background(), &profile.UserProfile{Name: "dave"})
	if err != nil {
		t.Fatalf("generating: %v", err)
	}
	if len(lookup.queries) != 5 {
		t.Errorf("lookup called %d times, want 5", len(lookup.queries))
	}
	if plan.Meals[0].Calories != 250 {
		t.Errorf("calories = %v, want lookup value", plan.Meals[0].Calories)
	}
}

func TestGenerateLookupFailureUsesDefaults(t *testing.T) {
	completer := &stubCompleter{reply: "Mystery Bowl\nB\nC\nD\nE"}
	lookup := &stubLookup{err: errors.New("unauthorized")}
	p := NewPlanner(completer, lookup, nil, audit.Nop{})

	plan, err := p.Generate(context.Background(), &profile.UserProfile{Name: "erin"})
	if err != nil {
		t.Fatalf("generating: %v", err)
	}
	m := plan.Meals[0]
	if m.Calories != 300 || m.Protein != 20 || m.Carbs != 30 || m.Fat != 10 {
		t.Errorf("macros = %+v, want fixed defaults", m)
	}
}

func TestGenerateNoLookupUsesDefaults(t *testing.T) {
	completer := &stubCompleter{reply: "Mystery Bowl\nB\nC\nD\nE"}
	p := NewPlanner(completer, nil, nil, audit.Nop{})

	plan, err := p.Generate(context.Background(), &profile.UserProfile{Name: "frank"})
	if err != nil {
		t.Fatalf("generating: %v", err)
	}
	if plan.Meals[0].Calories != 300 {
		t.Errorf("calories = %v, want default 300", plan.Meals[0].Calories)
	}
}

func TestGenerateTruncatesToFiveLines(t *testing.T) {
	completer := &stubCompleter{reply: "A\n\nB\nC\nD\nE\nF\nG"}
	p := NewPlanner(completer, nil, nil, audit.Nop{})

	plan, err := p.Generate(context.Background(), &profile.UserProfile{Name: "gina"})
	if err != nil {
		t.Fatalf("generating: %v", err)
	}
	if len(plan.Meals) != 5 {
		t.Fatalf("got %d meals, want 5", len(plan.Meals))
	}
	if plan.Meals[1].Description != "B" {
		t.Errorf("blank lines must be skipped, got %q", plan.Meals[1].Description)
	}
}

func TestGenerateShortResponseYieldsFewerMeals(t *testing.T) {
	completer := &stubCompleter{reply: "Oatmeal\nSalad"}
	p := NewPlanner(completer, nil, nil, audit.Nop{})

	plan, err := p.Generate(context.Background(), &profile.UserProfile{Name: "hank"})
	if err != nil {
		t.Fatalf("generating: %v", err)
	}
	if len(plan.Meals) != 2 {
		t.Fatalf("got %d meals, want 2", len(plan.Meals))
	}
	if plan.Meals[1].Type != "Morning Snack" {
		t.Errorf("second meal type = %q", plan.Meals[1].Type)
	}
}

func TestGenerateCompleterFailure(t *testing.T) {
	p := NewPlanner(&stubCompleter{err: errors.New("model down")}, nil, nil, audit.Nop{})
	if _, err := p.Generate(context.Background(), &profile.UserProfile{Name: "ivy"}); err == nil {
		t.Error("expected error when meal selection fails")
	}
}

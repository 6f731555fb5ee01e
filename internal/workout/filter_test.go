package workout

import (
	"reflect"
	"testing"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/catalog"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/conflict"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
)

var testCatalog = []catalog.Exercise{
	{Name: "Running", BodyPart: "Legs", Equipment: "None", Difficulty: "Intermediate", InjuryRisk: "High"},
	{Name: "Walking", BodyPart: "Legs", Equipment: "None", Difficulty: "Beginner", InjuryRisk: "Low"},
	{Name: "Deadlift", BodyPart: "Back", Equipment: "Barbell", Difficulty: "Advanced", InjuryRisk: "High"},
	{Name: "Yoga", BodyPart: "Full Body", Equipment: "None", Difficulty: "Beginner", InjuryRisk: "Low"},
	{Name: "Cycling", BodyPart: "Legs", Equipment: "Bicycle", Difficulty: "Intermediate", InjuryRisk: "Medium"},
}

func names(exercises []catalog.Exercise) []string {
	out := make([]string, len(exercises))
	for i, ex := range exercises {
		out[i] = ex.Name
	}
	return out
}

func TestFilterByLevel(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{"beginner", []string{"Walking", "Yoga"}},
		{"Beginner", []string{"Walking", "Yoga"}},
		{"intermediate", []string{"Running", "Walking", "Yoga", "Cycling"}},
		{"advanced", []string{"Running", "Deadlift", "Cycling"}},
		// Unrecognized and empty levels pass every difficulty.
		{"expert", []string{"Running", "Walking", "Deadlift", "Yoga", "Cycling"}},
		{"", []string{"Running", "Walking", "Deadlift", "Yoga", "Cycling"}},
	}

	for _, tt := range tests {
		got := Filter(testCatalog, &profile.UserProfile{Level: tt.level})
		if !reflect.DeepEqual(names(got), tt.want) {
			t.Errorf("Filter(level=%q) = %v, want %v", tt.level, names(got), tt.want)
		}
	}
}

func TestFilterInjuryPreferenceDropsHighRisk(t *testing.T) {
	prof := &profile.UserProfile{Level: "intermediate", Preferences: "knee injury"}
	got := Filter(testCatalog, prof)
	want := []string{"Walking", "Yoga", "Cycling"}
	if !reflect.DeepEqual(names(got), want) {
		t.Errorf("got %v, want %v", names(got), want)
	}
}

func TestFilterNoRunningDropsExactName(t *testing.T) {
	prof := &profile.UserProfile{Preferences: "no running please"}
	got := Filter(testCatalog, prof)
	for _, ex := range got {
		if ex.Name == "Running" {
			t.Error("Running survived a 'no running' preference")
		}
	}
	// Only the exercise literally named Running is excluded.
	if len(got) != len(testCatalog)-1 {
		t.Errorf("got %v", names(got))
	}
}

func TestFilterIdempotent(t *testing.T) {
	prof := &profile.UserProfile{Level: "intermediate", Preferences: "injury"}
	once := Filter(testCatalog, prof)
	twice := Filter(once, prof)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second pass changed the set: %v vs %v", names(once), names(twice))
	}
}

func TestApplyResolutions(t *testing.T) {
	tests := []struct {
		adjustment string
		want       []string
	}{
		{"Decrease intensity and suggest low-impact exercises", []string{"Walking", "Yoga", "Cycling"}},
		{"Suggest low-intensity exercises", []string{"Walking", "Yoga"}},
		{"Suggest indoor workouts", []string{"Deadlift", "Yoga", "Cycling"}},
		// Unrecognized adjustments are a no-op.
		{"Do something else entirely", []string{"Running", "Walking", "Deadlift", "Yoga", "Cycling"}},
	}

	for _, tt := range tests {
		got := ApplyResolutions(testCatalog, []conflict.Resolution{{Adjustment: tt.adjustment}})
		if !reflect.DeepEqual(names(got), tt.want) {
			t.Errorf("ApplyResolutions(%q) = %v, want %v", tt.adjustment, names(got), tt.want)
		}
	}
}

func TestApplyResolutionsStack(t *testing.T) {
	resolutions := []conflict.Resolution{
		{Adjustment: "Decrease intensity and suggest low-impact exercises"},
		{Adjustment: "Suggest low-intensity exercises"},
	}
	got := ApplyResolutions(testCatalog, resolutions)
	want := []string{"Walking", "Yoga"}
	if !reflect.DeepEqual(names(got), want) {
		t.Errorf("got %v, want %v", names(got), want)
	}
}

func TestFormatExercises(t *testing.T) {
	got := FormatExercises(testCatalog[:1])
	want := "- Running: Targets Legs, Equipment: None, Difficulty: Intermediate, Injury Risk: High"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

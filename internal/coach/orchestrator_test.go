package coach

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/audit"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/conflict"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/feedback"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/nutrition"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/storage"
)

type fakeProfiles struct {
	saved   []profile.UserProfile
	patched []profile.Patch
	current profile.UserProfile
}

func (f *fakeProfiles) Save(p profile.UserProfile) error {
	f.saved = append(f.saved, p)
	f.current = p
	return nil
}

func (f *fakeProfiles) ApplyPatch(name string, patch profile.Patch) (profile.UserProfile, error) {
	f.patched = append(f.patched, patch)
	if patch.WorkoutIntensity != "" {
		f.current.WorkoutIntensity = patch.WorkoutIntensity
	}
	return f.current, nil
}

type fakeWorkout struct {
	calls       int
	resolutions [][]conflict.Resolution
}

func (f *fakeWorkout) Plan(_ context.Context, _ *profile.UserProfile, resolutions []conflict.Resolution, _ string) string {
	f.calls++
	f.resolutions = append(f.resolutions, resolutions)
	return "workout plan"
}

type fakeNutrition struct {
	calls int
}

func (f *fakeNutrition) Generate(context.Context, *profile.UserProfile) (nutrition.Plan, error) {
	f.calls++
	return nutrition.Plan{Meals: []nutrition.Meal{{Type: "Breakfast", Description: "Oatmeal"}}}, nil
}

type fakeFeedback struct {
	result feedback.Result
}

func (f *fakeFeedback) Process(_, text string) (feedback.Result, error) {
	r := f.result
	r.Text = text
	return r, nil
}

type fakeConflicts struct {
	result conflict.Result
	calls  int
}

func (f *fakeConflicts) Resolve(context.Context, *profile.UserProfile, string) conflict.Result {
	f.calls++
	return f.result
}

type fakeProgress struct {
	entries []storage.ProgressEntry
}

func (f *fakeProgress) History(string) ([]storage.ProgressEntry, error) {
	return f.entries, nil
}

func newTestOrchestrator(profiles *fakeProfiles, workout *fakeWorkout, nut *fakeNutrition, fb *fakeFeedback, conf *fakeConflicts, prog *fakeProgress) *Orchestrator {
	return New(profiles, workout, nut, fb, conf, prog, audit.Nop{})
}

func TestRunWithoutFeedback(t *testing.T) {
	profiles := &fakeProfiles{}
	workout := &fakeWorkout{}
	nut := &fakeNutrition{}
	conf := &fakeConflicts{}
	o := newTestOrchestrator(profiles, workout, nut, &fakeFeedback{}, conf, &fakeProgress{})

	session, err := o.Run(context.Background(), profile.UserProfile{Name: "alice"}, "")
	if err != nil {
		t.Fatalf("running: %v", err)
	}

	if len(profiles.saved) != 1 {
		t.Errorf("profile saved %d times, want 1", len(profiles.saved))
	}
	if workout.calls != 1 || nut.calls != 1 {
		t.Errorf("plan calls = %d workout, %d nutrition; want 1 each", workout.calls, nut.calls)
	}
	if conf.calls != 0 {
		t.Error("conflict resolution must be skipped without feedback")
	}
	if session.Feedback != nil || session.ConflictResolution != nil {
		t.Error("feedback fields must stay empty without feedback")
	}
	if session.WorkoutPlan != "workout plan" || len(session.NutritionPlan.Meals) != 1 {
		t.Errorf("session = %+v", session)
	}
}

func TestRunFeedbackRegeneratesWorkoutOnResolutions(t *testing.T) {
	profiles := &fakeProfiles{}
	workout := &fakeWorkout{}
	nut := &fakeNutrition{}
	fb := &fakeFeedback{result: feedback.Result{
		SuggestedAction:   feedback.ActionDecreaseIntensity,
		WorkoutAdjustment: true,
		Patch:             profile.Patch{WorkoutIntensity: "lower"},
	}}
	conf := &fakeConflicts{result: conflict.Result{
		Conflicts:   []string{"Increase intensity conflicts with injury status"},
		Resolutions: []conflict.Resolution{{Adjustment: "Decrease intensity and suggest low-impact exercises"}},
		Status:      conflict.StatusResolved,
	}}
	o := newTestOrchestrator(profiles, workout, nut, fb, conf, &fakeProgress{})

	session, err := o.Run(context.Background(), profile.UserProfile{Name: "bob", HealthInfo: "injury"}, "too much high intensity")
	if err != nil {
		t.Fatalf("running: %v", err)
	}

	if workout.calls != 2 {
		t.Errorf("workout generated %d times, want initial + regenerated", workout.calls)
	}
	if len(workout.resolutions[1]) != 1 {
		t.Error("regeneration must carry the conflict resolutions")
	}
	if nut.calls != 1 {
		t.Errorf("nutrition generated %d times, want 1 (no nutrition adjustment)", nut.calls)
	}
	if len(profiles.patched) != 1 {
		t.Fatalf("patch applied %d times, want 1", len(profiles.patched))
	}
	if session.Profile.WorkoutIntensity != "lower" {
		t.Errorf("session profile intensity = %q, want patched value", session.Profile.WorkoutIntensity)
	}
	if session.ConflictResolution == nil || session.ConflictResolution.Status != conflict.StatusResolved {
		t.Errorf("conflict resolution = %+v", session.ConflictResolution)
	}
}

func TestRunFeedbackRegeneratesNutrition(t *testing.T) {
	profiles := &fakeProfiles{}
	workout := &fakeWorkout{}
	nut := &fakeNutrition{}
	fb := &fakeFeedback{result: feedback.Result{
		SuggestedAction:     feedback.ActionVegetarianMeals,
		NutritionAdjustment: true,
	}}
	o := newTestOrchestrator(profiles, workout, nut, fb, &fakeConflicts{}, &fakeProgress{})

	if _, err := o.Run(context.Background(), profile.UserProfile{Name: "carol"}, "I want vegetarian meals"); err != nil {
		t.Fatalf("running: %v", err)
	}
	if nut.calls != 2 {
		t.Errorf("nutrition generated %d times, want initial + regenerated", nut.calls)
	}
	if workout.calls != 1 {
		t.Errorf("workout generated %d times, want 1 (no resolutions)", workout.calls)
	}
}

func TestRunProgressText(t *testing.T) {
	weight, duration, calories := 80.0, 30.0, 200.0
	ts := time.Date(2025, 3, 1, 7, 30, 0, 0, time.UTC)
	prog := &fakeProgress{entries: []storage.ProgressEntry{{
		UserID: "dave", Day: 1, CreatedAt: ts,
		Weight: &weight, DurationMin: &duration, CaloriesBurned: &calories,
	}}}
	o := newTestOrchestrator(&fakeProfiles{}, &fakeWorkout{}, &fakeNutrition{}, &fakeFeedback{}, &fakeConflicts{}, prog)

	session, err := o.Run(context.Background(), profile.UserProfile{Name: "dave"}, "")
	if err != nil {
		t.Fatalf("running: %v", err)
	}
	want := "Day 1 | 2025-03-01 07:30:00 | Weight: 80kg | Duration: 30min | Calories: 200"
	if session.ProgressText != want {
		t.Errorf("progress text = %q, want %q", session.ProgressText, want)
	}
}

func TestFormatProgressMissingFields(t *testing.T) {
	entries := []storage.ProgressEntry{{Day: 3, CreatedAt: time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)}}
	got := FormatProgress(entries)
	if !strings.Contains(got, "Weight: -kg") || !strings.Contains(got, "Calories: -") {
		t.Errorf("missing fields not rendered as dashes: %q", got)
	}
}

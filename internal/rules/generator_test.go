package rules

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/catalog"
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

type stubHistory struct {
	feedback []storage.FeedbackEntry
	progress []storage.ProgressEntry
	err      error
}

func (s *stubHistory) ListFeedback(string) ([]storage.FeedbackEntry, error) {
	return s.feedback, s.err
}

func (s *stubHistory) ListProgress(string) ([]storage.ProgressEntry, error) {
	return s.progress, s.err
}

func TestGenerateAssemblesAllSections(t *testing.T) {
	weight := 80.0
	completer := &stubCompleter{reply: "Prefer low-impact sessions."}
	store := &stubHistory{
		feedback: []storage.FeedbackEntry{{Text: "too intense", Action: "decrease_intensity"}},
		progress: []storage.ProgressEntry{{Day: 1, Weight: &weight, WorkoutCompleted: true}},
	}
	exercises := []catalog.Exercise{{Name: "Cycling", BodyPart: "Legs", Difficulty: "Beginner", InjuryRisk: "Low"}}

	gen := NewGenerator(completer, store, exercises)
	prof := &profile.UserProfile{Name: "alice", Goal: "weight_loss", Level: "beginner"}

	out, err := gen.Generate(context.Background(), prof, "high intensity please")
	if err != nil {
		t.Fatalf("generating: %v", err)
	}
	if out != "Prefer low-impact sessions." {
		t.Errorf("output = %q", out)
	}

	for _, want := range []string{
		promptHeader,
		"User Profile:",
		"Workout Data:",
		"Nutrition Data:",
		"Progress Data:",
		"Feedback Data:",
		`"name":"alice"`,
		"Cycling",
		"too intense",
		"current: high intensity please",
		"day 1, weight 80.0kg",
		"Don't Generate any Pseudo Code.",
	} {
		if !strings.Contains(completer.lastPrompt, want) {
			t.Errorf("prompt missing %q\nprompt:\n%s", want, completer.lastPrompt)
		}
	}
}

func TestGenerateCompleterFailure(t *testing.T) {
	completer := &stubCompleter{err: errors.New("model unavailable")}
	gen := NewGenerator(completer, &stubHistory{}, nil)

	if _, err := gen.Generate(context.Background(), &profile.UserProfile{Name: "bob"}, "fb"); err == nil {
		t.Error("expected error when completion fails")
	}
}

func TestGenerateHistoryFailureDegrades(t *testing.T) {
	completer := &stubCompleter{reply: "ok"}
	gen := NewGenerator(completer, &stubHistory{err: errors.New("db locked")}, nil)

	out, err := gen.Generate(context.Background(), &profile.UserProfile{Name: "bob"}, "fb")
	if err != nil {
		t.Fatalf("history failure must not abort generation: %v", err)
	}
	if out != "ok" {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(completer.lastPrompt, "(none)") {
		t.Error("failed history should render as an empty section")
	}
}

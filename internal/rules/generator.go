// Package rules produces free-text advisory policy summaries from an
// external generative text service. The output is consumed as context only —
// it is never parsed or validated.
package rules

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/catalog"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/storage"
)

const generationTimeout = 60 * time.Second

// Completer is the narrow capability interface over the generative text
// service, stubbed deterministically in tests.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// HistoryStore supplies the per-user history sections of the prompt.
type HistoryStore interface {
	ListFeedback(userID string) ([]storage.FeedbackEntry, error)
	ListProgress(userID string) ([]storage.ProgressEntry, error)
}

// Generator assembles aggregated user context and requests an advisory rule
// summary from the completion service.
type Generator struct {
	completer Completer
	store     HistoryStore
	exercises []catalog.Exercise
}

// NewGenerator creates a Generator grounded on the given exercise catalog.
func NewGenerator(completer Completer, store HistoryStore, exercises []catalog.Exercise) *Generator {
	return &Generator{completer: completer, store: store, exercises: exercises}
}

// Generate returns an unstructured advisory text for the user's current
// situation. History loading is best-effort: a failed read degrades to an
// empty section rather than aborting the call.
func (g *Generator) Generate(ctx context.Context, prof *profile.UserProfile, feedbackText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	var (
		history  []storage.FeedbackEntry
		progress []storage.ProgressEntry
	)
	if prof != nil && g.store != nil {
		var err error
		if history, err = g.store.ListFeedback(prof.Name); err != nil {
			slog.Warn("loading feedback history for rule generation", "user", prof.Name, "error", err)
		}
		if progress, err = g.store.ListProgress(prof.Name); err != nil {
			slog.Warn("loading progress history for rule generation", "user", prof.Name, "error", err)
		}
	}

	prompt := buildPrompt(prof, feedbackText, g.exercises, history, progress)

	text, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating rules: %w", err)
	}
	return text, nil
}

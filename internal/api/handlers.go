// Package api exposes the coaching components over HTTP and MCP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/coach"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/conflict"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/feedback"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/nutrition"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/progress"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// SessionRunner runs one full coaching session.
type SessionRunner interface {
	Run(ctx context.Context, prof profile.UserProfile, feedbackText string) (coach.Session, error)
}

// WorkoutPlanner generates workout plan text.
type WorkoutPlanner interface {
	Plan(ctx context.Context, prof *profile.UserProfile, resolutions []conflict.Resolution, dynamicRules string) string
}

// NutritionPlanner generates daily meal plans.
type NutritionPlanner interface {
	Generate(ctx context.Context, prof *profile.UserProfile) (nutrition.Plan, error)
}

// FeedbackProcessor classifies and stores feedback.
type FeedbackProcessor interface {
	Process(userName, text string) (feedback.Result, error)
	Recent(userName string, count int) ([]storage.FeedbackEntry, error)
}

// ProgressTracker logs sessions and computes summaries.
type ProgressTracker interface {
	Log(userID string, in progress.Input) (storage.ProgressEntry, error)
	History(userID string) ([]storage.ProgressEntry, error)
	Summary(userID string) (progress.Summary, error)
}

// AuditReader lists audit records.
type AuditReader interface {
	ListAudit(userID string, limit int) ([]storage.AuditRecord, error)
}

// AppDeps holds everything the HTTP handler serves.
type AppDeps struct {
	Profiles  *profile.Manager
	Coach     SessionRunner
	Workout   WorkoutPlanner
	Nutrition NutritionPlanner
	Feedback  FeedbackProcessor
	Progress  ProgressTracker
	Audit     AuditReader
	Token     string // empty disables authentication
}

// NewAppHandler builds the HTTP API router.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if deps.Token != "" {
			r.Use(BearerAuth(deps.Token))
		}

		r.Put("/profiles/{name}", handleSaveProfile(deps))
		r.Get("/profiles/{name}", handleGetProfile(deps))
		r.Get("/profiles", handleListProfiles(deps))

		r.Post("/feedback", handleFeedback(deps))
		r.Get("/feedback/{user}/recent", handleRecentFeedback(deps))
		r.Post("/sessions", handleSession(deps))
		r.Post("/plans/workout", handleWorkoutPlan(deps))
		r.Post("/plans/nutrition", handleNutritionPlan(deps))

		r.Post("/progress", handleLogProgress(deps))
		r.Get("/progress/{user}", handleProgressHistory(deps))
		r.Get("/progress/{user}/summary", handleProgressSummary(deps))

		r.Get("/audit", handleListAudit(deps))
	})

	return r
}

func handleSaveProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var p profile.UserProfile
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		p.Name = chi.URLParam(r, "name")

		if err := deps.Profiles.Save(p); err != nil {
			if errors.Is(err, profile.ErrInvalidProfile) {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save profile: %v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "saved"})
	}
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Profiles.Get(chi.URLParam(r, "name"))
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "profile not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get profile: %v", err)
			return
		}
		writeJSON(w, p)
	}
}

func handleListProfiles(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		names, err := deps.Profiles.List()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list profiles: %v", err)
			return
		}
		if names == nil {
			names = []string{}
		}
		writeJSON(w, names)
	}
}

type feedbackRequest struct {
	User string `json:"user"`
	Text string `json:"text"`
}

func handleFeedback(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req feedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.User == "" || req.Text == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "user and text are required")
			return
		}

		result, err := deps.Feedback.Process(req.User, req.Text)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to process feedback: %v", err)
			return
		}

		// A non-empty patch must reach the stored profile so the next plan
		// generation sees it.
		if !result.Patch.IsZero() {
			if _, err := deps.Profiles.ApplyPatch(req.User, result.Patch); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to update profile: %v", err)
				return
			}
		}
		writeJSON(w, result)
	}
}

func handleRecentFeedback(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := parseIntParam(r, "limit", 5, 50)
		entries, err := deps.Feedback.Recent(chi.URLParam(r, "user"), count)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load feedback: %v", err)
			return
		}
		if entries == nil {
			entries = []storage.FeedbackEntry{}
		}
		writeJSON(w, entries)
	}
}

type sessionRequest struct {
	Profile  profile.UserProfile `json:"profile"`
	Feedback string              `json:"feedback,omitempty"`
}

func handleSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req sessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Profile.Name == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "profile.name is required")
			return
		}

		session, err := deps.Coach.Run(r.Context(), req.Profile, req.Feedback)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "session failed: %v", err)
			return
		}
		writeJSON(w, session)
	}
}

type planRequest struct {
	User string `json:"user"`
}

// loadProfileForPlan resolves the plan target. Plans can be generated for a
// user that was never saved; they fall back to defaults.
func loadProfileForPlan(deps AppDeps, w http.ResponseWriter, r *http.Request) (profile.UserProfile, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return profile.UserProfile{}, false
	}
	if req.User == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "user is required")
		return profile.UserProfile{}, false
	}

	p, err := deps.Profiles.Get(req.User)
	if errors.Is(err, storage.ErrNotFound) {
		return profile.UserProfile{Name: req.User}, true
	}
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to load profile: %v", err)
		return profile.UserProfile{}, false
	}
	return p, true
}

func handleWorkoutPlan(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := loadProfileForPlan(deps, w, r)
		if !ok {
			return
		}
		plan := deps.Workout.Plan(r.Context(), &p, nil, "")
		writeJSON(w, map[string]string{"plan": plan})
	}
}

func handleNutritionPlan(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := loadProfileForPlan(deps, w, r)
		if !ok {
			return
		}
		plan, err := deps.Nutrition.Generate(r.Context(), &p)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to generate meal plan: %v", err)
			return
		}
		writeJSON(w, plan)
	}
}

type progressRequest struct {
	User string `json:"user"`
	progress.Input
}

func handleLogProgress(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req progressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.User == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "user is required")
			return
		}

		entry, err := deps.Progress.Log(req.User, req.Input)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to log progress: %v", err)
			return
		}
		writeJSON(w, entry)
	}
}

func handleProgressHistory(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := deps.Progress.History(chi.URLParam(r, "user"))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load progress: %v", err)
			return
		}
		if entries == nil {
			entries = []storage.ProgressEntry{}
		}
		writeJSON(w, entries)
	}
}

func handleProgressSummary(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := deps.Progress.Summary(chi.URLParam(r, "user"))
		if errors.Is(err, progress.ErrNoData) {
			httpError(w, http.StatusNotFound, "not_found", "no progress data")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to summarize progress: %v", err)
			return
		}
		writeJSON(w, summary)
	}
}

func handleListAudit(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 50, 500)
		records, err := deps.Audit.ListAudit(r.URL.Query().Get("user"), limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list audit records: %v", err)
			return
		}
		if records == nil {
			records = []storage.AuditRecord{}
		}
		writeJSON(w, records)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

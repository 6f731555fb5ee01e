package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/profile"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/progress"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Profiles  *profile.Manager
	Workout   WorkoutPlanner
	Nutrition NutritionPlanner
	Feedback  FeedbackProcessor
	Progress  ProgressTracker
}

// NewMCPServer creates an MCP server with the coaching tools and resources
// registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"fitcoach",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("fitcoach — local fitness coach for workout plans, meal plans, feedback, and progress tracking."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("save_profile",
			mcp.WithDescription("Create or replace a user's fitness profile."),
			mcp.WithString("name", mcp.Description("User name, the profile key"), mcp.Required()),
			mcp.WithString("goal", mcp.Description("Fitness goal, e.g. weight loss or muscle gain")),
			mcp.WithString("level", mcp.Description("Fitness level: beginner, intermediate, or advanced")),
			mcp.WithString("preferences", mcp.Description("Free-text workout preferences")),
			mcp.WithString("health_info", mcp.Description("Health constraints, e.g. injury or asthma")),
			mcp.WithString("meal_preference", mcp.Description("Free-text meal preferences")),
			mcp.WithNumber("age", mcp.Description("Age in years")),
		),
		mcpSaveProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("submit_feedback",
			mcp.WithDescription("Record user feedback on their plans and apply the derived profile adjustments."),
			mcp.WithString("user", mcp.Description("User name"), mcp.Required()),
			mcp.WithString("text", mcp.Description("The feedback text"), mcp.Required()),
		),
		mcpSubmitFeedback(deps),
	)

	s.AddTool(
		mcp.NewTool("generate_plan",
			mcp.WithDescription("Generate a workout or nutrition plan for a user."),
			mcp.WithString("user", mcp.Description("User name"), mcp.Required()),
			mcp.WithString("kind", mcp.Description("Plan kind: workout or nutrition"), mcp.Required()),
		),
		mcpGeneratePlan(deps),
	)

	s.AddTool(
		mcp.NewTool("log_progress",
			mcp.WithDescription("Log one workout session's measurements on the user's 7-day cycle."),
			mcp.WithString("user", mcp.Description("User name"), mcp.Required()),
			mcp.WithNumber("weight", mcp.Description("Weight in kg")),
			mcp.WithNumber("duration_min", mcp.Description("Workout duration in minutes")),
			mcp.WithNumber("calories_burned", mcp.Description("Calories burned")),
			mcp.WithBoolean("workout_completed", mcp.Description("Whether the workout was completed (default true)")),
		),
		mcpLogProgress(deps),
	)

	s.AddTool(
		mcp.NewTool("progress_summary",
			mcp.WithDescription("Summarize a user's progress: weight and measurement trends, completion rate, recent sessions."),
			mcp.WithString("user", mcp.Description("User name"), mcp.Required()),
		),
		mcpProgressSummary(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"user://profiles",
			"User Profiles",
			mcp.WithResourceDescription("All stored user profiles as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfiles(deps),
	)

	return s
}

func mcpSaveProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}

		p := profile.UserProfile{
			Name:           name,
			Age:            req.GetInt("age", 0),
			Goal:           req.GetString("goal", ""),
			Level:          req.GetString("level", ""),
			Preferences:    req.GetString("preferences", ""),
			HealthInfo:     req.GetString("health_info", ""),
			MealPreference: req.GetString("meal_preference", ""),
		}
		if err := deps.Profiles.Save(p); err != nil {
			return mcpError(fmt.Sprintf("failed to save profile: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Saved profile for %s", name)), nil
	}
}

func mcpSubmitFeedback(deps MCPDeps) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := req.RequireString("user")
		if err != nil {
			return mcpError("user is required"), nil
		}
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}

		result, err := deps.Feedback.Process(user, text)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to process feedback: %v", err)), nil
		}
		if !result.Patch.IsZero() {
			if _, err := deps.Profiles.ApplyPatch(user, result.Patch); err != nil {
				return mcpError(fmt.Sprintf("recorded feedback but failed to update profile: %v", err)), nil
			}
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGeneratePlan(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := req.RequireString("user")
		if err != nil {
			return mcpError("user is required"), nil
		}
		kind, err := req.RequireString("kind")
		if err != nil {
			return mcpError("kind is required"), nil
		}

		p, err := deps.Profiles.Get(user)
		if err != nil {
			p = profile.UserProfile{Name: user}
		}

		switch kind {
		case "workout":
			return mcpText(deps.Workout.Plan(ctx, &p, nil, "")), nil
		case "nutrition":
			plan, err := deps.Nutrition.Generate(ctx, &p)
			if err != nil {
				return mcpError(fmt.Sprintf("failed to generate meal plan: %v", err)), nil
			}
			b, err := json.Marshal(plan)
			if err != nil {
				return mcpError(fmt.Sprintf("failed to marshal plan: %v", err)), nil
			}
			return mcpText(string(b)), nil
		default:
			return mcpError("kind must be workout or nutrition"), nil
		}
	}
}

func mcpLogProgress(deps MCPDeps) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := req.RequireString("user")
		if err != nil {
			return mcpError("user is required"), nil
		}

		var in progress.Input
		if v := req.GetFloat("weight", -1); v >= 0 {
			in.Weight = &v
		}
		if v := req.GetFloat("duration_min", -1); v >= 0 {
			in.DurationMin = &v
		}
		if v := req.GetFloat("calories_burned", -1); v >= 0 {
			in.CaloriesBurned = &v
		}
		completed := req.GetBool("workout_completed", true)
		in.WorkoutCompleted = &completed

		entry, err := deps.Progress.Log(user, in)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to log progress: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Logged progress for %s on day %d", user, entry.Day)), nil
	}
}

func mcpProgressSummary(deps MCPDeps) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := req.RequireString("user")
		if err != nil {
			return mcpError("user is required"), nil
		}

		summary, err := deps.Progress.Summary(user)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to summarize progress: %v", err)), nil
		}
		b, err := json.Marshal(summary)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceProfiles(deps MCPDeps) server.ResourceHandlerFunc {
	return func(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := deps.Profiles.List()
		if err != nil {
			return nil, fmt.Errorf("listing profiles: %w", err)
		}

		profiles := make([]profile.UserProfile, 0, len(names))
		for _, name := range names {
			p, err := deps.Profiles.Get(name)
			if err != nil {
				continue
			}
			profiles = append(profiles, p)
		}

		b, err := json.Marshal(profiles)
		if err != nil {
			return nil, fmt.Errorf("marshaling profiles: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

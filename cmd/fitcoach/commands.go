package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/config"
)

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage user profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a user's profile as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profiles/"+args[0])
		if err != nil {
			return err
		}

		var prof any
		if err := decodeJSON(resp, &prof); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(prof)
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profile names",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profiles")
		if err != nil {
			return err
		}

		var names []string
		if err := decodeJSON(resp, &names); err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No profiles found.")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <name> <key> <value>",
	Short: "Set a profile field (goal, level, age, preferences, health_info, meal_preference)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, key, value := args[0], args[1], args[2]

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		// Read-modify-write: load the current document, change one field,
		// store it back whole.
		prof := map[string]any{}
		if resp, err := client.get(cmd.Context(), "/profiles/"+name); err == nil && resp.StatusCode < 400 {
			if err := decodeJSON(resp, &prof); err != nil {
				return err
			}
		} else if resp != nil {
			resp.Body.Close()
		}

		switch key {
		case "goal", "level", "preferences", "health_info", "meal_preference":
			prof[key] = value
		case "age":
			age, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("age must be a number: %w", err)
			}
			prof[key] = age
		default:
			return fmt.Errorf("unknown profile field %q", key)
		}

		resp, err := client.put(cmd.Context(), "/profiles/"+name, prof)
		if err != nil {
			return err
		}
		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Set %s.%s = %s", name, key, value)
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileSetCmd)
}

// --- feedback ---

var feedbackCmd = &cobra.Command{
	Use:   "feedback <user> <text...>",
	Short: "Record feedback on plans and apply the derived adjustments",
	Long: `Record feedback on plans and apply the derived adjustments.

Examples:
  fitcoach feedback alice "The workout was too hard"
  fitcoach feedback alice "I want fish meals only"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user := args[0]
		text := strings.Join(args[1:], " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/feedback", map[string]string{
			"user": user,
			"text": text,
		})
		if err != nil {
			return err
		}

		var result struct {
			SuggestedAction     string `json:"suggested_action"`
			WorkoutAdjustment   bool   `json:"workout_adjustment"`
			NutritionAdjustment bool   `json:"nutrition_adjustment"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Recorded feedback (action: %s)", result.SuggestedAction)
		if result.WorkoutAdjustment {
			printStep("Workout plan will be adjusted on the next session")
		}
		if result.NutritionAdjustment {
			printStep("Meal plan will be adjusted on the next session")
		}
		return nil
	},
}

// --- plan ---

var planCmd = &cobra.Command{
	Use:   "plan <workout|nutrition> <user>",
	Short: "Generate a workout or nutrition plan for a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, user := args[0], args[1]

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		switch kind {
		case "workout":
			resp, err := client.post(cmd.Context(), "/plans/workout", map[string]string{"user": user})
			if err != nil {
				return err
			}
			var result map[string]string
			if err := decodeJSON(resp, &result); err != nil {
				return err
			}
			fmt.Println(result["plan"])

		case "nutrition":
			resp, err := client.post(cmd.Context(), "/plans/nutrition", map[string]string{"user": user})
			if err != nil {
				return err
			}
			var plan struct {
				Meals []struct {
					Type        string  `json:"type"`
					Description string  `json:"description"`
					Calories    float64 `json:"calories"`
					Protein     float64 `json:"protein"`
					Carbs       float64 `json:"carbs"`
					Fat         float64 `json:"fat"`
				} `json:"meal_plan"`
			}
			if err := decodeJSON(resp, &plan); err != nil {
				return err
			}
			for _, m := range plan.Meals {
				fmt.Printf("%s: %s → %.0f kcal | P: %.1fg | C: %.1fg | F: %.1fg\n",
					colorize(colorBold, m.Type), m.Description, m.Calories, m.Protein, m.Carbs, m.Fat)
			}

		default:
			return fmt.Errorf("plan kind must be workout or nutrition")
		}
		return nil
	},
}

// --- session ---

var sessionCmd = &cobra.Command{
	Use:   "session <user>",
	Short: "Run a full coaching session: plans, feedback processing, and progress recap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user := args[0]
		feedbackText, _ := cmd.Flags().GetString("feedback")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		// Sessions run against the stored profile; an unsaved user gets a
		// default one keyed by name.
		prof := map[string]any{"name": user}
		if resp, err := client.get(cmd.Context(), "/profiles/"+user); err == nil && resp.StatusCode < 400 {
			if err := decodeJSON(resp, &prof); err != nil {
				return err
			}
		} else if resp != nil {
			resp.Body.Close()
		}

		resp, err := client.post(cmd.Context(), "/sessions", map[string]any{
			"profile":  prof,
			"feedback": feedbackText,
		})
		if err != nil {
			return err
		}

		var session struct {
			WorkoutPlan        string `json:"workout_text"`
			ConflictResolution *struct {
				Conflicts []string `json:"conflicts"`
				Status    string   `json:"status"`
			} `json:"conflict_resolution"`
			ProgressText string `json:"progress_text"`
		}
		if err := decodeJSON(resp, &session); err != nil {
			return err
		}

		fmt.Println(colorize(colorBold, "Workout plan"))
		fmt.Println(session.WorkoutPlan)
		if session.ConflictResolution != nil && len(session.ConflictResolution.Conflicts) > 0 {
			fmt.Println()
			fmt.Println(colorize(colorBold, "Conflicts"))
			for _, c := range session.ConflictResolution.Conflicts {
				printWarning("%s", c)
			}
		}
		if session.ProgressText != "" {
			fmt.Println()
			fmt.Println(colorize(colorBold, "Progress"))
			fmt.Println(session.ProgressText)
		}
		return nil
	},
}

func init() {
	sessionCmd.Flags().String("feedback", "", "feedback text to process during the session")
}

// --- progress ---

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Log workout sessions and view trends",
}

var progressLogCmd = &cobra.Command{
	Use:   "log <user>",
	Short: "Log one workout session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user := args[0]

		body := map[string]any{"user": user}
		for _, key := range []string{"weight", "height", "duration-min", "calories-burned", "waist", "chest"} {
			if !cmd.Flags().Changed(key) {
				continue
			}
			v, _ := cmd.Flags().GetFloat64(key)
			body[strings.ReplaceAll(key, "-", "_")] = v
		}
		if cmd.Flags().Changed("completed") {
			v, _ := cmd.Flags().GetBool("completed")
			body["workout_completed"] = v
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/progress", body)
		if err != nil {
			return err
		}
		var entry struct {
			Day int `json:"day"`
		}
		if err := decodeJSON(resp, &entry); err != nil {
			return err
		}

		printSuccess("Logged progress for %s on day %d", user, entry.Day)
		return nil
	},
}

var progressSummaryCmd = &cobra.Command{
	Use:   "summary <user>",
	Short: "Show progress trends and completion rate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/progress/"+args[0]+"/summary")
		if err != nil {
			return err
		}

		var summary struct {
			Trends struct {
				Weight *struct {
					Start         float64 `json:"start"`
					End           float64 `json:"end"`
					Change        float64 `json:"change"`
					ChangePercent float64 `json:"change_percent"`
				} `json:"weight"`
				CompletionRate int `json:"completion_rate"`
			} `json:"trends"`
			TotalSessions int `json:"total_sessions"`
		}
		if err := decodeJSON(resp, &summary); err != nil {
			return err
		}

		printStatus("Sessions", "%d", summary.TotalSessions)
		printStatus("Completion rate", "%d%%", summary.Trends.CompletionRate)
		if w := summary.Trends.Weight; w != nil {
			printStatus("Weight", "%.1fkg → %.1fkg (%+.2fkg, %+.2f%%)", w.Start, w.End, w.Change, w.ChangePercent)
		}
		return nil
	},
}

func init() {
	progressLogCmd.Flags().Float64("weight", 0, "weight in kg")
	progressLogCmd.Flags().Float64("height", 0, "height in cm")
	progressLogCmd.Flags().Float64("duration-min", 0, "workout duration in minutes")
	progressLogCmd.Flags().Float64("calories-burned", 0, "calories burned")
	progressLogCmd.Flags().Float64("waist", 0, "waist measurement in cm")
	progressLogCmd.Flags().Float64("chest", 0, "chest measurement in cm")
	progressLogCmd.Flags().Bool("completed", true, "whether the workout was completed")

	progressCmd.AddCommand(progressLogCmd)
	progressCmd.AddCommand(progressSummaryCmd)
}

// --- audit ---

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the decision audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := fmt.Sprintf("/audit?limit=%d", limit)
		if user != "" {
			path += "&user=" + user
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var records []struct {
			CreatedAt string `json:"created_at"`
			Agent     string `json:"agent"`
			Action    string `json:"action"`
			UserID    string `json:"user_id"`
		}
		if err := decodeJSON(resp, &records); err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No audit records found.")
			return nil
		}
		for _, r := range records {
			fmt.Printf("%s  %s  %s  %s\n",
				r.CreatedAt,
				colorize(colorCyan, r.Agent),
				r.Action,
				r.UserID,
			)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().String("user", "", "filter by user")
	auditCmd.Flags().Int("limit", 50, "maximum number of records")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

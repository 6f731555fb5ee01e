package profile

// UserProfile holds everything the coach knows about a user: goals,
// constraints, and the mutable preference fields that feedback processing
// writes back. Profiles are keyed by Name and stored as one document per
// user; they are mutated in place and never deleted.
type UserProfile struct {
	Name           string `json:"name"`
	Age            int    `json:"age,omitempty"`
	Goal           string `json:"goal,omitempty"`  // fat loss, muscle gain, endurance, general fitness
	Level          string `json:"level,omitempty"` // beginner, intermediate, advanced
	Preferences    string `json:"preferences,omitempty"`
	HealthInfo     string `json:"health_info,omitempty"`
	MealPreference string `json:"meal_preference,omitempty"`

	// Fields below are set by feedback processing, not by the user directly.
	WorkoutIntensity   string              `json:"workout_intensity,omitempty"` // "lower" or "higher"
	MealPreferences    string              `json:"meal_preferences,omitempty"`  // "adjusted" after a taste complaint
	PortionSize        string              `json:"portion_size,omitempty"`      // "smaller" after a portion complaint
	DietaryPreferences *DietaryPreferences `json:"dietary_preferences,omitempty"`
}

// DietaryPreferences is the nested structure feedback writes when the user
// expresses a diet constraint.
type DietaryPreferences struct {
	ProteinSource string   `json:"protein_source,omitempty"` // "fish" or "chicken" when exclusive
	DietType      string   `json:"diet_type,omitempty"`      // "vegetarian" or "vegan"
	Restrictions  []string `json:"restrictions,omitempty"`
}

// Patch is a partial profile update derived from feedback. Zero-valued
// fields are left untouched when applied.
type Patch struct {
	WorkoutIntensity   string              `json:"workout_intensity,omitempty"`
	MealPreferences    string              `json:"meal_preferences,omitempty"`
	PortionSize        string              `json:"portion_size,omitempty"`
	DietaryPreferences *DietaryPreferences `json:"dietary_preferences,omitempty"`
}

// IsZero reports whether the patch carries no changes.
func (p Patch) IsZero() bool {
	return p.WorkoutIntensity == "" && p.MealPreferences == "" &&
		p.PortionSize == "" && p.DietaryPreferences == nil
}

// apply merges the patch into the profile in place.
func (p Patch) apply(prof *UserProfile) {
	if p.WorkoutIntensity != "" {
		prof.WorkoutIntensity = p.WorkoutIntensity
	}
	if p.MealPreferences != "" {
		prof.MealPreferences = p.MealPreferences
	}
	if p.PortionSize != "" {
		prof.PortionSize = p.PortionSize
	}
	if p.DietaryPreferences != nil {
		cp := *p.DietaryPreferences
		if p.DietaryPreferences.Restrictions != nil {
			cp.Restrictions = append([]string(nil), p.DietaryPreferences.Restrictions...)
		}
		prof.DietaryPreferences = &cp
	}
}

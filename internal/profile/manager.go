package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/audit"
	"github.com/Sridhar016/Fitness-tool-ai-multi-agent/internal/storage"
)

// ErrInvalidProfile is returned when a profile update is rejected before it
// reaches storage.
var ErrInvalidProfile = errors.New("invalid profile")

// Store defines the storage operations the Manager needs.
// Implemented by storage.Store.
type Store interface {
	SaveProfile(name string, doc []byte) error
	GetProfile(name string) ([]byte, error)
	ListProfiles() ([]string, error)
}

// Manager provides structured access to user profiles stored as full
// documents keyed by name. Every save is a whole-document write, matching
// the read-modify-write discipline of the profile store.
type Manager struct {
	store Store
	audit audit.Recorder
}

// NewManager creates a Manager. Pass audit.Nop{} to disable decision logging.
func NewManager(store Store, rec audit.Recorder) *Manager {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Manager{store: store, audit: rec}
}

// Save validates and persists the full profile document.
func (m *Manager) Save(p UserProfile) error {
	if p.Name == "" {
		m.audit.Record("ProfileManager", "Rejected profile update", "system", "missing name", nil)
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}

	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshalling profile %q: %w", p.Name, err)
	}
	if err := m.store.SaveProfile(p.Name, doc); err != nil {
		m.audit.Record("ProfileManager", "Failed to save profile", p.Name, err.Error(), nil)
		return fmt.Errorf("saving profile %q: %w", p.Name, err)
	}

	m.audit.Record("ProfileManager", "Updated profile", p.Name, "", map[string]any{
		"goal":  p.Goal,
		"level": p.Level,
	})
	return nil
}

// Get loads a user's profile. A malformed stored document is treated as
// empty rather than fatal: the caller gets a fresh profile carrying only
// the name.
func (m *Manager) Get(name string) (UserProfile, error) {
	doc, err := m.store.GetProfile(name)
	if err != nil {
		return UserProfile{}, err
	}

	var p UserProfile
	if err := json.Unmarshal(doc, &p); err != nil {
		slog.Warn("profile document corrupted, treating as empty", "user", name, "error", err)
		return UserProfile{Name: name}, nil
	}
	return p, nil
}

// List returns all stored profile names.
func (m *Manager) List() ([]string, error) {
	return m.store.ListProfiles()
}

// ApplyPatch merges a feedback-derived patch into the stored profile and
// persists the result. A missing profile is created from the patch alone so
// feedback on an unsaved user is never lost.
func (m *Manager) ApplyPatch(name string, patch Patch) (UserProfile, error) {
	if name == "" {
		return UserProfile{}, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if patch.IsZero() {
		return m.Get(name)
	}

	prof, err := m.Get(name)
	if errors.Is(err, storage.ErrNotFound) {
		prof = UserProfile{Name: name}
	} else if err != nil {
		return UserProfile{}, err
	}

	patch.apply(&prof)
	if err := m.Save(prof); err != nil {
		return UserProfile{}, err
	}

	m.audit.Record("ProfileManager", "Applied feedback patch", name, "", map[string]any{
		"workout_intensity": patch.WorkoutIntensity,
		"portion_size":      patch.PortionSize,
	})
	return prof, nil
}

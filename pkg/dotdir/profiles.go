package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	profilesFile = "profiles.json"
)

// ProfileOverrides represents locally persisted golden-profile threshold
// overrides. A workshop lead can tighten or loosen the stock
// lineage thresholds without rebuilding.
type ProfileOverrides struct {
	// GoldenProfile names the profile the overrides apply to.
	GoldenProfile string `json:"golden_profile"`

	// Lineages maps a lineage id to its override entry.
	Lineages map[string]LineageOverride `json:"lineages"`
}

// LineageOverride adjusts the pass thresholds for a single lineage.
// Zero values mean "keep the stock threshold".
type LineageOverride struct {
	Discipline float64 `json:"discipline,omitempty"`
	Resonance  float64 `json:"resonance,omitempty"`
	Coherence  float64 `json:"coherence,omitempty"`
	Composite  float64 `json:"composite,omitempty"`
}

// LoadProfileOverrides loads overrides from a target .sadhana/profiles.json.
// Returns nil, nil if no overrides file exists (stock thresholds apply).
// If overrideDir is non-empty, it is used instead of the default ~/.sadhana/ location.
func (m *Manager) LoadProfileOverrides(overrideDir string) (*ProfileOverrides, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, profilesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading profile overrides: %w", err)
	}

	overrides := &ProfileOverrides{}
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing profile overrides: %w", err)
	}

	return overrides, nil
}

// SaveProfileOverrides persists overrides to a target .sadhana/profiles.json.
func (m *Manager) SaveProfileOverrides(overrides *ProfileOverrides, overrideDir string) error {
	if overrides == nil {
		return errors.New("cannot save nil profile overrides")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(overrides, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling profile overrides: %w", err)
	}

	path := filepath.Join(dir, profilesFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing profile overrides: %w", err)
	}

	return nil
}

// ClearProfileOverrides removes the overrides file so stock thresholds apply.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearProfileOverrides(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, profilesFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing profile overrides: %w", err)
	}

	return nil
}

// Package bhav scores devotional performance. A finalized metrics record
// plus stage and lineage identifiers become a composite score over three
// sub-dimensions (discipline, resonance, coherence) and a pass/fail verdict
// against a lineage golden profile. Evaluation is fully deterministic:
// identical inputs always produce identical StageResults.
package bhav

import (
	"sort"
	"strings"
)

// Weights blends the three sub-dimensions into the composite score.
type Weights struct {
	Discipline float64
	Resonance  float64
	Coherence  float64
}

// Thresholds holds the pass floors for the sub-dimensions and composite.
type Thresholds struct {
	Discipline float64
	Resonance  float64
	Coherence  float64
	Composite  float64
}

// LineageProfile is the static reference data for one lineage: recognized
// aliases, pass thresholds, and composite weights. Profiles are read-only
// and never created at runtime.
type LineageProfile struct {
	ID         string
	Aliases    []string
	Thresholds Thresholds
	Weights    Weights
}

// DefaultGoldenProfile is the stock golden profile id.
const DefaultGoldenProfile = "maha_mantra_v1"

// DefaultLineageID is used when callers pass an empty lineage.
const DefaultLineageID = "vaishnavism"

// Registry holds the lineage profiles and golden profile ids a Scorer
// evaluates against. It is injected, never ambient.
type Registry struct {
	lineages map[string]LineageProfile
	profiles map[string]bool
}

// DefaultRegistry returns the stock lineage set.
func DefaultRegistry() *Registry {
	r := &Registry{
		lineages: make(map[string]LineageProfile),
		profiles: map[string]bool{DefaultGoldenProfile: true},
	}

	for _, profile := range []LineageProfile{
		{
			ID:      "vaishnavism",
			Aliases: []string{"vaishnavism", "vashnavism", "vaishnava"},
			Thresholds: Thresholds{
				Discipline: 0.75,
				Resonance:  0.72,
				Coherence:  0.72,
				Composite:  0.75,
			},
			Weights: Weights{Discipline: 0.34, Resonance: 0.33, Coherence: 0.33},
		},
		{
			ID:      "sadhguru",
			Aliases: []string{"sadhguru", "isha", "isha_foundation"},
			Thresholds: Thresholds{
				Discipline: 0.78,
				Resonance:  0.70,
				Coherence:  0.70,
				Composite:  0.76,
			},
			Weights: Weights{Discipline: 0.40, Resonance: 0.30, Coherence: 0.30},
		},
		{
			ID:      "shree_vallabhacharya",
			Aliases: []string{"shree_vallabhacharya", "vallabhacharya", "pushtimarg"},
			Thresholds: Thresholds{
				Discipline: 0.73,
				Resonance:  0.76,
				Coherence:  0.72,
				Composite:  0.76,
			},
			Weights: Weights{Discipline: 0.30, Resonance: 0.40, Coherence: 0.30},
		},
	} {
		r.lineages[profile.ID] = profile
	}

	return r
}

// ResolveLineage maps a lineage name (or recognized alias) to its profile.
// Matching is case-insensitive. An empty name resolves to the default
// lineage; anything unrecognized fails with UnknownLineageError.
func (r *Registry) ResolveLineage(name string) (LineageProfile, error) {
	if strings.TrimSpace(name) == "" {
		return r.lineages[DefaultLineageID], nil
	}

	key := strings.ToLower(strings.TrimSpace(name))
	for _, profile := range r.lineages {
		for _, alias := range profile.Aliases {
			if key == alias {
				return profile, nil
			}
		}
	}

	return LineageProfile{}, UnknownLineageError{Lineage: name}
}

// Lineages returns every registered lineage profile, ordered by id.
func (r *Registry) Lineages() []LineageProfile {
	profiles := make([]LineageProfile, 0, len(r.lineages))
	for _, profile := range r.lineages {
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })
	return profiles
}

// HasProfile reports whether the golden profile id is registered.
func (r *Registry) HasProfile(id string) bool {
	return r.profiles[id]
}

// OverrideThresholds replaces the stock thresholds for a lineage. Zero
// fields in the override keep the stock value. Unknown lineage ids are
// ignored so a stale overrides file cannot widen the lineage set.
func (r *Registry) OverrideThresholds(lineageID string, override Thresholds) {
	profile, ok := r.lineages[lineageID]
	if !ok {
		return
	}

	if override.Discipline > 0 {
		profile.Thresholds.Discipline = override.Discipline
	}
	if override.Resonance > 0 {
		profile.Thresholds.Resonance = override.Resonance
	}
	if override.Coherence > 0 {
		profile.Thresholds.Coherence = override.Coherence
	}
	if override.Composite > 0 {
		profile.Thresholds.Composite = override.Composite
	}

	r.lineages[lineageID] = profile
}

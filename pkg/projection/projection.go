// Package projection derives read views from the event log. Every view is a
// pure left-fold over a session's ordered events: the live engine and a cold
// replay run the same fold, so a projection can be discarded and rebuilt at
// any time without loss.
package projection

import (
	"time"

	"github.com/dhvanilabs/sadhana/pkg/chant"
)

// Lifecycle tracks whether a session is still accepting events.
type Lifecycle string

const (
	LifecycleActive Lifecycle = "active"
	LifecycleEnded  Lifecycle = "ended"
)

// SessionSummary is the read-optimized view of one practice session.
type SessionSummary struct {
	SessionID     string    `json:"session_id"`
	OwnerID       string    `json:"owner_id"`
	Intention     string    `json:"intention"`
	MantraKey     string    `json:"mantra_key"`
	Mood          string    `json:"mood"`
	TargetMinutes int       `json:"target_minutes"`
	Lifecycle     Lifecycle `json:"lifecycle"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at,omitzero"`

	CurrentStage chant.Stage                       `json:"current_stage,omitempty"`
	StageResults map[chant.Stage]chant.StageResult `json:"stage_results,omitempty"`

	PracticeMinutes       float64  `json:"practice_minutes"`
	EventsCount           int      `json:"events_count"`
	AdaptationsCount      int      `json:"adaptations_count"`
	AvgFlowScore          float64  `json:"avg_flow_score"`
	AvgPronunciationScore float64  `json:"avg_pronunciation_score"`
	AdaptationHelpfulRate float64  `json:"adaptation_helpful_rate"`
	CompletedGoal         bool     `json:"completed_goal"`
	UserValueRating       *float64 `json:"user_value_rating,omitempty"`
	MeaningfulSession     bool     `json:"meaningful_session"`
}

// Progress is the per-owner practice aggregate, advanced once per ended
// session.
type Progress struct {
	OwnerID               string    `json:"owner_id"`
	TotalSessions         int       `json:"total_sessions"`
	CompletedSessions     int       `json:"completed_sessions"`
	TotalPracticeMinutes  float64   `json:"total_practice_minutes"`
	AvgFlowScore          float64   `json:"avg_flow_score"`
	AvgPronunciationScore float64   `json:"avg_pronunciation_score"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// NotFoundError is returned when no events exist for the requested view.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return e.Kind + " not found: " + e.ID
}

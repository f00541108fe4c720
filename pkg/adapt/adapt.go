// Package adapt turns a fused context snapshot plus recent session
// observations into an adaptation decision. The rule tables are
// deterministic; an optional external enricher can replace them, but any
// enrichment failure falls back to the tables so a request always yields a
// valid decision.
package adapt

import "strings"

// Guidance is the coaching intensity applied to the arrangement.
type Guidance string

const (
	GuidanceLow    Guidance = "low"
	GuidanceMedium Guidance = "medium"
	GuidanceHigh   Guidance = "high"
)

func (g Guidance) Valid() bool {
	switch g {
	case GuidanceLow, GuidanceMedium, GuidanceHigh:
		return true
	}
	return false
}

// Intensity maps the guidance level onto the unit interval.
func (g Guidance) Intensity() float64 {
	switch g {
	case GuidanceLow:
		return 0.30
	case GuidanceHigh:
		return 0.85
	default:
		return 0.55
	}
}

// Source records which path produced a decision.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Arrangement is the playback shape derived from tempo and guidance.
type Arrangement struct {
	DroneLevel   string `json:"drone_level"`
	Percussion   string `json:"percussion"`
	CallResponse bool   `json:"call_response"`
}

// Decision is the immutable outcome of one adaptation request.
type Decision struct {
	TempoBPM          int         `json:"tempo_bpm"`
	KeyCenter         string      `json:"key_center"`
	Guidance          Guidance    `json:"guidance"`
	GuidanceIntensity float64     `json:"guidance_intensity"`
	Rationale         []string    `json:"rationale"`
	Reason            string      `json:"reason"`
	Source            Source      `json:"source"`
	Arrangement       Arrangement `json:"arrangement"`
	CoachActions      []string    `json:"coach_actions"`
}

// Observed carries the session-history terms the policy consumes, each
// absent when the session has produced no usable reading yet.
type Observed struct {
	CadenceBPM         *float64 `json:"cadence_bpm,omitempty"`
	CadenceConsistency *float64 `json:"cadence_consistency,omitempty"`
	PronunciationScore *float64 `json:"pronunciation_score,omitempty"`
	FlowScore          *float64 `json:"flow_score,omitempty"`
}

var keyCenters = map[string]struct{}{
	"C": {}, "D": {}, "E": {}, "F": {}, "G": {}, "A": {}, "B": {},
}

// ValidKeyCenter reports whether the key names one of the seven naturals
// the arrangement engine supports.
func ValidKeyCenter(key string) bool {
	_, ok := keyCenters[strings.ToUpper(strings.TrimSpace(key))]
	return ok
}

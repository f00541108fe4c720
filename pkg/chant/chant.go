// Package chant holds the shared domain types for the sadhana practice
// pipeline: stages, vocal phases, finalized capture metrics, and stage
// scoring results. The audio extractor produces FinalizedMetrics, the bhav
// scorer consumes them, and the event log embeds both.
package chant

// Stage identifies one step of the ordered practice flow.
type Stage string

const (
	StageListen       Stage = "listen"
	StageGuided       Stage = "guided"
	StageCallResponse Stage = "call_response"
	StageRecap        Stage = "recap"
	StageIndependent  Stage = "independent"
)

// Stages is the canonical practice order.
var Stages = []Stage{
	StageListen,
	StageGuided,
	StageCallResponse,
	StageRecap,
	StageIndependent,
}

// Valid reports whether s names a known stage.
func (s Stage) Valid() bool {
	for _, stage := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// Scoreable reports whether the stage produces a StageResult. listen and
// recap are acknowledge-only steps.
func (s Stage) Scoreable() bool {
	switch s {
	case StageGuided, StageCallResponse, StageIndependent:
		return true
	default:
		return false
	}
}

// Phase tags who is carrying the vocal line during a capture frame.
type Phase string

const (
	PhaseLeader      Phase = "leader"
	PhaseFollower    Phase = "follower"
	PhaseIndependent Phase = "independent"
)

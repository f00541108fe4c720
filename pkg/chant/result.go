package chant

// MasteryLevel grades a composite score against the stage threshold.
type MasteryLevel string

const (
	MasteryEmerging   MasteryLevel = "emerging"
	MasteryDeveloping MasteryLevel = "developing"
	MasteryMastered   MasteryLevel = "mastered"
)

// StageResult is the deterministic outcome of scoring one stage attempt
// against a lineage golden profile. Later attempts of the same stage
// supersede (never mutate) earlier results.
type StageResult struct {
	Stage         Stage    `json:"stage"`
	LineageID     string   `json:"lineage_id"`
	GoldenProfile string   `json:"golden_profile"`
	Discipline    float64  `json:"discipline"`
	Resonance     float64  `json:"resonance"`
	Coherence     float64  `json:"coherence"`
	Composite     float64  `json:"composite"`
	PassesGolden  bool     `json:"passes_golden"`
	Feedback      []string `json:"feedback"`

	// Mastery carries the progression reading of the composite score.
	Mastery Mastery `json:"mastery"`

	// Signals records the per-stage intermediate values that drove the
	// sub-dimension blends, for audit and rationale rendering.
	Signals map[string]float64 `json:"signals"`

	// Thresholds are the stage-offset pass floors that applied.
	Thresholds map[string]float64 `json:"thresholds"`
}

// Mastery describes where the composite landed relative to the stage gate.
type Mastery struct {
	Level            MasteryLevel `json:"level"`
	ThresholdComp    float64      `json:"threshold_composite"`
	GapToThreshold   float64      `json:"gap_to_threshold"`
	GatePassed       bool         `json:"progression_gate_passed"`
	NextStage        Stage        `json:"next_stage,omitempty"`
	NextStageHint    string       `json:"next_stage_hint"`
	CadenceTargetGap float64      `json:"cadence_target_gap_bpm"`
}

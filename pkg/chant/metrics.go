package chant

// FinalizedMetrics is the immutable record produced once per stage attempt
// when audio capture stops. All unit-interval fields are clamped before the
// record is returned, so consumers can score without re-validation.
//
// The per-phase voice ratios are pointers: nil means the phase was never
// sampled, which scoring treats differently from a silent (zero) phase.
type FinalizedMetrics struct {
	DurationSeconds    float64  `json:"duration_seconds"`
	VoiceRatioTotal    float64  `json:"voice_ratio_total"`
	VoiceRatioLeader   *float64 `json:"voice_ratio_leader,omitempty"`
	VoiceRatioFollower *float64 `json:"voice_ratio_follower,omitempty"`
	PitchStability     float64  `json:"pitch_stability"`
	CadenceBPM         float64  `json:"cadence_bpm"`
	CadenceConsistency float64  `json:"cadence_consistency"`
	AvgEnergy          float64  `json:"avg_energy"`
}

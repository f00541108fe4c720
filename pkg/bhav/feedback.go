package bhav

import "github.com/dhvanilabs/sadhana/pkg/chant"

const maxFeedbackHints = 4

// buildFeedback generates the ordered hint list. Priority is fixed:
// discipline, resonance, coherence floors first, then the metric-specific
// hints, so identical inputs always yield the identical list.
func buildFeedback(stage chant.Stage, discipline, resonance, coherence float64, m chant.FinalizedMetrics, thresholds Thresholds) []string {
	var tips []string

	if discipline < thresholds.Discipline {
		tips = append(tips, "Keep steadier practice windows and stay consistent through the full stage duration.")
	}
	if resonance < thresholds.Resonance {
		tips = append(tips, "Match breath and vocal intensity to the track for stronger devotional resonance.")
	}
	if coherence < thresholds.Coherence {
		tips = append(tips, "Focus on cleaner syllable transitions and steadier note-to-note flow.")
	}

	if m.CadenceConsistency < 0.65 {
		tips = append(tips, "Use a calmer tempo anchor; avoid rushing at phrase boundaries.")
	}
	if m.PitchStability < 0.65 {
		tips = append(tips, "Hold each phrase slightly longer before transitioning to improve pitch stability.")
	}

	if stage == chant.StageCallResponse {
		if followerVoice(m) < 0.45 {
			tips = append(tips, "Increase voice presence during your response turns in call-response.")
		}
		if leaderVoice(m) > 0.35 {
			tips = append(tips, "Leave more space after the leader's call before your response.")
		}
	}

	if len(tips) == 0 {
		tips = append(tips, "Strong stage performance. Keep the same breath control and cadence consistency.")
	}
	if len(tips) > maxFeedbackHints {
		tips = tips[:maxFeedbackHints]
	}
	return tips
}

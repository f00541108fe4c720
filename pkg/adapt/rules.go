package adapt

import (
	"math"
	"strconv"
	"strings"

	"github.com/dhvanilabs/sadhana/pkg/fusion"
)

const (
	baseTempoBPM     = 72
	baseKeyCenter    = "C"
	defaultRationale = "default devotional adaptation"
)

// lowConsistencyFloor is the cadence_consistency reading below which the
// chant is treated as unsteady.
const lowConsistencyFloor = 0.6

// ruleDecision is the deterministic adaptation table. It never errors and
// never returns an empty decision; the caller tags the source.
func ruleDecision(snap fusion.Snapshot, obs Observed) Decision {
	tempo := baseTempoBPM
	key := baseKeyCenter
	guidance := GuidanceMedium
	var rationale []string

	if obs.CadenceBPM != nil {
		tempo = clampTempo(int(math.Round(*obs.CadenceBPM)), 48, 128)
		rationale = append(rationale, "cadence match "+strconv.Itoa(tempo)+" bpm")
	}

	if snap.Mood != "" {
		switch snap.Mood {
		case "anxious", "stressed", "overwhelmed":
			tempo = maxInt(52, tempo-8)
			guidance = GuidanceHigh
			key = "D"
			rationale = append(rationale, "calming adjustment for anxious mood")
		case "joyful", "energized":
			tempo = minInt(108, tempo+8)
			guidance = GuidanceLow
			key = "G"
			rationale = append(rationale, "uplift adjustment for joyful mood")
		default:
			rationale = append(rationale, "neutral mood profile")
		}
	}

	if snap.HeartRate != nil {
		trusted := snap.BiometricConfidence == fusion.ConfidenceHigh
		switch {
		case *snap.HeartRate > 110:
			guidance = GuidanceHigh
			if trusted {
				tempo = maxInt(56, tempo-6)
				rationale = append(rationale, "heart rate elevated, easing tempo")
			} else {
				rationale = append(rationale, "heart rate elevated, raising guidance")
			}
		case *snap.HeartRate < 60 && trusted:
			tempo = minInt(96, tempo+4)
			rationale = append(rationale, "heart rate low, adding gentle momentum")
		}
	}

	if snap.NoiseDB != nil && *snap.NoiseDB > 65 {
		guidance = GuidanceHigh
		rationale = append(rationale, "high ambient noise, increasing guidance intensity")
	}

	if obs.CadenceConsistency != nil && *obs.CadenceConsistency < lowConsistencyFloor {
		tempo = maxInt(52, tempo-6)
		guidance = GuidanceHigh
		rationale = append(rationale, "unsteady cadence, easing tempo and raising guidance")
	}

	if obs.PronunciationScore != nil && *obs.PronunciationScore < 0.65 {
		guidance = GuidanceHigh
		rationale = append(rationale, "pronunciation below threshold")
	}

	if obs.FlowScore != nil && *obs.FlowScore > 0.8 && guidance != GuidanceHigh {
		guidance = GuidanceLow
		rationale = append(rationale, "strong flow, reducing interruptions")
	}

	reason := defaultRationale
	if len(rationale) > 0 {
		reason = strings.Join(rationale, "; ")
	} else {
		rationale = []string{defaultRationale}
	}

	return Decision{
		TempoBPM:          tempo,
		KeyCenter:         key,
		Guidance:          guidance,
		GuidanceIntensity: guidance.Intensity(),
		Rationale:         rationale,
		Reason:            reason,
		Arrangement:       arrangementFor(tempo, guidance),
		CoachActions:      coachActionsFor(guidance),
	}
}

func arrangementFor(tempo int, guidance Guidance) Arrangement {
	percussion := "tabla_groove"
	if tempo < 80 {
		percussion = "tabla_soft"
	}
	return Arrangement{
		DroneLevel:   "medium",
		Percussion:   percussion,
		CallResponse: guidance == GuidanceHigh,
	}
}

func coachActionsFor(guidance Guidance) []string {
	if guidance == GuidanceHigh {
		return []string{"repeat_line", "show_pronunciation_hint"}
	}
	return []string{"continue_flow", "hide_hint"}
}

func clampTempo(tempo, lo, hi int) int {
	return maxInt(lo, minInt(hi, tempo))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}


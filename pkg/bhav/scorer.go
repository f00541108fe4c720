package bhav

import (
	"fmt"
	"math"

	"github.com/dhvanilabs/sadhana/pkg/chant"
)

const (
	// TargetBPM is the golden chant tempo.
	TargetBPM = 72.0

	// cadence tolerance around the golden tempo, in BPM.
	cadenceToleranceBPM = 24.0

	// energyCenter is the balanced devotional intensity.
	energyCenter = 0.48
)

// stageTarget fixes the expected duration and the threshold offset for one
// scoreable stage. Earlier stages run with relaxed thresholds.
type stageTarget struct {
	durationSeconds float64
	thresholdOffset float64
}

var stageTargets = map[chant.Stage]stageTarget{
	chant.StageGuided:       {durationSeconds: 45.0, thresholdOffset: -0.08},
	chant.StageCallResponse: {durationSeconds: 40.0, thresholdOffset: -0.04},
	chant.StageIndependent:  {durationSeconds: 30.0, thresholdOffset: 0.0},
}

var stageNext = map[chant.Stage]chant.Stage{
	chant.StageGuided:       chant.StageCallResponse,
	chant.StageCallResponse: chant.StageRecap,
	chant.StageIndependent:  "",
}

// Scorer evaluates stage attempts against an injected Registry.
type Scorer struct {
	registry *Registry
}

// NewScorer creates a Scorer over the given registry.
func NewScorer(registry *Registry) *Scorer {
	return &Scorer{registry: registry}
}

// Evaluate scores one stage attempt. The metrics record is assumed clamped
// by the extractor but re-clamping is cheap and keeps Evaluate total:
// scoring never fails for numeric reasons, only structural ones (unknown
// stage, lineage, or profile).
func (s *Scorer) Evaluate(stage chant.Stage, lineageName, goldenProfile string, metrics chant.FinalizedMetrics) (chant.StageResult, error) {
	target, ok := stageTargets[stage]
	if !ok {
		return chant.StageResult{}, UnsupportedStageError{Stage: string(stage)}
	}

	if goldenProfile == "" {
		goldenProfile = DefaultGoldenProfile
	}
	if !s.registry.HasProfile(goldenProfile) {
		return chant.StageResult{}, UnknownProfileError{Profile: goldenProfile}
	}

	lineage, err := s.registry.ResolveLineage(lineageName)
	if err != nil {
		return chant.StageResult{}, err
	}

	discipline, resonance, coherence, signals := stageScores(stage, target, metrics)

	composite := chant.Clamp01(
		lineage.Weights.Discipline*discipline +
			lineage.Weights.Resonance*resonance +
			lineage.Weights.Coherence*coherence,
	)

	thresholds := Thresholds{
		Discipline: chant.Clamp01(lineage.Thresholds.Discipline + target.thresholdOffset),
		Resonance:  chant.Clamp01(lineage.Thresholds.Resonance + target.thresholdOffset),
		Coherence:  chant.Clamp01(lineage.Thresholds.Coherence + target.thresholdOffset),
		Composite:  chant.Clamp01(lineage.Thresholds.Composite + target.thresholdOffset),
	}

	passes := goldenProfile == DefaultGoldenProfile &&
		discipline >= thresholds.Discipline &&
		resonance >= thresholds.Resonance &&
		coherence >= thresholds.Coherence &&
		composite >= thresholds.Composite

	feedback := buildFeedback(stage, discipline, resonance, coherence, metrics, thresholds)

	level := chant.MasteryEmerging
	switch {
	case composite >= thresholds.Composite+0.08:
		level = chant.MasteryMastered
	case composite >= thresholds.Composite:
		level = chant.MasteryDeveloping
	}

	next := stageNext[stage]
	gatePassed := composite >= thresholds.Composite
	hint := "Reinforce this stage before progressing."
	if gatePassed && next != "" {
		hint = fmt.Sprintf("Advance to %s with the same vocal stability focus.", next)
	}

	return chant.StageResult{
		Stage:         stage,
		LineageID:     lineage.ID,
		GoldenProfile: goldenProfile,
		Discipline:    chant.Round3(discipline),
		Resonance:     chant.Round3(resonance),
		Coherence:     chant.Round3(coherence),
		Composite:     chant.Round3(composite),
		PassesGolden:  passes,
		Feedback:      feedback,
		Mastery: chant.Mastery{
			Level:            level,
			ThresholdComp:    chant.Round3(thresholds.Composite),
			GapToThreshold:   chant.Round3(composite - thresholds.Composite),
			GatePassed:       gatePassed,
			NextStage:        next,
			NextStageHint:    hint,
			CadenceTargetGap: chant.Round2(math.Abs(metrics.CadenceBPM - TargetBPM)),
		},
		Signals: signals,
		Thresholds: map[string]float64{
			"discipline": chant.Round3(thresholds.Discipline),
			"resonance":  chant.Round3(thresholds.Resonance),
			"coherence":  chant.Round3(thresholds.Coherence),
			"composite":  chant.Round3(thresholds.Composite),
		},
	}, nil
}

// cadenceAccuracy scores closeness to the golden tempo.
func cadenceAccuracy(bpm float64) float64 {
	return chant.Clamp01(1.0 - math.Abs(bpm-TargetBPM)/cadenceToleranceBPM)
}

// energyCenteredScore rewards balanced intensity over raw loudness.
func energyCenteredScore(avgEnergy float64) float64 {
	return chant.Clamp01(1.0 - math.Abs(avgEnergy-energyCenter)/energyCenter)
}

// followerVoice is the practitioner's voice ratio during call-response,
// falling back to the total ratio when the follower phase carried no tag.
func followerVoice(m chant.FinalizedMetrics) float64 {
	if m.VoiceRatioFollower != nil {
		return *m.VoiceRatioFollower
	}
	return m.VoiceRatioTotal
}

// leaderVoice is the calling voice ratio, derived from the total when the
// leader phase carried no tag.
func leaderVoice(m chant.FinalizedMetrics) float64 {
	if m.VoiceRatioLeader != nil {
		return *m.VoiceRatioLeader
	}
	return chant.Clamp01(m.VoiceRatioTotal - followerVoice(m))
}

// stageScores computes the three sub-dimensions from disjoint metric
// subsets. The blends are fixed per stage: earlier stages weight discipline
// inputs more heavily, the independent stage leans on resonance and
// coherence.
func stageScores(stage chant.Stage, target stageTarget, m chant.FinalizedMetrics) (discipline, resonance, coherence float64, signals map[string]float64) {
	durationRatio := chant.Clamp01(m.DurationSeconds / target.durationSeconds)
	accuracy := cadenceAccuracy(m.CadenceBPM)
	energy := energyCenteredScore(m.AvgEnergy)
	voiceTotal := chant.Clamp01(m.VoiceRatioTotal)
	pitch := chant.Clamp01(m.PitchStability)
	consistency := chant.Clamp01(m.CadenceConsistency)

	switch stage {
	case chant.StageGuided:
		discipline = chant.Clamp01(0.40*durationRatio + 0.30*voiceTotal + 0.30*consistency)
		resonance = chant.Clamp01(0.45*pitch + 0.35*energy + 0.20*accuracy)
		coherence = chant.Clamp01(0.60*pitch + 0.40*consistency)
		signals = map[string]float64{
			"duration_ratio":      chant.Round3(durationRatio),
			"voice_total":         chant.Round3(voiceTotal),
			"cadence_consistency": chant.Round3(consistency),
		}
		return

	case chant.StageCallResponse:
		follower := followerVoice(m)
		leader := leaderVoice(m)
		followerTurnBalance := chant.Clamp01(1.0 - math.Abs(follower-0.6)/0.6)
		leaderListening := chant.Clamp01(1.0 - leader/0.5)

		discipline = chant.Clamp01(0.35*durationRatio + 0.35*followerTurnBalance + 0.30*leaderListening)
		resonance = chant.Clamp01(0.40*pitch + 0.35*accuracy + 0.25*energy)
		coherence = chant.Clamp01(0.45*pitch + 0.35*consistency + 0.20*follower)
		signals = map[string]float64{
			"duration_ratio":        chant.Round3(durationRatio),
			"voice_follower":        chant.Round3(follower),
			"voice_leader":          chant.Round3(leader),
			"follower_turn_balance": chant.Round3(followerTurnBalance),
			"leader_listening":      chant.Round3(leaderListening),
		}
		return

	default: // independent
		discipline = chant.Clamp01(0.45*durationRatio + 0.35*voiceTotal + 0.20*consistency)
		resonance = chant.Clamp01(0.45*pitch + 0.35*energy + 0.20*voiceTotal)
		coherence = chant.Clamp01(0.40*pitch + 0.35*consistency + 0.25*accuracy)
		signals = map[string]float64{
			"duration_ratio":   chant.Round3(durationRatio),
			"voice_total":      chant.Round3(voiceTotal),
			"cadence_accuracy": chant.Round3(accuracy),
		}
		return
	}
}

package projection

import (
	"encoding/json"
	"time"

	"github.com/dhvanilabs/sadhana/pkg/chant"
	"github.com/dhvanilabs/sadhana/pkg/eventlog"
)

// foldState is the accumulator for one session's fold. Both the live engine
// and cold replay advance it through apply, one event at a time.
type foldState struct {
	sessionID     string
	ownerID       string
	intention     string
	mantraKey     string
	mood          string
	targetMinutes int

	startedAt time.Time
	endedAt   time.Time
	ended     bool

	currentStage chant.Stage
	stageResults map[chant.Stage]chant.StageResult

	practiceSeconds     float64
	flowScores          []float64
	pronunciationScores []float64
	helpfulFlags        []float64
	rating              *float64
	completedOverride   *bool

	events      int
	adaptations int
}

func newFoldState(sessionID string) *foldState {
	return &foldState{
		sessionID:    sessionID,
		stageResults: make(map[chant.Stage]chant.StageResult),
	}
}

// apply folds one event into the state. Unknown payload fields are ignored;
// the event log already validated the required ones.
func (s *foldState) apply(event eventlog.Event) {
	if s.events == 0 {
		s.startedAt = event.Timestamp
	}
	s.events++

	var fields map[string]any
	if err := json.Unmarshal(event.Payload, &fields); err != nil {
		fields = map[string]any{}
	}

	if v, ok := number(fields, "practice_seconds"); ok {
		s.practiceSeconds += v
	}
	if v, ok := number(fields, "flow_score"); ok {
		s.flowScores = append(s.flowScores, v)
	}
	if v, ok := number(fields, "pronunciation_score"); ok {
		s.pronunciationScores = append(s.pronunciationScores, v)
	}
	if v, ok := fields["adaptation_helpful"].(bool); ok {
		if v {
			s.helpfulFlags = append(s.helpfulFlags, 1.0)
		} else {
			s.helpfulFlags = append(s.helpfulFlags, 0.0)
		}
	}

	switch event.Type {
	case eventlog.TypeQueueState:
		s.applyQueueState(fields)
	case eventlog.TypeStageEval:
		s.applyStageEval(event.Payload)
	case eventlog.TypeAdaptationRequest:
		s.adaptations++
	case eventlog.TypeSessionEnd:
		s.applySessionEnd(event.Timestamp, fields)
	}
}

func (s *foldState) applyQueueState(fields map[string]any) {
	if v, ok := fields["owner_id"].(string); ok && v != "" {
		s.ownerID = v
	}
	if v, ok := fields["intention"].(string); ok && v != "" {
		s.intention = v
	}
	if v, ok := fields["mantra_key"].(string); ok && v != "" {
		s.mantraKey = v
	}
	if v, ok := fields["mood"].(string); ok && v != "" {
		s.mood = v
	}
	if v, ok := number(fields, "target_minutes"); ok && v > 0 {
		s.targetMinutes = int(v)
	}
}

func (s *foldState) applyStageEval(payload []byte) {
	var result chant.StageResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return
	}
	if !result.Stage.Valid() {
		return
	}
	s.currentStage = result.Stage

	// Acknowledge-only stages record the visit but carry no score.
	if !result.Stage.Scoreable() {
		return
	}
	s.stageResults[result.Stage] = result
}

// applySessionEnd ends the session exactly once; a later session_end that
// slipped past idempotency is ignored.
func (s *foldState) applySessionEnd(at time.Time, fields map[string]any) {
	if s.ended {
		return
	}
	s.ended = true
	s.endedAt = at
	if v, ok := number(fields, "user_value_rating"); ok {
		s.rating = &v
	}
	if v, ok := fields["completed_goal"].(bool); ok {
		s.completedOverride = &v
	}
}

// summary derives the read view from the accumulated state. For sessions
// still active, wall-clock practice time is measured against now.
func (s *foldState) summary(now time.Time) SessionSummary {
	practiceSeconds := s.practiceSeconds
	if practiceSeconds <= 0 && !s.startedAt.IsZero() {
		end := now
		if s.ended {
			end = s.endedAt
		}
		if elapsed := end.Sub(s.startedAt).Seconds(); elapsed > 0 {
			practiceSeconds = elapsed
		}
	}
	practiceMinutes := chant.Round2(practiceSeconds / 60.0)

	target := s.targetMinutes
	if target < 1 {
		target = 1
	}
	completed := practiceMinutes >= 0.8*float64(target)
	if s.completedOverride != nil {
		completed = *s.completedOverride
	}

	meaningful := practiceMinutes >= 10 && completed &&
		(s.rating == nil || *s.rating >= 4.0)

	lifecycle := LifecycleActive
	if s.ended {
		lifecycle = LifecycleEnded
	}

	summary := SessionSummary{
		SessionID:             s.sessionID,
		OwnerID:               s.ownerID,
		Intention:             s.intention,
		MantraKey:             s.mantraKey,
		Mood:                  s.mood,
		TargetMinutes:         s.targetMinutes,
		Lifecycle:             lifecycle,
		StartedAt:             s.startedAt,
		EndedAt:               s.endedAt,
		CurrentStage:          s.currentStage,
		PracticeMinutes:       practiceMinutes,
		EventsCount:           s.events,
		AdaptationsCount:      s.adaptations,
		AvgFlowScore:          roundedMean(s.flowScores),
		AvgPronunciationScore: roundedMean(s.pronunciationScores),
		AdaptationHelpfulRate: roundedMean(s.helpfulFlags),
		CompletedGoal:         completed,
		UserValueRating:       s.rating,
		MeaningfulSession:     meaningful,
	}
	if len(s.stageResults) > 0 {
		summary.StageResults = make(map[chant.Stage]chant.StageResult, len(s.stageResults))
		for stage, result := range s.stageResults {
			summary.StageResults[stage] = result
		}
	}
	return summary
}

// Replay folds a session's ordered events from empty state. It must always
// reproduce what the live engine reports for the same events.
func Replay(events []eventlog.Event, now time.Time) (SessionSummary, bool) {
	if len(events) == 0 {
		return SessionSummary{}, false
	}
	state := newFoldState(events[0].SessionID)
	for _, event := range events {
		state.apply(event)
	}
	return state.summary(now), true
}

func roundedMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return chant.Round3(chant.Mean(values))
}

func number(fields map[string]any, key string) (float64, bool) {
	v, ok := fields[key].(float64)
	return v, ok
}

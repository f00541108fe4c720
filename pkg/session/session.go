// Package session orchestrates one practice session end to end: it owns the
// per-session stage machine, routes stage attempts through the bhav scorer,
// asks the adaptation policy for decisions, and records every outcome in the
// append-only event log before feeding the projection engine and the
// integration event stream.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dhvanilabs/sadhana/pkg/adapt"
	"github.com/dhvanilabs/sadhana/pkg/bhav"
	"github.com/dhvanilabs/sadhana/pkg/chant"
	"github.com/dhvanilabs/sadhana/pkg/eventlog"
	"github.com/dhvanilabs/sadhana/pkg/eventstream"
	"github.com/dhvanilabs/sadhana/pkg/fusion"
	"github.com/dhvanilabs/sadhana/pkg/projection"
	"github.com/dhvanilabs/sadhana/pkg/stage"
	"github.com/dhvanilabs/sadhana/pkg/utils"
	"github.com/dhvanilabs/sadhana/pkg/worker"
)

// Config wires the collaborators a Manager needs. Store, Engine, and
// Registry are required; everything else has a working default.
type Config struct {
	Store    eventlog.Store
	Engine   *projection.Engine
	Registry *bhav.Registry
	Policy   *adapt.Policy

	// Pool, when set, receives an integration event after every scored
	// stage, applied adaptation, and session end.
	Pool *worker.Pool

	// Source identifies this deployment on published events.
	Source eventstream.EventSource

	// Lineage and GoldenProfile are the scoring defaults used when a
	// session does not pick its own.
	Lineage       string
	GoldenProfile string

	Logger *slog.Logger
	Clock  func() time.Time
}

// Manager coordinates all live sessions. Safe for concurrent use; operations
// on the same session serialize, different sessions proceed in parallel.
type Manager struct {
	store    eventlog.Store
	engine   *projection.Engine
	registry *bhav.Registry
	scorer   *bhav.Scorer
	policy   *adapt.Policy
	pool     *worker.Pool
	source   eventstream.EventSource
	logger   *slog.Logger
	now      func() time.Time

	lineage       string
	goldenProfile string

	mu       sync.Mutex
	sessions map[string]*sessionState
}

// sessionState is the live, in-memory view of one session. It is rebuilt
// from the event log on first touch after a restart.
type sessionState struct {
	mu sync.Mutex

	ownerID       string
	lineage       string
	goldenProfile string
	machine       *stage.Machine
	currentStage  chant.Stage
	ended         bool

	lastCadenceBPM         *float64
	lastCadenceConsistency *float64
	lastPronunciation      *float64
	lastFlow               *float64
}

func NewManager(c *Config) (*Manager, error) {
	if c == nil || c.Store == nil {
		return nil, errors.New("session manager requires a store")
	}
	if c.Engine == nil {
		return nil, errors.New("session manager requires a projection engine")
	}

	registry := c.Registry
	if registry == nil {
		registry = bhav.DefaultRegistry()
	}

	policy := c.Policy
	if policy == nil {
		policy = adapt.NewPolicy()
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := c.Clock
	if now == nil {
		now = time.Now
	}

	lineage := c.Lineage
	if lineage == "" {
		lineage = bhav.DefaultLineageID
	}
	if _, err := registry.ResolveLineage(lineage); err != nil {
		return nil, err
	}

	goldenProfile := c.GoldenProfile
	if goldenProfile == "" {
		goldenProfile = bhav.DefaultGoldenProfile
	}
	if !registry.HasProfile(goldenProfile) {
		return nil, bhav.UnknownProfileError{Profile: goldenProfile}
	}

	source := c.Source
	if source.Service == "" {
		source.Service = "sadhana"
	}

	return &Manager{
		store:         c.Store,
		engine:        c.Engine,
		registry:      registry,
		scorer:        bhav.NewScorer(registry),
		policy:        policy,
		pool:          c.Pool,
		source:        source,
		logger:        logger,
		now:           now,
		lineage:       lineage,
		goldenProfile: goldenProfile,
		sessions:      make(map[string]*sessionState),
	}, nil
}

// StartParams describes a new session. SessionID is generated when empty;
// Lineage and GoldenProfile fall back to the manager defaults.
type StartParams struct {
	SessionID     string `json:"session_id"`
	OwnerID       string `json:"owner_id"`
	Intention     string `json:"intention"`
	MantraKey     string `json:"mantra_key"`
	Mood          string `json:"mood"`
	TargetMinutes int    `json:"target_minutes"`
	Lineage       string `json:"lineage"`
	GoldenProfile string `json:"golden_profile"`
}

// Started reports the outcome of a Start call. Duplicate is set when the
// session had already been started and the call was absorbed.
type Started struct {
	SessionID     string `json:"session_id"`
	Lineage       string `json:"lineage"`
	GoldenProfile string `json:"golden_profile"`
	Duplicate     bool   `json:"duplicate"`
}

type startPayload struct {
	Queued        bool   `json:"queued"`
	OwnerID       string `json:"owner_id,omitempty"`
	Intention     string `json:"intention,omitempty"`
	MantraKey     string `json:"mantra_key,omitempty"`
	Mood          string `json:"mood,omitempty"`
	TargetMinutes int    `json:"target_minutes,omitempty"`
	Lineage       string `json:"lineage"`
	GoldenProfile string `json:"golden_profile"`
}

// Start opens a session by recording its queue_state event. Restarting the
// same session id is idempotent: the original event absorbs the retry.
func (m *Manager) Start(ctx context.Context, p StartParams) (Started, error) {
	if p.SessionID == "" {
		p.SessionID = uuid.NewString()
	}

	lineage := p.Lineage
	if lineage == "" {
		lineage = m.lineage
	}
	if _, err := m.registry.ResolveLineage(lineage); err != nil {
		return Started{}, err
	}

	goldenProfile := p.GoldenProfile
	if goldenProfile == "" {
		goldenProfile = m.goldenProfile
	}
	if !m.registry.HasProfile(goldenProfile) {
		return Started{}, bhav.UnknownProfileError{Profile: goldenProfile}
	}

	payload, err := json.Marshal(startPayload{
		Queued:        true,
		OwnerID:       p.OwnerID,
		Intention:     p.Intention,
		MantraKey:     p.MantraKey,
		Mood:          p.Mood,
		TargetMinutes: p.TargetMinutes,
		Lineage:       lineage,
		GoldenProfile: goldenProfile,
	})
	if err != nil {
		return Started{}, err
	}

	result, err := m.store.Append(ctx, eventlog.Event{
		SessionID:      p.SessionID,
		IdempotencyKey: "session_start:" + p.SessionID,
		Type:           eventlog.TypeQueueState,
		Payload:        payload,
	})
	if err != nil {
		return Started{}, err
	}

	if result.Duplicate {
		// A retried start must not reset live state. Hydrate from the log
		// so gating and lifecycle survive a restart, and answer with the
		// stored lineage and profile rather than the retry's.
		state, err := m.state(ctx, p.SessionID)
		if err != nil {
			return Started{}, err
		}
		state.mu.Lock()
		lineage = state.lineage
		goldenProfile = state.goldenProfile
		state.mu.Unlock()
	} else {
		m.engine.Apply(result.Event)

		state := &sessionState{
			ownerID:       p.OwnerID,
			lineage:       lineage,
			goldenProfile: goldenProfile,
			machine:       stage.NewMachine(),
		}
		m.mu.Lock()
		if _, ok := m.sessions[p.SessionID]; !ok {
			m.sessions[p.SessionID] = state
		}
		m.mu.Unlock()
	}

	m.logger.Info("session started",
		"session_id", p.SessionID,
		"lineage", lineage,
		"golden_profile", goldenProfile,
		"duplicate", result.Duplicate)

	return Started{
		SessionID:     p.SessionID,
		Lineage:       lineage,
		GoldenProfile: goldenProfile,
		Duplicate:     result.Duplicate,
	}, nil
}

// Acknowledge marks an acknowledge-only stage (listen, recap) as visited.
func (m *Manager) Acknowledge(ctx context.Context, sessionID string, s chant.Stage) error {
	state, err := m.state(ctx, sessionID)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.ended {
		return EndedError{SessionID: sessionID}
	}
	if err := state.machine.Acknowledge(s); err != nil {
		return err
	}
	state.currentStage = s

	payload, err := json.Marshal(map[string]any{
		"stage":        s,
		"acknowledged": true,
	})
	if err != nil {
		return err
	}

	result, err := m.store.Append(ctx, eventlog.Event{
		SessionID:      sessionID,
		IdempotencyKey: "stage_ack:" + sessionID + ":" + string(s),
		Type:           eventlog.TypeStageEval,
		Payload:        payload,
	})
	if err != nil {
		return err
	}
	if !result.Duplicate {
		m.engine.Apply(result.Event)
	}
	return nil
}

// EvaluateParams carries one scored stage attempt.
type EvaluateParams struct {
	SessionID string                 `json:"session_id"`
	Stage     chant.Stage            `json:"stage"`
	Metrics   chant.FinalizedMetrics `json:"metrics"`

	// PracticeSeconds is the wall time this attempt contributes to the
	// session's practice total.
	PracticeSeconds float64 `json:"practice_seconds"`

	FlowScore          *float64 `json:"flow_score,omitempty"`
	PronunciationScore *float64 `json:"pronunciation_score,omitempty"`

	// IdempotencyKey lets a caller retry safely. Generated when empty.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type stageEvalPayload struct {
	chant.StageResult
	PracticeSeconds    float64  `json:"practice_seconds,omitempty"`
	FlowScore          *float64 `json:"flow_score,omitempty"`
	PronunciationScore *float64 `json:"pronunciation_score,omitempty"`
}

// Evaluate scores one stage attempt against the session's lineage golden
// profile, records the result, and publishes a stage.evaluated event. A
// retried idempotency key returns the originally stored result.
func (m *Manager) Evaluate(ctx context.Context, p EvaluateParams) (chant.StageResult, error) {
	state, err := m.state(ctx, p.SessionID)
	if err != nil {
		return chant.StageResult{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.ended {
		return chant.StageResult{}, EndedError{SessionID: p.SessionID}
	}
	if err := state.machine.Gate(p.Stage); err != nil {
		return chant.StageResult{}, err
	}

	result, err := m.scorer.Evaluate(p.Stage, state.lineage, state.goldenProfile, p.Metrics)
	if err != nil {
		return chant.StageResult{}, err
	}

	key := p.IdempotencyKey
	if key == "" {
		key = "stage_eval:" + uuid.NewString()
	}

	payload, err := json.Marshal(stageEvalPayload{
		StageResult:        result,
		PracticeSeconds:    p.PracticeSeconds,
		FlowScore:          p.FlowScore,
		PronunciationScore: p.PronunciationScore,
	})
	if err != nil {
		return chant.StageResult{}, err
	}

	appended, err := m.store.Append(ctx, eventlog.Event{
		SessionID:      p.SessionID,
		IdempotencyKey: key,
		Type:           eventlog.TypeStageEval,
		Payload:        payload,
	})
	if err != nil {
		return chant.StageResult{}, err
	}

	if appended.Duplicate {
		var stored stageEvalPayload
		if err := json.Unmarshal(appended.Event.Payload, &stored); err != nil {
			return chant.StageResult{}, err
		}
		if err := state.machine.Complete(p.Stage, stored.StageResult); err != nil {
			return chant.StageResult{}, err
		}
		state.currentStage = p.Stage
		return stored.StageResult, nil
	}

	if err := state.machine.Complete(p.Stage, result); err != nil {
		return chant.StageResult{}, err
	}
	state.currentStage = p.Stage
	if p.FlowScore != nil {
		state.lastFlow = p.FlowScore
	}
	if p.PronunciationScore != nil {
		state.lastPronunciation = p.PronunciationScore
	}

	m.engine.Apply(appended.Event)
	m.publish(eventstream.EventTypeStageEvaluated, p.SessionID, state.ownerID, appended.Event.Payload)

	m.logger.Info("stage evaluated",
		"session_id", p.SessionID,
		"stage", p.Stage,
		"composite", result.Composite,
		"passes_golden", result.PassesGolden)

	return result, nil
}

// VoiceWindowParams carries one finalized capture window.
type VoiceWindowParams struct {
	SessionID string                 `json:"session_id"`
	Metrics   chant.FinalizedMetrics `json:"metrics"`

	PracticeSeconds    float64  `json:"practice_seconds"`
	FlowScore          *float64 `json:"flow_score,omitempty"`
	PronunciationScore *float64 `json:"pronunciation_score,omitempty"`

	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type voiceWindowPayload struct {
	chant.FinalizedMetrics
	PracticeSeconds    float64  `json:"practice_seconds"`
	FlowScore          *float64 `json:"flow_score,omitempty"`
	PronunciationScore *float64 `json:"pronunciation_score,omitempty"`
}

// RecordVoiceWindow logs a finalized capture window. The latest window's
// cadence and scores seed the observed terms of later adaptation requests.
func (m *Manager) RecordVoiceWindow(ctx context.Context, p VoiceWindowParams) (eventlog.AppendResult, error) {
	state, err := m.state(ctx, p.SessionID)
	if err != nil {
		return eventlog.AppendResult{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.ended {
		return eventlog.AppendResult{}, EndedError{SessionID: p.SessionID}
	}

	key := p.IdempotencyKey
	if key == "" {
		key = "voice_window:" + uuid.NewString()
	}

	payload, err := json.Marshal(voiceWindowPayload{
		FinalizedMetrics:   p.Metrics,
		PracticeSeconds:    p.PracticeSeconds,
		FlowScore:          p.FlowScore,
		PronunciationScore: p.PronunciationScore,
	})
	if err != nil {
		return eventlog.AppendResult{}, err
	}

	result, err := m.store.Append(ctx, eventlog.Event{
		SessionID:      p.SessionID,
		IdempotencyKey: key,
		Type:           eventlog.TypeVoiceWindow,
		Payload:        payload,
	})
	if err != nil {
		return eventlog.AppendResult{}, err
	}

	if !result.Duplicate {
		cadence := p.Metrics.CadenceBPM
		consistency := p.Metrics.CadenceConsistency
		state.lastCadenceBPM = &cadence
		state.lastCadenceConsistency = &consistency
		if p.FlowScore != nil {
			state.lastFlow = p.FlowScore
		}
		if p.PronunciationScore != nil {
			state.lastPronunciation = p.PronunciationScore
		}
		m.engine.Apply(result.Event)
	}

	return result, nil
}

// PartnerSignalParams carries a signal from the practice partner surface,
// such as an adaptation feedback tap.
type PartnerSignalParams struct {
	SessionID  string      `json:"session_id"`
	SignalType string      `json:"signal_type"`
	Phase      chant.Phase `json:"phase,omitempty"`

	// AdaptationHelpful is the partner's read on the last adaptation.
	AdaptationHelpful *bool `json:"adaptation_helpful,omitempty"`

	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// RecordPartnerSignal logs a partner signal event.
func (m *Manager) RecordPartnerSignal(ctx context.Context, p PartnerSignalParams) (eventlog.AppendResult, error) {
	state, err := m.state(ctx, p.SessionID)
	if err != nil {
		return eventlog.AppendResult{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.ended {
		return eventlog.AppendResult{}, EndedError{SessionID: p.SessionID}
	}

	key := p.IdempotencyKey
	if key == "" {
		key = "partner_signal:" + uuid.NewString()
	}

	fields := map[string]any{"signal_type": p.SignalType}
	if p.Phase != "" {
		fields["phase"] = p.Phase
	}
	if p.AdaptationHelpful != nil {
		fields["adaptation_helpful"] = *p.AdaptationHelpful
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return eventlog.AppendResult{}, err
	}

	result, err := m.store.Append(ctx, eventlog.Event{
		SessionID:      p.SessionID,
		IdempotencyKey: key,
		Type:           eventlog.TypePartnerSignal,
		Payload:        payload,
	})
	if err != nil {
		return eventlog.AppendResult{}, err
	}
	if !result.Duplicate {
		m.engine.Apply(result.Event)
	}
	return result, nil
}

// AdaptParams carries the context for one adaptation request.
type AdaptParams struct {
	SessionID string       `json:"session_id"`
	Context   fusion.Input `json:"context"`

	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type adaptationPayload struct {
	Snapshot fusion.Snapshot `json:"snapshot"`
	Observed adapt.Observed  `json:"observed"`
	Decision adapt.Decision  `json:"decision"`
}

// Adapt fuses the caller's context with the session's latest observed
// terms, asks the policy for a decision, and records it. The decision
// never fails: when enrichment is unavailable the deterministic fallback
// answers instead.
func (m *Manager) Adapt(ctx context.Context, p AdaptParams) (adapt.Decision, error) {
	state, err := m.state(ctx, p.SessionID)
	if err != nil {
		return adapt.Decision{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.ended {
		return adapt.Decision{}, EndedError{SessionID: p.SessionID}
	}

	if p.Context.Stage == "" {
		p.Context.Stage = state.currentStage
	}
	snap := fusion.Fuse(p.Context)
	obs := adapt.Observed{
		CadenceBPM:         state.lastCadenceBPM,
		CadenceConsistency: state.lastCadenceConsistency,
		PronunciationScore: state.lastPronunciation,
		FlowScore:          state.lastFlow,
	}

	decision := m.policy.Decide(ctx, snap, obs)

	key := p.IdempotencyKey
	if key == "" {
		key = "adaptation:" + uuid.NewString()
	}

	payload, err := json.Marshal(adaptationPayload{
		Snapshot: snap,
		Observed: obs,
		Decision: decision,
	})
	if err != nil {
		return adapt.Decision{}, err
	}

	result, err := m.store.Append(ctx, eventlog.Event{
		SessionID:      p.SessionID,
		IdempotencyKey: key,
		Type:           eventlog.TypeAdaptationRequest,
		Payload:        payload,
	})
	if err != nil {
		return adapt.Decision{}, err
	}

	if result.Duplicate {
		var stored adaptationPayload
		if err := json.Unmarshal(result.Event.Payload, &stored); err != nil {
			return adapt.Decision{}, err
		}
		return stored.Decision, nil
	}

	m.engine.Apply(result.Event)
	m.publish(eventstream.EventTypeAdaptationApplied, p.SessionID, state.ownerID, result.Event.Payload)

	m.logger.Info("adaptation applied",
		"session_id", p.SessionID,
		"tempo_bpm", decision.TempoBPM,
		"guidance", decision.Guidance,
		"source", decision.Source,
		"reason", utils.Truncate(decision.Reason, 96))

	return decision, nil
}

// EndParams finalizes a session.
type EndParams struct {
	SessionID string `json:"session_id"`

	UserValueRating *float64 `json:"user_value_rating,omitempty"`

	// CompletedGoal overrides the derived goal check when the caller
	// knows better, e.g. an offline practice block logged elsewhere.
	CompletedGoal *bool `json:"completed_goal,omitempty"`
}

// End finalizes a session exactly once and returns its summary. Repeat
// calls are absorbed and return the already-final summary.
func (m *Manager) End(ctx context.Context, p EndParams) (projection.SessionSummary, error) {
	state, err := m.state(ctx, p.SessionID)
	if err != nil {
		return projection.SessionSummary{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	fields := map[string]any{}
	if p.UserValueRating != nil {
		fields["user_value_rating"] = *p.UserValueRating
	}
	if p.CompletedGoal != nil {
		fields["completed_goal"] = *p.CompletedGoal
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return projection.SessionSummary{}, err
	}

	result, err := m.store.Append(ctx, eventlog.Event{
		SessionID:      p.SessionID,
		IdempotencyKey: "session_end:" + p.SessionID,
		Type:           eventlog.TypeSessionEnd,
		Payload:        payload,
	})
	if err != nil {
		return projection.SessionSummary{}, err
	}

	if !result.Duplicate {
		state.ended = true
		m.engine.Apply(result.Event)
	}

	summary, err := m.engine.Summary(ctx, p.SessionID)
	if err != nil {
		return projection.SessionSummary{}, err
	}

	if !result.Duplicate {
		raw, err := json.Marshal(summary)
		if err == nil {
			m.publish(eventstream.EventTypeSessionEnded, p.SessionID, state.ownerID, raw)
		}
		m.logger.Info("session ended",
			"session_id", p.SessionID,
			"practice_minutes", summary.PracticeMinutes,
			"meaningful", summary.MeaningfulSession)
	}

	return summary, nil
}

// Summary returns the session's current read view.
func (m *Manager) Summary(ctx context.Context, sessionID string) (projection.SessionSummary, error) {
	return m.engine.Summary(ctx, sessionID)
}

// Progress returns the cross-session totals for an owner.
func (m *Manager) Progress(ctx context.Context, ownerID string) (projection.Progress, error) {
	return m.engine.Progress(ctx, ownerID)
}

// state returns the live state for a session, rebuilding it from the event
// log when the manager has not seen the session since startup.
func (m *Manager) state(ctx context.Context, sessionID string) (*sessionState, error) {
	m.mu.Lock()
	state, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if ok {
		return state, nil
	}

	events, err := m.store.Read(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, NotFoundError{SessionID: sessionID}
	}

	state = m.rebuildState(events)

	m.mu.Lock()
	if existing, ok := m.sessions[sessionID]; ok {
		state = existing
	} else {
		m.sessions[sessionID] = state
	}
	m.mu.Unlock()

	return state, nil
}

// rebuildState refolds a session's events into live state. The log was
// written through the same gates, so replayed transitions are trusted;
// anything that no longer fits is skipped rather than fatal.
func (m *Manager) rebuildState(events []eventlog.Event) *sessionState {
	state := &sessionState{
		lineage:       m.lineage,
		goldenProfile: m.goldenProfile,
		machine:       stage.NewMachine(),
	}

	for _, event := range events {
		var fields map[string]any
		if err := json.Unmarshal(event.Payload, &fields); err != nil {
			continue
		}

		switch event.Type {
		case eventlog.TypeQueueState:
			if v, ok := fields["owner_id"].(string); ok {
				state.ownerID = v
			}
			if v, ok := fields["lineage"].(string); ok && v != "" {
				state.lineage = v
			}
			if v, ok := fields["golden_profile"].(string); ok && v != "" {
				state.goldenProfile = v
			}

		case eventlog.TypeStageEval:
			var stored stageEvalPayload
			if err := json.Unmarshal(event.Payload, &stored); err != nil {
				continue
			}
			s := stored.Stage
			if !s.Valid() {
				continue
			}
			if s.Scoreable() {
				if err := state.machine.Complete(s, stored.StageResult); err != nil {
					m.logger.Debug("skipping unreplayable stage eval",
						"session_id", event.SessionID, "stage", s, "error", err)
					continue
				}
			} else {
				if err := state.machine.Acknowledge(s); err != nil {
					m.logger.Debug("skipping unreplayable stage ack",
						"session_id", event.SessionID, "stage", s, "error", err)
					continue
				}
			}
			state.currentStage = s
			if stored.FlowScore != nil {
				state.lastFlow = stored.FlowScore
			}
			if stored.PronunciationScore != nil {
				state.lastPronunciation = stored.PronunciationScore
			}

		case eventlog.TypeVoiceWindow:
			var stored voiceWindowPayload
			if err := json.Unmarshal(event.Payload, &stored); err != nil {
				continue
			}
			cadence := stored.CadenceBPM
			consistency := stored.CadenceConsistency
			state.lastCadenceBPM = &cadence
			state.lastCadenceConsistency = &consistency
			if stored.FlowScore != nil {
				state.lastFlow = stored.FlowScore
			}
			if stored.PronunciationScore != nil {
				state.lastPronunciation = stored.PronunciationScore
			}

		case eventlog.TypeSessionEnd:
			state.ended = true
		}
	}

	return state
}

func (m *Manager) publish(eventType, sessionID, ownerID string, payload json.RawMessage) {
	if m.pool == nil {
		return
	}

	m.pool.Enqueue(worker.Job{Event: &eventstream.PracticeEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     m.now().UTC(),
		Source:        m.source,
		SessionID:     sessionID,
		OwnerID:       ownerID,
		Payload:       payload,
	}})
}

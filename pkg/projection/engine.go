package projection

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dhvanilabs/sadhana/pkg/chant"
	"github.com/dhvanilabs/sadhana/pkg/eventlog"
)

// Engine maintains live read views over an event store. Views are held per
// session under one lock; a recompute for one session never blocks appends
// for others because the store serializes per session, not globally.
type Engine struct {
	store  eventlog.Store
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*foldState
	progress map[string]Progress
}

type EngineOption func(*Engine)

func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock fixes the engine's clock, for deterministic tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(store eventlog.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		logger:   slog.Default(),
		now:      time.Now,
		sessions: make(map[string]*foldState),
		progress: make(map[string]Progress),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply advances the live views with one freshly appended event. Duplicate
// appends must not be applied; the store already absorbed them.
func (e *Engine) Apply(event eventlog.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyLocked(event)
}

func (e *Engine) applyLocked(event eventlog.Event) {
	state, ok := e.sessions[event.SessionID]
	if !ok {
		state = newFoldState(event.SessionID)
		e.sessions[event.SessionID] = state
	}

	endedBefore := state.ended
	state.apply(event)

	// The owner's progress advances exactly once, when the session ends.
	if state.ended && !endedBefore && state.ownerID != "" {
		e.advanceProgress(state.ownerID, state.summary(e.now()))
	}
}

func (e *Engine) advanceProgress(ownerID string, summary SessionSummary) {
	progress := e.progress[ownerID]
	progress.OwnerID = ownerID

	totalBefore := progress.TotalSessions
	progress.TotalSessions++
	if summary.CompletedGoal {
		progress.CompletedSessions++
	}
	progress.TotalPracticeMinutes = chant.Round2(progress.TotalPracticeMinutes + summary.PracticeMinutes)

	if totalBefore <= 0 {
		progress.AvgFlowScore = summary.AvgFlowScore
		progress.AvgPronunciationScore = summary.AvgPronunciationScore
	} else {
		progress.AvgFlowScore = chant.Round3(
			(progress.AvgFlowScore*float64(totalBefore) + summary.AvgFlowScore) / float64(totalBefore+1))
		progress.AvgPronunciationScore = chant.Round3(
			(progress.AvgPronunciationScore*float64(totalBefore) + summary.AvgPronunciationScore) / float64(totalBefore+1))
	}

	progress.UpdatedAt = e.now().UTC()
	e.progress[ownerID] = progress
}

// Summary returns the live view for a session, folding it from the store on
// a cold cache.
func (e *Engine) Summary(ctx context.Context, sessionID string) (SessionSummary, error) {
	e.mu.RLock()
	if state, ok := e.sessions[sessionID]; ok {
		summary := state.summary(e.now())
		e.mu.RUnlock()
		return summary, nil
	}
	e.mu.RUnlock()

	events, err := e.store.Read(ctx, sessionID)
	if err != nil {
		return SessionSummary{}, err
	}
	if len(events) == 0 {
		return SessionSummary{}, NotFoundError{Kind: "session", ID: sessionID}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.sessions[sessionID]
	if !ok {
		state = newFoldState(sessionID)
		for _, event := range events {
			state.apply(event)
		}
		e.sessions[sessionID] = state
	}
	return state.summary(e.now()), nil
}

// Progress returns the aggregate view for an owner.
func (e *Engine) Progress(ctx context.Context, ownerID string) (Progress, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	progress, ok := e.progress[ownerID]
	if !ok {
		return Progress{}, NotFoundError{Kind: "owner progress", ID: ownerID}
	}
	return progress, nil
}

// Rebuild discards every live view and refolds the entire store. Sessions
// replay in id order so the rebuilt owner aggregates are deterministic.
func (e *Engine) Rebuild(ctx context.Context) error {
	ids, err := e.store.Sessions(ctx)
	if err != nil {
		return err
	}
	sort.Strings(ids)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions = make(map[string]*foldState)
	e.progress = make(map[string]Progress)

	for _, id := range ids {
		events, err := e.store.Read(ctx, id)
		if err != nil {
			return err
		}
		for _, event := range events {
			e.applyLocked(event)
		}
	}
	e.logger.Debug("rebuilt projections", "sessions", len(ids))
	return nil
}

// Package inmemory provides the map-backed event log used by tests and
// ephemeral sessions.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dhvanilabs/sadhana/pkg/eventlog"
)

type sessionLog struct {
	mu     sync.Mutex
	events []eventlog.Event
	byKey  map[string]int
}

// Store keeps each session's events in order behind a per-session mutex, so
// appends to one session serialize while sessions stay independent.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*sessionLog
}

func New() *Store {
	return &Store{sessions: make(map[string]*sessionLog)}
}

func (s *Store) session(id string) *sessionLog {
	s.mu.RLock()
	log, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return log
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if log, ok = s.sessions[id]; ok {
		return log
	}
	log = &sessionLog{byKey: make(map[string]int)}
	s.sessions[id] = log
	return log
}

func (s *Store) Append(ctx context.Context, event eventlog.Event) (eventlog.AppendResult, error) {
	if err := eventlog.Prepare(&event); err != nil {
		return eventlog.AppendResult{}, err
	}

	log := s.session(event.SessionID)
	log.mu.Lock()
	defer log.mu.Unlock()

	if index, ok := log.byKey[event.IdempotencyKey]; ok {
		return eventlog.AppendResult{Event: log.events[index], Duplicate: true}, nil
	}

	event.Seq = int64(len(log.events)) + 1
	event.Timestamp = time.Now().UTC()
	log.events = append(log.events, event)
	log.byKey[event.IdempotencyKey] = len(log.events) - 1
	return eventlog.AppendResult{Event: event}, nil
}

func (s *Store) Read(ctx context.Context, sessionID string) ([]eventlog.Event, error) {
	s.mu.RLock()
	log, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	events := make([]eventlog.Event, len(log.events))
	copy(events, log.events)
	return events, nil
}

func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) Close() error { return nil }

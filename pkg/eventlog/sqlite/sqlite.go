// Package sqlite provides the SQLite-backed event log driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dhvanilabs/sadhana/pkg/eventlog"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id      TEXT NOT NULL,
	idempotency_key TEXT NOT NULL,
	event_type      TEXT NOT NULL,
	schema_version  TEXT NOT NULL,
	payload         TEXT NOT NULL,
	seq             INTEGER NOT NULL,
	created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (session_id, idempotency_key),
	UNIQUE (session_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_events_session_seq ON events (session_id, seq);
`

// Store implements eventlog.Store on SQLite via the mattn driver. The
// dbPath can be a file path or ":memory:".
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA foreign_keys = ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Append(ctx context.Context, event eventlog.Event) (eventlog.AppendResult, error) {
	if err := eventlog.Prepare(&event); err != nil {
		return eventlog.AppendResult{}, err
	}

	// SQLite holds a single write lock, so the transaction serializes
	// appends across all sessions on this handle.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eventlog.AppendResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	prior, err := readOne(ctx, tx, event.SessionID, event.IdempotencyKey)
	if err == nil {
		return eventlog.AppendResult{Event: prior, Duplicate: true}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return eventlog.AppendResult{}, err
	}

	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM events WHERE session_id = ?`,
		event.SessionID,
	).Scan(&event.Seq)
	if err != nil {
		return eventlog.AppendResult{}, fmt.Errorf("failed to assign sequence: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (session_id, idempotency_key, event_type, schema_version, payload, seq)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.SessionID, event.IdempotencyKey, string(event.Type),
		event.SchemaVersion, string(event.Payload), event.Seq,
	)
	if err != nil {
		return eventlog.AppendResult{}, fmt.Errorf("failed to append event: %w", err)
	}

	stored, err := readOne(ctx, tx, event.SessionID, event.IdempotencyKey)
	if err != nil {
		return eventlog.AppendResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return eventlog.AppendResult{}, fmt.Errorf("failed to commit append: %w", err)
	}
	return eventlog.AppendResult{Event: stored}, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readOne(ctx context.Context, q querier, sessionID, key string) (eventlog.Event, error) {
	var event eventlog.Event
	var eventType, payload string
	err := q.QueryRowContext(ctx,
		`SELECT session_id, idempotency_key, event_type, schema_version, payload, seq, created_at
		 FROM events WHERE session_id = ? AND idempotency_key = ?`,
		sessionID, key,
	).Scan(&event.SessionID, &event.IdempotencyKey, &eventType,
		&event.SchemaVersion, &payload, &event.Seq, &event.Timestamp)
	if err != nil {
		return eventlog.Event{}, err
	}
	event.Type = eventlog.Type(eventType)
	event.Payload = []byte(payload)
	return event, nil
}

func (s *Store) Read(ctx context.Context, sessionID string) ([]eventlog.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, idempotency_key, event_type, schema_version, payload, seq, created_at
		 FROM events WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	defer rows.Close()

	var events []eventlog.Event
	for rows.Next() {
		var event eventlog.Event
		var eventType, payload string
		if err := rows.Scan(&event.SessionID, &event.IdempotencyKey, &eventType,
			&event.SchemaVersion, &payload, &event.Seq, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Type = eventlog.Type(eventType)
		event.Payload = []byte(payload)
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT session_id FROM events ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) Close() error { return s.db.Close() }

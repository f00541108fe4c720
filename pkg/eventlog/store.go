package eventlog

import "context"

// Store is the append-only event log contract implemented by the driver
// subpackages.
type Store interface {
	// Append records an event, assigning the next per-session sequence
	// number. Re-submitting a (session id, idempotency key) pair returns
	// the original event with Duplicate set and never appends again.
	// Appends for one session serialize; different sessions proceed in
	// parallel.
	Append(ctx context.Context, event Event) (AppendResult, error)

	// Read returns a session's events ordered by sequence number. An
	// unknown session reads as empty.
	Read(ctx context.Context, sessionID string) ([]Event, error)

	// Sessions lists every session id with at least one event.
	Sessions(ctx context.Context) ([]string, error)

	// Close releases the underlying resources.
	Close() error
}

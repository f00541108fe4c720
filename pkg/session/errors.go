package session

import "fmt"

// NotFoundError reports a session id with no recorded events.
type NotFoundError struct {
	SessionID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// EndedError reports a write against a session that has already finalized.
type EndedError struct {
	SessionID string
}

func (e EndedError) Error() string {
	return fmt.Sprintf("session already ended: %s", e.SessionID)
}

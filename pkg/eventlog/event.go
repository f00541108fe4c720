// Package eventlog defines the append-only session event log, the single
// source of truth for everything a practice session did. Drivers live in the
// subpackages; they all enforce the same contract: appends are idempotent on
// (session id, idempotency key) and sequence numbers are strictly increasing
// per session.
package eventlog

import (
	"encoding/json"
	"time"
)

// SchemaVersion is the only payload schema this build understands.
const SchemaVersion = "v1"

// Type enumerates the event kinds a session may record.
type Type string

const (
	TypeVoiceWindow       Type = "voice_window"
	TypeStageEval         Type = "stage_eval"
	TypeAdaptationRequest Type = "adaptation_request"
	TypeQueueState        Type = "queue_state"
	TypeSessionEnd        Type = "session_end"
	TypePartnerSignal     Type = "partner_signal"
)

func (t Type) Valid() bool {
	switch t {
	case TypeVoiceWindow, TypeStageEval, TypeAdaptationRequest,
		TypeQueueState, TypeSessionEnd, TypePartnerSignal:
		return true
	}
	return false
}

// Event is one immutable fact. Seq and Timestamp are assigned by the store
// at append time; everything else comes from the caller.
type Event struct {
	SessionID      string          `json:"session_id"`
	IdempotencyKey string          `json:"idempotency_key"`
	Type           Type            `json:"event_type"`
	SchemaVersion  string          `json:"schema_version"`
	Payload        json.RawMessage `json:"payload"`
	Seq            int64           `json:"seq"`
	Timestamp      time.Time       `json:"timestamp"`
}

// AppendResult wraps the stored event. Duplicate is set when the append was
// absorbed by an earlier event with the same idempotency key; the embedded
// event is then the original, not the resubmission.
type AppendResult struct {
	Event     Event `json:"event"`
	Duplicate bool  `json:"duplicate"`
}

// Package eventstream defines the transport-neutral integration events the
// practice core emits for downstream consumers, and the Publisher contract
// the backends implement.
package eventstream

import (
	"encoding/json"
	"time"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeStageEvaluated is emitted after a stage attempt is scored.
	EventTypeStageEvaluated = "sadhana.stage.evaluated"

	// EventTypeAdaptationApplied is emitted after an adaptation decision.
	EventTypeAdaptationApplied = "sadhana.adaptation.applied"

	// EventTypeSessionEnded is emitted when a session finalizes.
	EventTypeSessionEnded = "sadhana.session.ended"
)

// PracticeEvent is the envelope published for every integration event.
type PracticeEvent struct {
	SchemaVersion int             `json:"schema_version"`
	EventType     string          `json:"event_type"`
	EventID       string          `json:"event_id"`
	EmittedAt     time.Time       `json:"emitted_at"`
	Source        EventSource     `json:"source"`
	SessionID     string          `json:"session_id"`
	OwnerID       string          `json:"owner_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventSource identifies which deployment emitted the event.
type EventSource struct {
	Service  string `json:"service"`
	Instance string `json:"instance,omitempty"`
}

package eventlog

import "encoding/json"

// InvalidEventError rejects an event at the boundary before it can reach a
// driver.
type InvalidEventError struct {
	Reason string
}

func (e InvalidEventError) Error() string {
	return "invalid event: " + e.Reason
}

// Prepare validates an event and fills defaults. Drivers call it before
// touching storage so every backend rejects the same inputs.
func Prepare(event *Event) error {
	if event.SessionID == "" {
		return InvalidEventError{Reason: "session_id is required"}
	}
	if event.IdempotencyKey == "" {
		return InvalidEventError{Reason: "idempotency_key is required"}
	}
	if !event.Type.Valid() {
		return InvalidEventError{Reason: "unknown event_type " + string(event.Type)}
	}
	if event.SchemaVersion == "" {
		event.SchemaVersion = SchemaVersion
	}
	if event.SchemaVersion != SchemaVersion {
		return InvalidEventError{Reason: "unsupported schema_version " + event.SchemaVersion}
	}
	if len(event.Payload) == 0 {
		event.Payload = json.RawMessage("{}")
	}
	return validatePayload(event.Type, event.Payload)
}

func validatePayload(eventType Type, payload json.RawMessage) error {
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return InvalidEventError{Reason: "payload is not a JSON object"}
	}

	switch eventType {
	case TypeVoiceWindow:
		if !hasNumber(fields, "cadence_bpm") {
			return InvalidEventError{Reason: "voice_window payload requires numeric cadence_bpm"}
		}
		if !hasNumber(fields, "practice_seconds") {
			return InvalidEventError{Reason: "voice_window payload requires numeric practice_seconds"}
		}
	case TypePartnerSignal:
		if !hasString(fields, "signal_type") {
			return InvalidEventError{Reason: "partner_signal payload requires signal_type"}
		}
	case TypeStageEval:
		if !hasString(fields, "stage") {
			return InvalidEventError{Reason: "stage_eval payload requires stage"}
		}
	}
	return nil
}

func hasNumber(fields map[string]any, key string) bool {
	_, ok := fields[key].(float64)
	return ok
}

func hasString(fields map[string]any, key string) bool {
	s, ok := fields[key].(string)
	return ok && s != ""
}

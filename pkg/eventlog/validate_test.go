package eventlog_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dhvanilabs/sadhana/pkg/eventlog"
)

var _ = Describe("Prepare", func() {
	valid := func() eventlog.Event {
		return eventlog.Event{
			SessionID:      "session-1",
			IdempotencyKey: "key-1",
			Type:           eventlog.TypeQueueState,
		}
	}

	It("defaults the schema version and payload", func() {
		event := valid()
		Expect(eventlog.Prepare(&event)).To(Succeed())
		Expect(event.SchemaVersion).To(Equal(eventlog.SchemaVersion))
		Expect(event.Payload).To(MatchJSON(`{}`))
	})

	It("requires a session id", func() {
		event := valid()
		event.SessionID = ""
		Expect(eventlog.Prepare(&event)).To(MatchError(ContainSubstring("session_id")))
	})

	It("requires an idempotency key", func() {
		event := valid()
		event.IdempotencyKey = ""
		Expect(eventlog.Prepare(&event)).To(MatchError(ContainSubstring("idempotency_key")))
	})

	It("rejects unknown event types", func() {
		event := valid()
		event.Type = "gong_strike"
		Expect(eventlog.Prepare(&event)).To(MatchError(ContainSubstring("gong_strike")))
	})

	It("rejects unsupported schema versions", func() {
		event := valid()
		event.SchemaVersion = "v9"
		Expect(eventlog.Prepare(&event)).To(MatchError(ContainSubstring("v9")))
	})

	It("requires numeric cadence and practice time on voice windows", func() {
		event := valid()
		event.Type = eventlog.TypeVoiceWindow
		event.Payload = json.RawMessage(`{"cadence_bpm":"fast","practice_seconds":30}`)
		Expect(eventlog.Prepare(&event)).To(MatchError(ContainSubstring("cadence_bpm")))

		event.Payload = json.RawMessage(`{"cadence_bpm":71.5}`)
		Expect(eventlog.Prepare(&event)).To(MatchError(ContainSubstring("practice_seconds")))

		event.Payload = json.RawMessage(`{"cadence_bpm":71.5,"practice_seconds":30}`)
		Expect(eventlog.Prepare(&event)).To(Succeed())
	})

	It("requires a signal type on partner signals", func() {
		event := valid()
		event.Type = eventlog.TypePartnerSignal
		event.Payload = json.RawMessage(`{"note":"steady"}`)
		Expect(eventlog.Prepare(&event)).To(MatchError(ContainSubstring("signal_type")))

		event.Payload = json.RawMessage(`{"signal_type":"encouragement"}`)
		Expect(eventlog.Prepare(&event)).To(Succeed())
	})

	It("requires a stage on stage evaluations", func() {
		event := valid()
		event.Type = eventlog.TypeStageEval
		event.Payload = json.RawMessage(`{"composite":0.8}`)
		Expect(eventlog.Prepare(&event)).To(MatchError(ContainSubstring("stage")))
	})

	It("rejects non-object payloads", func() {
		event := valid()
		event.Payload = json.RawMessage(`[1,2,3]`)
		Expect(eventlog.Prepare(&event)).To(MatchError(ContainSubstring("JSON object")))
	})
})

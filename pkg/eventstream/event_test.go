package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dhvanilabs/sadhana/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("marshals PracticeEvent with expected top-level keys", func() {
		now := time.Unix(1767225600, 0).UTC()
		event := eventstream.PracticeEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeStageEvaluated,
			EventID:       "evt_123",
			EmittedAt:     now,
			Source: eventstream.EventSource{
				Service:  "sadhana",
				Instance: "core-1",
			},
			SessionID: "session-1",
			OwnerID:   "owner-1",
			Payload:   json.RawMessage(`{"stage":"guided","composite":0.82}`),
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("source"))
		Expect(got).To(HaveKey("session_id"))
		Expect(got).To(HaveKey("payload"))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeStageEvaluated).To(Equal("sadhana.stage.evaluated"))
		Expect(eventstream.EventTypeAdaptationApplied).To(Equal("sadhana.adaptation.applied"))
		Expect(eventstream.EventTypeSessionEnded).To(Equal("sadhana.session.ended"))
	})

	It("provides ErrNilPracticeEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilPracticeEvent).NotTo(BeNil())
		Expect(eventstream.ErrNilPracticeEvent).To(MatchError("nil practice event"))
	})
})

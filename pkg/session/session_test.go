package session_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dhvanilabs/sadhana/pkg/adapt"
	"github.com/dhvanilabs/sadhana/pkg/bhav"
	"github.com/dhvanilabs/sadhana/pkg/chant"
	"github.com/dhvanilabs/sadhana/pkg/eventlog/inmemory"
	"github.com/dhvanilabs/sadhana/pkg/eventstream"
	"github.com/dhvanilabs/sadhana/pkg/fusion"
	"github.com/dhvanilabs/sadhana/pkg/projection"
	"github.com/dhvanilabs/sadhana/pkg/session"
	"github.com/dhvanilabs/sadhana/pkg/stage"
	"github.com/dhvanilabs/sadhana/pkg/worker"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.PracticeEvent
}

func (p *recordingPublisher) PublishPractice(_ context.Context, event *eventstream.PracticeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) typesSeen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType)
	}
	return types
}

// goldenMetrics is the reference independent-stage capture.
func goldenMetrics() chant.FinalizedMetrics {
	return chant.FinalizedMetrics{
		DurationSeconds:    30,
		VoiceRatioTotal:    0.74,
		PitchStability:     0.86,
		CadenceBPM:         71,
		CadenceConsistency: 0.86,
		AvgEnergy:          0.50,
	}
}

var _ = Describe("Manager", func() {
	var (
		ctx       context.Context
		store     *inmemory.Store
		engine    *projection.Engine
		publisher *recordingPublisher
		pool      *worker.Pool
		manager   *session.Manager
	)

	newManager := func() *session.Manager {
		m, err := session.NewManager(&session.Config{
			Store:  store,
			Engine: engine,
			Pool:   pool,
			Source: eventstream.EventSource{Service: "sadhana", Instance: "test"},
		})
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.New()
		engine = projection.NewEngine(store, projection.WithClock(func() time.Time {
			return time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)
		}))
		publisher = &recordingPublisher{}

		var err error
		pool, err = worker.NewPool(&worker.Config{
			Publisher:  publisher,
			NumWorkers: 1,
			QueueSize:  32,
		})
		Expect(err).NotTo(HaveOccurred())

		manager = newManager()
	})

	start := func(id, owner string, target int) {
		started, err := manager.Start(ctx, session.StartParams{
			SessionID:     id,
			OwnerID:       owner,
			Intention:     "evening practice",
			MantraKey:     "maha_mantra",
			Mood:          "calm",
			TargetMinutes: target,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(started.Duplicate).To(BeFalse())
	}

	evaluate := func(id string, s chant.Stage, seconds float64) chant.StageResult {
		result, err := manager.Evaluate(ctx, session.EvaluateParams{
			SessionID:       id,
			Stage:           s,
			Metrics:         goldenMetrics(),
			PracticeSeconds: seconds,
		})
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	Describe("Start", func() {
		It("generates a session id when none is given", func() {
			started, err := manager.Start(ctx, session.StartParams{OwnerID: "owner-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(started.SessionID).NotTo(BeEmpty())
			Expect(started.Lineage).To(Equal("vaishnavism"))
			Expect(started.GoldenProfile).To(Equal("maha_mantra_v1"))
		})

		It("rejects an unknown lineage", func() {
			_, err := manager.Start(ctx, session.StartParams{Lineage: "unknown_path"})
			Expect(err).To(BeAssignableToTypeOf(bhav.UnknownLineageError{}))
		})

		It("rejects an unknown golden profile", func() {
			_, err := manager.Start(ctx, session.StartParams{GoldenProfile: "nope_v9"})
			Expect(err).To(BeAssignableToTypeOf(bhav.UnknownProfileError{}))
		})

		It("absorbs a repeated start for the same session id", func() {
			start("s1", "owner-1", 15)

			again, err := manager.Start(ctx, session.StartParams{SessionID: "s1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Duplicate).To(BeTrue())

			events, err := store.Read(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(1))
		})
	})

	Describe("stage gating", func() {
		It("refuses to score ahead of the flow", func() {
			start("s1", "owner-1", 15)

			_, err := manager.Evaluate(ctx, session.EvaluateParams{
				SessionID: "s1",
				Stage:     chant.StageIndependent,
				Metrics:   goldenMetrics(),
			})
			var locked stage.StageLockedError
			Expect(err).To(BeAssignableToTypeOf(locked))
		})

		It("refuses to acknowledge a scored stage", func() {
			start("s1", "owner-1", 15)
			Expect(manager.Acknowledge(ctx, "s1", chant.StageListen)).To(Succeed())

			err := manager.Acknowledge(ctx, "s1", chant.StageGuided)
			Expect(err).To(BeAssignableToTypeOf(stage.NotAcknowledgeableError{}))
		})

		It("errors on unknown sessions", func() {
			err := manager.Acknowledge(ctx, "ghost", chant.StageListen)
			Expect(err).To(BeAssignableToTypeOf(session.NotFoundError{}))
		})
	})

	Describe("a full practice journey", func() {
		runJourney := func(id string) projection.SessionSummary {
			start(id, "owner-1", 15)

			Expect(manager.Acknowledge(ctx, id, chant.StageListen)).To(Succeed())
			evaluate(id, chant.StageGuided, 300)
			evaluate(id, chant.StageCallResponse, 240)
			Expect(manager.Acknowledge(ctx, id, chant.StageRecap)).To(Succeed())

			result := evaluate(id, chant.StageIndependent, 180)
			Expect(result.Composite).To(Equal(0.879))
			Expect(result.PassesGolden).To(BeTrue())

			_, err := manager.RecordVoiceWindow(ctx, session.VoiceWindowParams{
				SessionID:       id,
				Metrics:         goldenMetrics(),
				PracticeSeconds: 60,
			})
			Expect(err).NotTo(HaveOccurred())

			helpful := true
			_, err = manager.RecordPartnerSignal(ctx, session.PartnerSignalParams{
				SessionID:         id,
				SignalType:        "adaptation_feedback",
				AdaptationHelpful: &helpful,
			})
			Expect(err).NotTo(HaveOccurred())

			rating := 4.5
			summary, err := manager.End(ctx, session.EndParams{
				SessionID:       id,
				UserValueRating: &rating,
			})
			Expect(err).NotTo(HaveOccurred())
			return summary
		}

		It("folds the whole session into the summary", func() {
			summary := runJourney("s1")

			Expect(summary.Lifecycle).To(Equal(projection.LifecycleEnded))
			Expect(summary.CurrentStage).To(Equal(chant.StageIndependent))
			Expect(summary.StageResults).To(HaveLen(3))
			Expect(summary.StageResults[chant.StageIndependent].PassesGolden).To(BeTrue())

			// 300 + 240 + 180 + 60 seconds of practice.
			Expect(summary.PracticeMinutes).To(Equal(13.0))
			Expect(summary.CompletedGoal).To(BeTrue())
			Expect(summary.MeaningfulSession).To(BeTrue())
			Expect(summary.AdaptationHelpfulRate).To(Equal(1.0))
		})

		It("advances owner progress once per ended session", func() {
			runJourney("s1")

			progress, err := manager.Progress(ctx, "owner-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(progress.TotalSessions).To(Equal(1))
			Expect(progress.CompletedSessions).To(Equal(1))
			Expect(progress.TotalPracticeMinutes).To(Equal(13.0))
		})

		It("publishes integration events for scored stages and the ending", func() {
			runJourney("s1")
			pool.Close()

			types := publisher.typesSeen()
			Expect(types).To(ContainElement(eventstream.EventTypeStageEvaluated))
			Expect(types).To(ContainElement(eventstream.EventTypeSessionEnded))

			ended := 0
			for _, t := range types {
				if t == eventstream.EventTypeSessionEnded {
					ended++
				}
			}
			Expect(ended).To(Equal(1))
		})
	})

	Describe("Evaluate idempotency", func() {
		It("absorbs a retried attempt and returns the stored result", func() {
			start("s1", "owner-1", 15)
			Expect(manager.Acknowledge(ctx, "s1", chant.StageListen)).To(Succeed())

			first, err := manager.Evaluate(ctx, session.EvaluateParams{
				SessionID:       "s1",
				Stage:           chant.StageGuided,
				Metrics:         goldenMetrics(),
				PracticeSeconds: 120,
				IdempotencyKey:  "attempt-1",
			})
			Expect(err).NotTo(HaveOccurred())

			second, err := manager.Evaluate(ctx, session.EvaluateParams{
				SessionID:       "s1",
				Stage:           chant.StageGuided,
				Metrics:         goldenMetrics(),
				PracticeSeconds: 120,
				IdempotencyKey:  "attempt-1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))

			summary, err := manager.Summary(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			// start + listen ack + one stage eval
			Expect(summary.EventsCount).To(Equal(3))
			Expect(summary.PracticeMinutes).To(Equal(2.0))
		})
	})

	Describe("Adapt", func() {
		It("folds the latest voice window into the decision", func() {
			start("s1", "owner-1", 15)
			Expect(manager.Acknowledge(ctx, "s1", chant.StageListen)).To(Succeed())

			_, err := manager.RecordVoiceWindow(ctx, session.VoiceWindowParams{
				SessionID:       "s1",
				Metrics:         goldenMetrics(),
				PracticeSeconds: 30,
			})
			Expect(err).NotTo(HaveOccurred())

			decision, err := manager.Adapt(ctx, session.AdaptParams{
				SessionID: "s1",
				Context:   fusion.Input{Mood: "Anxious"},
			})
			Expect(err).NotTo(HaveOccurred())

			// cadence 71 then the calming shift
			Expect(decision.TempoBPM).To(Equal(63))
			Expect(decision.Guidance).To(Equal(adapt.GuidanceHigh))
			Expect(decision.KeyCenter).To(Equal("D"))
			Expect(decision.Source).To(Equal(adapt.SourceFallback))
			Expect(decision.Rationale).To(Equal([]string{
				"cadence match 71 bpm",
				"calming adjustment for anxious mood",
			}))
		})

		It("carries the window's cadence consistency into the decision", func() {
			start("s1", "owner-1", 15)

			unsteady := goldenMetrics()
			unsteady.CadenceConsistency = 0.4
			_, err := manager.RecordVoiceWindow(ctx, session.VoiceWindowParams{
				SessionID:       "s1",
				Metrics:         unsteady,
				PracticeSeconds: 30,
			})
			Expect(err).NotTo(HaveOccurred())

			decision, err := manager.Adapt(ctx, session.AdaptParams{SessionID: "s1"})
			Expect(err).NotTo(HaveOccurred())

			// cadence 71 then the unsteadiness easing
			Expect(decision.TempoBPM).To(Equal(65))
			Expect(decision.Guidance).To(Equal(adapt.GuidanceHigh))
			Expect(decision.Rationale).To(Equal([]string{
				"cadence match 71 bpm",
				"unsteady cadence, easing tempo and raising guidance",
			}))
		})

		It("returns the stored decision for a retried request", func() {
			start("s1", "owner-1", 15)

			first, err := manager.Adapt(ctx, session.AdaptParams{
				SessionID:      "s1",
				Context:        fusion.Input{Mood: "joyful"},
				IdempotencyKey: "adapt-1",
			})
			Expect(err).NotTo(HaveOccurred())

			second, err := manager.Adapt(ctx, session.AdaptParams{
				SessionID:      "s1",
				Context:        fusion.Input{Mood: "anxious"},
				IdempotencyKey: "adapt-1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))

			summary, err := manager.Summary(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.AdaptationsCount).To(Equal(1))
		})
	})

	Describe("End", func() {
		It("ends exactly once and rejects later writes", func() {
			start("s1", "owner-1", 15)

			first, err := manager.End(ctx, session.EndParams{SessionID: "s1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Lifecycle).To(Equal(projection.LifecycleEnded))

			again, err := manager.End(ctx, session.EndParams{SessionID: "s1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(first))

			err = manager.Acknowledge(ctx, "s1", chant.StageListen)
			Expect(err).To(BeAssignableToTypeOf(session.EndedError{}))

			_, err = manager.Adapt(ctx, session.AdaptParams{SessionID: "s1"})
			Expect(err).To(BeAssignableToTypeOf(session.EndedError{}))
		})
	})

	Describe("restart rehydration", func() {
		It("rebuilds live state from the event log", func() {
			start("s1", "owner-1", 15)
			Expect(manager.Acknowledge(ctx, "s1", chant.StageListen)).To(Succeed())
			evaluate("s1", chant.StageGuided, 120)

			// A fresh manager over the same store picks up mid-session.
			engine = projection.NewEngine(store)
			restarted := newManager()

			result, err := restarted.Evaluate(ctx, session.EvaluateParams{
				SessionID:       "s1",
				Stage:           chant.StageCallResponse,
				Metrics:         goldenMetrics(),
				PracticeSeconds: 90,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Stage).To(Equal(chant.StageCallResponse))

			_, err = restarted.Evaluate(ctx, session.EvaluateParams{
				SessionID: "s1",
				Stage:     chant.StageIndependent,
				Metrics:   goldenMetrics(),
			})
			var locked stage.StageLockedError
			Expect(err).To(BeAssignableToTypeOf(locked))
		})

		It("keeps gating and identity through a retried start", func() {
			_, err := manager.Start(ctx, session.StartParams{
				SessionID:     "s2",
				OwnerID:       "owner-2",
				Lineage:       "sadhguru",
				TargetMinutes: 15,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(manager.Acknowledge(ctx, "s2", chant.StageListen)).To(Succeed())
			evaluate("s2", chant.StageGuided, 120)

			engine = projection.NewEngine(store)
			restarted := newManager()

			// The retry answers with the stored lineage, not its own params.
			started, err := restarted.Start(ctx, session.StartParams{
				SessionID: "s2",
				OwnerID:   "owner-2",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(started.Duplicate).To(BeTrue())
			Expect(started.Lineage).To(Equal("sadhguru"))

			result, err := restarted.Evaluate(ctx, session.EvaluateParams{
				SessionID:       "s2",
				Stage:           chant.StageCallResponse,
				Metrics:         goldenMetrics(),
				PracticeSeconds: 90,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.LineageID).To(Equal("sadhguru"))
		})

		It("keeps an ended session closed through a retried start", func() {
			start("s3", "owner-3", 15)
			Expect(manager.Acknowledge(ctx, "s3", chant.StageListen)).To(Succeed())
			_, err := manager.End(ctx, session.EndParams{SessionID: "s3"})
			Expect(err).NotTo(HaveOccurred())

			engine = projection.NewEngine(store)
			restarted := newManager()

			started, err := restarted.Start(ctx, session.StartParams{SessionID: "s3"})
			Expect(err).NotTo(HaveOccurred())
			Expect(started.Duplicate).To(BeTrue())

			_, err = restarted.RecordVoiceWindow(ctx, session.VoiceWindowParams{
				SessionID:       "s3",
				Metrics:         goldenMetrics(),
				PracticeSeconds: 30,
			})
			var ended session.EndedError
			Expect(err).To(BeAssignableToTypeOf(ended))
		})
	})
})

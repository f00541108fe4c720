package stage_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dhvanilabs/sadhana/pkg/chant"
	"github.com/dhvanilabs/sadhana/pkg/stage"
)

func result(s chant.Stage, composite float64) chant.StageResult {
	return chant.StageResult{Stage: s, Composite: composite, PassesGolden: composite >= 0.75}
}

// advanceTo walks the machine through every stage before target.
func advanceTo(m *stage.Machine, target chant.Stage) {
	for _, s := range chant.Stages {
		if s == target {
			return
		}
		if s.Scoreable() {
			Expect(m.Complete(s, result(s, 0.8))).To(Succeed())
		} else {
			Expect(m.Acknowledge(s)).To(Succeed())
		}
	}
}

var _ = Describe("Machine", func() {
	var m *stage.Machine

	BeforeEach(func() {
		m = stage.NewMachine()
	})

	Describe("Gate", func() {
		It("admits the first stage on a fresh machine", func() {
			Expect(m.Gate(chant.StageListen)).To(Succeed())
		})

		It("locks independent before guided is completed", func() {
			err := m.Gate(chant.StageIndependent)
			Expect(err).To(BeAssignableToTypeOf(stage.StageLockedError{}))

			locked := err.(stage.StageLockedError)
			Expect(locked.Stage).To(Equal(chant.StageIndependent))
			Expect(locked.Prerequisite).To(Equal(chant.StageListen))
			Expect(locked.Error()).To(ContainSubstring("complete listen first"))
		})

		It("names the first unmet prerequisite", func() {
			Expect(m.Acknowledge(chant.StageListen)).To(Succeed())

			err := m.Gate(chant.StageIndependent)
			Expect(err).To(BeAssignableToTypeOf(stage.StageLockedError{}))
			Expect(err.(stage.StageLockedError).Prerequisite).To(Equal(chant.StageGuided))
		})

		It("rejects stages outside the practice order", func() {
			Expect(m.Gate(chant.Stage("warmup"))).To(BeAssignableToTypeOf(stage.UnknownStageError{}))
		})
	})

	Describe("Acknowledge", func() {
		It("marks listen done", func() {
			Expect(m.Acknowledge(chant.StageListen)).To(Succeed())
			Expect(m.Done(chant.StageListen)).To(BeTrue())
		})

		It("refuses scored stages", func() {
			Expect(m.Acknowledge(chant.StageListen)).To(Succeed())
			err := m.Acknowledge(chant.StageGuided)
			Expect(err).To(BeAssignableToTypeOf(stage.NotAcknowledgeableError{}))
		})
	})

	Describe("Complete", func() {
		It("records the result and unlocks the next stage", func() {
			Expect(m.Acknowledge(chant.StageListen)).To(Succeed())
			Expect(m.Complete(chant.StageGuided, result(chant.StageGuided, 0.8))).To(Succeed())

			Expect(m.Done(chant.StageGuided)).To(BeTrue())
			Expect(m.Gate(chant.StageCallResponse)).To(Succeed())
		})

		It("refuses acknowledge-only stages", func() {
			err := m.Complete(chant.StageListen, result(chant.StageListen, 0.8))
			Expect(err).To(BeAssignableToTypeOf(stage.NotScoreableError{}))
		})

		It("leaves state unchanged on a locked attempt", func() {
			err := m.Complete(chant.StageIndependent, result(chant.StageIndependent, 0.9))
			Expect(err).To(BeAssignableToTypeOf(stage.StageLockedError{}))
			Expect(m.Done(chant.StageIndependent)).To(BeFalse())
			_, ok := m.Result(chant.StageIndependent)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("replaying a completed stage", func() {
		BeforeEach(func() {
			advanceTo(m, chant.StageIndependent)
			Expect(m.Complete(chant.StageIndependent, result(chant.StageIndependent, 0.9))).To(Succeed())
		})

		It("overwrites that stage's result", func() {
			Expect(m.Complete(chant.StageGuided, result(chant.StageGuided, 0.6))).To(Succeed())

			r, ok := m.Result(chant.StageGuided)
			Expect(ok).To(BeTrue())
			Expect(r.Composite).To(Equal(0.6))
		})

		It("does not disturb later completions", func() {
			Expect(m.Complete(chant.StageGuided, result(chant.StageGuided, 0.6))).To(Succeed())

			Expect(m.Done(chant.StageIndependent)).To(BeTrue())
			r, ok := m.Result(chant.StageIndependent)
			Expect(ok).To(BeTrue())
			Expect(r.Composite).To(Equal(0.9))
		})
	})

	Describe("Finalizable", func() {
		It("is false until independent is done", func() {
			Expect(m.Finalizable()).To(BeFalse())
			advanceTo(m, chant.StageIndependent)
			Expect(m.Finalizable()).To(BeFalse())

			Expect(m.Complete(chant.StageIndependent, result(chant.StageIndependent, 0.85))).To(Succeed())
			Expect(m.Finalizable()).To(BeTrue())
		})
	})
})

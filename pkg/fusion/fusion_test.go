package fusion_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dhvanilabs/sadhana/pkg/chant"
	"github.com/dhvanilabs/sadhana/pkg/fusion"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

var _ = Describe("Fuse", func() {
	It("normalizes the explicit fields", func() {
		snap := fusion.Fuse(fusion.Input{
			Mood:      "  Anxious ",
			Intention: " evening japa ",
			Stage:     chant.StageGuided,
		})

		Expect(snap.Mood).To(Equal("anxious"))
		Expect(snap.Intention).To(Equal("evening japa"))
		Expect(snap.Stage).To(Equal(chant.StageGuided))
	})

	It("drops biometrics without consent", func() {
		snap := fusion.Fuse(fusion.Input{
			Mood:                "calm",
			BiometricConsent:    false,
			HeartRate:           intPtr(120),
			BreathRate:          intPtr(18),
			BiometricConfidence: fusion.ConfidenceHigh,
		})

		Expect(snap.HeartRate).To(BeNil())
		Expect(snap.BreathRate).To(BeNil())
		Expect(snap.BiometricConfidence).To(BeEmpty())
	})

	It("keeps consented biometrics with their confidence grade", func() {
		snap := fusion.Fuse(fusion.Input{
			BiometricConsent:    true,
			HeartRate:           intPtr(72),
			BiometricConfidence: fusion.ConfidenceHigh,
		})

		Expect(snap.HeartRate).To(HaveValue(Equal(72)))
		Expect(snap.BiometricConfidence).To(Equal(fusion.ConfidenceHigh))
	})

	It("defaults present biometrics to low confidence", func() {
		snap := fusion.Fuse(fusion.Input{
			BiometricConsent: true,
			HeartRate:        intPtr(72),
		})

		Expect(snap.BiometricConfidence).To(Equal(fusion.ConfidenceLow))
	})

	It("carries environment readings best-effort", func() {
		snap := fusion.Fuse(fusion.Input{NoiseDB: floatPtr(70.5)})

		Expect(snap.NoiseDB).To(HaveValue(Equal(70.5)))
		Expect(snap.TemperatureC).To(BeNil())
	})
})

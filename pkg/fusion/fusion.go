// Package fusion merges explicit practitioner input, consented biometric
// readings, and best-effort environment readings into one normalized context
// snapshot per adaptation request.
package fusion

import (
	"strings"

	"github.com/dhvanilabs/sadhana/pkg/chant"
)

// Confidence grades a biometric reading. Low-confidence readings steer
// guidance intensity but never tempo.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Input is the raw context submitted with an adaptation request. Biometric
// fields ride along only when the practitioner consented; without consent
// they are discarded during fusion regardless of what the client sent.
type Input struct {
	Mood      string      `json:"mood"`
	Intention string      `json:"intention"`
	Stage     chant.Stage `json:"stage"`

	BiometricConsent    bool       `json:"biometric_consent"`
	BiometricConfidence Confidence `json:"biometric_confidence,omitempty"`
	HeartRate           *int       `json:"heart_rate,omitempty"`
	BreathRate          *int       `json:"breath_rate,omitempty"`

	NoiseDB      *float64 `json:"noise_db,omitempty"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
}

// Snapshot is the normalized context consumed by the adaptation policy.
// Explicit fields are always present; biometric fields are nil unless
// consented to and tagged with a confidence grade.
type Snapshot struct {
	Mood      string      `json:"mood"`
	Intention string      `json:"intention"`
	Stage     chant.Stage `json:"stage"`

	BiometricConfidence Confidence `json:"biometric_confidence,omitempty"`
	HeartRate           *int       `json:"heart_rate,omitempty"`
	BreathRate          *int       `json:"breath_rate,omitempty"`

	NoiseDB      *float64 `json:"noise_db,omitempty"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
}

// Fuse normalizes an Input into a Snapshot. Mood is lowercased and trimmed,
// non-consented biometrics are dropped, and present biometrics without a
// stated confidence default to low.
func Fuse(in Input) Snapshot {
	snap := Snapshot{
		Mood:         strings.ToLower(strings.TrimSpace(in.Mood)),
		Intention:    strings.TrimSpace(in.Intention),
		Stage:        in.Stage,
		NoiseDB:      in.NoiseDB,
		TemperatureC: in.TemperatureC,
	}

	if !in.BiometricConsent {
		return snap
	}

	snap.HeartRate = in.HeartRate
	snap.BreathRate = in.BreathRate
	if snap.HeartRate != nil || snap.BreathRate != nil {
		snap.BiometricConfidence = ConfidenceLow
		if in.BiometricConfidence == ConfidenceHigh {
			snap.BiometricConfidence = ConfidenceHigh
		}
	}
	return snap
}

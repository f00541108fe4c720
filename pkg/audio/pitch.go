package audio

import "math"

const (
	pitchWindow  = 1024
	pitchMinHz   = 70.0
	pitchMaxHz   = 420.0
	pitchMinCorr = 0.3
)

// detectPitch runs a normalized autocorrelation over the window and returns
// the strongest periodic component within the chant vocal band. The second
// return is false when no lag clears the correlation floor.
func detectPitch(window []float64, rate int) (float64, bool) {
	if len(window) < pitchWindow {
		return 0, false
	}

	var energy float64
	for _, s := range window {
		energy += s * s
	}
	if energy == 0 {
		return 0, false
	}

	minLag := int(float64(rate) / pitchMaxHz)
	maxLag := int(float64(rate) / pitchMinHz)
	if maxLag >= len(window) {
		maxLag = len(window) - 1
	}
	if minLag < 1 {
		minLag = 1
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i < len(window)-lag; i++ {
			corr += window[i] * window[i+lag]
		}
		corr /= energy
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	if bestLag == 0 || bestCorr < pitchMinCorr {
		return 0, false
	}

	hz := float64(rate) / float64(bestLag)
	if hz < pitchMinHz || hz > pitchMaxHz || math.IsNaN(hz) {
		return 0, false
	}
	return hz, true
}

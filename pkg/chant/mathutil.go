package chant

import "math"

// Clamp01 pins v to the unit interval. NaN clamps to 0 so a degenerate
// upstream division can never leak into a score.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Std returns the population standard deviation, 0 with fewer than two values.
func Std(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	m := Mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// CV returns the coefficient of variation (std/mean), 0 when the mean is
// non-positive.
func CV(values []float64) float64 {
	m := Mean(values)
	if m <= 0 {
		return 0
	}
	return Std(values) / m
}

// Round3 rounds to three decimal places, the precision scores are stored at.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Round2 rounds to two decimal places, used for BPM values.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

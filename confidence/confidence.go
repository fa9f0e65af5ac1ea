// Package confidence converts raw index distances into bounded scores.
//
// L2 distance has no natural upper bound, so an exponential decay with a
// single steepness parameter gives a monotonic [0,1] mapping that downstream
// thresholds can reason about uniformly.
package confidence

import "math"

// DefaultAlpha is the decay steepness tuned for squared L2 distances.
const DefaultAlpha = 0.35

// FromDistance maps a distance to a confidence in [0,1]:
// conf = exp(-alpha * d). Strictly decreasing in d; d=0 yields 1.0.
// Negative, NaN, or infinite distances yield 0.
func FromDistance(d, alpha float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0.0
	}
	conf := math.Exp(-alpha * d)
	return clamp(conf, 0.0, 1.0)
}

// Average returns the mean confidence over a distance list, 0.0 if empty.
func Average(distances []float64, alpha float64) float64 {
	if len(distances) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, d := range distances {
		sum += FromDistance(d, alpha)
	}
	return sum / float64(len(distances))
}

// Top returns the highest confidence over a distance list, 0.0 if empty.
func Top(distances []float64, alpha float64) float64 {
	best := 0.0
	for _, d := range distances {
		if conf := FromDistance(d, alpha); conf > best {
			best = conf
		}
	}
	return best
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package analysis

import (
	"fmt"
	"math"
)

// PowerCurveDurations are the standard best-effort durations in seconds
var PowerCurveDurations = []int{5, 10, 30, 60, 120, 300, 600, 1200, 1800}

// minWindowCoverage is the share of a window that must hold valid samples
const minWindowCoverage = 0.5

// CurvePoint is the best sustained average power for one duration
type CurvePoint struct {
	DurationSec int     `json:"duration_sec"`
	Label       string  `json:"label"`
	Watts       float64 `json:"watts"`
}

// PowerCurve finds the best average power for each duration over the full
// (untrimmed) power series. Nulls are excluded from a window's mean; durations
// longer than the series, or with no well-covered window, are omitted.
func PowerCurve(power []*float64, sampleRateHz float64, durations []int) []CurvePoint {
	if sampleRateHz <= 0 {
		sampleRateHz = 1
	}
	if durations == nil {
		durations = PowerCurveDurations
	}

	// Prefix sums of values and valid-sample counts make each window O(1)
	n := len(power)
	sums := make([]float64, n+1)
	counts := make([]int, n+1)
	for i, p := range power {
		sums[i+1] = sums[i]
		counts[i+1] = counts[i]
		if p != nil {
			sums[i+1] += *p
			counts[i+1]++
		}
	}

	var curve []CurvePoint
	for _, d := range durations {
		window := int(math.Round(float64(d) * sampleRateHz))
		if window <= 0 || window > n {
			continue
		}

		need := int(math.Ceil(float64(window) * minWindowCoverage))
		best, found := 0.0, false
		for start := 0; start+window <= n; start++ {
			c := counts[start+window] - counts[start]
			if c < need {
				continue
			}
			avg := (sums[start+window] - sums[start]) / float64(c)
			if !found || avg > best {
				best = avg
				found = true
			}
		}

		if found {
			curve = append(curve, CurvePoint{
				DurationSec: d,
				Label:       fmt.Sprintf("%ds", d),
				Watts:       round(best, 1),
			})
		}
	}

	return curve
}

// BestPower returns the curve value for a duration, if present
func BestPower(curve []CurvePoint, durationSec int) (float64, bool) {
	for _, p := range curve {
		if p.DurationSec == durationSec {
			return p.Watts, true
		}
	}
	return 0, false
}

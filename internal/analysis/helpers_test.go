package analysis

import "math"

// constSeries returns n samples of the same value
func constSeries(n int, v float64) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		out[i] = floatPtr(v)
	}
	return out
}

// rampSeries returns n samples rising linearly from start to end
func rampSeries(n int, start, end float64) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		frac := 0.0
		if n > 1 {
			frac = float64(i) / float64(n-1)
		}
		out[i] = floatPtr(start + (end-start)*frac)
	}
	return out
}

// alternatingSeries flips between high and low every period samples
func alternatingSeries(n, period int, high, low float64) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		if (i/period)%2 == 0 {
			out[i] = floatPtr(high)
		} else {
			out[i] = floatPtr(low)
		}
	}
	return out
}

// concatSeries joins series end to end
func concatSeries(parts ...[]*float64) []*float64 {
	var out []*float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func approxEqual(a, b, delta float64) bool {
	return math.Abs(a-b) <= delta
}

var testProfile = AthleteProfile{FTP: 250, MaxHR: 180}

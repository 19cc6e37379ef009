package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values) / float64(len(values))
}

// coefficientOfVariation is population std dev over mean, with the mean
// floored at 1 so near-zero series don't explode
func coefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, sd := stat.PopMeanStdDev(values, nil)
	return sd / math.Max(1, m)
}

// trimmedMean drops floor(len*frac) values from each tail before averaging.
// frac must be in [0, 0.5).
func trimmedMean(values []float64, frac float64) (float64, bool) {
	if len(values) == 0 || frac < 0 || frac >= 0.5 {
		return 0, false
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	cut := int(math.Floor(float64(len(sorted)) * frac))
	kept := sorted[cut : len(sorted)-cut]
	if len(kept) == 0 {
		return 0, false
	}
	return mean(kept), true
}

// presentValues returns the non-null values of a series
func presentValues(series []*float64) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

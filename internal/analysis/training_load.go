package analysis

import "math"

// TrainingLoad is the intensity factor and training stress score of a ride
type TrainingLoad struct {
	IntensityFactor float64 `json:"intensity_factor"`
	TSS             float64 `json:"tss"`
}

// ComputeTrainingLoad calculates IF and TSS from a caller-supplied normalized power.
// IF = NP / FTP
// TSS = (duration * NP * IF) / (FTP * 3600) * 100
// Returns nil when NP is absent - rides without power simply have no TSS.
func ComputeTrainingLoad(durationSec float64, normalizedPower *float64, ftp float64) *TrainingLoad {
	if normalizedPower == nil || !isPositive(*normalizedPower) {
		return nil
	}
	if !isPositive(ftp) || durationSec < 0 {
		return nil
	}

	np := *normalizedPower
	intensity := np / ftp
	tss := (durationSec * np * intensity) / (ftp * 3600) * 100

	return &TrainingLoad{
		IntensityFactor: round(intensity, 2),
		TSS:             round(tss, 1),
	}
}

// npWindowSec is the rolling window used for normalized power
const npWindowSec = 30

// NormalizedPower computes NP from a raw power series: 30s rolling average,
// raised to the 4th power, averaged, then the 4th root. Nulls are skipped.
// Used by callers only when no device or Strava NP is available.
func NormalizedPower(power []*float64, sampleRateHz float64) *float64 {
	if sampleRateHz <= 0 {
		sampleRateHz = 1
	}

	values := make([]float64, 0, len(power))
	for _, p := range power {
		if p != nil {
			values = append(values, *p)
		}
	}
	if len(values) == 0 {
		return nil
	}

	window := int(math.Round(npWindowSec * sampleRateHz))
	if window < 1 {
		window = 1
	}
	if len(values) < window {
		avg := mean(values)
		if avg <= 0 {
			return nil
		}
		return floatPtr(round(avg, 1))
	}

	sum := 0.0
	for _, v := range values[:window] {
		sum += v
	}

	var fourth float64
	var count int
	for i := window - 1; i < len(values); i++ {
		if i >= window {
			sum += values[i] - values[i-window]
		}
		rolling := sum / float64(window)
		fourth += math.Pow(rolling, 4)
		count++
	}

	np := math.Pow(fourth/float64(count), 0.25)
	if !isPositive(np) {
		return nil
	}
	return floatPtr(round(np, 1))
}

// DurationFromStream returns the stream duration in seconds
func DurationFromStream(s Stream) float64 {
	return float64(s.Len()) / s.Rate()
}

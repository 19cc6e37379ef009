package analysis

import (
	"errors"
	"math"
)

var (
	// ErrMissingSeries is returned when drift needs both power and heart rate
	ErrMissingSeries = errors.New("drift requires both power and heart rate")
	// ErrInsufficientCoverage is returned when cleaning drops too many samples
	ErrInsufficientCoverage = errors.New("too few valid samples in main set")
	// ErrUnsteadyEffort is returned when power varies too much for a split-half comparison
	ErrUnsteadyEffort = errors.New("power too variable for drift")
)

// Drift is the split-half aerobic decoupling of a steady main set
type Drift struct {
	// HRPerWattDrift is 100 * ((HR2/P2) / (HR1/P1) - 1); positive = HR rose vs power
	HRPerWattDrift float64 `json:"drift_hr_per_watt"`
	// EFDrift is 100 * ((P2/HR2) / (P1/HR1) - 1); typically negative under fatigue
	EFDrift float64 `json:"drift_ef"`

	Bounds         Bounds  `json:"bounds"`
	SegmentSeconds int     `json:"segment_seconds"`
	Samples        int     `json:"samples"`
	MeanPower      float64 `json:"mean_power"`
	MeanHR         float64 `json:"mean_hr"`
	PowerCV        float64 `json:"cv_power"`
}

// AerobicDecoupling measures how heart rate drifts against power between the
// two halves of the main set. It prefers no answer over a misleading one: each
// gate that fails returns a sentinel error instead of a number.
func AerobicDecoupling(power, hr []*float64, laps []Lap, profile AthleteProfile, opts Options) (*Drift, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	rate := opts.SampleRateHz

	if len(power) == 0 || len(hr) == 0 {
		return nil, ErrMissingSeries
	}
	if len(power) != len(hr) {
		return nil, ErrLengthMismatch
	}
	if len(power) < opts.minMainSamples() {
		return nil, ErrStreamTooShort
	}

	bounds, err := TrimMainSet(len(power), laps, profile, opts)
	if err != nil {
		return nil, err
	}

	// Clean the main set: drop coasting and HR artifacts
	var p, h []float64
	for i := bounds.Start; i < bounds.End; i++ {
		if power[i] == nil || hr[i] == nil {
			continue
		}
		pw, bpm := *power[i], *hr[i]
		if pw < opts.PowerMin {
			continue
		}
		if bpm < opts.HRMin || bpm > opts.HRMax {
			continue
		}
		p = append(p, pw)
		h = append(h, bpm)
	}
	if float64(len(p)) < float64(opts.minMainSamples())*opts.MinCoverage || len(p) < 2 {
		return nil, ErrInsufficientCoverage
	}

	// Steadiness gate rejects interval sessions
	cv := coefficientOfVariation(p)
	if cv > opts.MaxPowerCV {
		return nil, ErrUnsteadyEffort
	}

	// Split the filtered samples, not the original timeline
	half := len(p) / 2
	p1, ok1 := trimmedMean(p[:half], opts.TrimPct)
	p2, ok2 := trimmedMean(p[half:], opts.TrimPct)
	h1, ok3 := trimmedMean(h[:half], opts.TrimPct)
	h2, ok4 := trimmedMean(h[half:], opts.TrimPct)
	if !ok1 || !ok2 || !ok3 || !ok4 || p1 == 0 || p2 == 0 || h1 == 0 || h2 == 0 {
		return nil, ErrInsufficientCoverage
	}

	hrPerWatt := 100 * ((h2/p2)/(h1/p1) - 1)
	ef := 100 * ((p2/h2)/(p1/h1) - 1)

	return &Drift{
		HRPerWattDrift: round(hrPerWatt, 2),
		EFDrift:        round(ef, 2),
		Bounds:         bounds,
		SegmentSeconds: int(math.Round(float64(bounds.Len()) / rate)),
		Samples:        len(p),
		MeanPower:      math.Round(mean(p)),
		MeanHR:         math.Round(mean(h)),
		PowerCV:        round(cv, 2),
	}, nil
}

// DecouplingAssessment returns a human-readable decoupling assessment
func DecouplingAssessment(decoupling float64) string {
	switch {
	case decoupling < 3:
		return "Excellent aerobic base"
	case decoupling < 5:
		return "Good aerobic fitness"
	case decoupling < 8:
		return "Developing aerobic base"
	case decoupling < 12:
		return "Fatigue showing late in the ride"
	default:
		return "Aerobic endurance needs work"
	}
}

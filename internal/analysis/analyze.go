package analysis

import (
	"errors"
	"fmt"
)

// Analyze runs every metric over one activity.
// Contract violations (bad profile or options, empty or mismatched streams)
// return an error. Data-quality problems never do: the affected metric is left out and,
// for drift, DriftReason says why.
func Analyze(in Input, opts Options) (*Result, error) {
	if in.Stream.SampleRateHz != 0 {
		opts.SampleRateHz = in.Stream.SampleRateHz
	}

	if err := in.Profile.Validate(); err != nil {
		return nil, err
	}

	s := in.Stream
	s.SampleRateHz = opts.SampleRateHz

	validErr := ValidateStream(s, opts.MinDurationSec)
	if validErr != nil && !IsDataQuality(validErr) {
		return nil, fmt.Errorf("validating stream: %w", validErr)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}
	rate := opts.SampleRateHz

	// Zones and power curve have no failure mode beyond empty input
	if s.HasPower() {
		result.PowerZones = BinZones(s.Power, PowerZoneTable(in.Profile.FTP), rate)
		result.PowerCurve = PowerCurve(s.Power, rate, PowerCurveDurations)
	}
	if s.HasHeartrate() {
		result.HRZones = BinZones(s.HeartRate, HRZoneTable(in.Profile.MaxHR), rate)
	}

	duration := in.DurationSec
	if duration <= 0 {
		duration = DurationFromStream(s)
	}
	if load := ComputeTrainingLoad(duration, in.NormalizedPower, in.Profile.FTP); load != nil {
		result.IntensityFactor = floatPtr(load.IntensityFactor)
		result.TSS = floatPtr(load.TSS)
	}

	result.Summary = summarize(s, duration, in.NormalizedPower)

	if validErr != nil {
		result.DriftReason = validErr.Error()
		return result, nil
	}

	drift, err := AerobicDecoupling(s.Power, s.HeartRate, in.Laps, in.Profile, opts)
	switch {
	case err == nil:
		result.Drift = drift
		result.DriftValid = true
		result.AerobicDecoupling = floatPtr(drift.HRPerWattDrift)
	case IsDataQuality(err):
		result.DriftReason = err.Error()
	default:
		return nil, fmt.Errorf("computing drift: %w", err)
	}

	return result, nil
}

// summarize computes whole-ride averages and maxima from the stream
func summarize(s Stream, duration float64, np *float64) Summary {
	sum := Summary{DurationSec: duration}

	if p := presentValues(s.Power); len(p) > 0 {
		sum.AvgPower = floatPtr(round(mean(p), 1))
		sum.MaxPower = floatPtr(maxOf(p))
	}
	if h := presentValues(s.HeartRate); len(h) > 0 {
		sum.AvgHeartrate = floatPtr(round(mean(h), 1))
		sum.MaxHeartrate = floatPtr(maxOf(h))
	}

	if np != nil && sum.AvgHeartrate != nil && *sum.AvgHeartrate > 0 {
		sum.EfficiencyFactor = floatPtr(round(*np / *sum.AvgHeartrate, 2))
	}
	return sum
}

func maxOf(values []float64) float64 {
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return best
}

// IsContractViolation reports whether err is a caller bug rather than bad data
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrInvalidProfile) ||
		errors.Is(err, ErrEmptyStream) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrInvalidSampleRate) ||
		errors.Is(err, ErrInvalidOptions)
}

package analysis

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidOptions is returned when a threshold is out of range
var ErrInvalidOptions = errors.New("invalid analysis options")

// Options holds the tunable thresholds of the engine.
// Start from DefaultOptions; every field is used as given.
type Options struct {
	SampleRateHz   float64 `json:"sample_rate_hz"`
	MinDurationSec float64 `json:"min_duration_sec"` // stream validator floor
	MinMainMinutes float64 `json:"min_main_minutes"` // shortest usable main set

	// Fallback trims when laps can't be used
	WarmupGuessSec   float64 `json:"warmup_guess_sec"`
	CooldownGuessSec float64 `json:"cooldown_guess_sec"`

	// Lap heuristics
	WarmupLapMinSec    float64 `json:"warmup_lap_min_sec"`
	WarmupLapMaxSec    float64 `json:"warmup_lap_max_sec"`
	CooldownLapMaxSec  float64 `json:"cooldown_lap_max_sec"`
	CooldownHRFraction float64 `json:"cooldown_hr_fraction"` // of max HR
	CooldownPowerFade  float64 `json:"cooldown_power_fade"`  // (max-avg)/max

	// Sample cleaning
	PowerMin float64 `json:"power_min"`
	HRMin    float64 `json:"hr_min"`
	HRMax    float64 `json:"hr_max"`

	// Robustness gates
	TrimPct     float64 `json:"trim_pct"`     // per tail
	MaxPowerCV  float64 `json:"max_power_cv"` // steadiness gate
	MinCoverage float64 `json:"min_coverage"` // kept / nominal main-set samples
}

// DefaultOptions returns the standard thresholds
func DefaultOptions() Options {
	return Options{
		SampleRateHz:       1,
		MinDurationSec:     600,
		MinMainMinutes:     10,
		WarmupGuessSec:     600,
		CooldownGuessSec:   300,
		WarmupLapMinSec:    600,
		WarmupLapMaxSec:    1200,
		CooldownLapMaxSec:  900,
		CooldownHRFraction: 0.6,
		CooldownPowerFade:  0.3,
		PowerMin:           30,
		HRMin:              60,
		HRMax:              220,
		TrimPct:            0.02,
		MaxPowerCV:         0.35,
		MinCoverage:        0.6,
	}
}

// Validate checks that every threshold is usable. Zero is a legal value for
// the cleaning floors and trims, so callers start from DefaultOptions and
// override fields rather than relying on zero meaning "default".
func (o Options) Validate() error {
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"min_duration_sec", o.MinDurationSec},
		{"min_main_minutes", o.MinMainMinutes},
		{"warmup_guess_sec", o.WarmupGuessSec},
		{"cooldown_guess_sec", o.CooldownGuessSec},
		{"warmup_lap_min_sec", o.WarmupLapMinSec},
		{"warmup_lap_max_sec", o.WarmupLapMaxSec},
		{"cooldown_lap_max_sec", o.CooldownLapMaxSec},
		{"power_min", o.PowerMin},
		{"hr_min", o.HRMin},
		{"max_power_cv", o.MaxPowerCV},
	}
	for _, f := range nonNegative {
		// the negated form also rejects NaN
		if !(f.v >= 0) || math.IsInf(f.v, 1) {
			return fmt.Errorf("%w: %s must be a finite value >= 0, got %v", ErrInvalidOptions, f.name, f.v)
		}
	}

	unit := []struct {
		name string
		v    float64
	}{
		{"cooldown_hr_fraction", o.CooldownHRFraction},
		{"cooldown_power_fade", o.CooldownPowerFade},
		{"min_coverage", o.MinCoverage},
	}
	for _, f := range unit {
		if !(f.v >= 0 && f.v <= 1) {
			return fmt.Errorf("%w: %s must be in [0, 1], got %v", ErrInvalidOptions, f.name, f.v)
		}
	}

	switch {
	case !(o.SampleRateHz > 0) || math.IsInf(o.SampleRateHz, 1):
		return fmt.Errorf("%w: sample_rate_hz must be positive, got %v", ErrInvalidOptions, o.SampleRateHz)
	case !(o.TrimPct >= 0 && o.TrimPct < 0.5):
		return fmt.Errorf("%w: trim_pct must be in [0, 0.5), got %v", ErrInvalidOptions, o.TrimPct)
	case !(o.HRMin < o.HRMax):
		return fmt.Errorf("%w: hr_min (%v) must be less than hr_max (%v)", ErrInvalidOptions, o.HRMin, o.HRMax)
	case o.WarmupLapMinSec > o.WarmupLapMaxSec:
		return fmt.Errorf("%w: warmup_lap_min_sec (%v) must not exceed warmup_lap_max_sec (%v)", ErrInvalidOptions, o.WarmupLapMinSec, o.WarmupLapMaxSec)
	}
	return nil
}

// minMainSamples is the shortest main set in samples
func (o Options) minMainSamples() int {
	return int(o.MinMainMinutes * 60 * o.SampleRateHz)
}

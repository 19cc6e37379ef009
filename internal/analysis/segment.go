package analysis

import (
	"errors"
	"math"
)

// ErrMainSetTooShort is returned when warm-up/cool-down trimming leaves too little data
var ErrMainSetTooShort = errors.New("main set shorter than minimum duration")

// Bounds is the [Start, End) sample range of the main set
type Bounds struct {
	Start    int  `json:"start_idx"`
	End      int  `json:"end_idx"`
	LapBased bool `json:"lap_based"`
}

// Len returns the number of samples inside the bounds
func (b Bounds) Len() int {
	return b.End - b.Start
}

// TrimMainSet finds the main set of an n-sample stream, excluding warm-up and
// cool-down. Lap heuristics win over the fixed fallback whenever there are at
// least two laps.
func TrimMainSet(n int, laps []Lap, profile AthleteProfile, opts Options) (Bounds, error) {
	if err := opts.Validate(); err != nil {
		return Bounds{}, err
	}
	rate := opts.SampleRateHz
	minMain := opts.minMainSamples()

	toIdx := func(sec float64) int {
		idx := int(math.Round(sec * rate))
		return max(0, min(n, idx))
	}

	b := Bounds{Start: 0, End: n}

	if len(laps) >= 2 {
		b.LapBased = true

		first := laps[0]
		if first.ElapsedTimeSec >= opts.WarmupLapMinSec && first.ElapsedTimeSec <= opts.WarmupLapMaxSec {
			b.Start = toIdx(first.ElapsedTimeSec)
		}

		last := laps[len(laps)-1]
		if looksLikeCooldown(last, profile, opts) && last.ElapsedTimeSec > 0 {
			b.End = toIdx(float64(n)/rate - last.ElapsedTimeSec)
			b.End = max(b.End, min(n, b.Start+int(60*rate)))
		}
	} else {
		warmup := int(math.Round(opts.WarmupGuessSec * rate))
		cooldown := int(math.Round(opts.CooldownGuessSec * rate))

		// Only trim when the ride is long enough to still have a main set afterwards
		if n >= warmup+cooldown+minMain {
			b.Start = warmup
			b.End = n - cooldown
		}
	}

	if b.Len() < minMain {
		return b, ErrMainSetTooShort
	}
	return b, nil
}

// looksLikeCooldown applies the last-lap heuristics: easy HR, fading power, or short
func looksLikeCooldown(lap Lap, profile AthleteProfile, opts Options) bool {
	if lap.AverageHeartrate != nil && *lap.AverageHeartrate > 0 {
		easyHR := 110.0
		if profile.MaxHR > 0 {
			easyHR = profile.MaxHR * opts.CooldownHRFraction
		}
		if *lap.AverageHeartrate < easyHR {
			return true
		}
	}

	if lap.AverageWatts != nil && lap.MaxWatts != nil && *lap.AverageWatts > 0 && *lap.MaxWatts > 0 {
		fade := (*lap.MaxWatts - *lap.AverageWatts) / math.Max(1, *lap.MaxWatts)
		if fade > opts.CooldownPowerFade {
			return true
		}
	}

	return lap.ElapsedTimeSec > 0 && lap.ElapsedTimeSec <= opts.CooldownLapMaxSec
}

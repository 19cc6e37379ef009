package analysis

import (
	"errors"
	"math"
)

// ErrInvalidProfile is returned when FTP or max HR is not a positive number
var ErrInvalidProfile = errors.New("athlete profile requires positive ftp and max_hr")

// AthleteProfile holds the athlete settings the engine needs
type AthleteProfile struct {
	FTP   float64 `json:"ftp"`    // watts
	MaxHR float64 `json:"max_hr"` // bpm
}

// Validate checks that both profile fields are usable
func (p AthleteProfile) Validate() error {
	if !isPositive(p.FTP) || !isPositive(p.MaxHR) {
		return ErrInvalidProfile
	}
	return nil
}

// Stream is one activity's raw per-sample data.
// A nil entry marks a dropout; a nil slice means the sensor was absent.
type Stream struct {
	Power        []*float64
	HeartRate    []*float64
	SampleRateHz float64 // 0 means 1 Hz
}

// Len returns the number of samples in the stream
func (s Stream) Len() int {
	if len(s.Power) > len(s.HeartRate) {
		return len(s.Power)
	}
	return len(s.HeartRate)
}

// HasPower returns true if a power series is present
func (s Stream) HasPower() bool {
	return len(s.Power) > 0
}

// HasHeartrate returns true if a heart rate series is present
func (s Stream) HasHeartrate() bool {
	return len(s.HeartRate) > 0
}

// Rate returns the sample rate, defaulting to 1 Hz
func (s Stream) Rate() float64 {
	if s.SampleRateHz == 0 {
		return 1
	}
	return s.SampleRateHz
}

// Lap is a lap marker used as a segmentation hint
type Lap struct {
	ElapsedTimeSec   float64  `json:"elapsed_time_sec"`
	AverageWatts     *float64 `json:"average_watts,omitempty"`
	MaxWatts         *float64 `json:"max_watts,omitempty"`
	AverageHeartrate *float64 `json:"average_heartrate,omitempty"`
}

// Input is everything a single analysis call needs
type Input struct {
	Stream  Stream
	Laps    []Lap
	Profile AthleteProfile

	// DurationSec is the activity duration used for TSS; 0 derives it from the stream
	DurationSec float64

	// NormalizedPower is supplied by the caller (Strava weighted average watts,
	// FIT session NP, or NormalizedPower); nil means no TSS/IF
	NormalizedPower *float64
}

// Result is the analysis of one activity
type Result struct {
	PowerZones []ZoneTime   `json:"power_zones,omitempty"`
	HRZones    []ZoneTime   `json:"hr_zones,omitempty"`
	PowerCurve []CurvePoint `json:"power_curve,omitempty"`

	IntensityFactor *float64 `json:"intensity_factor,omitempty"`
	TSS             *float64 `json:"tss,omitempty"`

	// AerobicDecoupling is the HR-per-watt drift in percent, set only when DriftValid
	AerobicDecoupling *float64 `json:"aerobic_decoupling,omitempty"`
	DriftValid        bool     `json:"drift_valid"`
	DriftReason       string   `json:"drift_reason,omitempty"`
	Drift             *Drift   `json:"drift,omitempty"`

	Summary Summary `json:"summary"`
}

// Summary holds whole-activity scalars derived from the stream
type Summary struct {
	DurationSec      float64  `json:"duration_sec"`
	AvgPower         *float64 `json:"avg_power,omitempty"`
	MaxPower         *float64 `json:"max_power,omitempty"`
	AvgHeartrate     *float64 `json:"avg_heartrate,omitempty"`
	MaxHeartrate     *float64 `json:"max_heartrate,omitempty"`
	EfficiencyFactor *float64 `json:"efficiency_factor,omitempty"` // NP / avg HR
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func floatPtr(v float64) *float64 {
	return &v
}

package analysis

import (
	"errors"
	"math"
)

var (
	// ErrEmptyStream is returned when neither series holds any samples
	ErrEmptyStream = errors.New("stream has no samples")
	// ErrLengthMismatch is returned when power and heart rate differ in length
	ErrLengthMismatch = errors.New("power and heart rate streams differ in length")
	// ErrInvalidSampleRate is returned for a negative or non-finite sample rate
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	// ErrStreamTooShort is returned when the stream is under the minimum duration
	ErrStreamTooShort = errors.New("stream shorter than minimum duration")
)

// ValidateStream checks the stream shape before any metric runs.
// minDurationSec of 0 means no duration floor.
func ValidateStream(s Stream, minDurationSec float64) error {
	rate := s.Rate()
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return ErrInvalidSampleRate
	}
	if s.Len() == 0 {
		return ErrEmptyStream
	}
	if s.HasPower() && s.HasHeartrate() && len(s.Power) != len(s.HeartRate) {
		return ErrLengthMismatch
	}
	if float64(s.Len()) < minDurationSec*rate {
		return ErrStreamTooShort
	}
	return nil
}

// IsDataQuality reports whether err means "not enough usable data"
// rather than a caller bug
func IsDataQuality(err error) bool {
	return errors.Is(err, ErrStreamTooShort) ||
		errors.Is(err, ErrMainSetTooShort) ||
		errors.Is(err, ErrInsufficientCoverage) ||
		errors.Is(err, ErrUnsteadyEffort) ||
		errors.Is(err, ErrMissingSeries)
}

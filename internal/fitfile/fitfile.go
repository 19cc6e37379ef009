// Package fitfile reads ride recordings from Garmin FIT files into the
// analysis engine's stream and lap types.
package fitfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/tormoder/fit"

	"ridecoach/internal/analysis"
)

// ErrNoRecords is returned when a FIT activity holds no record messages
var ErrNoRecords = errors.New("fit file has no records")

// maxGapSec caps the 1 Hz timeline; longer pauses are collapsed to this many null samples
const maxGapSec = 300

// Ride is a decoded FIT activity resampled to 1 Hz
type Ride struct {
	StartTime   time.Time
	Sport       string
	DurationSec float64 // session timer time, or the record span

	// Timestamps, Stream and Cadence are index-aligned
	Timestamps []time.Time
	Stream     analysis.Stream
	Cadence    []*float64

	Laps []analysis.Lap

	// NormalizedPower is the head unit's NP, when it recorded one
	NormalizedPower *float64
}

// ReadFile decodes the FIT file at path
func ReadFile(path string) (*Ride, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads a FIT activity from r
func Decode(r io.Reader) (*Ride, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	ride, err := resample(activity.Records)
	if err != nil {
		return nil, err
	}
	ride.Laps = convertLaps(activity.Laps, ride.Timestamps)

	ride.DurationSec = float64(len(ride.Timestamps))
	if len(activity.Sessions) > 0 {
		session := activity.Sessions[0]
		ride.Sport = fmt.Sprint(session.Sport)
		if t := validTime(session.StartTime); !t.IsZero() {
			ride.StartTime = t
		}
		if d := session.GetTotalTimerTimeScaled(); isFinitePositive(d) {
			ride.DurationSec = d
		}
		if np := validUint16(session.NormalizedPower); np > 0 {
			v := float64(np)
			ride.NormalizedPower = &v
		}
	}

	return ride, nil
}

// resample places each record at its second offset from the first record.
// Smart-recording gaps hold the previous value; seconds in longer gaps stay
// nil, which the engine treats as dropouts.
func resample(records []*fit.RecordMsg) (*Ride, error) {
	type row struct {
		ts  time.Time
		rec *fit.RecordMsg
	}

	rows := make([]row, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if ts := validTime(rec.Timestamp); !ts.IsZero() {
			rows = append(rows, row{ts: ts, rec: rec})
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoRecords
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ts.Before(rows[j].ts)
	})

	// Assign each record a slot, collapsing long pauses
	slots := make([]int, len(rows))
	for i := 1; i < len(rows); i++ {
		gap := int(math.Round(rows[i].ts.Sub(rows[i-1].ts).Seconds()))
		gap = max(0, min(gap, maxGapSec))
		slots[i] = slots[i-1] + gap
	}
	n := slots[len(slots)-1] + 1

	ride := &Ride{
		StartTime:  rows[0].ts,
		Timestamps: make([]time.Time, n),
		Stream:     analysis.Stream{SampleRateHz: 1},
	}

	// Per-record values, spread onto the timeline below
	pw := make([]*float64, len(rows))
	hr := make([]*float64, len(rows))
	cad := make([]*float64, len(rows))
	var hasPower, hasHR bool
	for i, r := range rows {
		ride.Timestamps[slots[i]] = r.ts

		if v, ok := power(r.rec); ok {
			pw[i] = &v
			hasPower = true
		}
		if v, ok := heartRate(r.rec); ok {
			hr[i] = &v
			hasHR = true
		}
		if v, ok := cadence(r.rec); ok {
			cad[i] = &v
		}
	}

	// A sensor that never reported is absent, not all-dropout
	if hasPower {
		ride.Stream.Power = analysis.Spread(pw, slots, n)
	}
	if hasHR {
		ride.Stream.HeartRate = analysis.Spread(hr, slots, n)
	}
	ride.Cadence = analysis.Spread(cad, slots, n)

	// Fill timestamps for empty slots so exports have a continuous clock
	for i := 1; i < n; i++ {
		if ride.Timestamps[i].IsZero() {
			ride.Timestamps[i] = ride.Timestamps[i-1].Add(time.Second)
		}
	}

	return ride, nil
}

// convertLaps measures each lap on the resampled timeline so lap boundaries
// and sample indices agree after long pauses were capped. Laps without usable
// start and end times fall back to timer time, which leaves pauses out.
func convertLaps(laps []*fit.LapMsg, timestamps []time.Time) []analysis.Lap {
	out := make([]analysis.Lap, 0, len(laps))
	for _, lap := range laps {
		if lap == nil {
			continue
		}

		duration, ok := lapSpan(lap, timestamps)
		if !ok {
			duration = lap.GetTotalTimerTimeScaled()
		}
		if !isFinitePositive(duration) {
			duration = lap.GetTotalElapsedTimeScaled()
		}
		if !isFinitePositive(duration) {
			continue
		}

		l := analysis.Lap{ElapsedTimeSec: duration}
		if v := validUint16(lap.AvgPower); v > 0 {
			l.AverageWatts = floatPtr(float64(v))
		}
		if v := validUint16(lap.MaxPower); v > 0 {
			l.MaxWatts = floatPtr(float64(v))
		}
		if v := validUint8(lap.AvgHeartRate); v > 0 {
			l.AverageHeartrate = floatPtr(float64(v))
		}
		out = append(out, l)
	}
	return out
}

// lapSpan counts the timeline seconds between a lap's start and end
func lapSpan(lap *fit.LapMsg, timestamps []time.Time) (float64, bool) {
	start, end := validTime(lap.StartTime), validTime(lap.Timestamp)
	if start.IsZero() || !end.After(start) || len(timestamps) == 0 {
		return 0, false
	}
	if end.Before(timestamps[0]) || start.After(timestamps[len(timestamps)-1]) {
		return 0, false
	}

	span := slotAt(timestamps, end) - slotAt(timestamps, start)
	return float64(span), span > 0
}

// slotAt returns the first timeline slot at or after t
func slotAt(timestamps []time.Time, t time.Time) int {
	return sort.Search(len(timestamps), func(i int) bool {
		return !timestamps[i].Before(t)
	})
}

func power(rec *fit.RecordMsg) (float64, bool) {
	if rec.Power == math.MaxUint16 {
		return 0, false
	}
	return float64(rec.Power), true
}

func heartRate(rec *fit.RecordMsg) (float64, bool) {
	if rec.HeartRate == math.MaxUint8 || rec.HeartRate == 0 {
		return 0, false
	}
	return float64(rec.HeartRate), true
}

func cadence(rec *fit.RecordMsg) (float64, bool) {
	if rec.Cadence == math.MaxUint8 {
		return 0, false
	}
	return float64(rec.Cadence), true
}

func validTime(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func validUint8(v uint8) uint8 {
	if v == math.MaxUint8 {
		return 0
	}
	return v
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func floatPtr(v float64) *float64 {
	return &v
}

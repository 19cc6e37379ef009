package service

import (
	"github.com/rs/zerolog/log"

	"ridecoach/internal/analysis"
	"ridecoach/internal/store"
	"ridecoach/internal/strava"
)

// convertActivity converts a Strava API activity to a store activity
func convertActivity(a *strava.Activity) *store.Activity {
	return &store.Activity{
		ID:                   a.ID,
		AthleteID:            a.Athlete.ID,
		Name:                 a.Name,
		Type:                 rideType(a),
		StartDate:            a.StartDate,
		StartDateLocal:       a.StartDateLocal,
		Timezone:             a.Timezone,
		Distance:             a.Distance,
		MovingTime:           a.MovingTime,
		ElapsedTime:          a.ElapsedTime,
		TotalElevationGain:   a.TotalElevationGain,
		AverageSpeed:         a.AverageSpeed,
		AverageWatts:         positive(a.AverageWatts),
		WeightedAverageWatts: positive(a.WeightedAverageWatts),
		MaxWatts:             positive(a.MaxWatts),
		DeviceWatts:          a.DeviceWatts,
		Kilojoules:           positive(a.Kilojoules),
		AverageHeartrate:     positive(a.AverageHeartrate),
		MaxHeartrate:         positive(a.MaxHeartrate),
		AverageCadence:       positive(a.AverageCadence),
		HasHeartrate:         a.HasHeartrate,
	}
}

// rideType prefers the finer-grained sport_type when Strava sends one
func rideType(a *strava.Activity) string {
	if a.SportType != "" {
		return a.SportType
	}
	return a.Type
}

// convertStreams turns Strava streams into a 1 Hz engine stream. Series of
// different lengths are cut to the shortest one present. Samples are placed
// by the time stream, so smart-recording gaps are held and longer gaps
// become nulls.
func convertStreams(activityID int64, s *strava.Streams) analysis.Stream {
	out := analysis.Stream{SampleRateHz: StravaSampleRateHz}
	if s == nil {
		return out
	}

	if s.HasPower() {
		out.Power = s.Watts.Data
	}
	if s.HasHeartrate() {
		out.HeartRate = s.Heartrate.Data
	}

	if out.HasPower() && out.HasHeartrate() && len(out.Power) != len(out.HeartRate) {
		n := min(len(out.Power), len(out.HeartRate))
		log.Debug().
			Int64("activity_id", activityID).
			Int("watts", len(out.Power)).
			Int("heartrate", len(out.HeartRate)).
			Msg("stream lengths differ, truncating")
		out.Power = out.Power[:n]
		out.HeartRate = out.HeartRate[:n]
	}

	n := out.Len()
	if n == 0 {
		return out
	}
	if s.Time == nil || len(s.Time.Data) < n {
		log.Debug().
			Int64("activity_id", activityID).
			Int("samples", n).
			Msg("no usable time stream, assuming one sample per second")
		return out
	}

	slots, size := timeSlots(s.Time.Data[:n])
	out.Power = analysis.Spread(out.Power, slots, size)
	out.HeartRate = analysis.Spread(out.HeartRate, slots, size)
	return out
}

// timeSlots maps Strava's elapsed-seconds time stream to 1 Hz slots. Pauses
// are kept at full length because lap elapsed_time includes them. A time
// that runs backwards gets slot -1 and its sample is dropped.
func timeSlots(times []int) ([]int, int) {
	slots := make([]int, len(times))
	last := -1
	for i, t := range times {
		slot := t - times[0]
		if slot < max(last, 0) {
			slots[i] = -1
			continue
		}
		slots[i] = slot
		last = slot
	}
	return slots, last + 1
}

// convertLaps converts Strava laps to engine lap hints
func convertLaps(laps []strava.Lap) []analysis.Lap {
	out := make([]analysis.Lap, 0, len(laps))
	for _, l := range laps {
		out = append(out, analysis.Lap{
			ElapsedTimeSec:   float64(l.ElapsedTime),
			AverageWatts:     positive(l.AverageWatts),
			MaxWatts:         positive(l.MaxWatts),
			AverageHeartrate: positive(l.AverageHeartrate),
		})
	}
	return out
}

// pickNormalizedPower returns the NP to use for training load: Strava's
// weighted average first, then one computed from the power stream
func pickNormalizedPower(a *store.Activity, s analysis.Stream) (*float64, store.NormalizedPowerSource) {
	if a.WeightedAverageWatts != nil {
		return a.WeightedAverageWatts, store.NPFromStrava
	}
	if np := analysis.NormalizedPower(s.Power, s.Rate()); np != nil {
		return np, store.NPFromComputed
	}
	return nil, ""
}

func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	x := *v
	return &x
}

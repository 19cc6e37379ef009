package service

import (
	"testing"

	"ridecoach/internal/analysis"
	"ridecoach/internal/store"
	"ridecoach/internal/strava"
)

func TestConvertStreams(t *testing.T) {
	t.Run("nil streams", func(t *testing.T) {
		s := convertStreams(1, nil)
		if s.Len() != 0 || s.SampleRateHz != StravaSampleRateHz {
			t.Errorf("convertStreams(nil) = %+v", s)
		}
	})

	t.Run("mismatched lengths are truncated", func(t *testing.T) {
		in := steadyStreams(100, 200, 140)
		in.Heartrate.Data = in.Heartrate.Data[:90]

		s := convertStreams(1, in)
		if len(s.Power) != 90 || len(s.HeartRate) != 90 {
			t.Errorf("lengths = %d/%d, want 90/90", len(s.Power), len(s.HeartRate))
		}
	})

	t.Run("absent series stay nil", func(t *testing.T) {
		in := steadyStreams(100, 200, 140)
		in.Watts = &strava.StreamData[*float64]{}

		s := convertStreams(1, in)
		if s.HasPower() {
			t.Error("HasPower() = true for an empty watts stream")
		}
		if len(s.HeartRate) != 100 {
			t.Errorf("len(HeartRate) = %d, want 100", len(s.HeartRate))
		}
	})
}

// smartRecording returns n samples recorded every step seconds
func smartRecording(n, step int, watts, hr float64) *strava.Streams {
	s := steadyStreams(n, watts, hr)
	for i := range s.Time.Data {
		s.Time.Data[i] = i * step
	}
	return s
}

func TestConvertStreamsUsesTimeStream(t *testing.T) {
	t.Run("smart recording covers the whole ride", func(t *testing.T) {
		// one hour at one sample every 5 s
		s := convertStreams(1, smartRecording(720, 5, 200, 140))
		if s.Len() != 3596 {
			t.Fatalf("Len() = %d, want 3596", s.Len())
		}
		for i, p := range s.Power {
			if p == nil {
				t.Fatalf("Power[%d] = nil, want held value", i)
			}
		}

		res, err := analysis.Analyze(analysis.Input{
			Stream:  s,
			Profile: analysis.AthleteProfile{FTP: 250, MaxHR: 180},
		}, analysis.DefaultOptions())
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}

		var total float64
		for _, z := range res.PowerZones {
			total += z.Minutes
		}
		if total < 59.8 || total > 60 {
			t.Errorf("power zone minutes = %v, want ~60", total)
		}
		if !res.DriftValid || res.Drift.Bounds.Start != 600 || res.Drift.Bounds.End != 3296 {
			t.Errorf("drift valid=%v bounds=%+v, want [600, 3296)", res.DriftValid, res.Drift)
		}
	})

	t.Run("long gap becomes nulls", func(t *testing.T) {
		in := steadyStreams(160, 200, 140)
		for i := 100; i < 160; i++ {
			in.Time.Data[i] = i + 30
		}

		s := convertStreams(1, in)
		if s.Len() != 190 {
			t.Fatalf("Len() = %d, want 190", s.Len())
		}
		for i := 100; i < 130; i++ {
			if s.Power[i] != nil || s.HeartRate[i] != nil {
				t.Fatalf("sample %d present inside the gap", i)
			}
		}
		if s.Power[130] == nil || *s.Power[130] != 200 {
			t.Errorf("Power[130] = %v, want 200", s.Power[130])
		}
	})

	t.Run("missing time stream assumes 1 Hz", func(t *testing.T) {
		in := steadyStreams(100, 200, 140)
		in.Time = nil

		if s := convertStreams(1, in); s.Len() != 100 {
			t.Errorf("Len() = %d, want 100", s.Len())
		}
	})
}

func TestTimeSlots(t *testing.T) {
	slots, size := timeSlots([]int{10, 11, 13, 12, 14})
	want := []int{0, 1, 3, -1, 4}
	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Errorf("slots = %v, want %v", slots, want)
			break
		}
	}
}

func TestConvertActivity(t *testing.T) {
	a := stravaRide(7, rideStart, floatPtr(0))
	a.Type, a.SportType = "Ride", "GravelRide"

	got := convertActivity(&a)
	if got.Type != "GravelRide" {
		t.Errorf("Type = %q, want GravelRide", got.Type)
	}
	if got.WeightedAverageWatts != nil {
		t.Errorf("WeightedAverageWatts = %v, want nil for zero", *got.WeightedAverageWatts)
	}
	if got.AverageWatts == nil || *got.AverageWatts != 200 {
		t.Errorf("AverageWatts = %v", got.AverageWatts)
	}
}

func TestConvertLaps(t *testing.T) {
	laps := convertLaps([]strava.Lap{
		{ElapsedTime: 600, AverageWatts: floatPtr(150)},
		{ElapsedTime: 1800, AverageHeartrate: floatPtr(0)},
	})

	if len(laps) != 2 || laps[0].ElapsedTimeSec != 600 || *laps[0].AverageWatts != 150 {
		t.Fatalf("laps = %+v", laps)
	}
	if laps[1].AverageHeartrate != nil {
		t.Error("zero lap heart rate kept, want nil")
	}
}

func TestPickNormalizedPower(t *testing.T) {
	stream := convertStreams(1, steadyStreams(600, 180, 140))

	tests := []struct {
		name       string
		weighted   *float64
		wantNP     float64
		wantSource store.NormalizedPowerSource
	}{
		{"strava weighted average", floatPtr(215), 215, store.NPFromStrava},
		{"computed from stream", nil, 180, store.NPFromComputed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			np, source := pickNormalizedPower(&store.Activity{WeightedAverageWatts: tt.weighted}, stream)
			if np == nil || *np != tt.wantNP || source != tt.wantSource {
				t.Errorf("pickNormalizedPower() = %v, %q, want %v, %q", np, source, tt.wantNP, tt.wantSource)
			}
		})
	}

	if np, source := pickNormalizedPower(&store.Activity{}, convertStreams(1, nil)); np != nil || source != "" {
		t.Errorf("no power: got %v, %q", np, source)
	}
}

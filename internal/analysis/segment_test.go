package analysis

import (
	"errors"
	"testing"
)

func TestTrimMainSet(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		name      string
		n         int
		laps      []Lap
		rate      float64
		wantStart int
		wantEnd   int
		wantLaps  bool
		wantErr   error
	}{
		{
			name: "warm-up lap of 700s is skipped",
			n:    3600,
			laps: []Lap{
				{ElapsedTimeSec: 700, AverageWatts: floatPtr(150), MaxWatts: floatPtr(190), AverageHeartrate: floatPtr(120)},
				{ElapsedTimeSec: 2900, AverageWatts: floatPtr(210), MaxWatts: floatPtr(260), AverageHeartrate: floatPtr(150)},
			},
			wantStart: 700,
			wantEnd:   3600,
			wantLaps:  true,
		},
		{
			name: "short last lap is a cool-down",
			n:    3600,
			laps: []Lap{
				{ElapsedTimeSec: 700},
				{ElapsedTimeSec: 2200, AverageHeartrate: floatPtr(150)},
				{ElapsedTimeSec: 700, AverageHeartrate: floatPtr(150)},
			},
			wantStart: 700,
			wantEnd:   2900,
			wantLaps:  true,
		},
		{
			name: "easy heart rate marks a long last lap as cool-down",
			n:    4000,
			laps: []Lap{
				{ElapsedTimeSec: 300},
				{ElapsedTimeSec: 2000},
				{ElapsedTimeSec: 1000, AverageHeartrate: floatPtr(100)}, // < 0.6 * 180
			},
			wantStart: 0,
			wantEnd:   3000,
			wantLaps:  true,
		},
		{
			name: "power fade marks last lap as cool-down",
			n:    4000,
			laps: []Lap{
				{ElapsedTimeSec: 2000},
				{ElapsedTimeSec: 1000, AverageWatts: floatPtr(150), MaxWatts: floatPtr(400), AverageHeartrate: floatPtr(140)},
			},
			wantStart: 0,
			wantEnd:   3000,
			wantLaps:  true,
		},
		{
			name: "steady long last lap is kept",
			n:    4000,
			laps: []Lap{
				{ElapsedTimeSec: 2000},
				{ElapsedTimeSec: 2000, AverageWatts: floatPtr(200), MaxWatts: floatPtr(240), AverageHeartrate: floatPtr(150)},
			},
			wantStart: 0,
			wantEnd:   4000,
			wantLaps:  true,
		},
		{
			name: "first lap too long to be a warm-up",
			n:    4000,
			laps: []Lap{
				{ElapsedTimeSec: 1500},
				{ElapsedTimeSec: 2500, AverageHeartrate: floatPtr(150)},
			},
			wantStart: 0,
			wantEnd:   4000,
			wantLaps:  true,
		},
		{
			name:      "no laps - fixed fallback",
			n:         1800,
			wantStart: 600,
			wantEnd:   1500,
		},
		{
			name:      "single lap uses fallback",
			n:         3600,
			laps:      []Lap{{ElapsedTimeSec: 3600}},
			wantStart: 600,
			wantEnd:   3300,
		},
		{
			name:      "too short for fallback trims - untrimmed",
			n:         1200,
			wantStart: 0,
			wantEnd:   1200,
		},
		{
			name:    "too short for any main set",
			n:       500,
			wantErr: ErrMainSetTooShort,
		},
		{
			name: "laps leave too little",
			n:    1500,
			laps: []Lap{
				{ElapsedTimeSec: 1000},
				{ElapsedTimeSec: 500},
			},
			wantErr: ErrMainSetTooShort,
		},
		{
			name: "2 Hz converts seconds to samples",
			n:    7200,
			rate: 2,
			laps: []Lap{
				{ElapsedTimeSec: 700},
				{ElapsedTimeSec: 2900, AverageHeartrate: floatPtr(150)},
			},
			wantStart: 1400,
			wantEnd:   7200,
			wantLaps:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := opts
			if tt.rate != 0 {
				o.SampleRateHz = tt.rate
			}

			b, err := TrimMainSet(tt.n, tt.laps, testProfile, o)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("TrimMainSet() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("TrimMainSet() unexpected error: %v", err)
			}
			if b.Start != tt.wantStart || b.End != tt.wantEnd {
				t.Errorf("TrimMainSet() = [%d, %d), want [%d, %d)", b.Start, b.End, tt.wantStart, tt.wantEnd)
			}
			if b.LapBased != tt.wantLaps {
				t.Errorf("LapBased = %v, want %v", b.LapBased, tt.wantLaps)
			}
		})
	}
}

func TestTrimMainSet_CustomThresholds(t *testing.T) {
	opts := DefaultOptions()
	opts.WarmupLapMaxSec = 900

	laps := []Lap{
		{ElapsedTimeSec: 1000},
		{ElapsedTimeSec: 2600, AverageHeartrate: floatPtr(150)},
	}

	b, err := TrimMainSet(3600, laps, testProfile, opts)
	if err != nil {
		t.Fatalf("TrimMainSet() unexpected error: %v", err)
	}
	if b.Start != 0 {
		t.Errorf("Start = %d, want 0 (1000s lap exceeds 900s warm-up limit)", b.Start)
	}
}

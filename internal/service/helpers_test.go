package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/tormoder/fit"

	"ridecoach/internal/config"
	"ridecoach/internal/store"
	"ridecoach/internal/strava"
)

// openTestDB opens a migrated in-memory database
func openTestDB(t *testing.T) *store.DB {
	t.Helper()

	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	return &cfg
}

// fakeStrava serves canned activities, streams and laps
type fakeStrava struct {
	mu sync.Mutex

	activities []strava.Activity
	streams    map[int64]*strava.Streams
	laps       map[int64][]strava.Lap
	streamErr  error
	lapErr     error
	failDetail map[int64]bool

	afters []time.Time
}

func newFakeStrava(activities ...strava.Activity) *fakeStrava {
	return &fakeStrava{
		activities: activities,
		streams:    make(map[int64]*strava.Streams),
		laps:       make(map[int64][]strava.Lap),
		failDetail: make(map[int64]bool),
	}
}

func (f *fakeStrava) GetActivities(_ context.Context, after time.Time, page, perPage int) ([]strava.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.afters = append(f.afters, after)

	var matching []strava.Activity
	for _, a := range f.activities {
		if a.StartDate.After(after) {
			matching = append(matching, a)
		}
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i].StartDate.Before(matching[j].StartDate) })

	start := (page - 1) * perPage
	if start >= len(matching) {
		return nil, nil
	}
	end := min(start+perPage, len(matching))
	return matching[start:end], nil
}

func (f *fakeStrava) GetActivity(_ context.Context, id int64) (*strava.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDetail[id] {
		return nil, &strava.APIError{StatusCode: 500, Body: "upstream error"}
	}
	for i := range f.activities {
		if f.activities[i].ID == id {
			a := f.activities[i]
			return &a, nil
		}
	}
	return nil, strava.ErrNotFound
}

func (f *fakeStrava) GetActivityStreams(_ context.Context, id int64) (*strava.Streams, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	s, ok := f.streams[id]
	if !ok {
		return nil, strava.ErrNotFound
	}
	return s, nil
}

func (f *fakeStrava) GetActivityLaps(_ context.Context, id int64) ([]strava.Lap, error) {
	if f.lapErr != nil {
		return nil, f.lapErr
	}
	return f.laps[id], nil
}

func (f *fakeStrava) RateLimitStatus() (int, int) {
	return 95, 990
}

func floatPtr(v float64) *float64 { return &v }

func stravaRide(id int64, start time.Time, np *float64) strava.Activity {
	return strava.Activity{
		ID:                   id,
		Athlete:              strava.Athlete{ID: 42},
		Name:                 "Ride " + start.Format("Jan 2"),
		Type:                 "Ride",
		SportType:            "Ride",
		StartDate:            start,
		StartDateLocal:       start,
		Distance:             30000,
		MovingTime:           3600,
		ElapsedTime:          3600,
		AverageWatts:         floatPtr(200),
		WeightedAverageWatts: np,
		DeviceWatts:          true,
		AverageHeartrate:     floatPtr(140),
		HasHeartrate:         true,
	}
}

// steadyStreams returns n seconds at a constant power and heart rate
func steadyStreams(n int, watts, hr float64) *strava.Streams {
	s := &strava.Streams{
		Time:      &strava.StreamData[int]{Data: make([]int, n)},
		Watts:     &strava.StreamData[*float64]{Data: make([]*float64, n)},
		Heartrate: &strava.StreamData[*float64]{Data: make([]*float64, n)},
	}
	for i := 0; i < n; i++ {
		s.Time.Data[i] = i
		s.Watts.Data[i] = floatPtr(watts)
		s.Heartrate.Data[i] = floatPtr(hr)
	}
	return s
}

// writeTestFIT writes an n-second steady ride to a FIT file and returns its path
func writeTestFIT(t *testing.T, n int, watts uint16, hr uint8, sessionNP uint16) string {
	t.Helper()

	start := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)
	file, err := fit.NewFile(fit.FileTypeActivity, fit.NewHeader(fit.V20, true))
	if err != nil {
		t.Fatalf("new fit file: %v", err)
	}
	activity, err := file.Activity()
	if err != nil {
		t.Fatalf("activity accessor: %v", err)
	}

	for i := 0; i < n; i++ {
		rec := fit.NewRecordMsg()
		rec.Timestamp = start.Add(time.Duration(i) * time.Second)
		rec.Power = watts
		rec.HeartRate = hr
		activity.Records = append(activity.Records, rec)
	}

	session := fit.NewSessionMsg()
	session.Timestamp = start.Add(time.Duration(n) * time.Second)
	session.StartTime = start
	session.Sport = fit.SportCycling
	session.TotalTimerTime = uint32(n) * 1000
	session.NormalizedPower = sessionNP
	activity.Sessions = append(activity.Sessions, session)

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatalf("encode fit: %v", err)
	}

	path := filepath.Join(t.TempDir(), "ride.fit")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write fit: %v", err)
	}
	return path
}

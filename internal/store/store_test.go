package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"ridecoach/internal/analysis"
)

// setupTestDB creates an in-memory database with two rides
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	for _, a := range []Activity{
		testRide(1, "Morning Ride", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)),
		testRide(2, "Tempo Ride", time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)),
	} {
		if err := db.UpsertActivity(&a); err != nil {
			t.Fatalf("Failed to insert test ride: %v", err)
		}
	}

	return db
}

func testRide(id int64, name string, start time.Time) Activity {
	np := 215.0
	avg := 200.0
	hr := 142.0
	return Activity{
		ID:                   id,
		AthleteID:            123,
		Name:                 name,
		Type:                 "Ride",
		StartDate:            start,
		StartDateLocal:       start,
		Distance:             40000,
		MovingTime:           3600,
		ElapsedTime:          3700,
		AverageWatts:         &avg,
		WeightedAverageWatts: &np,
		DeviceWatts:          true,
		AverageHeartrate:     &hr,
		HasHeartrate:         true,
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")

	for i := 0; i < 2; i++ {
		db, err := OpenPath(path)
		if err != nil {
			t.Fatalf("OpenPath() #%d error = %v", i+1, err)
		}

		var version int
		if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
			t.Fatalf("reading user_version: %v", err)
		}
		if version != len(schema)-1 {
			t.Errorf("user_version = %d, want %d", version, len(schema)-1)
		}
		db.Close()
	}
}

func TestAuth(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetAuth(); !errors.Is(err, ErrNoAuth) {
		t.Fatalf("GetAuth() on empty db error = %v, want ErrNoAuth", err)
	}
	if err := db.UpdateTokens("a", "r", time.Now()); !errors.Is(err, ErrNoAuth) {
		t.Errorf("UpdateTokens() without auth error = %v, want ErrNoAuth", err)
	}

	expires := time.Unix(1700000000, 0)
	if err := db.SaveAuth(&Auth{AthleteID: 123, AthleteName: "Demi Vollering", AccessToken: "access", RefreshToken: "refresh", ExpiresAt: expires}); err != nil {
		t.Fatalf("SaveAuth() error = %v", err)
	}
	if err := db.UpdateTokens("access2", "refresh2", expires.Add(time.Hour)); err != nil {
		t.Fatalf("UpdateTokens() error = %v", err)
	}

	auth, err := db.GetAuth()
	if err != nil {
		t.Fatalf("GetAuth() error = %v", err)
	}
	if auth.AthleteID != 123 || auth.AthleteName != "Demi Vollering" || auth.AccessToken != "access2" || auth.RefreshToken != "refresh2" {
		t.Errorf("GetAuth() = %+v", auth)
	}
	if !auth.ExpiresAt.Equal(expires.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v, want %v", auth.ExpiresAt, expires.Add(time.Hour))
	}

	cleared, err := db.ClearAuth()
	if err != nil {
		t.Fatalf("ClearAuth() error = %v", err)
	}
	if cleared.AthleteID != 123 {
		t.Errorf("ClearAuth() = %+v, want athlete 123", cleared)
	}
	if _, err := db.GetAuth(); !errors.Is(err, ErrNoAuth) {
		t.Errorf("GetAuth() after ClearAuth error = %v, want ErrNoAuth", err)
	}
	if _, err := db.ClearAuth(); !errors.Is(err, ErrNoAuth) {
		t.Errorf("second ClearAuth() error = %v, want ErrNoAuth", err)
	}
}

func TestAthlete(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetAthlete(); !errors.Is(err, ErrNoProfile) {
		t.Fatalf("GetAthlete() error = %v, want ErrNoProfile", err)
	}

	if err := db.SaveAthlete(&Athlete{FTP: 0, MaxHR: 180}); !errors.Is(err, analysis.ErrInvalidProfile) {
		t.Errorf("SaveAthlete(zero FTP) error = %v, want ErrInvalidProfile", err)
	}

	want := &Athlete{Firstname: "Ada", Lastname: "Byron", FTP: 265, MaxHR: 186, FastTwitch: true}
	if err := db.SaveAthlete(want); err != nil {
		t.Fatalf("SaveAthlete() error = %v", err)
	}

	got, err := db.GetAthlete()
	if err != nil {
		t.Fatalf("GetAthlete() error = %v", err)
	}
	if got.FTP != 265 || got.MaxHR != 186 || !got.FastTwitch || got.Firstname != "Ada" {
		t.Errorf("GetAthlete() = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}

	// Second save replaces the singleton
	if err := db.SaveAthlete(&Athlete{FTP: 270, MaxHR: 186}); err != nil {
		t.Fatalf("SaveAthlete() error = %v", err)
	}
	got, _ = db.GetAthlete()
	if got.FTP != 270 || got.FastTwitch {
		t.Errorf("GetAthlete() after update = %+v", got)
	}
}

func TestGoals(t *testing.T) {
	db := setupTestDB(t)

	goals, err := db.ListGoals()
	if err != nil {
		t.Fatalf("ListGoals() error = %v", err)
	}
	if len(goals) != 0 {
		t.Fatalf("ListGoals() = %d goals, want 0", len(goals))
	}

	if err := db.CreateGoal(&Goal{}); !errors.Is(err, ErrInvalidGoal) {
		t.Errorf("CreateGoal() without title = %v, want ErrInvalidGoal", err)
	}

	deadline := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	first := &Goal{Title: "Raise FTP", Category: "power", TargetValue: "280W", Deadline: &deadline, IsActive: true}
	second := &Goal{Title: "Ride 200km", Category: "endurance", IsActive: true}
	for _, g := range []*Goal{first, second} {
		if err := db.CreateGoal(g); err != nil {
			t.Fatalf("CreateGoal() error = %v", err)
		}
	}
	if first.ID == 0 || second.ID == 0 {
		t.Fatalf("IDs not assigned: %d, %d", first.ID, second.ID)
	}

	goals, err = db.ListGoals()
	if err != nil {
		t.Fatalf("ListGoals() error = %v", err)
	}
	if len(goals) != 2 || goals[0].Title != "Ride 200km" {
		t.Fatalf("ListGoals() = %+v, want newest first", goals)
	}

	got, err := db.GetGoal(first.ID)
	if err != nil {
		t.Fatalf("GetGoal() error = %v", err)
	}
	if got.Deadline == nil || !got.Deadline.Equal(deadline) {
		t.Errorf("Deadline = %v, want %v", got.Deadline, deadline)
	}

	if err := db.DeleteGoal(first.ID); err != nil {
		t.Fatalf("DeleteGoal() error = %v", err)
	}
	if err := db.DeleteGoal(first.ID); !errors.Is(err, ErrGoalNotFound) {
		t.Errorf("DeleteGoal() twice error = %v, want ErrGoalNotFound", err)
	}
	if _, err := db.GetGoal(first.ID); !errors.Is(err, ErrGoalNotFound) {
		t.Errorf("GetGoal() deleted error = %v, want ErrGoalNotFound", err)
	}
}

func TestActivities(t *testing.T) {
	db := setupTestDB(t)

	a, err := db.GetActivity(1)
	if err != nil {
		t.Fatalf("GetActivity() error = %v", err)
	}
	if a.Name != "Morning Ride" || a.WeightedAverageWatts == nil || *a.WeightedAverageWatts != 215 || !a.DeviceWatts {
		t.Errorf("GetActivity() = %+v", a)
	}

	if _, err := db.GetActivity(99); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("GetActivity(99) error = %v, want ErrActivityNotFound", err)
	}

	// A summary-only upsert keeps the NP already fetched from the detail endpoint
	update := testRide(1, "Renamed Ride", a.StartDate)
	update.WeightedAverageWatts = nil
	if err := db.UpsertActivity(&update); err != nil {
		t.Fatalf("UpsertActivity() error = %v", err)
	}
	a, _ = db.GetActivity(1)
	if a.Name != "Renamed Ride" {
		t.Errorf("Name = %q, want Renamed Ride", a.Name)
	}
	if a.WeightedAverageWatts == nil || *a.WeightedAverageWatts != 215 {
		t.Errorf("WeightedAverageWatts = %v, want 215 kept", a.WeightedAverageWatts)
	}

	count, err := db.CountActivities()
	if err != nil || count != 2 {
		t.Errorf("CountActivities() = %d, %v, want 2", count, err)
	}
}

func TestAnalyses(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetAnalysis(1); !errors.Is(err, ErrAnalysisNotFound) {
		t.Fatalf("GetAnalysis() error = %v, want ErrAnalysisNotFound", err)
	}

	unanalyzed, err := db.ListUnanalyzed(10)
	if err != nil {
		t.Fatalf("ListUnanalyzed() error = %v", err)
	}
	if len(unanalyzed) != 2 || unanalyzed[0].ID != 2 {
		t.Fatalf("ListUnanalyzed() = %+v, want rides 2 then 1", unanalyzed)
	}

	result := analysis.Result{
		PowerZones:        analysis.BinZones([]*float64{floatPtr(320)}, analysis.PowerZoneTable(250), 1),
		TSS:               floatPtr(64),
		IntensityFactor:   floatPtr(0.8),
		AerobicDecoupling: floatPtr(3.4),
		DriftValid:        true,
	}
	an := &Analysis{
		ActivityID:      1,
		NormalizedPower: floatPtr(215),
		NPSource:        NPFromStrava,
		Result:          result,
		Laps:            []analysis.Lap{{ElapsedTimeSec: 600}, {ElapsedTimeSec: 3000}},
	}
	if err := db.SaveAnalysis(an); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}

	got, err := db.GetAnalysis(1)
	if err != nil {
		t.Fatalf("GetAnalysis() error = %v", err)
	}
	if got.NPSource != NPFromStrava || *got.NormalizedPower != 215 {
		t.Errorf("NP = %v from %q", got.NormalizedPower, got.NPSource)
	}
	if !got.Result.DriftValid || *got.Result.TSS != 64 {
		t.Errorf("Result = %+v", got.Result)
	}
	if len(got.Result.PowerZones) != 6 || got.Result.PowerZones[5].Minutes != 0 {
		t.Errorf("PowerZones = %+v", got.Result.PowerZones)
	}
	if len(got.Laps) != 2 || got.Laps[1].ElapsedTimeSec != 3000 {
		t.Errorf("Laps = %+v", got.Laps)
	}

	rides, err := db.ListRides(10, 0)
	if err != nil {
		t.Fatalf("ListRides() error = %v", err)
	}
	if len(rides) != 2 {
		t.Fatalf("ListRides() = %d rows, want 2", len(rides))
	}
	if rides[0].ID != 2 || rides[0].Analyzed {
		t.Errorf("rides[0] = %+v, want unanalyzed ride 2", rides[0])
	}
	if !rides[1].Analyzed || !rides[1].DriftValid || *rides[1].AerobicDecoupling != 3.4 {
		t.Errorf("rides[1] = %+v, want analyzed ride 1", rides[1])
	}

	unanalyzed, _ = db.ListUnanalyzed(10)
	if len(unanalyzed) != 1 || unanalyzed[0].ID != 2 {
		t.Errorf("ListUnanalyzed() after save = %+v", unanalyzed)
	}

	if err := db.DeleteAnalysis(1); err != nil {
		t.Fatalf("DeleteAnalysis() error = %v", err)
	}
	if _, err := db.GetAnalysis(1); !errors.Is(err, ErrAnalysisNotFound) {
		t.Errorf("GetAnalysis() after delete error = %v", err)
	}
}

func TestAnalysisCascadesWithActivity(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveAnalysis(&Analysis{ActivityID: 99}); err == nil {
		t.Error("SaveAnalysis() for unknown ride = nil error, want foreign key failure")
	}

	if err := db.SaveAnalysis(&Analysis{ActivityID: 2}); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}
	if _, err := db.Exec(`DELETE FROM activities WHERE id = 2`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetAnalysis(2); !errors.Is(err, ErrAnalysisNotFound) {
		t.Errorf("GetAnalysis() after ride delete error = %v, want ErrAnalysisNotFound", err)
	}
}

func TestSyncState(t *testing.T) {
	db := setupTestDB(t)

	v, err := db.GetSyncState("missing")
	if err != nil || v != "" {
		t.Errorf("GetSyncState(missing) = %q, %v", v, err)
	}

	last, err := db.LastActivityTime()
	if err != nil || !last.IsZero() {
		t.Fatalf("LastActivityTime() = %v, %v, want zero", last, err)
	}

	t1 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	if err := db.SetLastActivityTime(t1); err != nil {
		t.Fatalf("SetLastActivityTime() error = %v", err)
	}
	// Older times don't move the cursor back
	if err := db.SetLastActivityTime(t1.Add(-time.Hour)); err != nil {
		t.Fatalf("SetLastActivityTime() error = %v", err)
	}

	last, err = db.LastActivityTime()
	if err != nil || !last.Equal(t1) {
		t.Errorf("LastActivityTime() = %v, %v, want %v", last, err, t1)
	}
}

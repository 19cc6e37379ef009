package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ridecoach/internal/analysis"
	"ridecoach/internal/store"
	"ridecoach/internal/strava"
)

var rideStart = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func TestAnalyzeActivity(t *testing.T) {
	ctx := context.Background()

	t.Run("uses Strava NP and stores the result", func(t *testing.T) {
		db := openTestDB(t)
		client := newFakeStrava(stravaRide(1, rideStart, floatPtr(200)))
		client.streams[1] = steadyStreams(3600, 200, 140)
		svc := NewAnalysisService(client, db, testConfig())

		an, err := svc.AnalyzeActivity(ctx, 1)
		if err != nil {
			t.Fatalf("AnalyzeActivity() error = %v", err)
		}

		if an.NPSource != store.NPFromStrava {
			t.Errorf("NPSource = %q, want strava", an.NPSource)
		}
		// IF 0.8, TSS = 3600 * 200 * 0.8 / (250 * 3600) * 100
		if an.Result.TSS == nil || *an.Result.TSS != 64 {
			t.Errorf("TSS = %v, want 64", an.Result.TSS)
		}
		if !an.Result.DriftValid || an.Result.AerobicDecoupling == nil || *an.Result.AerobicDecoupling != 0 {
			t.Errorf("drift = %v (valid %v, reason %q), want 0", an.Result.AerobicDecoupling, an.Result.DriftValid, an.Result.DriftReason)
		}

		stored, err := db.GetAnalysis(1)
		if err != nil {
			t.Fatalf("GetAnalysis() error = %v", err)
		}
		if stored.Result.IntensityFactor == nil || *stored.Result.IntensityFactor != 0.8 {
			t.Errorf("stored IF = %v, want 0.8", stored.Result.IntensityFactor)
		}
	})

	t.Run("computes NP when Strava has none", func(t *testing.T) {
		db := openTestDB(t)
		client := newFakeStrava(stravaRide(1, rideStart, nil))
		client.streams[1] = steadyStreams(3600, 200, 140)
		svc := NewAnalysisService(client, db, testConfig())

		an, err := svc.AnalyzeActivity(ctx, 1)
		if err != nil {
			t.Fatalf("AnalyzeActivity() error = %v", err)
		}
		if an.NPSource != store.NPFromComputed {
			t.Errorf("NPSource = %q, want computed", an.NPSource)
		}
		if an.NormalizedPower == nil || *an.NormalizedPower != 200 {
			t.Errorf("NormalizedPower = %v, want 200", an.NormalizedPower)
		}
	})

	t.Run("lap hints are used", func(t *testing.T) {
		db := openTestDB(t)
		client := newFakeStrava(stravaRide(1, rideStart, floatPtr(200)))
		client.streams[1] = steadyStreams(3600, 200, 140)
		client.laps[1] = []strava.Lap{
			{ElapsedTime: 700, AverageWatts: floatPtr(150), AverageHeartrate: floatPtr(120)},
			{ElapsedTime: 2900, AverageWatts: floatPtr(210), MaxWatts: floatPtr(260), AverageHeartrate: floatPtr(150)},
		}
		svc := NewAnalysisService(client, db, testConfig())

		an, err := svc.AnalyzeActivity(ctx, 1)
		if err != nil {
			t.Fatalf("AnalyzeActivity() error = %v", err)
		}
		if an.Result.Drift == nil || !an.Result.Drift.Bounds.LapBased || an.Result.Drift.Bounds.Start != 700 {
			t.Errorf("drift bounds = %+v, want lap based from 700", an.Result.Drift)
		}
		if len(an.Laps) != 2 {
			t.Errorf("stored %d laps, want 2", len(an.Laps))
		}
	})

	t.Run("missing laps are tolerated", func(t *testing.T) {
		db := openTestDB(t)
		client := newFakeStrava(stravaRide(1, rideStart, floatPtr(200)))
		client.streams[1] = steadyStreams(3600, 200, 140)
		client.lapErr = errors.New("boom")
		svc := NewAnalysisService(client, db, testConfig())

		an, err := svc.AnalyzeActivity(ctx, 1)
		if err != nil {
			t.Fatalf("AnalyzeActivity() error = %v", err)
		}
		if an.Result.Drift == nil || an.Result.Drift.Bounds.LapBased {
			t.Errorf("drift = %+v, want fixed-trim bounds", an.Result.Drift)
		}
	})

	t.Run("missing streams give a summary-only analysis", func(t *testing.T) {
		db := openTestDB(t)
		client := newFakeStrava(stravaRide(1, rideStart, floatPtr(200)))
		svc := NewAnalysisService(client, db, testConfig())

		an, err := svc.AnalyzeActivity(ctx, 1)
		if err != nil {
			t.Fatalf("AnalyzeActivity() error = %v", err)
		}
		if an.Result.DriftValid || an.Result.DriftReason != ErrNoStreamData.Error() {
			t.Errorf("drift reason = %q, want %q", an.Result.DriftReason, ErrNoStreamData)
		}
		if an.Result.TSS == nil || *an.Result.TSS != 64 {
			t.Errorf("TSS = %v, want 64 from the summary NP", an.Result.TSS)
		}
		if len(an.Result.PowerZones) != 0 {
			t.Errorf("PowerZones = %v, want none without a stream", an.Result.PowerZones)
		}
	})

	t.Run("heart rate only ride", func(t *testing.T) {
		db := openTestDB(t)
		ride := stravaRide(1, rideStart, nil)
		ride.AverageWatts = nil
		client := newFakeStrava(ride)
		s := steadyStreams(3600, 0, 140)
		s.Watts = nil
		client.streams[1] = s
		svc := NewAnalysisService(client, db, testConfig())

		an, err := svc.AnalyzeActivity(ctx, 1)
		if err != nil {
			t.Fatalf("AnalyzeActivity() error = %v", err)
		}
		if an.Result.TSS != nil || an.NPSource != "" {
			t.Errorf("TSS = %v source %q, want none without power", an.Result.TSS, an.NPSource)
		}
		if len(an.Result.HRZones) != 5 {
			t.Errorf("len(HRZones) = %d, want 5", len(an.Result.HRZones))
		}
		if an.Result.DriftReason != analysis.ErrMissingSeries.Error() {
			t.Errorf("DriftReason = %q", an.Result.DriftReason)
		}
	})

	t.Run("non-ride is rejected", func(t *testing.T) {
		db := openTestDB(t)
		run := stravaRide(1, rideStart, nil)
		run.Type, run.SportType = "Run", "Run"
		svc := NewAnalysisService(newFakeStrava(run), db, testConfig())

		if _, err := svc.AnalyzeActivity(ctx, 1); !errors.Is(err, ErrNotARide) {
			t.Errorf("AnalyzeActivity() error = %v, want ErrNotARide", err)
		}
	})

	t.Run("unknown activity", func(t *testing.T) {
		svc := NewAnalysisService(newFakeStrava(), openTestDB(t), testConfig())

		if _, err := svc.AnalyzeActivity(ctx, 99); !errors.Is(err, strava.ErrNotFound) {
			t.Errorf("AnalyzeActivity() error = %v, want strava.ErrNotFound", err)
		}
	})

	t.Run("saved profile wins over config", func(t *testing.T) {
		db := openTestDB(t)
		if err := db.SaveAthlete(&store.Athlete{FTP: 200, MaxHR: 190}); err != nil {
			t.Fatalf("SaveAthlete() error = %v", err)
		}
		client := newFakeStrava(stravaRide(1, rideStart, floatPtr(200)))
		client.streams[1] = steadyStreams(3600, 200, 140)
		svc := NewAnalysisService(client, db, testConfig())

		an, err := svc.AnalyzeActivity(ctx, 1)
		if err != nil {
			t.Fatalf("AnalyzeActivity() error = %v", err)
		}
		if an.Result.IntensityFactor == nil || *an.Result.IntensityFactor != 1 {
			t.Errorf("IF = %v, want 1.0 at FTP 200", an.Result.IntensityFactor)
		}
	})
}

func TestAnalyzeFIT(t *testing.T) {
	svc := NewAnalysisService(nil, openTestDB(t), testConfig())

	t.Run("device NP", func(t *testing.T) {
		res, err := svc.AnalyzeFIT(writeTestFIT(t, 1800, 200, 140, 210))
		if err != nil {
			t.Fatalf("AnalyzeFIT() error = %v", err)
		}
		if res.NPSource != store.NPFromDevice || *res.NormalizedPower != 210 {
			t.Errorf("NP = %v from %q, want 210 from device", *res.NormalizedPower, res.NPSource)
		}
		if res.Result.Summary.DurationSec != 1800 {
			t.Errorf("DurationSec = %v, want 1800", res.Result.Summary.DurationSec)
		}
		if !res.Result.DriftValid {
			t.Errorf("DriftValid = false: %s", res.Result.DriftReason)
		}
	})

	t.Run("computed NP", func(t *testing.T) {
		res, err := svc.AnalyzeFIT(writeTestFIT(t, 1800, 200, 140, 0))
		if err != nil {
			t.Fatalf("AnalyzeFIT() error = %v", err)
		}
		if res.NPSource != store.NPFromComputed {
			t.Errorf("NPSource = %q, want computed", res.NPSource)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := svc.AnalyzeFIT(filepath.Join(t.TempDir(), "nope.fit")); err == nil {
			t.Error("AnalyzeFIT() = nil error for a missing file")
		}
	})
}

func TestExportFIT(t *testing.T) {
	svc := NewAnalysisService(nil, openTestDB(t), testConfig())
	out := filepath.Join(t.TempDir(), "ride.parquet")

	stats, err := svc.ExportFIT(writeTestFIT(t, 1800, 200, 140, 0), out)
	if err != nil {
		t.Fatalf("ExportFIT() error = %v", err)
	}
	if stats.Rows != 1800 || stats.MainSetRows != 900 {
		t.Errorf("stats = %+v, want 1800 rows with 900 in the main set", stats)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

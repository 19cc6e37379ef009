package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"ridecoach/internal/analysis"
	"ridecoach/internal/config"
	"ridecoach/internal/export"
	"ridecoach/internal/fitfile"
	"ridecoach/internal/store"
)

var (
	// ErrNotARide is returned when asked to analyze a non-cycling activity
	ErrNotARide = errors.New("activity is not a ride")
	// ErrNoStreamData marks an analysis made from the Strava summary alone
	ErrNoStreamData = errors.New("no power or heart rate stream available")
)

// AnalysisService runs the analysis engine over Strava rides and FIT files
type AnalysisService struct {
	client   StravaClient
	store    *store.DB
	fallback analysis.AthleteProfile
	opts     analysis.Options
}

// NewAnalysisService creates an analysis service. The config athlete is used
// until a profile is saved in the store.
func NewAnalysisService(client StravaClient, db *store.DB, cfg *config.Config) *AnalysisService {
	return &AnalysisService{
		client:   client,
		store:    db,
		fallback: cfg.Profile(),
		opts:     cfg.Analysis,
	}
}

// Profile returns the saved athlete profile, or the configured one
func (s *AnalysisService) Profile() (analysis.AthleteProfile, error) {
	athlete, err := s.store.GetAthlete()
	if errors.Is(err, store.ErrNoProfile) {
		return s.fallback, nil
	}
	if err != nil {
		return analysis.AthleteProfile{}, fmt.Errorf("loading athlete profile: %w", err)
	}
	return athlete.Profile(), nil
}

// AnalyzeActivity fetches one ride from Strava, analyzes it and stores the result.
// Missing laps are tolerated; missing streams yield a summary-only analysis.
func (s *AnalysisService) AnalyzeActivity(ctx context.Context, id int64) (*store.Analysis, error) {
	if s.client == nil {
		return nil, errors.New("strava client not configured")
	}

	profile, err := s.Profile()
	if err != nil {
		return nil, err
	}

	detail, err := s.client.GetActivity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching activity %d: %w", id, err)
	}
	if !detail.IsRide() {
		return nil, fmt.Errorf("activity %d (%s): %w", id, detail.Type, ErrNotARide)
	}

	activity := convertActivity(detail)
	if err := s.store.UpsertActivity(activity); err != nil {
		return nil, fmt.Errorf("storing activity %d: %w", id, err)
	}

	streams, err := s.client.GetActivityStreams(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Int64("activity_id", id).Msg("streams unavailable")
	}
	stream := convertStreams(id, streams)

	var laps []analysis.Lap
	stravaLaps, err := s.client.GetActivityLaps(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Int64("activity_id", id).Msg("laps unavailable, using fixed trims")
	} else {
		laps = convertLaps(stravaLaps)
	}

	np, source := pickNormalizedPower(activity, stream)

	var result *analysis.Result
	if stream.Len() == 0 {
		result = summaryOnly(activity, np, profile)
	} else {
		result, err = analysis.Analyze(analysis.Input{
			Stream:          stream,
			Laps:            laps,
			Profile:         profile,
			DurationSec:     float64(activity.ElapsedTime),
			NormalizedPower: np,
		}, s.opts)
		if err != nil {
			return nil, fmt.Errorf("analyzing activity %d: %w", id, err)
		}
	}

	an := &store.Analysis{
		ActivityID:      id,
		NormalizedPower: np,
		NPSource:        source,
		Result:          *result,
		Laps:            laps,
	}
	if err := s.store.SaveAnalysis(an); err != nil {
		return nil, err
	}

	log.Info().
		Int64("activity_id", id).
		Int("samples", stream.Len()).
		Int("laps", len(laps)).
		Str("np_source", string(source)).
		Bool("drift_valid", result.DriftValid).
		Msg("activity analyzed")

	return an, nil
}

// summaryOnly builds a result from the Strava summary when no stream exists
func summaryOnly(a *store.Activity, np *float64, profile analysis.AthleteProfile) *analysis.Result {
	duration := float64(a.ElapsedTime)
	result := &analysis.Result{
		DriftReason: ErrNoStreamData.Error(),
		Summary: analysis.Summary{
			DurationSec:  duration,
			AvgPower:     a.AverageWatts,
			MaxPower:     a.MaxWatts,
			AvgHeartrate: a.AverageHeartrate,
			MaxHeartrate: a.MaxHeartrate,
		},
	}
	if load := analysis.ComputeTrainingLoad(duration, np, profile.FTP); load != nil {
		result.IntensityFactor = &load.IntensityFactor
		result.TSS = &load.TSS
	}
	return result
}

// FITAnalysis is the analysis of a local FIT file
type FITAnalysis struct {
	File            string                      `json:"file"`
	StartTime       time.Time                   `json:"start_time"`
	Sport           string                      `json:"sport,omitempty"`
	NormalizedPower *float64                    `json:"normalized_power,omitempty"`
	NPSource        store.NormalizedPowerSource `json:"np_source,omitempty"`
	Laps            []analysis.Lap              `json:"laps"`
	Result          *analysis.Result            `json:"result"`
}

// AnalyzeFIT runs the engine over a FIT file. Nothing is stored.
func (s *AnalysisService) AnalyzeFIT(path string) (*FITAnalysis, error) {
	profile, err := s.Profile()
	if err != nil {
		return nil, err
	}

	ride, err := fitfile.ReadFile(path)
	if err != nil {
		return nil, err
	}

	np, source := ride.NormalizedPower, store.NPFromDevice
	if np == nil {
		np, source = analysis.NormalizedPower(ride.Stream.Power, ride.Stream.Rate()), store.NPFromComputed
	}
	if np == nil {
		source = ""
	}

	result, err := analysis.Analyze(analysis.Input{
		Stream:          ride.Stream,
		Laps:            ride.Laps,
		Profile:         profile,
		DurationSec:     ride.DurationSec,
		NormalizedPower: np,
	}, s.opts)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", filepath.Base(path), err)
	}

	log.Info().
		Str("file", path).
		Int("samples", ride.Stream.Len()).
		Int("laps", len(ride.Laps)).
		Bool("drift_valid", result.DriftValid).
		Msg("FIT file analyzed")

	return &FITAnalysis{
		File:            filepath.Base(path),
		StartTime:       ride.StartTime,
		Sport:           ride.Sport,
		NormalizedPower: np,
		NPSource:        source,
		Laps:            ride.Laps,
		Result:          result,
	}, nil
}

// ExportFIT writes a FIT file's samples to a parquet file at out
func (s *AnalysisService) ExportFIT(path, out string) (export.Stats, error) {
	profile, err := s.Profile()
	if err != nil {
		return export.Stats{}, err
	}

	ride, err := fitfile.ReadFile(path)
	if err != nil {
		return export.Stats{}, err
	}

	stats, err := export.RideFile(out, ride, profile, s.opts)
	if err != nil {
		return export.Stats{}, err
	}

	log.Info().Str("file", path).Str("out", out).Int("rows", stats.Rows).Msg("FIT file exported")
	return stats, nil
}

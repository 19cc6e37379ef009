package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ridecoach/internal/analysis"
)

// SaveAnalysis stores or replaces the analysis of a ride
func (db *DB) SaveAnalysis(an *Analysis) error {
	resultJSON, err := json.Marshal(an.Result)
	if err != nil {
		return fmt.Errorf("encoding analysis result: %w", err)
	}
	laps := an.Laps
	if laps == nil {
		laps = []analysis.Lap{}
	}
	lapsJSON, err := json.Marshal(laps)
	if err != nil {
		return fmt.Errorf("encoding laps: %w", err)
	}

	if an.ComputedAt.IsZero() {
		an.ComputedAt = time.Now().UTC()
	}

	_, err = db.Exec(`
		INSERT INTO analyses (
			activity_id, normalized_power, np_source, tss, intensity_factor,
			aerobic_decoupling, drift_valid, drift_reason, result_json, laps_json, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(activity_id) DO UPDATE SET
			normalized_power = excluded.normalized_power,
			np_source = excluded.np_source,
			tss = excluded.tss,
			intensity_factor = excluded.intensity_factor,
			aerobic_decoupling = excluded.aerobic_decoupling,
			drift_valid = excluded.drift_valid,
			drift_reason = excluded.drift_reason,
			result_json = excluded.result_json,
			laps_json = excluded.laps_json,
			computed_at = excluded.computed_at
	`,
		an.ActivityID, an.NormalizedPower, string(an.NPSource),
		an.Result.TSS, an.Result.IntensityFactor, an.Result.AerobicDecoupling,
		boolToInt(an.Result.DriftValid), an.Result.DriftReason,
		string(resultJSON), string(lapsJSON), an.ComputedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving analysis for activity %d: %w", an.ActivityID, err)
	}
	return nil
}

// GetAnalysis returns the stored analysis of a ride
func (db *DB) GetAnalysis(activityID int64) (*Analysis, error) {
	var an Analysis
	var npSource, resultJSON, lapsJSON, computedAt string

	err := db.QueryRow(`
		SELECT activity_id, normalized_power, np_source, result_json, laps_json, computed_at
		FROM analyses
		WHERE activity_id = ?
	`, activityID).Scan(&an.ActivityID, &an.NormalizedPower, &npSource, &resultJSON, &lapsJSON, &computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}

	an.NPSource = NormalizedPowerSource(npSource)
	if err := json.Unmarshal([]byte(resultJSON), &an.Result); err != nil {
		return nil, fmt.Errorf("decoding analysis result: %w", err)
	}
	if err := json.Unmarshal([]byte(lapsJSON), &an.Laps); err != nil {
		return nil, fmt.Errorf("decoding laps: %w", err)
	}
	an.ComputedAt, err = time.Parse(time.RFC3339, computedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing computed_at %q: %w", computedAt, err)
	}
	return &an, nil
}

// DeleteAnalysis removes a ride's analysis so the next sync recomputes it
func (db *DB) DeleteAnalysis(activityID int64) error {
	_, err := db.Exec(`DELETE FROM analyses WHERE activity_id = ?`, activityID)
	return err
}

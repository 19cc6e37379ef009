package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const activityColumns = `
	a.id, a.athlete_id, a.name, a.type, a.start_date, a.start_date_local, a.timezone,
	a.distance, a.moving_time, a.elapsed_time, a.total_elevation_gain, a.average_speed,
	a.average_watts, a.weighted_average_watts, a.max_watts, a.device_watts, a.kilojoules,
	a.average_heartrate, a.max_heartrate, a.average_cadence, a.has_heartrate`

// UpsertActivity inserts or updates a ride
func (db *DB) UpsertActivity(a *Activity) error {
	_, err := db.Exec(`
		INSERT INTO activities (
			id, athlete_id, name, type, start_date, start_date_local, timezone,
			distance, moving_time, elapsed_time, total_elevation_gain, average_speed,
			average_watts, weighted_average_watts, max_watts, device_watts, kilojoules,
			average_heartrate, max_heartrate, average_cadence, has_heartrate, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			name = excluded.name,
			type = excluded.type,
			start_date = excluded.start_date,
			start_date_local = excluded.start_date_local,
			timezone = excluded.timezone,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			total_elevation_gain = excluded.total_elevation_gain,
			average_speed = excluded.average_speed,
			average_watts = excluded.average_watts,
			weighted_average_watts = COALESCE(excluded.weighted_average_watts, activities.weighted_average_watts),
			max_watts = excluded.max_watts,
			device_watts = excluded.device_watts,
			kilojoules = excluded.kilojoules,
			average_heartrate = excluded.average_heartrate,
			max_heartrate = excluded.max_heartrate,
			average_cadence = excluded.average_cadence,
			has_heartrate = excluded.has_heartrate,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.ID, a.AthleteID, a.Name, a.Type,
		a.StartDate.Format(time.RFC3339), a.StartDateLocal.Format(time.RFC3339), a.Timezone,
		a.Distance, a.MovingTime, a.ElapsedTime, a.TotalElevationGain, a.AverageSpeed,
		a.AverageWatts, a.WeightedAverageWatts, a.MaxWatts, boolToInt(a.DeviceWatts), a.Kilojoules,
		a.AverageHeartrate, a.MaxHeartrate, a.AverageCadence, boolToInt(a.HasHeartrate),
	)
	return err
}

// GetActivity retrieves a ride by ID
func (db *DB) GetActivity(id int64) (*Activity, error) {
	row := db.QueryRow(`SELECT `+activityColumns+` FROM activities a WHERE a.id = ?`, id)

	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	return a, err
}

// CountActivities returns the total number of rides
func (db *DB) CountActivities() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM activities").Scan(&count)
	return count, err
}

// ListRides returns rides newest first, each with its headline analysis metrics
func (db *DB) ListRides(limit, offset int) ([]RideRow, error) {
	rows, err := db.Query(`
		SELECT `+activityColumns+`,
			an.activity_id IS NOT NULL, an.tss, an.intensity_factor,
			an.aerobic_decoupling, COALESCE(an.drift_valid, 0)
		FROM activities a
		LEFT JOIN analyses an ON an.activity_id = a.id
		ORDER BY a.start_date DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rides := []RideRow{}
	for rows.Next() {
		var r RideRow
		var analyzed, driftValid int

		a, err := scanActivity(rows, &analyzed, &r.TSS, &r.IntensityFactor, &r.AerobicDecoupling, &driftValid)
		if err != nil {
			return nil, err
		}
		r.Activity = *a
		r.Analyzed = analyzed == 1
		r.DriftValid = driftValid == 1
		rides = append(rides, r)
	}
	return rides, rows.Err()
}

// ListUnanalyzed returns up to limit rides that have no analysis yet, newest first
func (db *DB) ListUnanalyzed(limit int) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT `+activityColumns+`
		FROM activities a
		LEFT JOIN analyses an ON an.activity_id = a.id
		WHERE an.activity_id IS NULL
		ORDER BY a.start_date DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

// scanActivity scans the activity columns followed by any extra destinations
func scanActivity(row rowScanner, extra ...any) (*Activity, error) {
	var a Activity
	var startDate, startDateLocal string
	var timezone sql.NullString
	var elevation, avgSpeed sql.NullFloat64
	var deviceWatts, hasHR int

	dest := []any{
		&a.ID, &a.AthleteID, &a.Name, &a.Type, &startDate, &startDateLocal, &timezone,
		&a.Distance, &a.MovingTime, &a.ElapsedTime, &elevation, &avgSpeed,
		&a.AverageWatts, &a.WeightedAverageWatts, &a.MaxWatts, &deviceWatts, &a.Kilojoules,
		&a.AverageHeartrate, &a.MaxHeartrate, &a.AverageCadence, &hasHR,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	var err error
	a.StartDate, err = time.Parse(time.RFC3339, startDate)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date %q: %w", startDate, err)
	}
	a.StartDateLocal, err = time.Parse(time.RFC3339, startDateLocal)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date_local %q: %w", startDateLocal, err)
	}
	a.Timezone = timezone.String
	a.TotalElevationGain = elevation.Float64
	a.AverageSpeed = avgSpeed.Float64
	a.DeviceWatts = deviceWatts == 1
	a.HasHeartrate = hasHR == 1

	return &a, nil
}

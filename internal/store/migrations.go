package store

import (
	"database/sql"
	"fmt"
)

// schema holds one entry per version. PRAGMA user_version records how many
// have been applied; append new steps, never edit old ones.
var schema = [][]string{
	1: {
		// Strava login (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Athlete profile (singleton row)
		`CREATE TABLE IF NOT EXISTS athlete (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			firstname TEXT NOT NULL DEFAULT '',
			lastname TEXT NOT NULL DEFAULT '',
			ftp REAL NOT NULL,
			max_hr REAL NOT NULL,
			fast_twitch INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS goals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			target_value TEXT NOT NULL DEFAULT '',
			deadline TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		)`,

		// Rides (summary data from /athlete/activities and /activities/{id})
		`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			start_date TEXT NOT NULL,
			start_date_local TEXT NOT NULL,
			timezone TEXT,
			distance REAL NOT NULL,
			moving_time INTEGER NOT NULL,
			elapsed_time INTEGER NOT NULL,
			total_elevation_gain REAL,
			average_speed REAL,
			average_watts REAL,
			weighted_average_watts REAL,
			max_watts REAL,
			device_watts INTEGER NOT NULL DEFAULT 0,
			kilojoules REAL,
			average_heartrate REAL,
			max_heartrate REAL,
			average_cadence REAL,
			has_heartrate INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_start_date ON activities(start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(type)`,

		// One analysis per ride; headline metrics are columns, the rest is JSON
		`CREATE TABLE IF NOT EXISTS analyses (
			activity_id INTEGER PRIMARY KEY,
			normalized_power REAL,
			np_source TEXT NOT NULL DEFAULT '',
			tss REAL,
			intensity_factor REAL,
			aerobic_decoupling REAL,
			drift_valid INTEGER NOT NULL DEFAULT 0,
			drift_reason TEXT NOT NULL DEFAULT '',
			result_json TEXT NOT NULL,
			laps_json TEXT NOT NULL DEFAULT '[]',
			computed_at TEXT NOT NULL,
			FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
		)`,

		// Sync State (key-value store for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	2: {
		`ALTER TABLE auth ADD COLUMN athlete_name TEXT NOT NULL DEFAULT ''`,
	},
}

// migrate brings the database up to the latest schema version
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for v := version + 1; v < len(schema); v++ {
		if err := applyVersion(db, v); err != nil {
			return fmt.Errorf("schema version %d: %w", v, err)
		}
	}
	return nil
}

func applyVersion(db *sql.DB, v int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range schema[v] {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	// PRAGMA does not take bind parameters
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, v)); err != nil {
		return err
	}
	return tx.Commit()
}

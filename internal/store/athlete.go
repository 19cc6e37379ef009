package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetAthlete returns the saved profile, or ErrNoProfile
func (db *DB) GetAthlete() (*Athlete, error) {
	var a Athlete
	var fastTwitch int
	var updatedAt string

	err := db.QueryRow(`
		SELECT firstname, lastname, ftp, max_hr, fast_twitch, updated_at
		FROM athlete
		WHERE id = 1
	`).Scan(&a.Firstname, &a.Lastname, &a.FTP, &a.MaxHR, &fastTwitch, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, err
	}

	a.FastTwitch = fastTwitch == 1
	a.UpdatedAt, err = parseTimestamp(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing athlete updated_at: %w", err)
	}
	return &a, nil
}

// SaveAthlete stores or replaces the profile
func (db *DB) SaveAthlete(a *Athlete) error {
	if err := a.Profile().Validate(); err != nil {
		return err
	}

	a.UpdatedAt = time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO athlete (id, firstname, lastname, ftp, max_hr, fast_twitch, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			firstname = excluded.firstname,
			lastname = excluded.lastname,
			ftp = excluded.ftp,
			max_hr = excluded.max_hr,
			fast_twitch = excluded.fast_twitch,
			updated_at = excluded.updated_at
	`, a.Firstname, a.Lastname, a.FTP, a.MaxHR, boolToInt(a.FastTwitch), a.UpdatedAt.Format(time.RFC3339))
	return err
}

// parseTimestamp accepts RFC3339 and SQLite's CURRENT_TIMESTAMP format
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

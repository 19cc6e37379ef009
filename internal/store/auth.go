package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNoAuth is returned when no Strava login is stored
var ErrNoAuth = errors.New("no Strava login stored")

// The auth table holds at most one row, keyed id = 1
const authColumns = `athlete_id, athlete_name, access_token, refresh_token, expires_at`

// GetAuth returns the stored Strava login
func (db *DB) GetAuth() (*Auth, error) {
	var (
		a       Auth
		expires int64
	)
	row := db.QueryRow(`SELECT ` + authColumns + ` FROM auth WHERE id = 1`)
	switch err := row.Scan(&a.AthleteID, &a.AthleteName, &a.AccessToken, &a.RefreshToken, &expires); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNoAuth
	case err != nil:
		return nil, err
	}
	a.ExpiresAt = time.Unix(expires, 0)
	return &a, nil
}

// SaveAuth replaces the stored login, e.g. after the OAuth flow or when a
// different athlete connects
func (db *DB) SaveAuth(a *Auth) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO auth (id, `+authColumns+`, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, a.AthleteID, a.AthleteName, a.AccessToken, a.RefreshToken, a.ExpiresAt.Unix())
	return err
}

// UpdateTokens rotates the token pair after a refresh. The athlete is kept.
func (db *DB) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	res, err := db.Exec(`
		UPDATE auth SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`, accessToken, refreshToken, expiresAt.Unix())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNoAuth
	}
	return nil
}

// ClearAuth forgets the login and returns the athlete it belonged to.
// Synced rides and analyses stay.
func (db *DB) ClearAuth() (*Auth, error) {
	a, err := db.GetAuth()
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`DELETE FROM auth WHERE id = 1`); err != nil {
		return nil, err
	}
	return a, nil
}

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Sync state keys
const (
	SyncKeyLastActivity = "last_activity_epoch"
	SyncKeyLastRun      = "last_sync_at"
)

// GetSyncState retrieves a sync state value by key.
// Returns empty string if key doesn't exist
func (db *DB) GetSyncState(key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM sync_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSyncState sets a sync state value
func (db *DB) SetSyncState(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// LastActivityTime returns the start time of the newest synced ride, or zero
func (db *DB) LastActivityTime() (time.Time, error) {
	v, err := db.GetSyncState(SyncKeyLastActivity)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	epoch, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s %q: %w", SyncKeyLastActivity, v, err)
	}
	return time.Unix(epoch, 0).UTC(), nil
}

// SetLastActivityTime advances the sync cursor; it never moves backwards
func (db *DB) SetLastActivityTime(t time.Time) error {
	current, err := db.LastActivityTime()
	if err != nil {
		return err
	}
	if !t.After(current) {
		return nil
	}
	return db.SetSyncState(SyncKeyLastActivity, strconv.FormatInt(t.Unix(), 10))
}

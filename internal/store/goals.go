package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// createdLayout sorts lexically in time order
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ListGoals returns goals newest first
func (db *DB) ListGoals() ([]Goal, error) {
	rows, err := db.Query(`
		SELECT id, title, category, description, target_value, deadline, is_active, created_at
		FROM goals
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// GetGoal returns one goal by ID
func (db *DB) GetGoal(id int64) (*Goal, error) {
	row := db.QueryRow(`
		SELECT id, title, category, description, target_value, deadline, is_active, created_at
		FROM goals
		WHERE id = ?
	`, id)

	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	return g, err
}

// CreateGoal inserts a goal and fills in its ID and creation time
func (db *DB) CreateGoal(g *Goal) error {
	if g.Title == "" {
		return ErrInvalidGoal
	}

	g.CreatedAt = time.Now().UTC()
	var deadline *string
	if g.Deadline != nil {
		s := g.Deadline.UTC().Format(time.RFC3339)
		deadline = &s
	}

	result, err := db.Exec(`
		INSERT INTO goals (title, category, description, target_value, deadline, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, g.Title, g.Category, g.Description, g.TargetValue, deadline, boolToInt(g.IsActive), g.CreatedAt.Format(createdLayout))
	if err != nil {
		return err
	}

	g.ID, err = result.LastInsertId()
	return err
}

// DeleteGoal removes a goal
func (db *DB) DeleteGoal(id int64) error {
	result, err := db.Exec(`DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrGoalNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*Goal, error) {
	var g Goal
	var deadline sql.NullString
	var isActive int
	var createdAt string

	err := row.Scan(&g.ID, &g.Title, &g.Category, &g.Description, &g.TargetValue, &deadline, &isActive, &createdAt)
	if err != nil {
		return nil, err
	}

	g.IsActive = isActive == 1
	g.CreatedAt, err = time.Parse(createdLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing goal created_at %q: %w", createdAt, err)
	}
	if deadline.Valid {
		t, err := time.Parse(time.RFC3339, deadline.String)
		if err != nil {
			return nil, fmt.Errorf("parsing goal deadline %q: %w", deadline.String, err)
		}
		g.Deadline = &t
	}
	return &g, nil
}

package service

import (
	"errors"
	"fmt"

	"ridecoach/internal/analysis"
	"ridecoach/internal/store"
)

// QueryService provides read-side queries for the TUI and the HTTP API
type QueryService struct {
	store    *store.DB
	fallback analysis.AthleteProfile
}

// NewQueryService creates a new query service. fallback is reported as the
// profile until the athlete saves one.
func NewQueryService(store *store.DB, fallback analysis.AthleteProfile) *QueryService {
	return &QueryService{store: store, fallback: fallback}
}

// ListRides returns rides newest first with their headline metrics
func (q *QueryService) ListRides(limit, offset int) ([]store.RideRow, error) {
	if limit <= 0 {
		limit = RecentRidesLimit
	}
	rides, err := q.store.ListRides(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing rides: %w", err)
	}
	return rides, nil
}

// RideCount returns the number of stored rides
func (q *QueryService) RideCount() (int, error) {
	return q.store.CountActivities()
}

// Profile is the athlete profile as shown to the user
type Profile struct {
	store.Athlete
	// Saved is false when the values come from the config file
	Saved bool `json:"saved"`
}

// GetProfile returns the saved profile, or the configured defaults
func (q *QueryService) GetProfile() (*Profile, error) {
	athlete, err := q.store.GetAthlete()
	if errors.Is(err, store.ErrNoProfile) {
		return &Profile{Athlete: store.Athlete{FTP: q.fallback.FTP, MaxHR: q.fallback.MaxHR}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Profile{Athlete: *athlete, Saved: true}, nil
}

// SaveProfile stores the athlete profile
func (q *QueryService) SaveProfile(a *store.Athlete) error {
	return q.store.SaveAthlete(a)
}

// ListGoals returns all goals, newest first
func (q *QueryService) ListGoals() ([]store.Goal, error) {
	return q.store.ListGoals()
}

// CreateGoal stores a new goal
func (q *QueryService) CreateGoal(g *store.Goal) error {
	return q.store.CreateGoal(g)
}

// DeleteGoal removes a goal
func (q *QueryService) DeleteGoal(id int64) error {
	return q.store.DeleteGoal(id)
}

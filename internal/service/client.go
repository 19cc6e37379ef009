package service

import (
	"context"
	"time"

	"ridecoach/internal/strava"
)

// StravaClient is the part of the Strava API the services use
type StravaClient interface {
	GetActivities(ctx context.Context, after time.Time, page, perPage int) ([]strava.Activity, error)
	GetActivity(ctx context.Context, activityID int64) (*strava.Activity, error)
	GetActivityStreams(ctx context.Context, activityID int64) (*strava.Streams, error)
	GetActivityLaps(ctx context.Context, activityID int64) ([]strava.Lap, error)
	RateLimitStatus() (shortRemaining, dailyRemaining int)
}

var _ StravaClient = (*strava.Client)(nil)

package store

import (
	"time"

	"ridecoach/internal/analysis"
)

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64
	AthleteName  string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Athlete is the rider's saved profile
type Athlete struct {
	Firstname  string    `json:"firstname"`
	Lastname   string    `json:"lastname"`
	FTP        float64   `json:"ftp"`
	MaxHR      float64   `json:"max_hr"`
	FastTwitch bool      `json:"fast_twitch"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Profile returns the fields the analysis engine needs
func (a *Athlete) Profile() analysis.AthleteProfile {
	return analysis.AthleteProfile{FTP: a.FTP, MaxHR: a.MaxHR}
}

// Goal is a training goal the athlete is working toward
type Goal struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Description string     `json:"description,omitempty"`
	TargetValue string     `json:"target_value,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Activity represents a Strava ride summary
type Activity struct {
	ID                   int64     `json:"id"`
	AthleteID            int64     `json:"athlete_id"`
	Name                 string    `json:"name"`
	Type                 string    `json:"type"`
	StartDate            time.Time `json:"start_date"`
	StartDateLocal       time.Time `json:"start_date_local"`
	Timezone             string    `json:"timezone"`
	Distance             float64   `json:"distance"`     // meters
	MovingTime           int       `json:"moving_time"`  // seconds
	ElapsedTime          int       `json:"elapsed_time"` // seconds
	TotalElevationGain   float64   `json:"total_elevation_gain"`
	AverageSpeed         float64   `json:"average_speed"` // m/s
	AverageWatts         *float64  `json:"average_watts,omitempty"`
	WeightedAverageWatts *float64  `json:"weighted_average_watts,omitempty"` // Strava's NP
	MaxWatts             *float64  `json:"max_watts,omitempty"`
	DeviceWatts          bool      `json:"device_watts"`
	Kilojoules           *float64  `json:"kilojoules,omitempty"`
	AverageHeartrate     *float64  `json:"average_heartrate,omitempty"`
	MaxHeartrate         *float64  `json:"max_heartrate,omitempty"`
	AverageCadence       *float64  `json:"average_cadence,omitempty"`
	HasHeartrate         bool      `json:"has_heartrate"`
}

// NormalizedPowerSource records where an analysis got its NP from
type NormalizedPowerSource string

const (
	NPFromStrava   NormalizedPowerSource = "strava"
	NPFromDevice   NormalizedPowerSource = "device"
	NPFromComputed NormalizedPowerSource = "computed"
)

// Analysis is the persisted engine output for one ride
type Analysis struct {
	ActivityID      int64                 `json:"activity_id"`
	NormalizedPower *float64              `json:"normalized_power,omitempty"`
	NPSource        NormalizedPowerSource `json:"np_source,omitempty"`
	Result          analysis.Result       `json:"result"`
	Laps            []analysis.Lap        `json:"laps"`
	ComputedAt      time.Time             `json:"computed_at"`
}

// RideRow is one line of the rides list: summary plus headline metrics
type RideRow struct {
	Activity
	Analyzed          bool     `json:"analyzed"`
	TSS               *float64 `json:"tss,omitempty"`
	IntensityFactor   *float64 `json:"intensity_factor,omitempty"`
	AerobicDecoupling *float64 `json:"aerobic_decoupling,omitempty"`
	DriftValid        bool     `json:"drift_valid"`
}

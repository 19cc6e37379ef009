package strava

import "time"

// Activity represents a Strava activity, summary or detailed
type Activity struct {
	ID                   int64     `json:"id"`
	Athlete              Athlete   `json:"athlete"`
	Name                 string    `json:"name"`
	Type                 string    `json:"type"`
	SportType            string    `json:"sport_type"`
	StartDate            time.Time `json:"start_date"`
	StartDateLocal       time.Time `json:"start_date_local"`
	Timezone             string    `json:"timezone"`
	Distance             float64   `json:"distance"`             // meters
	MovingTime           int       `json:"moving_time"`          // seconds
	ElapsedTime          int       `json:"elapsed_time"`         // seconds
	TotalElevationGain   float64   `json:"total_elevation_gain"` // meters
	AverageSpeed         float64   `json:"average_speed"`        // m/s
	AverageWatts         *float64  `json:"average_watts"`
	WeightedAverageWatts *float64  `json:"weighted_average_watts"` // Strava's normalized power
	MaxWatts             *float64  `json:"max_watts"`
	DeviceWatts          bool      `json:"device_watts"`
	Kilojoules           *float64  `json:"kilojoules"`
	AverageHeartrate     *float64  `json:"average_heartrate"`
	MaxHeartrate         *float64  `json:"max_heartrate"`
	AverageCadence       *float64  `json:"average_cadence"`
	HasHeartrate         bool      `json:"has_heartrate"`
}

// rideTypes are the activity types the analyzer handles
var rideTypes = map[string]bool{
	"Ride":             true,
	"VirtualRide":      true,
	"EBikeRide":        true,
	"GravelRide":       true,
	"MountainBikeRide": true,
}

// IsRide reports whether the activity is a cycling activity
func (a *Activity) IsRide() bool {
	return rideTypes[a.Type] || rideTypes[a.SportType]
}

// Athlete represents a Strava athlete (minimal info in activity response)
type Athlete struct {
	ID int64 `json:"id"`
}

// Lap is one lap from /activities/{id}/laps
type Lap struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	LapIndex         int      `json:"lap_index"`
	ElapsedTime      int      `json:"elapsed_time"` // seconds
	MovingTime       int      `json:"moving_time"`  // seconds
	StartIndex       int      `json:"start_index"`
	EndIndex         int      `json:"end_index"`
	Distance         float64  `json:"distance"`
	AverageWatts     *float64 `json:"average_watts"`
	MaxWatts         *float64 `json:"max_watts"`
	AverageHeartrate *float64 `json:"average_heartrate"`
	MaxHeartrate     *float64 `json:"max_heartrate"`
}

// Streams represents activity stream data from the API.
// Strava returns streams keyed by type when key_by_type=true; power and
// heart rate samples may be null during sensor dropouts.
type Streams struct {
	Time      *StreamData[int]      `json:"time"`
	Watts     *StreamData[*float64] `json:"watts"`
	Heartrate *StreamData[*float64] `json:"heartrate"`
	Cadence   *StreamData[*float64] `json:"cadence"`
}

// StreamData represents a single stream type
type StreamData[T any] struct {
	Data         []T    `json:"data"`
	SeriesType   string `json:"series_type"`
	OriginalSize int    `json:"original_size"`
	Resolution   string `json:"resolution"`
}

// Len returns the length of the time stream, or 0 if nil
func (s *Streams) Len() int {
	if s == nil || s.Time == nil {
		return 0
	}
	return len(s.Time.Data)
}

// HasPower returns true if power data exists
func (s *Streams) HasPower() bool {
	return s != nil && s.Watts != nil && len(s.Watts.Data) > 0
}

// HasHeartrate returns true if heartrate data exists
func (s *Streams) HasHeartrate() bool {
	return s != nil && s.Heartrate != nil && len(s.Heartrate.Data) > 0
}

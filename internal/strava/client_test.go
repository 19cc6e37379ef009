package strava

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClientWithHTTP(srv.Client(), srv.URL)
	c.rateLimiter.minInterval = 0
	return c
}

func TestGetActivity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/activities/42" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-RateLimit-Usage", "10,200")
		w.Header().Set("X-RateLimit-Limit", "100,1000")
		w.Write([]byte(`{
			"id": 42, "name": "Sweet Spot", "type": "Ride", "sport_type": "Ride",
			"start_date": "2024-05-01T07:00:00Z", "start_date_local": "2024-05-01T09:00:00Z",
			"moving_time": 3600, "elapsed_time": 3700, "distance": 35000,
			"average_watts": 205.3, "weighted_average_watts": 221, "max_watts": 640,
			"device_watts": true, "average_heartrate": 148.2, "has_heartrate": true
		}`))
	})

	a, err := c.GetActivity(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetActivity() error = %v", err)
	}
	if a.WeightedAverageWatts == nil || *a.WeightedAverageWatts != 221 {
		t.Errorf("WeightedAverageWatts = %v, want 221", a.WeightedAverageWatts)
	}
	if !a.DeviceWatts || !a.IsRide() {
		t.Errorf("DeviceWatts = %v, IsRide = %v", a.DeviceWatts, a.IsRide())
	}

	short, daily := c.RateLimitStatus()
	if short != 90 || daily != 800 {
		t.Errorf("RateLimitStatus() = %d, %d, want 90, 800", short, daily)
	}

	if _, err := c.GetActivity(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetActivity(7) error = %v, want ErrNotFound", err)
	}
}

func TestGetActivityStreams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("keys"); got != "time,watts,heartrate,cadence" {
			t.Errorf("keys = %q", got)
		}
		if r.URL.Query().Get("key_by_type") != "true" {
			t.Error("key_by_type not set")
		}
		w.Write([]byte(`{
			"time": {"data": [0, 1, 2, 3]},
			"watts": {"data": [200, null, 210, 205]},
			"heartrate": {"data": [130, 131, 131, 132]}
		}`))
	})

	s, err := c.GetActivityStreams(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetActivityStreams() error = %v", err)
	}
	if s.Len() != 4 || !s.HasPower() || !s.HasHeartrate() {
		t.Fatalf("streams = %+v", s)
	}
	if s.Watts.Data[1] != nil {
		t.Errorf("watts[1] = %v, want null dropout", *s.Watts.Data[1])
	}
	if *s.Watts.Data[2] != 210 {
		t.Errorf("watts[2] = %v, want 210", *s.Watts.Data[2])
	}
	if s.Cadence != nil {
		t.Errorf("Cadence = %+v, want nil when absent", s.Cadence)
	}
}

func TestGetActivityLaps(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"lap_index": 1, "elapsed_time": 700, "average_watts": 150, "average_heartrate": 120},
			{"lap_index": 2, "elapsed_time": 2900, "average_watts": 230, "max_watts": 290}
		]`))
	})

	laps, err := c.GetActivityLaps(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetActivityLaps() error = %v", err)
	}
	if len(laps) != 2 || laps[0].ElapsedTime != 700 {
		t.Fatalf("laps = %+v", laps)
	}
	if laps[1].AverageHeartrate != nil {
		t.Errorf("lap 2 AverageHeartrate = %v, want nil", *laps[1].AverageHeartrate)
	}
}

func TestGetAllActivitiesPaginates(t *testing.T) {
	var pages []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		if r.URL.Query().Get("after") != "1700000000" {
			t.Errorf("after = %q", r.URL.Query().Get("after"))
		}
		if page == "1" {
			// full page of 100 forces a second request
			w.Write([]byte("[" + repeatActivity(100) + "]"))
			return
		}
		w.Write([]byte(`[{"id": 1000, "type": "Run"}]`))
	})

	var progress []int
	all, err := c.GetAllActivities(context.Background(), time.Unix(1700000000, 0), func(n int) {
		progress = append(progress, n)
	})
	if err != nil {
		t.Fatalf("GetAllActivities() error = %v", err)
	}
	if len(all) != 101 {
		t.Errorf("len(all) = %d, want 101", len(all))
	}
	if len(pages) != 2 || len(progress) != 2 || progress[1] != 101 {
		t.Errorf("pages = %v, progress = %v", pages, progress)
	}
	if all[100].IsRide() {
		t.Error("Run reported as ride")
	}
}

func repeatActivity(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += `{"id": 1, "type": "Ride"}`
	}
	return out
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message": "Rate Limit Exceeded"}`))
	})

	_, err := c.GetActivity(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", apiErr.StatusCode)
	}
}

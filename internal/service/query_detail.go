package service

import (
	"errors"

	"ridecoach/internal/analysis"
	"ridecoach/internal/store"
)

// ZoneBar is one zone's share of a ride
type ZoneBar struct {
	Label   string
	Name    string
	Minutes float64
	Percent float64
}

// RideDetail contains everything the detail view shows for one ride
type RideDetail struct {
	Activity store.Activity
	// Analysis is nil until the ride has been analyzed
	Analysis *store.Analysis

	PowerZones []ZoneBar
	HRZones    []ZoneBar

	// Power curve for charting, index-aligned
	CurveWatts []float64
	CurveLabel []string

	// DriftAssessment describes the decoupling, or why there is none
	DriftAssessment string
}

// GetRideDetail returns a ride with its stored analysis
func (q *QueryService) GetRideDetail(id int64) (*RideDetail, error) {
	activity, err := q.store.GetActivity(id)
	if err != nil {
		return nil, err
	}

	detail := &RideDetail{Activity: *activity}

	an, err := q.store.GetAnalysis(id)
	if errors.Is(err, store.ErrAnalysisNotFound) {
		return detail, nil
	}
	if err != nil {
		return nil, err
	}
	detail.Analysis = an

	r := an.Result
	detail.PowerZones = zoneBars(r.PowerZones)
	detail.HRZones = zoneBars(r.HRZones)
	for _, p := range r.PowerCurve {
		detail.CurveWatts = append(detail.CurveWatts, p.Watts)
		detail.CurveLabel = append(detail.CurveLabel, p.Label)
	}

	switch {
	case r.DriftValid && r.AerobicDecoupling != nil:
		detail.DriftAssessment = analysis.DecouplingAssessment(*r.AerobicDecoupling)
	case r.DriftReason != "":
		detail.DriftAssessment = "not computed: " + r.DriftReason
	}

	return detail, nil
}

// zoneBars converts zone minutes to bars with each zone's share of the total
func zoneBars(zones []analysis.ZoneTime) []ZoneBar {
	if len(zones) == 0 {
		return nil
	}

	total := 0.0
	for _, z := range zones {
		total += z.Minutes
	}

	bars := make([]ZoneBar, len(zones))
	for i, z := range zones {
		bars[i] = ZoneBar{Label: z.Label, Name: z.Name, Minutes: z.Minutes}
		if total > 0 {
			bars[i].Percent = z.Minutes / total * 100
		}
	}
	return bars
}

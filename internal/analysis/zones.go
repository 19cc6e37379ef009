package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Zone is one [Low, High) band in stream units (watts or bpm)
type Zone struct {
	Label string  `json:"label"`
	Name  string  `json:"name"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
}

type zoneJSON struct {
	Label string   `json:"label"`
	Name  string   `json:"name"`
	Low   float64  `json:"low"`
	High  *float64 `json:"high"` // null for an open-ended top zone
}

// MarshalJSON writes an infinite upper bound as null
func (z Zone) MarshalJSON() ([]byte, error) {
	out := zoneJSON{Label: z.Label, Name: z.Name, Low: z.Low}
	if !math.IsInf(z.High, 1) {
		out.High = &z.High
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a null upper bound back as +Inf
func (z *Zone) UnmarshalJSON(data []byte) error {
	var in zoneJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*z = Zone{Label: in.Label, Name: in.Name, Low: in.Low, High: math.Inf(1)}
	if in.High != nil {
		z.High = *in.High
	}
	return nil
}

// ZoneTable is an ordered set of contiguous zones
type ZoneTable []Zone

// ZoneTime is the time spent in one zone
type ZoneTime struct {
	Zone
	Minutes float64 `json:"minutes"`
}

// MarshalJSON keeps Minutes alongside the zone fields
func (zt ZoneTime) MarshalJSON() ([]byte, error) {
	zone, err := json.Marshal(zt.Zone)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(zone, &fields); err != nil {
		return nil, err
	}
	fields["minutes"] = zt.Minutes
	return json.Marshal(fields)
}

// UnmarshalJSON reads both the zone fields and Minutes
func (zt *ZoneTime) UnmarshalJSON(data []byte) error {
	if err := zt.Zone.UnmarshalJSON(data); err != nil {
		return err
	}
	var m struct {
		Minutes float64 `json:"minutes"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	zt.Minutes = m.Minutes
	return nil
}

// Power zones as fractions of FTP (Coggan levels 1-6)
var powerZoneBounds = []float64{0, 0.55, 0.75, 0.90, 1.05, 1.20}

var powerZoneNames = []string{
	"Active Recovery",
	"Endurance",
	"Tempo",
	"Threshold",
	"VO2max",
	"Anaerobic",
}

// HR zones as fractions of max HR
var hrZoneBounds = []float64{0, 0.6, 0.7, 0.8, 0.9, 1.0}

var hrZoneNames = []string{
	"Recovery",
	"Endurance",
	"Tempo",
	"Threshold",
	"VO2max",
}

// PowerZoneTable builds the six power zones for an FTP; Z6 is open-ended
func PowerZoneTable(ftp float64) ZoneTable {
	table := make(ZoneTable, len(powerZoneNames))
	for i := range table {
		high := math.Inf(1)
		if i+1 < len(powerZoneBounds) {
			high = powerZoneBounds[i+1] * ftp
		}
		table[i] = Zone{
			Label: fmt.Sprintf("Z%d", i+1),
			Name:  powerZoneNames[i],
			Low:   powerZoneBounds[i] * ftp,
			High:  high,
		}
	}
	return table
}

// HRZoneTable builds the five heart rate zones for a max HR
func HRZoneTable(maxHR float64) ZoneTable {
	table := make(ZoneTable, len(hrZoneNames))
	for i := range table {
		table[i] = Zone{
			Label: fmt.Sprintf("Z%d", i+1),
			Name:  hrZoneNames[i],
			Low:   hrZoneBounds[i] * maxHR,
			High:  hrZoneBounds[i+1] * maxHR,
		}
	}
	return table
}

// Validate checks that the bounds are non-negative, increasing and contiguous
func (t ZoneTable) Validate() error {
	if len(t) == 0 {
		return errors.New("zone table is empty")
	}
	for i, z := range t {
		if z.Low < 0 || math.IsNaN(z.Low) || math.IsNaN(z.High) {
			return fmt.Errorf("zone %s: invalid bounds [%v, %v)", z.Label, z.Low, z.High)
		}
		if z.High <= z.Low {
			return fmt.Errorf("zone %s: high %v must exceed low %v", z.Label, z.High, z.Low)
		}
		if i > 0 && z.Low != t[i-1].High {
			return fmt.Errorf("zone %s: low %v does not continue from %v", z.Label, z.Low, t[i-1].High)
		}
	}
	return nil
}

// BinZones counts minutes per zone, rounded to one decimal.
// Null samples are skipped; samples outside every zone are not counted.
func BinZones(series []*float64, table ZoneTable, sampleRateHz float64) []ZoneTime {
	if sampleRateHz <= 0 {
		sampleRateHz = 1
	}

	counts := make([]int, len(table))
	for _, v := range series {
		if v == nil {
			continue
		}
		if i := table.indexOf(*v); i >= 0 {
			counts[i]++
		}
	}

	out := make([]ZoneTime, len(table))
	for i, z := range table {
		out[i] = ZoneTime{
			Zone:    z,
			Minutes: round(float64(counts[i])/sampleRateHz/60, 1),
		}
	}
	return out
}

// indexOf returns the zone containing v, or -1
func (t ZoneTable) indexOf(v float64) int {
	for i, z := range t {
		if v >= z.Low && v < z.High {
			return i
		}
	}
	return -1
}

// MinutesIn returns the minutes recorded for a zone label
func MinutesIn(zones []ZoneTime, label string) float64 {
	for _, z := range zones {
		if z.Label == label {
			return z.Minutes
		}
	}
	return 0
}

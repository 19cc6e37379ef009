// Package export writes decoded rides as per-sample parquet tables.
package export

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"ridecoach/internal/analysis"
	"ridecoach/internal/fitfile"
)

const parallelism = 4

// Row is one second of a ride. Missing sensor values are written as NaN and
// flagged through the Valid* columns.
type Row struct {
	TSUTCISO     string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ElapsedS     float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	PowerW       float64 `parquet:"name=power_w, type=DOUBLE"`
	HRBPM        float64 `parquet:"name=hr_bpm, type=DOUBLE"`
	CadenceRPM   float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	ValidPower   bool    `parquet:"name=valid_power, type=BOOLEAN"`
	ValidHR      bool    `parquet:"name=valid_hr, type=BOOLEAN"`
	ValidCadence bool    `parquet:"name=valid_cadence, type=BOOLEAN"`
	InMainSet    bool    `parquet:"name=in_main_set, type=BOOLEAN"`
	LapIndex     int32   `parquet:"name=lap_index, type=INT32"`
}

// Stats describes a finished export
type Stats struct {
	Path        string
	Rows        int
	MainSetRows int
	Bytes       int64
}

func (s Stats) String() string {
	return fmt.Sprintf("%d rows (%d in main set), %s written to %s",
		s.Rows, s.MainSetRows, humanize.Bytes(uint64(s.Bytes)), s.Path)
}

// Rows flattens ride into one row per sample. When main is nil no row is
// flagged as part of the main set.
func Rows(ride *fitfile.Ride, main *analysis.Bounds) []Row {
	n := ride.Stream.Len()
	if len(ride.Timestamps) > n {
		n = len(ride.Timestamps)
	}

	rate := ride.Stream.Rate()
	lapEnds := lapBoundaries(ride.Laps, rate)

	rows := make([]Row, n)
	lap := 0
	for i := range rows {
		for lap < len(lapEnds) && i >= lapEnds[lap] {
			lap++
		}

		r := Row{
			ElapsedS: float64(i) / rate,
			LapIndex: int32(lap),
		}
		if i < len(ride.Timestamps) {
			r.TSUTCISO = ride.Timestamps[i].UTC().Format("2006-01-02T15:04:05Z")
		}
		r.PowerW, r.ValidPower = sample(ride.Stream.Power, i)
		r.HRBPM, r.ValidHR = sample(ride.Stream.HeartRate, i)
		r.CadenceRPM, r.ValidCadence = sample(ride.Cadence, i)
		if main != nil {
			r.InMainSet = i >= main.Start && i < main.End
		}
		rows[i] = r
	}
	return rows
}

// RideFile writes ride to path, flagging the main set found by TrimMainSet.
// A ride too short for a main set is still exported, with no rows flagged.
func RideFile(path string, ride *fitfile.Ride, profile analysis.AthleteProfile, opts analysis.Options) (Stats, error) {
	var main *analysis.Bounds
	b, err := analysis.TrimMainSet(ride.Stream.Len(), ride.Laps, profile, opts)
	switch {
	case err == nil:
		main = &b
	case errors.Is(err, analysis.ErrMainSetTooShort):
	default:
		return Stats{}, fmt.Errorf("finding main set: %w", err)
	}

	rows := Rows(ride, main)
	if err := WriteFile(path, rows); err != nil {
		return Stats{}, err
	}

	stats := Stats{Path: path, Rows: len(rows)}
	if main != nil {
		stats.MainSetRows = main.Len()
	}
	if info, err := os.Stat(path); err == nil {
		stats.Bytes = info.Size()
	}
	return stats, nil
}

// WriteFile writes rows to a snappy-compressed parquet file at path
func WriteFile(path string, rows []Row) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	if err := write(fw, rows); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

// Marshal encodes rows as parquet in memory
func Marshal(rows []Row) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	if err := write(fw, rows); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func write(fw source.ParquetFile, rows []Row) error {
	pw, err := writer.NewParquetWriter(fw, new(Row), parallelism)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return nil
}

func sample(series []*float64, i int) (float64, bool) {
	if i >= len(series) || series[i] == nil {
		return math.NaN(), false
	}
	return *series[i], true
}

// lapBoundaries returns the exclusive end sample of each lap
func lapBoundaries(laps []analysis.Lap, rate float64) []int {
	ends := make([]int, 0, len(laps))
	elapsed := 0.0
	for _, l := range laps {
		elapsed += l.ElapsedTimeSec
		ends = append(ends, int(math.Round(elapsed*rate)))
	}
	return ends
}

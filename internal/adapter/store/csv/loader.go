// Package csv reads evaluation points from CSV and writes tide results back.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"go.ngs.io/tidegrid/internal/domain"
	"go.ngs.io/tidegrid/internal/engine"
)

// Points are parallel arrays of evaluation coordinates.
type Points struct {
	Lon    []float64
	Lat    []float64
	Epochs []int64
}

// Len returns the number of points.
func (p *Points) Len() int { return len(p.Lon) }

// Append adds one point.
func (p *Points) Append(lon, lat float64, t time.Time) {
	p.Lon = append(p.Lon, lon)
	p.Lat = append(p.Lat, lat)
	p.Epochs = append(p.Epochs, domain.TimeToEpoch(t))
}

var columnAliases = map[string]string{
	"lon": "lon", "longitude": "lon",
	"lat": "lat", "latitude": "lat",
	"time": "time", "datetime": "time", "epoch": "time",
}

// ReadPoints reads a CSV with lon, lat and time columns in any order.
// Times are RFC3339 or integer microseconds since the Unix epoch.
func ReadPoints(r io.Reader) (*Points, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := map[string]int{}
	for i, h := range header {
		if name, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			columns[name] = i
		}
	}
	for _, name := range []string{"lon", "lat", "time"} {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("invalid CSV header: missing %s column in %v", name, header)
		}
	}

	points := &Points{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[columns["lon"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid longitude: %w", line, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(record[columns["lat"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid latitude: %w", line, err)
		}
		epoch, err := ParseEpoch(record[columns["time"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		points.Lon = append(points.Lon, lon)
		points.Lat = append(points.Lat, lat)
		points.Epochs = append(points.Epochs, epoch)
	}
	return points, nil
}

// ParseEpoch accepts RFC3339 or integer microseconds since the Unix epoch.
func ParseEpoch(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if us, err := strconv.ParseInt(s, 10, 64); err == nil {
		return us, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected RFC3339 or microseconds", s)
	}
	return domain.TimeToEpoch(t), nil
}

// WriteResults writes one row per point with its heights and quality code.
func WriteResults(w io.Writer, p *Points, r *engine.Result) error {
	if r.Len() != p.Len() {
		return fmt.Errorf("%d results for %d points", r.Len(), p.Len())
	}
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"lon", "lat", "time", "ocean_m", "long_period_m", "total_m", "quality"}); err != nil {
		return err
	}
	for i := range p.Lon {
		record := []string{
			formatFloat(p.Lon[i]),
			formatFloat(p.Lat[i]),
			domain.EpochToTime(p.Epochs[i]).Format(time.RFC3339Nano),
			formatFloat(r.Ocean[i]),
			formatFloat(r.LongPeriod[i]),
			formatFloat(r.Ocean[i] + r.LongPeriod[i]),
			strconv.Itoa(r.Quality[i].Code()),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

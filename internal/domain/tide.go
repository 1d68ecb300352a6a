package domain

import (
	"math"
	"sort"
	"time"
)

// TideLevel is a predicted water level at a specific time.
type TideLevel struct {
	Time time.Time
	// HeightM is the total height, ocean plus long-period, in meters.
	HeightM float64
	// OceanM is the short-period (diurnal, semidiurnal and shallow-water) height.
	OceanM float64
	// LongPeriodM is the long-period height.
	LongPeriodM float64
}

// Extrema represents high and low tide events.
type Extrema struct {
	Highs []TideLevel
	Lows  []TideLevel
}

// SampleTimes returns the instants start, start+interval, ... up to and
// including end.
func SampleTimes(start, end time.Time, interval time.Duration) []time.Time {
	if interval <= 0 || end.Before(start) {
		return []time.Time{}
	}
	times := make([]time.Time, 0, int(end.Sub(start)/interval)+1)
	for t := start; !t.After(end); t = t.Add(interval) {
		times = append(times, t)
	}
	return times
}

// FindExtrema identifies high and low tides from a time series.
// Uses first derivative sign change to detect peaks and troughs. Samples
// with an undefined height are never extrema.
func FindExtrema(predictions []TideLevel) Extrema {
	extrema := Extrema{
		Highs: []TideLevel{},
		Lows:  []TideLevel{},
	}
	if len(predictions) < 3 {
		return extrema
	}

	for i := 1; i < len(predictions)-1; i++ {
		prev := predictions[i-1].HeightM
		curr := predictions[i].HeightM
		next := predictions[i+1].HeightM
		if math.IsNaN(prev) || math.IsNaN(curr) || math.IsNaN(next) {
			continue
		}

		if curr > prev && curr > next {
			extrema.Highs = append(extrema.Highs, predictions[i])
		}
		if curr < prev && curr < next {
			extrema.Lows = append(extrema.Lows, predictions[i])
		}
		// Plateaus are skipped.
	}

	return extrema
}

// RefineExtremum performs parabolic interpolation to get a more accurate extremum.
// Uses three points around the discrete extremum to fit a parabola.
// Returns the interpolated time and height.
func RefineExtremum(before, peak, after TideLevel) (time.Time, float64) {
	dt1 := peak.Time.Sub(before.Time).Hours()
	dt2 := after.Time.Sub(peak.Time).Hours()

	// Non-uniform spacing keeps the discrete peak.
	if math.Abs(dt1-dt2) > 1e-6 {
		return peak.Time, peak.HeightM
	}

	// y = a*x^2 + b*x + c, vertex at x = -b/(2a).
	h0, h1, h2 := before.HeightM, peak.HeightM, after.HeightM
	a := (h2 - 2*h1 + h0) / (2 * dt1 * dt1)
	b := (h2 - h0) / (2 * dt1)

	if math.Abs(a) < 1e-10 {
		return peak.Time, peak.HeightM
	}

	dtVertex := -b / (2 * a)
	if math.Abs(dtVertex) > dt1 {
		return peak.Time, peak.HeightM
	}

	refinedTime := peak.Time.Add(time.Duration(dtVertex * float64(time.Hour)))
	refinedHeight := h1 + b*dtVertex + a*dtVertex*dtVertex

	return refinedTime, refinedHeight
}

// RefineExtrema applies parabolic interpolation to all extrema. The ocean and
// long-period components of a refined level keep the values of the discrete
// sample.
func RefineExtrema(predictions []TideLevel, extrema Extrema) Extrema {
	if len(predictions) < 3 {
		return extrema
	}

	index := make(map[time.Time]int, len(predictions))
	for i, p := range predictions {
		index[p.Time] = i
	}

	refine := func(levels []TideLevel) []TideLevel {
		refined := make([]TideLevel, 0, len(levels))
		for _, level := range levels {
			idx, ok := index[level.Time]
			if !ok || idx < 1 || idx >= len(predictions)-1 {
				refined = append(refined, level)
				continue
			}
			t, h := RefineExtremum(predictions[idx-1], predictions[idx], predictions[idx+1])
			level.Time = t
			level.HeightM = h
			refined = append(refined, level)
		}
		sort.Slice(refined, func(i, j int) bool {
			return refined[i].Time.Before(refined[j].Time)
		})
		return refined
	}

	return Extrema{
		Highs: refine(extrema.Highs),
		Lows:  refine(extrema.Lows),
	}
}

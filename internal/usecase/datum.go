package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// defaultDatumRadiusKm bounds the nearest-neighbor search.
const defaultDatumRadiusKm = 80.0

// DatumOffset is the height of a local chart datum relative to mean sea
// level at a reference position.
type DatumOffset struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	OffsetM  float64 `json:"offset_m"`
	RadiusKm float64 `json:"radius_km,omitempty"`
}

// DatumOffsets is a table of local datums searched by distance.
type DatumOffsets struct {
	entries []DatumOffset
}

// NewDatumOffsets wraps entries.
func NewDatumOffsets(entries []DatumOffset) *DatumOffsets {
	return &DatumOffsets{entries: entries}
}

// LoadDatumOffsets reads a JSON array of DatumOffset.
func LoadDatumOffsets(path string) (*DatumOffsets, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read datum offsets: %w", err)
	}
	var entries []DatumOffset
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse datum offsets %s: %w", path, err)
	}
	return NewDatumOffsets(entries), nil
}

// Len returns the number of datums.
func (d *DatumOffsets) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Nearest returns the closest datum whose search radius contains the
// position.
func (d *DatumOffsets) Nearest(lat, lon float64) (DatumOffset, bool) {
	if d.Len() == 0 {
		return DatumOffset{}, false
	}
	bestDist := math.MaxFloat64
	best := -1
	for i, entry := range d.entries {
		radius := entry.RadiusKm
		if radius == 0 {
			radius = defaultDatumRadiusKm
		}
		dist := haversineKm(lat, lon, entry.Lat, entry.Lon)
		if dist <= radius && dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	if best < 0 {
		return DatumOffset{}, false
	}
	return d.entries[best], true
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0
	toRad := func(x float64) float64 { return x * math.Pi / 180.0 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

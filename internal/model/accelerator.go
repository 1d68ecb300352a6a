package model

import (
	"fmt"
	"math"

	"go.ngs.io/tidegrid/internal/domain"
)

var allConstituents = domain.AllConstituents()

// Accelerator caches the astronomical state of the last evaluated epoch and
// the grid values of the last evaluated position. An Accelerator is owned by
// a single goroutine.
type Accelerator struct {
	timeTolerance    int64 // microseconds
	groupModulations bool

	hasEpoch  bool
	epoch     int64
	deltaT    float64
	vector    domain.CelestialVector
	arguments [domain.NumConstituents]float64
	nodal     [domain.NumConstituents]domain.NodalCorrection
	refreshes uint64

	owner       any
	hasPosition bool
	lon, lat    float64
	values      Values
	quality     Quality
}

// MaxTimeTolerance is the largest time tolerance, in seconds, representable
// in microseconds.
const MaxTimeTolerance = float64(math.MaxInt64 / 1_000_000)

// NewAccelerator returns an empty cache. timeTolerance is the interval, in
// seconds, over which the astronomical arguments are considered constant.
// It is clamped to [0, MaxTimeTolerance].
func NewAccelerator(timeTolerance float64, groupModulations bool) *Accelerator {
	switch {
	case timeTolerance < 0 || math.IsNaN(timeTolerance):
		timeTolerance = 0
	case timeTolerance > MaxTimeTolerance:
		timeTolerance = MaxTimeTolerance
	}
	return &Accelerator{
		timeTolerance:    int64(math.Round(timeTolerance * 1e6)),
		groupModulations: groupModulations,
	}
}

// TimeTolerance returns the tolerance in seconds.
func (a *Accelerator) TimeTolerance() float64 {
	return float64(a.timeTolerance) / 1e6
}

// GroupModulations reports whether group nodal corrections are used.
func (a *Accelerator) GroupModulations() bool { return a.groupModulations }

// Update recomputes the astronomical arguments and nodal corrections unless
// epoch (microseconds since 1970-01-01T00:00:00Z) lies within the time
// tolerance of the cached epoch. It reports whether a recomputation
// happened. On error the cache is left unchanged.
func (a *Accelerator) Update(epoch int64) (bool, error) {
	if a.hasEpoch {
		delta := epoch - a.epoch
		if delta < 0 {
			delta = -delta
		}
		if delta <= a.timeTolerance {
			return false, nil
		}
	}

	mjd := domain.EpochToMJD(epoch)
	deltaT, err := domain.DeltaT(mjd + domain.ModifiedJulianEpoch)
	if err != nil {
		return false, fmt.Errorf("epoch %d: %w", epoch, err)
	}
	v := domain.NewCelestialVector(mjd, deltaT)
	for _, c := range allConstituents {
		a.arguments[c] = domain.DoodsonArgument(v, c.Doodson())
	}

	omega := -v.NPrime()
	var nodal []domain.NodalCorrection
	if a.groupModulations {
		nodal = domain.GroupNodalCorrections(v.Ps(), omega, v.P(), v.H(), allConstituents)
	} else {
		nodal = domain.StandardNodalCorrections(omega, v.P(), allConstituents)
	}
	copy(a.nodal[:], nodal)

	a.epoch, a.deltaT, a.vector, a.hasEpoch = epoch, deltaT, v, true
	a.refreshes++
	return true, nil
}

// Epoch returns the epoch the cached arguments were computed for.
func (a *Accelerator) Epoch() (int64, bool) { return a.epoch, a.hasEpoch }

// DeltaT returns the cached TT - UT in seconds.
func (a *Accelerator) DeltaT() float64 { return a.deltaT }

// Vector returns the cached celestial vector.
func (a *Accelerator) Vector() domain.CelestialVector { return a.vector }

// Argument returns the cached equilibrium argument of c in degrees.
func (a *Accelerator) Argument(c domain.Constituent) float64 { return a.arguments[c] }

// Nodal returns the cached nodal correction of c.
func (a *Accelerator) Nodal(c domain.Constituent) domain.NodalCorrection { return a.nodal[c] }

// Refreshes returns how many times the arguments were recomputed.
func (a *Accelerator) Refreshes() uint64 { return a.refreshes }

// Values returns the grid values of the last interpolated position.
func (a *Accelerator) Values() *Values { return &a.values }

// Quality returns the quality of the last interpolated position.
func (a *Accelerator) Quality() Quality { return a.quality }

// Apply copies the cached values, arguments and nodal corrections of the
// constituents in set into table.
func (a *Accelerator) Apply(set domain.Set, table *domain.Table) {
	for _, c := range allConstituents {
		w := &table[c]
		w.Argument = a.arguments[c]
		w.Nodal = a.nodal[c]
		if set.Has(c) {
			w.Tide = a.values[c]
			w.Modeled = true
		}
	}
}

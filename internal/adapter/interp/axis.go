package interp

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"go.ngs.io/tidegrid/internal/domain"
)

// DefaultEpsilon is the coordinate tolerance used when none is given.
const DefaultEpsilon = 1e-6

const circle = 360.0

var (
	// ErrAxisTooShort is returned for axes with fewer than two points.
	ErrAxisTooShort = errors.New("axis must contain at least 2 points")
	// ErrNotMonotonic is returned when axis points are not strictly monotonic.
	ErrNotMonotonic = errors.New("axis points must be strictly monotonic")
)

// OutOfDomainError reports a coordinate outside a non-periodic axis.
type OutOfDomainError struct {
	Value    float64
	Min, Max float64
}

func (e *OutOfDomainError) Error() string {
	return fmt.Sprintf("coordinate %.6f is outside axis range [%.6f, %.6f]", e.Value, e.Min, e.Max)
}

// Cell is the pair of axis nodes framing a coordinate. The coordinate sits at
// (1-Frac)*x(I0) + Frac*x(I1).
type Cell struct {
	I0, I1 int
	Frac   float64
}

// Axis is a monotonic one-dimensional coordinate system. Evenly spaced axes
// are stored as start and step; other axes keep their points.
type Axis struct {
	start     float64
	step      float64
	size      int
	points    []float64 // nil for evenly spaced axes
	epsilon   float64
	periodic  bool
	ascending bool
}

// NewAxis builds an axis from explicit points. Periodic axes are longitudes:
// points crossing the antimeridian are unwrapped, and the axis only wraps if
// it is evenly spaced and covers the full circle. Otherwise the periodic
// flag is dropped.
func NewAxis(points []float64, epsilon float64, periodic bool) (*Axis, error) {
	if len(points) < 2 {
		return nil, ErrAxisTooShort
	}
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	values := points
	if periodic {
		values = unwrapLongitudes(points)
	}

	a := &Axis{
		size:      len(values),
		start:     values[0],
		epsilon:   epsilon,
		ascending: values[1] > values[0],
	}
	for i := 1; i < len(values); i++ {
		if (values[i] > values[i-1]) != a.ascending || values[i] == values[i-1] {
			return nil, fmt.Errorf("%w: index %d", ErrNotMonotonic, i)
		}
	}

	if step, ok := evenlySpaced(values, epsilon); ok {
		a.step = step
	} else {
		a.points = append([]float64(nil), values...)
		a.step = (values[len(values)-1] - values[0]) / float64(len(values)-1)
	}
	a.periodic = periodic && a.points == nil &&
		domain.IsSame(math.Abs(a.step*float64(a.size)), circle, epsilon)
	return a, nil
}

// NewRegularAxis builds an evenly spaced axis from start to end.
func NewRegularAxis(start, end, step, epsilon float64, periodic bool) (*Axis, error) {
	if step == 0 || math.IsNaN(step) {
		return nil, fmt.Errorf("invalid axis step %v", step)
	}
	n := int(math.Round((end-start)/step)) + 1
	if n < 2 {
		return nil, ErrAxisTooShort
	}
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	a := &Axis{
		start:     start,
		step:      (end - start) / float64(n-1),
		size:      n,
		epsilon:   epsilon,
		ascending: end > start,
	}
	a.periodic = periodic && domain.IsSame(math.Abs(a.step*float64(n)), circle, epsilon)
	return a, nil
}

// evenlySpaced returns the increment of values if every gap matches it
// within epsilon.
func evenlySpaced(values []float64, epsilon float64) (float64, bool) {
	n := len(values)
	increment := (values[n-1] - values[0]) / float64(n-1)
	if math.Abs(increment) <= epsilon {
		return 0, false
	}
	for i := 1; i < n; i++ {
		if !domain.IsSame(values[i]-values[i-1], increment, epsilon) {
			return 0, false
		}
	}
	return increment, true
}

// unwrapLongitudes shifts by a full circle every point after the first
// break in monotonicity.
func unwrapLongitudes(points []float64) []float64 {
	ascending := points[0] < points[1]
	out := append([]float64(nil), points...)
	crossed := false
	for i := 1; i < len(out); i++ {
		if !crossed {
			if ascending {
				crossed = points[i-1] > points[i]
			} else {
				crossed = points[i-1] < points[i]
			}
		}
		if crossed {
			if ascending {
				out[i] += circle
			} else {
				out[i] -= circle
			}
		}
	}
	return out
}

// Size returns the number of points.
func (a *Axis) Size() int { return a.size }

// Epsilon returns the coordinate tolerance.
func (a *Axis) Epsilon() float64 { return a.epsilon }

// IsPeriodic reports whether the axis wraps around the circle.
func (a *Axis) IsPeriodic() bool { return a.periodic }

// IsAscending reports whether coordinates increase with the index.
func (a *Axis) IsAscending() bool { return a.ascending }

// IsRegular reports whether the axis is evenly spaced.
func (a *Axis) IsRegular() bool { return a.points == nil }

// Step returns the mean spacing between points.
func (a *Axis) Step() float64 { return a.step }

// Value returns the coordinate at index i.
func (a *Axis) Value(i int) float64 {
	if a.points != nil {
		return a.points[i]
	}
	return a.start + float64(i)*a.step
}

// Start returns the first coordinate.
func (a *Axis) Start() float64 { return a.Value(0) }

// End returns the last coordinate.
func (a *Axis) End() float64 { return a.Value(a.size - 1) }

// Min returns the smallest coordinate.
func (a *Axis) Min() float64 {
	if a.ascending {
		return a.Start()
	}
	return a.End()
}

// Max returns the largest coordinate.
func (a *Axis) Max() float64 {
	if a.ascending {
		return a.End()
	}
	return a.Start()
}

// Points returns a copy of the coordinates.
func (a *Axis) Points() []float64 {
	out := make([]float64, a.size)
	for i := range out {
		out[i] = a.Value(i)
	}
	return out
}

// Matches reports whether two coordinates denote the same grid point.
func (a *Axis) Matches(x, y float64) bool {
	return math.Abs(x-y) <= a.epsilon
}

// Equal reports whether both axes describe the same coordinates.
func (a *Axis) Equal(other *Axis) bool {
	if other == nil || a.size != other.size || a.periodic != other.periodic {
		return false
	}
	for i := 0; i < a.size; i++ {
		if !a.Matches(a.Value(i), other.Value(i)) {
			return false
		}
	}
	return true
}

// normalize brings a longitude into [Min, Min+360) on periodic axes.
func (a *Axis) normalize(x float64) float64 {
	if a.periodic && (x < a.Min() || x >= a.Min()+circle) {
		return domain.NormalizeAngle(x, a.Min(), circle)
	}
	return x
}

// Locate finds the cell framing x. A coordinate exactly on a node resolves
// to the cell starting at that node, except on the last node of a
// non-periodic axis, which closes the last cell with Frac = 1. Periodic axes
// frame coordinates past the last node with the cell (Size-1, 0).
func (a *Axis) Locate(x float64) (Cell, error) {
	if math.IsNaN(x) {
		return Cell{}, &OutOfDomainError{Value: x, Min: a.Min(), Max: a.Max()}
	}
	x = a.normalize(x)

	var pos float64
	if a.points == nil {
		pos = (x - a.start) / a.step
	} else {
		pos = a.irregularPosition(x)
	}

	last := float64(a.size - 1)
	if a.periodic {
		i0 := int(math.Floor(pos))
		frac := pos - float64(i0)
		if frac >= 1 {
			i0, frac = i0+1, 0
		}
		i0 = ((i0 % a.size) + a.size) % a.size
		return Cell{I0: i0, I1: (i0 + 1) % a.size, Frac: frac}, nil
	}

	if pos < 0 || pos > last {
		// Tolerate coordinates within epsilon of the boundary nodes.
		switch {
		case pos < 0 && a.Matches(x, a.Start()):
			pos = 0
		case pos > last && a.Matches(x, a.End()):
			pos = last
		default:
			return Cell{}, &OutOfDomainError{Value: x, Min: a.Min(), Max: a.Max()}
		}
	}
	i0 := int(math.Floor(pos))
	if i0 >= a.size-1 {
		i0 = a.size - 2
	}
	return Cell{I0: i0, I1: i0 + 1, Frac: pos - float64(i0)}, nil
}

// irregularPosition returns the fractional index of x by binary search.
// Values outside the axis extrapolate linearly from the boundary cells.
func (a *Axis) irregularPosition(x float64) float64 {
	n := a.size
	var i int
	if a.ascending {
		i = sort.Search(n, func(k int) bool { return a.points[k] > x }) - 1
	} else {
		i = sort.Search(n, func(k int) bool { return a.points[k] < x }) - 1
	}
	if i < 0 {
		i = 0
	} else if i > n-2 {
		i = n - 2
	}
	x0, x1 := a.points[i], a.points[i+1]
	return float64(i) + (x-x0)/(x1-x0)
}

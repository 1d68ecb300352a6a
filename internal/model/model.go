package model

import (
	"fmt"
	"math"
	"math/cmplx"

	"go.ngs.io/tidegrid/internal/adapter/interp"
	"go.ngs.io/tidegrid/internal/domain"
)

// Float is the storage precision of a model.
type Float interface {
	float32 | float64
}

// Values holds one complex value per constituent, indexed by Constituent.
type Values [domain.NumConstituents]complex128

// Grid is a complex field on a 2-D grid, stored as interleaved real and
// imaginary parts in row-major order.
type Grid[T Float] struct {
	Rows, Cols int
	Data       []T
}

// NewGrid allocates a rows x cols grid filled with zeros.
func NewGrid[T Float](rows, cols int) *Grid[T] {
	return &Grid[T]{Rows: rows, Cols: cols, Data: make([]T, 2*rows*cols)}
}

// Set stores v at (row, col).
func (g *Grid[T]) Set(row, col int, v complex128) {
	k := 2 * (row*g.Cols + col)
	g.Data[k] = T(real(v))
	g.Data[k+1] = T(imag(v))
}

// At returns the value at (row, col).
func (g *Grid[T]) At(row, col int) complex128 {
	k := 2 * (row*g.Cols + col)
	return complex(float64(g.Data[k]), float64(g.Data[k+1]))
}

// TidalModel holds the harmonic constants of a set of constituents on a
// longitude/latitude grid. It is built once and read-only afterwards, so it
// can be shared between goroutines.
type TidalModel[T Float] struct {
	lon, lat *interp.Axis
	// rowMajor grids are indexed [lon][lat], others [lat][lon].
	rowMajor    bool
	waves       [domain.NumConstituents][]T
	identifiers domain.Set
	order       []domain.Constituent
}

// New creates an empty model on the given axes.
func New[T Float](lon, lat *interp.Axis, rowMajor bool) *TidalModel[T] {
	return &TidalModel[T]{lon: lon, lat: lat, rowMajor: rowMajor}
}

// Lon returns the longitude axis.
func (m *TidalModel[T]) Lon() *interp.Axis { return m.lon }

// Lat returns the latitude axis.
func (m *TidalModel[T]) Lat() *interp.Axis { return m.lat }

// RowMajor reports whether grids are stored longitude first.
func (m *TidalModel[T]) RowMajor() bool { return m.rowMajor }

// Precision returns "float32" or "float64".
func (m *TidalModel[T]) Precision() string {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return "float32"
	}
	return "float64"
}

// Shape returns the expected grid shape (rows, cols).
func (m *TidalModel[T]) Shape() (int, int) {
	if m.rowMajor {
		return m.lon.Size(), m.lat.Size()
	}
	return m.lat.Size(), m.lon.Size()
}

// AddConstituent appends the field of c. The grid must match Shape.
func (m *TidalModel[T]) AddConstituent(c domain.Constituent, wave *Grid[T]) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrUnknownConstituent, c)
	}
	if m.identifiers.Has(c) {
		return fmt.Errorf("%w: %s", ErrDuplicateConstituent, c)
	}
	rows, cols := m.Shape()
	if wave == nil || wave.Rows != rows || wave.Cols != cols || len(wave.Data) != 2*rows*cols {
		got := [2]int{}
		if wave != nil {
			got = [2]int{wave.Rows, wave.Cols}
		}
		return &ShapeMismatchError{Constituent: c, Want: [2]int{rows, cols}, Got: got}
	}
	m.waves[c] = wave.Data
	m.identifiers.Add(c)
	m.order = m.identifiers.Slice()
	return nil
}

// Identifiers returns the constituents of the model in catalog order.
func (m *TidalModel[T]) Identifiers() []domain.Constituent {
	return append([]domain.Constituent(nil), m.order...)
}

// Set returns the constituents of the model as a set.
func (m *TidalModel[T]) Set() domain.Set { return m.identifiers }

// Size returns the number of constituents.
func (m *TidalModel[T]) Size() int { return m.identifiers.Len() }

// Empty reports whether the model holds no constituent.
func (m *TidalModel[T]) Empty() bool { return m.identifiers == domain.Set{} }

// Accelerator returns a cache bound to this model.
func (m *TidalModel[T]) Accelerator(timeTolerance float64, groupModulations bool) *Accelerator {
	acc := NewAccelerator(timeTolerance, groupModulations)
	acc.owner = m
	return acc
}

func (m *TidalModel[T]) at(data []T, i, j int) complex128 {
	var k int
	if m.rowMajor {
		k = i*m.lat.Size() + j
	} else {
		k = j*m.lon.Size() + i
	}
	return complex(float64(data[2*k]), float64(data[2*k+1]))
}

// Interpolate evaluates every constituent of the model at (lon, lat) into
// acc. Results are reused while the position is unchanged.
func (m *TidalModel[T]) Interpolate(lon, lat float64, acc *Accelerator) (Quality, error) {
	if acc.owner != m {
		acc.owner = m
		acc.hasPosition = false
	}
	if acc.hasPosition && acc.lon == lon && acc.lat == lat {
		return acc.quality, nil
	}
	acc.hasPosition = false
	q, err := m.interpolate(lon, lat, &acc.values)
	if err != nil {
		return Undefined, err
	}
	acc.lon, acc.lat, acc.quality, acc.hasPosition = lon, lat, q, true
	return q, nil
}

// InterpolateTable evaluates the model at (lon, lat) and stores the values
// of its constituents in table.
func (m *TidalModel[T]) InterpolateTable(lon, lat float64, table *domain.Table) (Quality, error) {
	var values Values
	q, err := m.interpolate(lon, lat, &values)
	if err != nil {
		return Undefined, err
	}
	for _, c := range m.order {
		table[c].Tide = values[c]
		table[c].Modeled = true
	}
	return q, nil
}

func (m *TidalModel[T]) interpolate(lon, lat float64, out *Values) (Quality, error) {
	if m.Empty() {
		return Undefined, ErrEmptyModel
	}
	cx, err := m.lon.Locate(lon)
	if err != nil {
		return Undefined, fmt.Errorf("longitude: %w", err)
	}
	cy, err := m.lat.Locate(lat)
	if err != nil {
		return Undefined, fmt.Errorf("latitude: %w", err)
	}

	w := interp.NewWeights(cx, cy)
	n := 0
	undefined := false
	for _, c := range m.order {
		data := m.waves[c]
		var value complex128
		value, n = interp.Bilinear(w, interp.Corners{
			V00: m.at(data, cx.I0, cy.I0),
			V10: m.at(data, cx.I1, cy.I0),
			V01: m.at(data, cx.I0, cy.I1),
			V11: m.at(data, cx.I1, cy.I1),
		})
		if cmplx.IsNaN(value) {
			undefined = true
			break
		}
		out[c] = value
	}

	if undefined {
		nan := complex(math.NaN(), math.NaN())
		for _, c := range m.order {
			out[c] = nan
		}
		return Undefined, nil
	}
	return QualityFromCorners(n), nil
}

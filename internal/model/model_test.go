package model

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/tidegrid/internal/adapter/interp"
	"go.ngs.io/tidegrid/internal/domain"
)

// newTestModel builds a 4x3 grid (lon 0..3, lat 10..12) where the M2 value
// at (lon, lat) is lon + i*lat and K1 is twice that.
func newTestModel[T Float](t *testing.T, rowMajor bool) *TidalModel[T] {
	t.Helper()
	lon, err := interp.NewRegularAxis(0, 3, 1, 1e-9, false)
	require.NoError(t, err)
	lat, err := interp.NewRegularAxis(10, 12, 1, 1e-9, false)
	require.NoError(t, err)

	m := New[T](lon, lat, rowMajor)
	for _, item := range []struct {
		c     domain.Constituent
		scale float64
	}{{domain.M2, 1}, {domain.K1, 2}} {
		rows, cols := m.Shape()
		g := NewGrid[T](rows, cols)
		for i := 0; i < lon.Size(); i++ {
			for j := 0; j < lat.Size(); j++ {
				v := complex(item.scale*lon.Value(i), item.scale*lat.Value(j))
				if rowMajor {
					g.Set(i, j, v)
				} else {
					g.Set(j, i, v)
				}
			}
		}
		require.NoError(t, m.AddConstituent(item.c, g))
	}
	return m
}

func TestTidalModel_InterpolateOnNode(t *testing.T) {
	for _, rowMajor := range []bool{true, false} {
		m := newTestModel[float64](t, rowMajor)
		var table domain.Table
		table.Reset()

		q, err := m.InterpolateTable(2, 11, &table)
		require.NoError(t, err)
		assert.Equal(t, Interpolated, q)
		assert.Equal(t, complex(2, 11), table[domain.M2].Tide)
		assert.Equal(t, complex(4, 22), table[domain.K1].Tide)
		assert.True(t, table[domain.M2].Modeled)
		assert.False(t, table[domain.O1].Modeled)
	}
}

func TestTidalModel_InterpolateInside(t *testing.T) {
	m := newTestModel[float32](t, true)
	var table domain.Table

	q, err := m.InterpolateTable(1.25, 10.5, &table)
	require.NoError(t, err)
	assert.Equal(t, Interpolated, q)
	assert.InDelta(t, 1.25, real(table[domain.M2].Tide), 1e-6)
	assert.InDelta(t, 10.5, imag(table[domain.M2].Tide), 1e-5)
	assert.Equal(t, "float32", m.Precision())
}

func TestTidalModel_QualityDegradesWithMissingCorners(t *testing.T) {
	tests := []struct {
		missing int
		want    Quality
	}{
		{0, Interpolated},
		{1, Extrapolated1},
		{2, Extrapolated2},
		{3, Extrapolated3},
		{4, Undefined},
	}
	corners := [][2]int{{1, 0}, {2, 0}, {1, 1}, {2, 1}}

	for _, tt := range tests {
		m := newTestModel[float64](t, true)
		nan := complex(math.NaN(), math.NaN())
		for _, c := range m.Identifiers() {
			for k := 0; k < tt.missing; k++ {
				i, j := corners[k][0], corners[k][1]
				kk := 2 * (i*m.lat.Size() + j)
				m.waves[c][kk] = real(nan)
				m.waves[c][kk+1] = imag(nan)
			}
		}

		var table domain.Table
		q, err := m.InterpolateTable(1.5, 10.5, &table)
		require.NoError(t, err)
		assert.Equal(t, tt.want, q, "missing %d", tt.missing)
		if tt.want == Undefined {
			assert.True(t, cmplx.IsNaN(table[domain.M2].Tide))
			assert.True(t, cmplx.IsNaN(table[domain.K1].Tide))
		} else {
			assert.False(t, cmplx.IsNaN(table[domain.M2].Tide))
		}
	}
}

func TestTidalModel_AddConstituentErrors(t *testing.T) {
	m := newTestModel[float64](t, true)

	err := m.AddConstituent(domain.M2, NewGrid[float64](4, 3))
	assert.True(t, errors.Is(err, ErrDuplicateConstituent))

	err = m.AddConstituent(domain.S2, NewGrid[float64](3, 4))
	var shapeErr *ShapeMismatchError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, [2]int{4, 3}, shapeErr.Want)
	assert.Equal(t, [2]int{3, 4}, shapeErr.Got)

	assert.Equal(t, []domain.Constituent{domain.K1, domain.M2}, m.Identifiers())
	assert.Equal(t, 2, m.Size())
}

func TestTidalModel_OutOfDomain(t *testing.T) {
	m := newTestModel[float64](t, true)
	var table domain.Table

	_, err := m.InterpolateTable(1, 20, &table)
	var domainErr *OutOfDomainError
	assert.True(t, errors.As(err, &domainErr))
}

func TestTidalModel_Empty(t *testing.T) {
	lon, _ := interp.NewRegularAxis(0, 3, 1, 1e-9, false)
	lat, _ := interp.NewRegularAxis(0, 3, 1, 1e-9, false)
	m := New[float64](lon, lat, true)
	assert.True(t, m.Empty())

	var table domain.Table
	_, err := m.InterpolateTable(1, 1, &table)
	assert.True(t, errors.Is(err, ErrEmptyModel))
}

func TestTidalModel_AcceleratorPositionCache(t *testing.T) {
	m := newTestModel[float64](t, true)
	acc := m.Accelerator(0, false)

	q, err := m.Interpolate(0.5, 10.5, acc)
	require.NoError(t, err)
	assert.Equal(t, Interpolated, q)
	first := *acc.Values()

	// Corrupt the grid: a cached position must not read it again.
	m.waves[domain.M2][0] = 1000
	_, err = m.Interpolate(0.5, 10.5, acc)
	require.NoError(t, err)
	assert.Equal(t, first, *acc.Values())

	// A new position within the same cell is recomputed.
	_, err = m.Interpolate(0.25, 10.5, acc)
	require.NoError(t, err)
	assert.NotEqual(t, first[domain.M2], acc.Values()[domain.M2])
}

func TestQualityFromCorners(t *testing.T) {
	assert.Equal(t, Interpolated, QualityFromCorners(4))
	assert.Equal(t, Extrapolated3, QualityFromCorners(1))
	assert.Equal(t, Undefined, QualityFromCorners(0))
	for n := 0; n <= 4; n++ {
		assert.Equal(t, n, QualityFromCorners(n).Code(), "corners %d", n)
	}
	assert.Equal(t, 1, Extrapolated3.Code())
	assert.Equal(t, 4, Interpolated.Code())
	assert.Equal(t, "extrapolated_2", Extrapolated2.String())
}

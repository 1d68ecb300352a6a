package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/tidegrid/internal/adapter/interp"
	"go.ngs.io/tidegrid/internal/domain"
	"go.ngs.io/tidegrid/internal/inference"
	"go.ngs.io/tidegrid/internal/model"
)

// newModel builds a 5x3 grid (lon 0..4, lat -1..1) holding the given
// constituents with a constant value. Cells with lon == 4 hold NaN.
func newModel(t *testing.T, values map[domain.Constituent]complex128) *model.TidalModel[float64] {
	t.Helper()
	lon, err := interp.NewRegularAxis(0, 4, 1, 1e-9, false)
	require.NoError(t, err)
	lat, err := interp.NewRegularAxis(-1, 1, 1, 1e-9, false)
	require.NoError(t, err)

	m := model.New[float64](lon, lat, true)
	for c, v := range values {
		g := model.NewGrid[float64](lon.Size(), lat.Size())
		for i := 0; i < lon.Size(); i++ {
			for j := 0; j < lat.Size(); j++ {
				if i == 4 {
					g.Set(i, j, complex(math.NaN(), math.NaN()))
					continue
				}
				g.Set(i, j, v)
			}
		}
		require.NoError(t, m.AddConstituent(c, g))
	}
	return m
}

func epoch(t *testing.T, s string) int64 {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return domain.TimeToEpoch(ts)
}

func TestNew_Validation(t *testing.T) {
	m := newModel(t, map[domain.Constituent]complex128{domain.M2: 1})

	_, err := New(m, Settings{ThreadCount: -1})
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = New(m, Settings{TimeTolerance: -1})
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = New(m, Settings{TimeTolerance: 1e13})
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = New(m, Settings{TimeTolerance: model.MaxTimeTolerance})
	assert.NoError(t, err)

	_, err = New(m, Settings{Interpolation: inference.LinearAdmittance})
	var missing *inference.InsufficientControlConstituentsError
	assert.ErrorAs(t, err, &missing)

	empty := model.New[float64](m.Lon(), m.Lat(), true)
	_, err = New(empty, Settings{})
	assert.ErrorIs(t, err, model.ErrEmptyModel)
}

func TestEvaluate_LengthMismatch(t *testing.T) {
	m := newModel(t, map[domain.Constituent]complex128{domain.M2: 1})
	_, err := Evaluate(context.Background(), m, []float64{1, 2}, []float64{0}, []int64{0, 0}, Settings{})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestEvaluate_Empty(t *testing.T) {
	m := newModel(t, map[domain.Constituent]complex128{domain.M2: 1})
	r, err := Evaluate(context.Background(), m, nil, nil, nil, Settings{})
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestEvaluate_MatchesTable(t *testing.T) {
	m := newModel(t, map[domain.Constituent]complex128{
		domain.M2: complex(0.8, -0.3),
		domain.Mf: complex(0.02, 0.01),
	})
	e, err := New(m, Settings{})
	require.NoError(t, err)

	at := epoch(t, "2024-03-01T06:30:00Z")
	r, err := e.Evaluate(context.Background(), []float64{1.5}, []float64{0.25}, []int64{at})
	require.NoError(t, err)

	table, q, err := e.EvaluateTable(1.5, 0.25, at)
	require.NoError(t, err)
	assert.Equal(t, model.Interpolated, q)
	assert.Equal(t, model.Interpolated, r.Quality[0])
	assert.InDelta(t, table[domain.M2].Height(), r.Ocean[0], 1e-12)
	assert.InDelta(t, table[domain.Mf].Height(), r.LongPeriod[0], 1e-12)
	assert.Equal(t, []int{4}, r.QualityCodes())
}

func TestEvaluate_HarmonicSignal(t *testing.T) {
	m := newModel(t, map[domain.Constituent]complex128{domain.M2: 1})
	e, err := New(m, Settings{})
	require.NoError(t, err)

	at := epoch(t, "2020-01-01T00:00:00Z")
	r, err := e.Evaluate(context.Background(), []float64{2}, []float64{0}, []int64{at})
	require.NoError(t, err)

	table, _, err := e.EvaluateTable(2, 0, at)
	require.NoError(t, err)
	w := table[domain.M2]
	want := w.Nodal.F * math.Cos(domain.Deg2Rad(w.Argument+w.Nodal.U))
	assert.InDelta(t, want, r.Ocean[0], 1e-12)
	assert.Equal(t, 0.0, r.LongPeriod[0])
}

func TestEvaluate_UndefinedCells(t *testing.T) {
	m := newModel(t, map[domain.Constituent]complex128{domain.M2: 1})
	at := epoch(t, "2020-01-01T00:00:00Z")

	r, err := Evaluate(context.Background(), m,
		[]float64{3.5, 4, 1},
		[]float64{0, 0, 0},
		[]int64{at, at, at}, Settings{})
	require.NoError(t, err)

	assert.Equal(t, model.Extrapolated2, r.Quality[0])
	assert.False(t, math.IsNaN(r.Ocean[0]))
	assert.Equal(t, model.Undefined, r.Quality[1])
	assert.True(t, math.IsNaN(r.Ocean[1]))
	assert.True(t, math.IsNaN(r.LongPeriod[1]))
	assert.Equal(t, model.Interpolated, r.Quality[2])
}

func TestEvaluate_OutOfDomain(t *testing.T) {
	m := newModel(t, map[domain.Constituent]complex128{domain.M2: 1})
	_, err := Evaluate(context.Background(), m, []float64{1, 10}, []float64{0, 0}, []int64{0, 0}, Settings{})
	var ood *model.OutOfDomainError
	assert.ErrorAs(t, err, &ood)
}

func TestEvaluate_DeltaTOutOfRange(t *testing.T) {
	m := newModel(t, map[domain.Constituent]complex128{domain.M2: 1})
	old := epoch(t, "1600-06-01T00:00:00Z")
	now := epoch(t, "2020-06-01T00:00:00Z")

	r, err := Evaluate(context.Background(), m, []float64{1, 1}, []float64{0, 0}, []int64{old, now}, Settings{ThreadCount: 1})
	require.NoError(t, err)
	assert.Equal(t, model.Undefined, r.Quality[0])
	assert.True(t, math.IsNaN(r.Ocean[0]))
	assert.Equal(t, model.Interpolated, r.Quality[1])
	assert.False(t, math.IsNaN(r.Ocean[1]))
}

func TestEvaluate_ThreadCountIndependent(t *testing.T) {
	m := newModel(t, map[domain.Constituent]complex128{
		domain.M2: complex(0.5, 0.2),
		domain.K1: complex(0.1, -0.3),
		domain.Mm: complex(0.01, 0),
	})
	start := epoch(t, "2023-07-01T00:00:00Z")
	n := 1000
	lon := make([]float64, n)
	lat := make([]float64, n)
	epochs := make([]int64, n)
	for i := range n {
		lon[i] = float64(i%40) / 10
		lat[i] = float64(i%20)/10 - 1
		epochs[i] = start + int64(i)*int64(10*time.Minute/time.Microsecond)
	}

	single, err := Evaluate(context.Background(), m, lon, lat, epochs, Settings{ThreadCount: 1})
	require.NoError(t, err)
	multi, err := Evaluate(context.Background(), m, lon, lat, epochs, Settings{ThreadCount: 7})
	require.NoError(t, err)
	assert.Equal(t, single, multi)
}

func TestEvaluate_TimeTolerance(t *testing.T) {
	m := newModel(t, map[domain.Constituent]complex128{domain.M2: 1})
	at := epoch(t, "2023-07-01T00:00:00Z")
	second := int64(time.Second / time.Microsecond)

	exact, err := Evaluate(context.Background(), m, []float64{1, 1}, []float64{0, 0}, []int64{at, at + 30*second}, Settings{ThreadCount: 1})
	require.NoError(t, err)
	tolerant, err := Evaluate(context.Background(), m, []float64{1, 1}, []float64{0, 0}, []int64{at, at + 30*second}, Settings{ThreadCount: 1, TimeTolerance: 60})
	require.NoError(t, err)

	assert.Equal(t, exact.Ocean[0], tolerant.Ocean[0])
	assert.Equal(t, tolerant.Ocean[0], tolerant.Ocean[1])
	assert.NotEqual(t, exact.Ocean[0], exact.Ocean[1])
}

func TestEvaluate_Cancelled(t *testing.T) {
	m := newModel(t, map[domain.Constituent]complex128{domain.M2: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Evaluate(ctx, m, []float64{1}, []float64{0}, []int64{0}, Settings{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluate_LongPeriodWithoutLongPeriodWaves(t *testing.T) {
	lon, err := interp.NewRegularAxis(0, 1, 1, 1e-9, false)
	require.NoError(t, err)
	lat, err := interp.NewRegularAxis(59, 60, 1, 1e-9, false)
	require.NoError(t, err)
	m := model.New[float64](lon, lat, true)
	for c, v := range map[domain.Constituent]complex128{
		domain.Q1: complex(0.02, 0.01),
		domain.O1: complex(0.10, -0.05),
		domain.K1: complex(0.12, 0.04),
		domain.N2: complex(0.20, 0.10),
		domain.M2: complex(1.00, -0.40),
		domain.S2: complex(0.35, 0.15),
	} {
		g := model.NewGrid[float64](lon.Size(), lat.Size())
		for i := 0; i < lon.Size(); i++ {
			for j := 0; j < lat.Size(); j++ {
				g.Set(i, j, v)
			}
		}
		require.NoError(t, m.AddConstituent(c, g))
	}

	at := epoch(t, "1983-01-01T00:00:00Z")
	r, err := Evaluate(context.Background(), m, []float64{0.5}, []float64{59.194999694824219}, []int64{at},
		Settings{Interpolation: inference.LinearAdmittance, ThreadCount: 1})
	require.NoError(t, err)
	assert.InDelta(t, -0.00049025, r.LongPeriod[0], 1e-6)
}

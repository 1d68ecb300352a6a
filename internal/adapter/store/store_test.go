package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/tidegrid/internal/adapter/interp"
	"go.ngs.io/tidegrid/internal/domain"
	"go.ngs.io/tidegrid/internal/engine"
	"go.ngs.io/tidegrid/internal/model"
)

func TestNewModel_Engine(t *testing.T) {
	lon, err := interp.NewRegularAxis(0, 1, 1, 1e-9, false)
	require.NoError(t, err)
	lat, err := interp.NewRegularAxis(0, 1, 1, 1e-9, false)
	require.NoError(t, err)
	tm := model.New[float32](lon, lat, false)
	g := model.NewGrid[float32](2, 2)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			g.Set(i, j, 1)
		}
	}
	require.NoError(t, tm.AddConstituent(domain.M2, g))

	m := NewModel("test", "memory", tm)
	assert.Equal(t, "float32", m.Grid.Precision())
	assert.Equal(t, []domain.Constituent{domain.M2}, m.Grid.Identifiers())

	e, err := m.Engine(engine.Settings{})
	require.NoError(t, err)
	r, err := e.Evaluate(context.Background(), []float64{0.5}, []float64{0.5}, []int64{0})
	require.NoError(t, err)
	assert.Equal(t, model.Interpolated, r.Quality[0])

	_, err = m.Engine(engine.Settings{ThreadCount: -1})
	assert.ErrorIs(t, err, engine.ErrInvalidSettings)
}

package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/tidegrid/internal/domain"
	"go.ngs.io/tidegrid/internal/engine"
	"go.ngs.io/tidegrid/internal/inference"
)

func TestEvaluate_Batch(t *testing.T) {
	uc := newUseCase(t)
	resp, err := uc.Evaluate(context.Background(), EvaluateRequest{
		Lon:   []float64{1, 9.5, 2},
		Lat:   []float64{1, 1, 2},
		Times: []string{"2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z", "1704070800000000"},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{4, 0, 4}, resp.Quality)
	require.NotNil(t, resp.OceanM[0])
	assert.Nil(t, resp.OceanM[1])
	assert.Nil(t, resp.LongPeriodM[1])
	require.NotNil(t, resp.OceanM[2])
	assert.LessOrEqual(t, *resp.OceanM[0], 1.1)
}

func TestEvaluate_BadRequest(t *testing.T) {
	uc := newUseCase(t)
	tests := []struct {
		name string
		req  EvaluateRequest
	}{
		{"length mismatch", EvaluateRequest{Lon: []float64{1}, Lat: []float64{1, 2}, Times: []string{"0"}}},
		{"bad time", EvaluateRequest{Lon: []float64{1}, Lat: []float64{1}, Times: []string{"noon"}}},
		{"out of domain", EvaluateRequest{Lon: []float64{50}, Lat: []float64{1}, Times: []string{"0"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Evaluate(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestConstituents_ModeledAndInferred(t *testing.T) {
	values := map[domain.Constituent]complex128{}
	for _, c := range inference.ShortPeriodControls {
		values[c] = complex(0.1, 0.05)
	}
	m := newTestModel(t, values)
	uc, err := NewPredictionUseCase(m, engine.Settings{Interpolation: inference.LinearAdmittance})
	require.NoError(t, err)

	byName := map[string]ConstituentInfo{}
	for _, info := range uc.Constituents() {
		byName[info.Name] = info
	}
	assert.Len(t, byName, domain.NumConstituents)
	assert.True(t, byName["M2"].Modeled)
	assert.False(t, byName["M2"].Inferred)
	assert.True(t, byName["2N2"].Inferred)
	assert.True(t, byName["Mm"].Inferred)
	assert.Equal(t, "long-period", byName["Mm"].Species)
	assert.InDelta(t, 28.984, byName["M2"].SpeedDegPerHr, 1e-3)

	info := uc.ModelInfo()
	assert.Equal(t, "float64", info.Precision)
	assert.Equal(t, "linear", info.Interpolation)
	assert.Equal(t, 11, info.Longitude.Size)
	assert.Equal(t, 1.0, info.Longitude.Step)
	assert.Len(t, info.Constituents, 6)
}

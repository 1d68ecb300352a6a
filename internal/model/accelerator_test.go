package model

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/tidegrid/internal/domain"
)

var epoch1983 = domain.TimeToEpoch(time.Date(1983, 1, 1, 0, 0, 0, 0, time.UTC))

func TestAccelerator_IdempotentAtZeroTolerance(t *testing.T) {
	acc := NewAccelerator(0, false)

	refreshed, err := acc.Update(epoch1983)
	require.NoError(t, err)
	assert.True(t, refreshed)
	vector, args, nodal := acc.Vector(), acc.arguments, acc.nodal

	refreshed, err = acc.Update(epoch1983)
	require.NoError(t, err)
	assert.False(t, refreshed)
	assert.Equal(t, vector, acc.Vector())
	assert.Equal(t, args, acc.arguments)
	assert.Equal(t, nodal, acc.nodal)
	assert.Equal(t, uint64(1), acc.Refreshes())

	// Any other epoch recomputes.
	refreshed, err = acc.Update(epoch1983 + 1)
	require.NoError(t, err)
	assert.True(t, refreshed)
}

func TestAccelerator_HugeToleranceClamped(t *testing.T) {
	for _, tolerance := range []float64{1e13, 1e300, math.Inf(1)} {
		acc := NewAccelerator(tolerance, false)
		assert.Equal(t, MaxTimeTolerance, acc.TimeTolerance(), "tolerance %v", tolerance)
		assert.Positive(t, acc.timeTolerance)

		_, err := acc.Update(epoch1983)
		require.NoError(t, err)
		refreshed, err := acc.Update(epoch1983 + (100 * 365 * 24 * time.Hour).Microseconds())
		require.NoError(t, err)
		assert.False(t, refreshed)
	}
	assert.Equal(t, 0.0, NewAccelerator(math.NaN(), false).TimeTolerance())
}

func TestAccelerator_WithinTolerance(t *testing.T) {
	acc := NewAccelerator(3600, false)
	assert.Equal(t, 3600.0, acc.TimeTolerance())

	_, err := acc.Update(epoch1983)
	require.NoError(t, err)
	args := acc.arguments

	for _, offset := range []time.Duration{time.Second, 30 * time.Minute, -time.Hour, time.Hour} {
		refreshed, err := acc.Update(epoch1983 + offset.Microseconds())
		require.NoError(t, err)
		assert.False(t, refreshed, "offset %v", offset)
		assert.Equal(t, args, acc.arguments)
	}
	e, ok := acc.Epoch()
	assert.True(t, ok)
	assert.Equal(t, epoch1983, e)

	refreshed, err := acc.Update(epoch1983 + (time.Hour + time.Microsecond).Microseconds())
	require.NoError(t, err)
	assert.True(t, refreshed)
}

func TestAccelerator_Arguments(t *testing.T) {
	acc := NewAccelerator(0, false)
	_, err := acc.Update(epoch1983)
	require.NoError(t, err)

	deltaT, err := domain.DeltaT(domain.EpochToMJD(epoch1983) + domain.ModifiedJulianEpoch)
	require.NoError(t, err)
	v := domain.NewCelestialVector(domain.EpochToMJD(epoch1983), deltaT)
	assert.Equal(t, v, acc.Vector())
	assert.Equal(t, domain.DoodsonArgument(v, domain.M2.Doodson()), acc.Argument(domain.M2))

	want := domain.StandardNodalCorrections(-v.NPrime(), v.P(), []domain.Constituent{domain.K1})[0]
	assert.Equal(t, want, acc.Nodal(domain.K1))
}

func TestAccelerator_GroupModulations(t *testing.T) {
	acc := NewAccelerator(0, true)
	_, err := acc.Update(epoch1983)
	require.NoError(t, err)

	v := acc.Vector()
	want := domain.GroupNodalCorrections(v.Ps(), -v.NPrime(), v.P(), v.H(), []domain.Constituent{domain.Mm})[0]
	assert.Equal(t, want, acc.Nodal(domain.Mm))
}

func TestAccelerator_DeltaTOutOfRange(t *testing.T) {
	acc := NewAccelerator(0, false)
	_, err := acc.Update(domain.TimeToEpoch(time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, errors.Is(err, domain.ErrDeltaTOutOfRange))
	_, ok := acc.Epoch()
	assert.False(t, ok)
}

package engine

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"go.ngs.io/tidegrid/internal/inference"
	"go.ngs.io/tidegrid/internal/model"
)

var (
	// ErrInvalidSettings is returned for settings that cannot be used.
	ErrInvalidSettings = errors.New("invalid evaluation settings")
	// ErrLengthMismatch is returned when the input arrays differ in length.
	ErrLengthMismatch = errors.New("longitude, latitude and epoch arrays must have the same length")
)

// Settings controls an evaluation.
type Settings struct {
	// TimeTolerance is the interval, in seconds, over which astronomical
	// arguments are reused.
	TimeTolerance float64
	// Interpolation selects the admittance inference of missing constituents.
	Interpolation inference.InterpolationType
	// ThreadCount is the number of workers; 0 uses every CPU.
	ThreadCount int
	// GroupModulations applies the nodal corrections of constituent groups.
	GroupModulations bool
}

// DefaultSettings evaluates with linear admittance on every CPU.
func DefaultSettings() Settings {
	return Settings{Interpolation: inference.LinearAdmittance}
}

// Validate checks the settings.
func (s Settings) Validate() error {
	if s.TimeTolerance < 0 || math.IsNaN(s.TimeTolerance) || s.TimeTolerance > model.MaxTimeTolerance {
		return fmt.Errorf("%w: time tolerance %v", ErrInvalidSettings, s.TimeTolerance)
	}
	if s.ThreadCount < 0 {
		return fmt.Errorf("%w: thread count %d", ErrInvalidSettings, s.ThreadCount)
	}
	switch s.Interpolation {
	case inference.None, inference.LinearAdmittance, inference.FourierAdmittance:
	default:
		return fmt.Errorf("%w: %w: %v", ErrInvalidSettings, inference.ErrUnknownInterpolation, s.Interpolation)
	}
	return nil
}

// workers returns the number of goroutines used for n points.
func (s Settings) workers(n int) int {
	k := s.ThreadCount
	if k == 0 {
		k = runtime.NumCPU()
	}
	if k > n {
		k = n
	}
	if k < 1 {
		k = 1
	}
	return k
}

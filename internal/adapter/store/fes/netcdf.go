// Package fes loads FES-style tidal atlases, one NetCDF file of amplitude
// and phase per constituent, into tidal models.
package fes

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/fhs/go-netcdf/netcdf"
)

var (
	// ErrMissingVariable is returned when a required variable is absent.
	ErrMissingVariable = errors.New("variable not found")
	// ErrInconsistentDataset is returned when a file does not match the
	// grid, layout or units of the first constituent.
	ErrInconsistentDataset = errors.New("inconsistent constituent dataset")
	// ErrUnknownUnits is returned for unsupported amplitude or phase units.
	ErrUnknownUnits = errors.New("unknown units")
)

// metricUnits converts lengths to meters.
var metricUnits = map[string]float64{"m": 1, "km": 1000, "cm": 0.01, "mm": 0.001}

// toMeters returns the scale factor of a length unit.
func toMeters(units string) (float64, error) {
	if f, ok := metricUnits[strings.TrimSpace(units)]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: amplitude %q", ErrUnknownUnits, units)
}

// toRadians returns the scale factor of an angular unit.
func toRadians(units string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(units)) {
	case "deg", "degree", "degrees":
		return math.Pi / 180, nil
	case "rad", "radian", "radians":
		return 1, nil
	}
	return 0, fmt.Errorf("%w: phase %q", ErrUnknownUnits, units)
}

// coordinate is a 1-D coordinate variable.
type coordinate struct {
	values []float64
	single bool // stored as float32
}

// header is the metadata every constituent file must share.
type header struct {
	lon, lat   coordinate
	shape      [2]int
	rowMajor   bool
	ampUnits   string
	phaseUnits string
	bits       int // widest precision of amplitude and phase
	ampFill    fill
	phaseFill  fill
}

type fill struct {
	value float64
	ok    bool
}

// dataset is an open constituent file.
type dataset struct {
	path           string
	nc             netcdf.Dataset
	amplitude, pha netcdf.Var
	header
}

func openDataset(path string, vars Variables) (*dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("constituent file: %w", err)
	}
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	ds := &dataset{path: path, nc: nc}
	if err := ds.readHeader(vars); err != nil {
		_ = nc.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

func (ds *dataset) Close() error { return ds.nc.Close() }

func (ds *dataset) variable(name string) (netcdf.Var, error) {
	v, err := ds.nc.Var(name)
	if err != nil {
		return netcdf.Var{}, fmt.Errorf("%w: %s", ErrMissingVariable, name)
	}
	return v, nil
}

func (ds *dataset) readHeader(vars Variables) error {
	lonVar, err := ds.variable(vars.Longitude)
	if err != nil {
		return err
	}
	latVar, err := ds.variable(vars.Latitude)
	if err != nil {
		return err
	}
	amp, err := ds.variable(vars.Amplitude)
	if err != nil {
		return err
	}
	pha, err := ds.variable(vars.Phase)
	if err != nil {
		return err
	}

	if ds.lon, err = readCoordinate(lonVar); err != nil {
		return fmt.Errorf("longitude: %w", err)
	}
	if ds.lat, err = readCoordinate(latVar); err != nil {
		return fmt.Errorf("latitude: %w", err)
	}

	ampShape, err := shapeOf(amp)
	if err != nil {
		return fmt.Errorf("amplitude: %w", err)
	}
	phaShape, err := shapeOf(pha)
	if err != nil {
		return fmt.Errorf("phase: %w", err)
	}
	if ampShape != phaShape {
		return fmt.Errorf("amplitude and phase must have the same shape, found %v and %v", ampShape, phaShape)
	}
	nLon, nLat := len(ds.lon.values), len(ds.lat.values)
	switch ampShape {
	case [2]int{nLon, nLat}:
		ds.rowMajor = true
	case [2]int{nLat, nLon}:
		ds.rowMajor = false
	default:
		return fmt.Errorf("grid shape %v does not match coordinates (%d longitudes, %d latitudes)", ampShape, nLon, nLat)
	}
	ds.shape = ampShape

	if ds.ampUnits, err = textAttr(amp, "units"); err != nil {
		return fmt.Errorf("amplitude: %w", err)
	}
	if ds.phaseUnits, err = textAttr(pha, "units"); err != nil {
		return fmt.Errorf("phase: %w", err)
	}
	if _, err := toMeters(ds.ampUnits); err != nil {
		return err
	}
	if _, err := toRadians(ds.phaseUnits); err != nil {
		return err
	}
	ds.bits = max(precisionBits(amp), precisionBits(pha))
	ds.ampFill = fillValue(amp)
	ds.phaseFill = fillValue(pha)
	ds.amplitude, ds.pha = amp, pha
	return nil
}

// checkConsistent verifies ds against the first dataset of a model.
func (ds *dataset) checkConsistent(ref *header) error {
	switch {
	case !sameValues(ds.lon.values, ref.lon.values):
		return fmt.Errorf("%w: %s: longitude values differ", ErrInconsistentDataset, ds.path)
	case !sameValues(ds.lat.values, ref.lat.values):
		return fmt.Errorf("%w: %s: latitude values differ", ErrInconsistentDataset, ds.path)
	case ds.shape != ref.shape:
		return fmt.Errorf("%w: %s: shape %v, expected %v", ErrInconsistentDataset, ds.path, ds.shape, ref.shape)
	case ds.rowMajor != ref.rowMajor:
		return fmt.Errorf("%w: %s: row-major %t, expected %t", ErrInconsistentDataset, ds.path, ds.rowMajor, ref.rowMajor)
	case ds.ampUnits != ref.ampUnits:
		return fmt.Errorf("%w: %s: amplitude units %q, expected %q", ErrInconsistentDataset, ds.path, ds.ampUnits, ref.ampUnits)
	case ds.phaseUnits != ref.phaseUnits:
		return fmt.Errorf("%w: %s: phase units %q, expected %q", ErrInconsistentDataset, ds.path, ds.phaseUnits, ref.phaseUnits)
	}
	return nil
}

// wave reads amplitude and phase and returns the interleaved complex field
// amplitude*exp(i*phase) in meters. Fill values become NaN.
func (ds *dataset) wave() ([]float64, error) {
	ampScale, err := toMeters(ds.ampUnits)
	if err != nil {
		return nil, err
	}
	phaScale, err := toRadians(ds.phaseUnits)
	if err != nil {
		return nil, err
	}
	n := ds.shape[0] * ds.shape[1]
	amp, err := readValues(ds.amplitude, n, ds.ampFill)
	if err != nil {
		return nil, fmt.Errorf("read amplitude: %w", err)
	}
	pha, err := readValues(ds.pha, n, ds.phaseFill)
	if err != nil {
		return nil, fmt.Errorf("read phase: %w", err)
	}
	out := make([]float64, 2*n)
	for k := range n {
		a := amp[k] * ampScale
		s, c := math.Sincos(pha[k] * phaScale)
		out[2*k] = a * c
		out[2*k+1] = a * s
	}
	return out, nil
}

// shapeOf returns the dimensions of a 2-D variable.
func shapeOf(v netcdf.Var) ([2]int, error) {
	dims, err := v.Dims()
	if err != nil {
		return [2]int{}, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 2 {
		return [2]int{}, fmt.Errorf("expected 2D data, got %dD", len(dims))
	}
	var shape [2]int
	for i, d := range dims {
		n, err := d.Len()
		if err != nil {
			return [2]int{}, fmt.Errorf("failed to get dim%d length: %w", i, err)
		}
		shape[i] = int(n)
	}
	return shape, nil
}

// precisionBits returns 32 or 64 for floating-point variables and 0 for the
// others.
func precisionBits(v netcdf.Var) int {
	t, err := v.Type()
	if err != nil {
		return 0
	}
	switch t {
	case netcdf.DOUBLE:
		return 64
	case netcdf.FLOAT:
		return 32
	default:
		return 0
	}
}

// textAttr reads a character attribute.
func textAttr(v netcdf.Var, name string) (string, error) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return "", fmt.Errorf("missing %q attribute", name)
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", fmt.Errorf("read %q attribute: %w", name, err)
	}
	return strings.TrimRight(string(buf), "\x00"), nil
}

// fillValue returns the _FillValue or missing_value attribute if present.
func fillValue(v netcdf.Var) fill {
	for _, name := range []string{"_FillValue", "missing_value"} {
		a := v.Attr(name)
		if n, err := a.Len(); err != nil || n == 0 {
			continue
		}
		buf64 := make([]float64, 1)
		if err := a.ReadFloat64s(buf64); err == nil {
			return fill{value: buf64[0], ok: true}
		}
		buf32 := make([]float32, 1)
		if err := a.ReadFloat32s(buf32); err == nil {
			return fill{value: float64(buf32[0]), ok: true}
		}
		bufi := make([]int32, 1)
		if err := a.ReadInt32s(bufi); err == nil {
			return fill{value: float64(bufi[0]), ok: true}
		}
		bufs := make([]int16, 1)
		if err := a.ReadInt16s(bufs); err == nil {
			return fill{value: float64(bufs[0]), ok: true}
		}
	}
	return fill{}
}

// readCoordinate reads a 1-D coordinate variable. Fill values become NaN.
func readCoordinate(v netcdf.Var) (coordinate, error) {
	dims, err := v.Dims()
	if err != nil {
		return coordinate{}, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 1 {
		return coordinate{}, fmt.Errorf("expected 1D variable, got %dD", len(dims))
	}
	n, err := dims[0].Len()
	if err != nil {
		return coordinate{}, err
	}
	values, err := readValues(v, int(n), fillValue(v))
	if err != nil {
		return coordinate{}, err
	}
	return coordinate{values: values, single: precisionBits(v) == 32}, nil
}

// readValues reads n values of a numeric variable as float64, mapping the
// fill value to NaN.
func readValues(v netcdf.Var, n int, fv fill) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}
	out := make([]float64, n)
	switch t {
	case netcdf.DOUBLE:
		if err := v.ReadFloat64s(out); err != nil {
			return nil, err
		}
	case netcdf.FLOAT:
		tmp := make([]float32, n)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.INT:
		tmp := make([]int32, n)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.SHORT:
		tmp := make([]int16, n)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
	if fv.ok {
		for i, val := range out {
			if val == fv.value {
				out[i] = math.NaN()
			}
		}
	}
	return out, nil
}

// sameValues compares coordinates, treating NaN as equal to NaN.
func sameValues(a, b []float64) bool {
	return slices.EqualFunc(a, b, func(x, y float64) bool {
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	})
}

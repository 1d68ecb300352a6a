package fes

import (
	"fmt"
	"math"

	"github.com/fhs/go-netcdf/netcdf"
)

// Constituent is the content of one constituent file. Amplitude and Phase
// are flattened in C order: [lon][lat] when RowMajor, [lat][lon] otherwise.
type Constituent struct {
	Lon, Lat         []float64
	Amplitude, Phase []float64
	RowMajor         bool
	AmplitudeUnits   string
	PhaseUnits       string
	// Single stores every variable as float32.
	Single bool
	// FillValue replaces NaN amplitudes and phases when set.
	FillValue *float64
}

// WriteConstituent creates the NetCDF file at path, replacing any existing
// one.
func WriteConstituent(path string, vars Variables, c *Constituent) error {
	n := len(c.Lon) * len(c.Lat)
	if len(c.Amplitude) != n || len(c.Phase) != n {
		return fmt.Errorf("grid has %d amplitudes and %d phases, expected %d", len(c.Amplitude), len(c.Phase), n)
	}

	nc, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	typ := netcdf.DOUBLE
	if c.Single {
		typ = netcdf.FLOAT
	}
	lonDim, err := nc.AddDim(vars.Longitude, uint64(len(c.Lon)))
	if err != nil {
		return err
	}
	latDim, err := nc.AddDim(vars.Latitude, uint64(len(c.Lat)))
	if err != nil {
		return err
	}
	grid := []netcdf.Dim{latDim, lonDim}
	if c.RowMajor {
		grid = []netcdf.Dim{lonDim, latDim}
	}

	vlon, err := nc.AddVar(vars.Longitude, typ, []netcdf.Dim{lonDim})
	if err != nil {
		return err
	}
	vlat, err := nc.AddVar(vars.Latitude, typ, []netcdf.Dim{latDim})
	if err != nil {
		return err
	}
	vamp, err := nc.AddVar(vars.Amplitude, typ, grid)
	if err != nil {
		return err
	}
	vpha, err := nc.AddVar(vars.Phase, typ, grid)
	if err != nil {
		return err
	}
	attrs := []struct {
		v     netcdf.Var
		units string
	}{
		{vlon, "degrees_east"},
		{vlat, "degrees_north"},
		{vamp, c.AmplitudeUnits},
		{vpha, c.PhaseUnits},
	}
	for _, a := range attrs {
		if err := a.v.Attr("units").WriteBytes([]byte(a.units)); err != nil {
			return fmt.Errorf("write units: %w", err)
		}
	}
	if c.FillValue != nil {
		for _, v := range []netcdf.Var{vamp, vpha} {
			if err := writeFill(v, *c.FillValue, c.Single); err != nil {
				return fmt.Errorf("write fill value: %w", err)
			}
		}
	}
	if err := nc.EndDef(); err != nil {
		return fmt.Errorf("end define mode: %w", err)
	}

	fill := func(values []float64) []float64 {
		if c.FillValue == nil {
			return values
		}
		out := make([]float64, len(values))
		for i, v := range values {
			if math.IsNaN(v) {
				v = *c.FillValue
			}
			out[i] = v
		}
		return out
	}
	for _, w := range []struct {
		v    netcdf.Var
		data []float64
		name string
	}{
		{vlon, c.Lon, "longitude"},
		{vlat, c.Lat, "latitude"},
		{vamp, fill(c.Amplitude), "amplitude"},
		{vpha, fill(c.Phase), "phase"},
	} {
		if err := writeValues(w.v, w.data, c.Single); err != nil {
			return fmt.Errorf("write %s: %w", w.name, err)
		}
	}
	return nil
}

func writeFill(v netcdf.Var, value float64, single bool) error {
	a := v.Attr("_FillValue")
	if single {
		return a.WriteFloat32s([]float32{float32(value)})
	}
	return a.WriteFloat64s([]float64{value})
}

func writeValues(v netcdf.Var, data []float64, single bool) error {
	if !single {
		return v.WriteFloat64s(data)
	}
	tmp := make([]float32, len(data))
	for i, x := range data {
		tmp[i] = float32(x)
	}
	return v.WriteFloat32s(tmp)
}

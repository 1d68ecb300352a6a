// Command model-generator writes a synthetic tidal atlas: one NetCDF file of
// amplitude and phase per constituent plus the YAML manifest describing it.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.ngs.io/tidegrid/internal/adapter/store/fes"
	"go.ngs.io/tidegrid/internal/domain"
)

// ConstituentData holds amplitude and phase for a constituent at the
// reference point.
type ConstituentData struct {
	Constituent domain.Constituent
	Amplitude   float64 // meters
	Phase       float64 // degrees
}

// RegionalGrid defines the geographic bounds and resolution.
type RegionalGrid struct {
	LatMin     float64
	LatMax     float64
	LonMin     float64
	LonMax     float64
	Resolution float64 // degrees
}

func (g RegionalGrid) axes() (lon, lat []float64) {
	nLat := int(math.Round((g.LatMax-g.LatMin)/g.Resolution)) + 1
	nLon := int(math.Round((g.LonMax-g.LonMin)/g.Resolution)) + 1
	lat = make([]float64, nLat)
	for i := range lat {
		lat[i] = g.LatMin + float64(i)*g.Resolution
	}
	lon = make([]float64, nLon)
	for i := range lon {
		lon[i] = g.LonMin + float64(i)*g.Resolution
	}
	return lon, lat
}

// defaultConstituents approximates the harmonic constants at Tokyo.
var defaultConstituents = []ConstituentData{
	{domain.M2, 0.4836, 152.3},
	{domain.S2, 0.2272, 180.1},
	{domain.N2, 0.0901, 137.6},
	{domain.K2, 0.0618, 174.5},
	{domain.K1, 0.2436, 179.8},
	{domain.O1, 0.1929, 159.3},
	{domain.P1, 0.0801, 177.2},
	{domain.Q1, 0.0373, 151.1},
	{domain.M4, 0.0052, 210.0},
	{domain.MS4, 0.0039, 245.0},
	{domain.Mf, 0.0121, 12.0},
	{domain.Mm, 0.0064, 4.0},
	{domain.Ssa, 0.0193, 80.0},
}

func main() {
	csvPath := flag.String("csv", "", "CSV file with constituent,amplitude_m,phase_deg (default: built-in Tokyo constants)")
	outDir := flag.String("out", "./data/model", "Output directory for NetCDF files and model.yaml")
	name := flag.String("name", "synthetic", "Model name written to the manifest")
	region := flag.String("region", "japan", "Region: japan, global, or custom")
	latMin := flag.Float64("lat-min", 20.0, "Minimum latitude (custom region)")
	latMax := flag.Float64("lat-max", 50.0, "Maximum latitude (custom region)")
	lonMin := flag.Float64("lon-min", 120.0, "Minimum longitude (custom region)")
	lonMax := flag.Float64("lon-max", 150.0, "Maximum longitude (custom region)")
	resolution := flag.Float64("resolution", 0.1, "Grid resolution in degrees")
	refLat := flag.Float64("ref-lat", 35.6762, "Latitude of the reference point")
	refLon := flag.Float64("ref-lon", 139.6503, "Longitude of the reference point")
	single := flag.Bool("float32", false, "Store grids in single precision")
	rowMajor := flag.Bool("row-major", false, "Store grids [lon][lat] instead of [lat][lon]")
	landRadius := flag.Float64("land-radius", 0, "Mask a disk of this radius (degrees) around land-lat/land-lon with fill values")
	landLat := flag.Float64("land-lat", 36.5, "Latitude of the masked disk")
	landLon := flag.Float64("land-lon", 138.5, "Longitude of the masked disk")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var grid RegionalGrid
	switch *region {
	case "japan":
		grid = RegionalGrid{LatMin: 20, LatMax: 50, LonMin: 120, LonMax: 150, Resolution: *resolution}
	case "global":
		// 0..360-res keeps the longitude axis periodic.
		grid = RegionalGrid{LatMin: -90, LatMax: 90, LonMin: 0, LonMax: 359.5, Resolution: 0.5}
	case "custom":
		grid = RegionalGrid{LatMin: *latMin, LatMax: *latMax, LonMin: *lonMin, LonMax: *lonMax, Resolution: *resolution}
	default:
		logger.Error("unknown region (use japan, global, or custom)", "region", *region)
		os.Exit(2)
	}
	if grid.Resolution <= 0 || grid.LatMax <= grid.LatMin || grid.LonMax <= grid.LonMin {
		logger.Error("invalid grid", "grid", grid)
		os.Exit(2)
	}

	constituents := defaultConstituents
	if *csvPath != "" {
		var err error
		if constituents, err = readConstituentCSV(*csvPath); err != nil {
			logger.Error("failed to read CSV", "path", *csvPath, "error", err)
			os.Exit(1)
		}
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	lon, lat := grid.axes()
	opts := fieldOptions{
		refLat: *refLat, refLon: *refLon,
		landLat: *landLat, landLon: *landLon, landRadius: *landRadius,
		rowMajor: *rowMajor,
	}
	fillValue := -9999.0
	manifest := &fes.Manifest{
		Name:         *name,
		Variables:    fes.DefaultVariables(),
		Constituents: map[string]string{},
	}
	for _, c := range constituents {
		amp, pha := syntheticField(c, lon, lat, opts)
		data := &fes.Constituent{
			Lon:            lon,
			Lat:            lat,
			Amplitude:      amp,
			Phase:          pha,
			RowMajor:       *rowMajor,
			AmplitudeUnits: "cm",
			PhaseUnits:     "degrees",
			Single:         *single,
			FillValue:      &fillValue,
		}
		file := strings.ToLower(c.Constituent.Name()) + ".nc"
		if err := fes.WriteConstituent(filepath.Join(*outDir, file), manifest.Variables, data); err != nil {
			logger.Error("failed to write constituent", "constituent", c.Constituent, "error", err)
			os.Exit(1)
		}
		manifest.Constituents[c.Constituent.Name()] = file
		logger.Info("generated constituent", "constituent", c.Constituent, "file", file)
	}

	manifestPath := filepath.Join(*outDir, "model.yaml")
	if err := manifest.WriteFile(manifestPath); err != nil {
		logger.Error("failed to write manifest", "error", err)
		os.Exit(1)
	}

	bytesPerValue := 8
	if *single {
		bytesPerValue = 4
	}
	totalMB := float64(len(lon)*len(lat)*2*bytesPerValue*len(constituents)) / 1024 / 1024
	logger.Info("generation complete",
		"manifest", manifestPath,
		"constituents", len(constituents),
		"grid", fmt.Sprintf("%d x %d", len(lon), len(lat)),
		"size_mb", math.Round(totalMB*10)/10)
}

// readConstituentCSV reads constituent,amplitude_m,phase_deg rows.
func readConstituentCSV(path string) ([]ConstituentData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	if len(header) != 3 || header[0] != "constituent" ||
		header[1] != "amplitude_m" || header[2] != "phase_deg" {
		return nil, fmt.Errorf("invalid CSV header: %v", header)
	}

	var constituents []ConstituentData
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		c, err := domain.ParseConstituent(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, err
		}
		amplitude, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amplitude for %s: %w", record[0], err)
		}
		phase, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid phase for %s: %w", record[0], err)
		}
		constituents = append(constituents, ConstituentData{Constituent: c, Amplitude: amplitude, Phase: phase})
	}
	if len(constituents) == 0 {
		return nil, fmt.Errorf("no constituents in %s", path)
	}
	return constituents, nil
}

type fieldOptions struct {
	refLat, refLon               float64
	landLat, landLon, landRadius float64
	rowMajor                     bool
}

// syntheticField spreads the reference constants smoothly over the grid.
// Amplitudes are returned in centimeters and phases in degrees; masked
// cells are NaN.
func syntheticField(c ConstituentData, lon, lat []float64, o fieldOptions) (amp, pha []float64) {
	nLon, nLat := len(lon), len(lat)
	amp = make([]float64, nLon*nLat)
	pha = make([]float64, nLon*nLat)
	for i := 0; i < nLat; i++ {
		for j := 0; j < nLon; j++ {
			idx := i*nLon + j
			if o.rowMajor {
				idx = j*nLat + i
			}
			if o.landRadius > 0 && math.Hypot(lat[i]-o.landLat, lon[j]-o.landLon) < o.landRadius {
				amp[idx], pha[idx] = math.NaN(), math.NaN()
				continue
			}

			// Distance from the reference point.
			dist := math.Hypot(lat[i]-o.refLat, lon[j]-o.refLon)

			// Cosine taper: 100% at the reference, at least 50% elsewhere.
			distFactor := math.Max(math.Cos(dist*math.Pi/20.0), 0.5)

			spatialVar := 1.0 +
				0.15*math.Sin(lat[i]*math.Pi/15.0) +
				0.1*math.Cos(lon[j]*math.Pi/20.0) +
				0.05*math.Sin((lat[i]+lon[j])*math.Pi/25.0)

			amp[idx] = 100 * c.Amplitude * distFactor * spatialVar

			// 2 degrees of phase lag per degree of distance.
			phaseShift := dist * 2.0
			spatialPhase := 10.0*math.Sin(lat[i]*math.Pi/30.0) + 8.0*math.Cos(lon[j]*math.Pi/40.0)
			pha[idx] = domain.NormalizeAngle(c.Phase+phaseShift+spatialPhase, 0, 360)
		}
	}
	return amp, pha
}

// Package usecase implements the tide prediction services exposed by the
// HTTP server and the CLI.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.ngs.io/tidegrid/internal/adapter/store"
	"go.ngs.io/tidegrid/internal/domain"
	"go.ngs.io/tidegrid/internal/engine"
	"go.ngs.io/tidegrid/internal/model"
)

var (
	// ErrInvalidRequest is returned for requests failing validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoData is returned when the model has no data at the location.
	ErrNoData = errors.New("no tidal data at location")
)

// supportedTime reports whether the delta-T polynomials cover t.
func supportedTime(t time.Time) bool {
	mjd := domain.EpochToMJD(domain.TimeToEpoch(t))
	_, err := domain.DeltaT(mjd + domain.ModifiedJulianEpoch)
	return err == nil
}

// PredictionRequest encapsulates a tide prediction request.
type PredictionRequest struct {
	Lat float64
	Lon float64

	// Time range.
	Start time.Time
	End   time.Time

	// Interval for predictions (e.g., 10 minutes).
	Interval time.Duration

	// Datum is "MSL" (default) or "LOCAL" for the nearest configured offset.
	Datum string
}

// PredictionResponse contains the tide prediction results.
type PredictionResponse struct {
	Model        string            `json:"model"`
	Datum        string            `json:"datum"`
	Timezone     string            `json:"timezone"`
	Location     Location          `json:"location"`
	Quality      string            `json:"quality"`
	QualityCode  int               `json:"quality_code"`
	Constituents []string          `json:"constituents"`
	Inferred     []string          `json:"inferred"`
	Predictions  []PredictionPoint `json:"predictions"`
	Extrema      ExtremaResponse   `json:"extrema"`
	Meta         map[string]string `json:"meta"`
}

// Location is a geographic position in degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PredictionPoint represents a single tide height prediction.
type PredictionPoint struct {
	Time        string  `json:"time"`
	HeightM     float64 `json:"height_m"`
	OceanM      float64 `json:"ocean_m"`
	LongPeriodM float64 `json:"long_period_m"`
}

// ExtremaResponse contains high and low tides.
type ExtremaResponse struct {
	Highs []PredictionPoint `json:"highs"`
	Lows  []PredictionPoint `json:"lows"`
}

// PredictionUseCase orchestrates tide prediction against one model.
type PredictionUseCase struct {
	model   *store.Model
	engine  engine.Evaluator
	datums  *DatumOffsets
	logger  *slog.Logger
	started time.Time
}

// Option customizes a PredictionUseCase.
type Option func(*PredictionUseCase)

// WithDatumOffsets enables the LOCAL datum.
func WithDatumOffsets(d *DatumOffsets) Option {
	return func(uc *PredictionUseCase) { uc.datums = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(uc *PredictionUseCase) { uc.logger = l }
}

// NewPredictionUseCase creates a prediction use case. Inference and settings
// errors are reported here rather than on the first request.
func NewPredictionUseCase(m *store.Model, settings engine.Settings, opts ...Option) (*PredictionUseCase, error) {
	uc := &PredictionUseCase{model: m, logger: slog.Default(), started: time.Now()}
	for _, opt := range opts {
		opt(uc)
	}
	e, err := m.Engine(settings, engine.WithLogger(uc.logger))
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", m.Name, err)
	}
	uc.engine = e
	return uc, nil
}

// Validate checks if the request is valid.
func (r *PredictionRequest) Validate() error {
	if math.IsNaN(r.Lat) || r.Lat < -90 || r.Lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidRequest)
	}
	if math.IsNaN(r.Lon) || r.Lon < -180 || r.Lon > 360 {
		return fmt.Errorf("%w: longitude must be between -180 and 360", ErrInvalidRequest)
	}

	// Validate time range.
	if !r.Start.Before(r.End) {
		return fmt.Errorf("%w: start time must be before end time", ErrInvalidRequest)
	}
	if !supportedTime(r.Start) || !supportedTime(r.End) {
		return fmt.Errorf("%w: times must be between mid 1699 and mid 2150", ErrInvalidRequest)
	}

	// Validate interval.
	if r.Interval < time.Minute {
		return fmt.Errorf("%w: interval must be at least 1 minute", ErrInvalidRequest)
	}
	if r.Interval > 6*time.Hour {
		return fmt.Errorf("%w: interval must be at most 6 hours", ErrInvalidRequest)
	}

	// Check that time range is reasonable.
	duration := r.End.Sub(r.Start)
	if duration > 366*24*time.Hour {
		return fmt.Errorf("%w: time range must be at most 366 days", ErrInvalidRequest)
	}

	// Check that number of points is reasonable.
	numPoints := int(duration / r.Interval)
	if numPoints > 10000 {
		return fmt.Errorf("%w: too many prediction points (%d) - reduce time range or increase interval", ErrInvalidRequest, numPoints)
	}

	switch r.Datum {
	case "", "MSL", "LOCAL":
	default:
		return fmt.Errorf("%w: unknown datum %q", ErrInvalidRequest, r.Datum)
	}
	return nil
}

// Execute performs the tide prediction.
func (uc *PredictionUseCase) Execute(ctx context.Context, req PredictionRequest) (*PredictionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	datum, offset := "MSL", 0.0
	if req.Datum == "LOCAL" {
		entry, ok := uc.datums.Nearest(req.Lat, req.Lon)
		if !ok {
			return nil, fmt.Errorf("%w: no local datum near (%.4f, %.4f)", ErrInvalidRequest, req.Lat, req.Lon)
		}
		datum, offset = entry.Name, entry.OffsetM
	}

	times := domain.SampleTimes(req.Start, req.End, req.Interval)
	n := len(times)
	lon := make([]float64, n)
	lat := make([]float64, n)
	epochs := make([]int64, n)
	for i, t := range times {
		lon[i], lat[i], epochs[i] = req.Lon, req.Lat, domain.TimeToEpoch(t)
	}

	result, err := uc.engine.Evaluate(ctx, lon, lat, epochs)
	if err != nil {
		var ood *model.OutOfDomainError
		if errors.As(err, &ood) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return nil, fmt.Errorf("evaluate tide: %w", err)
	}
	quality := result.Quality[0]
	if !quality.IsDefined() {
		return nil, fmt.Errorf("%w (%.4f, %.4f)", ErrNoData, req.Lat, req.Lon)
	}

	predictions := make([]domain.TideLevel, n)
	for i, t := range times {
		predictions[i] = domain.TideLevel{
			Time:        t,
			HeightM:     result.Ocean[i] + result.LongPeriod[i] + offset,
			OceanM:      result.Ocean[i],
			LongPeriodM: result.LongPeriod[i],
		}
	}

	// Find extrema and refine them with parabolic interpolation.
	extrema := domain.FindExtrema(predictions)
	extrema = domain.RefineExtrema(predictions, extrema)

	uc.logger.DebugContext(ctx, "predicted tide series",
		"lat", req.Lat,
		"lon", req.Lon,
		"points", n,
		"highs", len(extrema.Highs),
		"lows", len(extrema.Lows))

	return &PredictionResponse{
		Model:        uc.model.Name,
		Datum:        datum,
		Timezone:     "+00:00",
		Location:     Location{Lat: req.Lat, Lon: req.Lon},
		Quality:      quality.String(),
		QualityCode:  quality.Code(),
		Constituents: names(uc.model.Grid.Identifiers()),
		Inferred:     names(uc.engine.Inferred()),
		Predictions:  toPoints(predictions),
		Extrema: ExtremaResponse{
			Highs: toPoints(extrema.Highs),
			Lows:  toPoints(extrema.Lows),
		},
		Meta: map[string]string{
			"interpolation": uc.engine.Settings().Interpolation.String(),
			"precision":     uc.model.Grid.Precision(),
		},
	}, nil
}

func toPoints(levels []domain.TideLevel) []PredictionPoint {
	points := make([]PredictionPoint, len(levels))
	for i, l := range levels {
		points[i] = PredictionPoint{
			Time:        l.Time.UTC().Format(time.RFC3339),
			HeightM:     roundToDecimal(l.HeightM, 3),
			OceanM:      roundToDecimal(l.OceanM, 3),
			LongPeriodM: roundToDecimal(l.LongPeriodM, 3),
		}
	}
	return points
}

func names(cs []domain.Constituent) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name()
	}
	return out
}

// roundToDecimal rounds half away from zero.
func roundToDecimal(val float64, precision int) float64 {
	multiplier := math.Pow(10, float64(precision))
	return math.Round(val*multiplier) / multiplier
}

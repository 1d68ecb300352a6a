package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.ngs.io/tidegrid/internal/adapter/store/csv"
	"go.ngs.io/tidegrid/internal/domain"
	"go.ngs.io/tidegrid/internal/engine"
	"go.ngs.io/tidegrid/internal/model"
)

// MaxBatchPoints bounds a batch evaluation request.
const MaxBatchPoints = 1_000_000

// EvaluateRequest is a batch of points. Times are RFC3339 strings or
// integer microseconds since the Unix epoch.
type EvaluateRequest struct {
	Lon   []float64 `json:"lon"`
	Lat   []float64 `json:"lat"`
	Times []string  `json:"time"`
}

// EvaluateResponse holds parallel arrays; heights of undefined points are
// null.
type EvaluateResponse struct {
	Model       string     `json:"model"`
	OceanM      []*float64 `json:"ocean_m"`
	LongPeriodM []*float64 `json:"long_period_m"`
	Quality     []int      `json:"quality"`
}

// Points validates the request and converts it to evaluation points.
func (r *EvaluateRequest) Points() (*csv.Points, error) {
	n := len(r.Lon)
	if len(r.Lat) != n || len(r.Times) != n {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, engine.ErrLengthMismatch)
	}
	if n > MaxBatchPoints {
		return nil, fmt.Errorf("%w: at most %d points per request", ErrInvalidRequest, MaxBatchPoints)
	}
	p := &csv.Points{Lon: r.Lon, Lat: r.Lat, Epochs: make([]int64, n)}
	for i, s := range r.Times {
		epoch, err := csv.ParseEpoch(s)
		if err != nil {
			return nil, fmt.Errorf("%w: point %d: %w", ErrInvalidRequest, i, err)
		}
		p.Epochs[i] = epoch
	}
	return p, nil
}

// EvaluatePoints runs the engine over p.
func (uc *PredictionUseCase) EvaluatePoints(ctx context.Context, p *csv.Points) (*engine.Result, error) {
	start := time.Now()
	result, err := uc.engine.Evaluate(ctx, p.Lon, p.Lat, p.Epochs)
	if err != nil {
		var ood *model.OutOfDomainError
		if errors.As(err, &ood) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return nil, err
	}
	uc.logger.DebugContext(ctx, "evaluated batch", "points", p.Len(), "duration", time.Since(start))
	return result, nil
}

// Evaluate runs a batch request.
func (uc *PredictionUseCase) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	p, err := req.Points()
	if err != nil {
		return nil, err
	}
	result, err := uc.EvaluatePoints(ctx, p)
	if err != nil {
		return nil, err
	}
	return &EvaluateResponse{
		Model:       uc.model.Name,
		OceanM:      nullable(result.Ocean),
		LongPeriodM: nullable(result.LongPeriod),
		Quality:     result.QualityCodes(),
	}, nil
}

func nullable(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if !math.IsNaN(values[i]) {
			out[i] = &values[i]
		}
	}
	return out
}

// ConstituentInfo describes one catalog entry and its role in the model.
type ConstituentInfo struct {
	Name          string  `json:"name"`
	Species       string  `json:"species"`
	SpeedDegPerHr float64 `json:"speed_deg_per_hr"`
	Doodson       [7]int8 `json:"doodson"`
	Modeled       bool    `json:"modeled"`
	Inferred      bool    `json:"inferred"`
}

// Constituents lists the catalog, flagging modeled and inferred waves.
func (uc *PredictionUseCase) Constituents() []ConstituentInfo {
	modeled := domain.NewSet(uc.model.Grid.Identifiers()...)
	inferred := domain.NewSet(uc.engine.Inferred()...)
	all := domain.AllConstituents()
	out := make([]ConstituentInfo, len(all))
	for i, c := range all {
		out[i] = ConstituentInfo{
			Name:          c.Name(),
			Species:       c.Species().String(),
			SpeedDegPerHr: c.SpeedDegPerHr(),
			Doodson:       c.Doodson(),
			Modeled:       modeled.Has(c),
			Inferred:      inferred.Has(c),
		}
	}
	return out
}

// ModelInfo summarizes the loaded model.
type ModelInfo struct {
	Name             string   `json:"name"`
	Source           string   `json:"source"`
	Precision        string   `json:"precision"`
	RowMajor         bool     `json:"row_major"`
	Constituents     []string `json:"constituents"`
	Inferred         []string `json:"inferred"`
	Interpolation    string   `json:"interpolation"`
	GroupModulations bool     `json:"group_modulations"`
	TimeToleranceS   float64  `json:"time_tolerance_s"`
	Longitude        AxisInfo `json:"longitude"`
	Latitude         AxisInfo `json:"latitude"`
	LocalDatums      int      `json:"local_datums"`
	Uptime           string   `json:"uptime"`
}

// AxisInfo describes a model axis.
type AxisInfo struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Size     int     `json:"size"`
	Step     float64 `json:"step,omitempty"`
	Periodic bool    `json:"periodic"`
}

// ModelInfo describes the model and the evaluation settings.
func (uc *PredictionUseCase) ModelInfo() ModelInfo {
	g := uc.model.Grid
	s := uc.engine.Settings()
	axis := func(lo, hi float64, size int, regular bool, step float64, periodic bool) AxisInfo {
		info := AxisInfo{Min: lo, Max: hi, Size: size, Periodic: periodic}
		if regular {
			info.Step = step
		}
		return info
	}
	lon, lat := g.Lon(), g.Lat()
	return ModelInfo{
		Name:             uc.model.Name,
		Source:           uc.model.Source,
		Precision:        g.Precision(),
		RowMajor:         g.RowMajor(),
		Constituents:     names(g.Identifiers()),
		Inferred:         names(uc.engine.Inferred()),
		Interpolation:    s.Interpolation.String(),
		GroupModulations: s.GroupModulations,
		TimeToleranceS:   s.TimeTolerance,
		Longitude:        axis(lon.Min(), lon.Max(), lon.Size(), lon.IsRegular(), lon.Step(), lon.IsPeriodic()),
		Latitude:         axis(lat.Min(), lat.Max(), lat.Size(), lat.IsRegular(), lat.Step(), lat.IsPeriodic()),
		LocalDatums:      uc.datums.Len(),
		Uptime:           time.Since(uc.started).Round(time.Second).String(),
	}
}

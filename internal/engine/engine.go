// Package engine evaluates tide heights from a tidal model over batches of
// points.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"go.ngs.io/tidegrid/internal/domain"
	"go.ngs.io/tidegrid/internal/inference"
	"go.ngs.io/tidegrid/internal/metrics"
	"go.ngs.io/tidegrid/internal/model"
)

var tracer = otel.Tracer("go.ngs.io/tidegrid/internal/engine")

// cancelCheckInterval is the number of points between context checks.
const cancelCheckInterval = 256

// Result holds one entry per evaluated point, in input order.
type Result struct {
	Ocean      []float64
	LongPeriod []float64
	Quality    []model.Quality
}

// QualityCodes returns the integer codes of the qualities.
func (r *Result) QualityCodes() []int {
	out := make([]int, len(r.Quality))
	for i, q := range r.Quality {
		out[i] = q.Code()
	}
	return out
}

// Len returns the number of points.
func (r *Result) Len() int { return len(r.Quality) }

// Engine evaluates a model with fixed settings. It is safe for concurrent
// use: the model and inference are read-only, and every call creates its own
// accelerators.
type Engine[T model.Float] struct {
	model     *model.TidalModel[T]
	settings  Settings
	inference *inference.Inference
	logger    *slog.Logger
}

// Option customizes an Engine.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for evaluation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New validates the settings against the model. Configuration errors, such
// as missing control constituents for the requested inference, are reported
// here.
func New[T model.Float](m *model.TidalModel[T], settings Settings, opts ...Option) (*Engine[T], error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if m == nil || m.Empty() {
		return nil, model.ErrEmptyModel
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	e := &Engine[T]{model: m, settings: settings, logger: o.logger}
	if settings.Interpolation != inference.None {
		inf, err := inference.New(settings.Interpolation, m.Set())
		if err != nil {
			return nil, fmt.Errorf("configure inference: %w", err)
		}
		e.inference = inf
	}
	return e, nil
}

// Evaluate is a convenience wrapper building an Engine for a single call.
func Evaluate[T model.Float](ctx context.Context, m *model.TidalModel[T], lon, lat []float64, epochs []int64, settings Settings) (*Result, error) {
	e, err := New(m, settings)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(ctx, lon, lat, epochs)
}

// Model returns the evaluated model.
func (e *Engine[T]) Model() *model.TidalModel[T] { return e.model }

// Settings returns the evaluation settings.
func (e *Engine[T]) Settings() Settings { return e.settings }

// Inferred returns the constituents computed by admittance inference.
func (e *Engine[T]) Inferred() []domain.Constituent {
	if e.inference == nil {
		return nil
	}
	return e.inference.Inferred()
}

// Evaluate computes the ocean and long-period tide at each (lon[i], lat[i],
// epochs[i]). Epochs are microseconds since 1970-01-01T00:00:00Z. A
// coordinate outside the model domain fails the whole call; other per-point
// failures yield NaN heights with an Undefined quality.
func (e *Engine[T]) Evaluate(ctx context.Context, lon, lat []float64, epochs []int64) (*Result, error) {
	n := len(lon)
	if len(lat) != n || len(epochs) != n {
		return nil, fmt.Errorf("%w: %d, %d, %d", ErrLengthMismatch, len(lon), len(lat), len(epochs))
	}
	workers := e.settings.workers(n)

	ctx, span := tracer.Start(ctx, "engine.Evaluate", trace.WithAttributes(
		attribute.Int("points", n),
		attribute.Int("workers", workers),
		attribute.String("interpolation", e.settings.Interpolation.String()),
	))
	defer span.End()
	start := time.Now()

	result := &Result{
		Ocean:      make([]float64, n),
		LongPeriod: make([]float64, n),
		Quality:    make([]model.Quality, n),
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := (n + workers - 1) / workers
	for begin := 0; begin < n; begin += chunk {
		end := min(begin+chunk, n)
		g.Go(func() error {
			w := e.newWorker()
			defer w.flush()
			for i := begin; i < end; i++ {
				if (i-begin)%cancelCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				ocean, lp, q, err := w.evaluate(lon[i], lat[i], epochs[i])
				if err != nil {
					return fmt.Errorf("point %d (lon %.6f, lat %.6f): %w", i, lon[i], lat[i], err)
				}
				result.Ocean[i], result.LongPeriod[i], result.Quality[i] = ocean, lp, q
			}
			return nil
		})
	}

	err := g.Wait()
	metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EvaluationsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	metrics.EvaluationsTotal.WithLabelValues("ok").Inc()
	e.logger.Debug("evaluated tide batch",
		"points", n,
		"workers", workers,
		"duration", time.Since(start))
	return result, nil
}

// EvaluateTable returns the per-constituent state used to compute the tide
// at one point: grid or inferred values, equilibrium arguments and nodal
// corrections.
func (e *Engine[T]) EvaluateTable(lon, lat float64, epoch int64) (*domain.Table, model.Quality, error) {
	w := e.newWorker()
	defer w.flush()
	table := &domain.Table{}
	q, err := w.fill(lon, lat, epoch, table)
	if err != nil {
		return nil, model.Undefined, err
	}
	return table, q, nil
}

// worker owns the mutable state of one goroutine.
type worker[T model.Float] struct {
	e       *Engine[T]
	acc     *model.Accelerator
	table   domain.Table
	quality [model.Extrapolated3 + 1]int
	deltaT  int
}

func (e *Engine[T]) newWorker() *worker[T] {
	return &worker[T]{
		e:   e,
		acc: e.model.Accelerator(e.settings.TimeTolerance, e.settings.GroupModulations),
	}
}

// fill populates table for one point. Points without grid data report
// Undefined; unsupported dates return a wrapped delta-T error.
func (w *worker[T]) fill(lon, lat float64, epoch int64, table *domain.Table) (model.Quality, error) {
	table.Reset()
	q, err := w.e.model.Interpolate(lon, lat, w.acc)
	if err != nil {
		return model.Undefined, err
	}
	if q == model.Undefined {
		w.acc.Apply(w.e.model.Set(), table)
		return model.Undefined, nil
	}
	if _, err := w.acc.Update(epoch); err != nil {
		return model.Undefined, err
	}
	w.acc.Apply(w.e.model.Set(), table)
	if w.e.inference != nil {
		w.e.inference.Apply(table, lat)
	}
	return q, nil
}

func (w *worker[T]) evaluate(lon, lat float64, epoch int64) (float64, float64, model.Quality, error) {
	q, err := w.fill(lon, lat, epoch, &w.table)
	switch {
	case errors.Is(err, domain.ErrDeltaTOutOfRange):
		w.deltaT++
		w.quality[model.Undefined]++
		return math.NaN(), math.NaN(), model.Undefined, nil
	case err != nil:
		return 0, 0, model.Undefined, err
	case q == model.Undefined:
		w.quality[model.Undefined]++
		return math.NaN(), math.NaN(), model.Undefined, nil
	}

	var ocean, lp float64
	for c := range w.table {
		wave := &w.table[c]
		if !wave.Defined() {
			continue
		}
		if domain.Constituent(c).Species() == domain.LongPeriod {
			lp += wave.Height()
		} else {
			ocean += wave.Height()
		}
	}
	w.quality[q]++
	return ocean, lp, q, nil
}

// flush publishes the worker counters.
func (w *worker[T]) flush() {
	metrics.AcceleratorRefreshesTotal.Add(float64(w.acc.Refreshes()))
	for q, count := range w.quality {
		if count > 0 {
			metrics.PointsTotal.WithLabelValues(model.Quality(q).String()).Add(float64(count))
		}
	}
	if w.deltaT > 0 {
		metrics.PointErrorsTotal.WithLabelValues("delta_t").Add(float64(w.deltaT))
	}
}

// Evaluator is the precision-independent view of an Engine.
type Evaluator interface {
	Evaluate(ctx context.Context, lon, lat []float64, epochs []int64) (*Result, error)
	EvaluateTable(lon, lat float64, epoch int64) (*domain.Table, model.Quality, error)
	Inferred() []domain.Constituent
	Settings() Settings
}

var (
	_ Evaluator = (*Engine[float32])(nil)
	_ Evaluator = (*Engine[float64])(nil)
)

package fes

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"go.ngs.io/tidegrid/internal/adapter/interp"
	"go.ngs.io/tidegrid/internal/adapter/store"
	"go.ngs.io/tidegrid/internal/metrics"
	"go.ngs.io/tidegrid/internal/model"
)

var tracer = otel.Tracer("go.ngs.io/tidegrid/internal/adapter/store/fes")

// Store loads models from manifests and caches them by manifest path.
type Store struct {
	logger *slog.Logger
	cache  map[string]*store.Model
	mu     sync.RWMutex
}

var _ store.ModelLoader = (*Store)(nil)

// NewStore creates an empty store. A nil logger uses slog.Default.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger, cache: make(map[string]*store.Model)}
}

// Load returns the model described by the manifest at path, reading it on
// first use.
func (s *Store) Load(ctx context.Context, path string) (*store.Model, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = path
	}

	s.mu.RLock()
	if m, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return m, nil
	}
	s.mu.RUnlock()

	manifest, err := ReadManifest(key)
	if err != nil {
		return nil, err
	}
	m, err := LoadManifest(ctx, manifest)
	if err != nil {
		return nil, err
	}
	m.Source = key

	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		m = cached
	} else {
		s.cache[key] = m
	}
	s.mu.Unlock()

	s.logger.Info("loaded tidal model",
		"name", m.Name,
		"manifest", key,
		"precision", m.Grid.Precision(),
		"constituents", m.Grid.Size(),
		"row_major", m.Grid.RowMajor())
	return m, nil
}

// LoadManifest builds the model described by manifest. Every file is checked
// against the first one before any grid is read.
func LoadManifest(ctx context.Context, manifest *Manifest) (*store.Model, error) {
	ctx, span := tracer.Start(ctx, "fes.LoadManifest")
	defer span.End()
	start := time.Now()

	m, err := loadManifest(ctx, manifest)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	metrics.ModelLoadDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.String("model.name", m.Name),
		attribute.String("model.precision", m.Grid.Precision()),
		attribute.Int("model.constituents", m.Grid.Size()),
	)
	return m, nil
}

func loadManifest(ctx context.Context, manifest *Manifest) (*store.Model, error) {
	files, err := manifest.Files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, model.ErrEmptyModel
	}

	var ref *header
	bits := 0
	for _, f := range files {
		ds, err := openDataset(f.Path, manifest.Variables)
		if err != nil {
			return nil, fmt.Errorf("constituent %s: %w", f.Constituent, err)
		}
		if ref == nil {
			h := ds.header
			ref = &h
		} else if err := ds.checkConsistent(ref); err != nil {
			_ = ds.Close()
			return nil, fmt.Errorf("constituent %s: %w", f.Constituent, err)
		}
		bits = max(bits, ds.bits)
		_ = ds.Close()
	}

	precision := manifest.Precision
	if precision == "" {
		switch bits {
		case 64:
			precision = "float64"
		case 32:
			precision = "float32"
		default:
			return nil, fmt.Errorf("%w: amplitude and phase must be float or double", model.ErrUnsupportedPrecision)
		}
	}

	eps := manifest.Epsilon
	lon, err := newAxis(ref.lon, eps, true)
	if err != nil {
		return nil, fmt.Errorf("longitude axis: %w", err)
	}
	lat, err := newAxis(ref.lat, eps, false)
	if err != nil {
		return nil, fmt.Errorf("latitude axis: %w", err)
	}

	switch precision {
	case "float32":
		tm, err := build[float32](ctx, manifest, files, lon, lat, ref)
		if err != nil {
			return nil, err
		}
		return store.NewModel(manifest.Name, manifest.dir, tm), nil
	case "float64":
		tm, err := build[float64](ctx, manifest, files, lon, lat, ref)
		if err != nil {
			return nil, err
		}
		return store.NewModel(manifest.Name, manifest.dir, tm), nil
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedPrecision, precision)
	}
}

// newAxis builds an axis from coordinates. Single-precision coordinates are
// rebuilt from their first and last values to avoid accumulated rounding in
// the step.
func newAxis(c coordinate, eps float64, periodic bool) (*interp.Axis, error) {
	n := len(c.values)
	if c.single && n >= 2 {
		start, end := c.values[0], c.values[n-1]
		return interp.NewRegularAxis(start, end, (end-start)/float64(n-1), eps, periodic)
	}
	return interp.NewAxis(c.values, eps, periodic)
}

func build[T model.Float](ctx context.Context, manifest *Manifest, files []File, lon, lat *interp.Axis, ref *header) (*model.TidalModel[T], error) {
	tm := model.New[T](lon, lat, ref.rowMajor)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ds, err := openDataset(f.Path, manifest.Variables)
		if err != nil {
			return nil, fmt.Errorf("constituent %s: %w", f.Constituent, err)
		}
		wave, err := ds.wave()
		_ = ds.Close()
		if err != nil {
			return nil, fmt.Errorf("constituent %s: %w", f.Constituent, err)
		}
		grid := &model.Grid[T]{Rows: ref.shape[0], Cols: ref.shape[1], Data: make([]T, len(wave))}
		for i, v := range wave {
			grid.Data[i] = T(v)
		}
		if err := tm.AddConstituent(f.Constituent, grid); err != nil {
			return nil, err
		}
	}
	return tm, nil
}

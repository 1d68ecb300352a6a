// Package store defines how tidal models are loaded and exposed to the use
// cases, independently of their storage precision.
package store

import (
	"context"

	"go.ngs.io/tidegrid/internal/adapter/interp"
	"go.ngs.io/tidegrid/internal/domain"
	"go.ngs.io/tidegrid/internal/engine"
	"go.ngs.io/tidegrid/internal/model"
)

// Grid is the read-only view of a model.TidalModel shared by both
// precisions.
type Grid interface {
	Lon() *interp.Axis
	Lat() *interp.Axis
	RowMajor() bool
	Precision() string
	Identifiers() []domain.Constituent
	Size() int
}

// Model is a loaded tidal model.
type Model struct {
	Name   string
	Source string
	Grid   Grid

	newEngine func(engine.Settings, ...engine.Option) (engine.Evaluator, error)
}

// NewModel wraps m.
func NewModel[T model.Float](name, source string, m *model.TidalModel[T]) *Model {
	return &Model{
		Name:   name,
		Source: source,
		Grid:   m,
		newEngine: func(s engine.Settings, opts ...engine.Option) (engine.Evaluator, error) {
			e, err := engine.New(m, s, opts...)
			if err != nil {
				return nil, err
			}
			return e, nil
		},
	}
}

// Engine builds an evaluator of the model with the given settings.
func (m *Model) Engine(s engine.Settings, opts ...engine.Option) (engine.Evaluator, error) {
	return m.newEngine(s, opts...)
}

// ModelLoader loads the model described by a manifest file.
type ModelLoader interface {
	Load(ctx context.Context, manifest string) (*Model, error)
}

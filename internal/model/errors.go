package model

import (
	"errors"
	"fmt"

	"go.ngs.io/tidegrid/internal/adapter/interp"
	"go.ngs.io/tidegrid/internal/domain"
)

var (
	// ErrEmptyModel is returned when a model holds no constituent.
	ErrEmptyModel = errors.New("tidal model has no constituents")
	// ErrDuplicateConstituent is returned when a constituent is added twice.
	ErrDuplicateConstituent = errors.New("constituent already present in model")
	// ErrUnsupportedPrecision is returned for precisions other than float32 and float64.
	ErrUnsupportedPrecision = errors.New("unsupported model precision")
)

// OutOfDomainError reports a coordinate outside the model grid.
type OutOfDomainError = interp.OutOfDomainError

// ShapeMismatchError reports a constituent grid that does not match the
// shape established by the model axes.
type ShapeMismatchError struct {
	Constituent domain.Constituent
	Want        [2]int
	Got         [2]int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("constituent %s: grid shape %dx%d does not match model shape %dx%d",
		e.Constituent, e.Got[0], e.Got[1], e.Want[0], e.Want[1])
}

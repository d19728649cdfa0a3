package element

import (
	"errors"
	"fmt"
)

// Configuration errors, all detected at construction time. The tracking
// loops never validate.
var (
	// ErrBadSteps indicates a slice count below one.
	ErrBadSteps = errors.New("element: integration steps must be at least 1")

	// ErrBadLength indicates a non-finite element length.
	ErrBadLength = errors.New("element: length must be finite")

	// ErrPolynomLength indicates field polynomials shorter than the
	// requested maximum order.
	ErrPolynomLength = errors.New("element: polynomial arrays must cover the max order")

	// ErrBadFringeMode indicates a fringe selector outside the known set.
	ErrBadFringeMode = errors.New("element: unknown fringe mode")

	// ErrFringeIntegrals indicates the linear fringe model was requested
	// without both edge-integral vectors.
	ErrFringeIntegrals = errors.New("element: linear fringe mode requires both integral vectors")

	// ErrBadAperture indicates non-positive elliptical semi-axes.
	ErrBadAperture = errors.New("element: elliptical aperture semi-axes must be positive")

	// ErrZeroLength indicates a steering angle on a zero-length element.
	ErrZeroLength = errors.New("element: steering kick requires a nonzero length")

	// ErrBadEnergy indicates a non-positive design energy.
	ErrBadEnergy = errors.New("element: design energy must be positive")
)

// ConfigError ties a validation failure to the element and field that
// caused it.
type ConfigError struct {
	Element string
	Field   string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Element, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

package element

import (
	"math"

	"github.com/beamkit/beamkit/internal/beam"
	"github.com/beamkit/beamkit/internal/optics"
)

// ExactMultipoleConfig describes a multipole integrated with the exact
// drift map. The optional fringe is the generalized multipole edge map,
// which acts on every field order rather than just the quadrupole.
type ExactMultipoleConfig struct {
	Name     string
	Length   float64
	PolyA    []float64
	PolyB    []float64
	MaxOrder int
	Steps    int
	Fringe   bool

	Rect    *optics.RectAperture
	Ellipse *optics.EllipseAperture
}

// ExactMultipole is the drift-kick pass built on the square-root drift
// Hamiltonian. It stays accurate at large transverse momenta where the
// small-angle expansion drifts away.
type ExactMultipole struct {
	name     string
	length   float64
	polyA    []float64
	polyB    []float64
	maxOrder int
	steps    int
	coeff    optics.SliceCoeffs
	fringe   bool

	rect    *optics.RectAperture
	ellipse *optics.EllipseAperture
}

func NewExactMultipole(cfg ExactMultipoleConfig) (*ExactMultipole, error) {
	if cfg.Steps < 1 {
		return nil, &ConfigError{Element: cfg.Name, Field: "Steps", Err: ErrBadSteps}
	}
	if math.IsNaN(cfg.Length) || math.IsInf(cfg.Length, 0) {
		return nil, &ConfigError{Element: cfg.Name, Field: "Length", Err: ErrBadLength}
	}
	if cfg.MaxOrder < 0 || len(cfg.PolyA) <= cfg.MaxOrder || len(cfg.PolyB) <= cfg.MaxOrder {
		return nil, &ConfigError{Element: cfg.Name, Field: "PolyA/PolyB", Err: ErrPolynomLength}
	}
	if cfg.Ellipse != nil && (cfg.Ellipse[0] <= 0 || cfg.Ellipse[1] <= 0) {
		return nil, &ConfigError{Element: cfg.Name, Field: "Ellipse", Err: ErrBadAperture}
	}

	e := &ExactMultipole{
		name:     cfg.Name,
		length:   cfg.Length,
		polyA:    append([]float64(nil), cfg.PolyA...),
		polyB:    append([]float64(nil), cfg.PolyB...),
		maxOrder: cfg.MaxOrder,
		steps:    cfg.Steps,
		coeff:    optics.Slice(cfg.Length, cfg.Steps),
		fringe:   cfg.Fringe,
	}
	if cfg.Rect != nil {
		v := *cfg.Rect
		e.rect = &v
	}
	if cfg.Ellipse != nil {
		v := *cfg.Ellipse
		e.ellipse = &v
	}
	return e, nil
}

func (e *ExactMultipole) Name() string    { return e.name }
func (e *ExactMultipole) Length() float64 { return e.length }

func (e *ExactMultipole) Track(ps beam.Bunch) {
	for i := range ps {
		r := &ps[i]
		if r.Lost() {
			continue
		}
		e.checkAperture(r)
		if r.Lost() {
			continue
		}
		if e.fringe {
			optics.MultipoleFringe(r, e.polyA, e.polyB, e.maxOrder, true)
		}
		for s := 0; s < e.steps; s++ {
			e.slice(r)
		}
		if e.fringe {
			optics.MultipoleFringe(r, e.polyA, e.polyB, e.maxOrder, false)
		}
		e.checkAperture(r)
	}
}

// slice uses the geometric drift lengths directly; the exact drift
// divides by the longitudinal momentum itself.
func (e *ExactMultipole) slice(r *beam.Coords) {
	optics.ExactDrift(r, e.coeff.L1)
	optics.ThinKick(r, e.polyA, e.polyB, e.coeff.K1, e.maxOrder)
	optics.ExactDrift(r, e.coeff.L2)
	optics.ThinKick(r, e.polyA, e.polyB, e.coeff.K2, e.maxOrder)
	optics.ExactDrift(r, e.coeff.L2)
	optics.ThinKick(r, e.polyA, e.polyB, e.coeff.K1, e.maxOrder)
	optics.ExactDrift(r, e.coeff.L1)
}

func (e *ExactMultipole) checkAperture(r *beam.Coords) {
	if e.rect != nil {
		e.rect.Check(r)
	}
	if e.ellipse != nil {
		e.ellipse.Check(r)
	}
}

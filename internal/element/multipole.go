package element

import (
	"math"

	"github.com/beamkit/beamkit/internal/beam"
	"github.com/beamkit/beamkit/internal/optics"
)

// FringeModel selects the edge-field correction applied at one face of
// a multipole. Only the quadrupole component of the field contributes.
type FringeModel int

const (
	// FringeNone disables the edge correction.
	FringeNone FringeModel = iota
	// FringeHard applies the hard-edge quadrupole map.
	FringeHard
	// FringeLinear wraps the hard-edge map in soft-edge linear maps
	// built from the measured field integrals.
	FringeLinear
)

func (f FringeModel) String() string {
	switch f {
	case FringeNone:
		return "none"
	case FringeHard:
		return "hard"
	case FringeLinear:
		return "linear"
	}
	return "invalid"
}

// MultipoleConfig describes one straight multipole magnet. Optional
// stages are enabled by non-nil pointers; everything is validated once
// at construction and copied, so a built element is immutable and safe
// to share between tracking goroutines.
type MultipoleConfig struct {
	Name     string
	Length   float64
	PolyA    []float64 // skew field coefficients, 1/m^(n+1)
	PolyB    []float64 // normal field coefficients, 1/m^(n+1)
	MaxOrder int       // highest multipole index used from the polynomials
	Steps    int       // integration slices

	FringeEntrance FringeModel
	FringeExit     FringeModel
	FringeIntM     *optics.FringeInts // required for FringeLinear
	FringeIntP     *optics.FringeInts

	EntranceShift *[6]float64     // alignment offset added on entry
	ExitShift     *[6]float64     // alignment offset added on exit
	EntranceRot   *optics.Matrix6 // alignment rotation applied on entry
	ExitRot       *optics.Matrix6 // alignment rotation applied on exit

	Rect    *optics.RectAperture
	Ellipse *optics.EllipseAperture
}

// Multipole advances particles through a straight multipole with the
// fourth-order symplectic drift-kick integrator.
type Multipole struct {
	name     string
	length   float64
	polyA    []float64
	polyB    []float64
	maxOrder int
	steps    int
	coeff    optics.SliceCoeffs
	b2       float64 // quadrupole strength driving the fringe maps

	fringeEnter FringeModel
	fringeExit  FringeModel
	intM, intP  *optics.FringeInts

	t1, t2 *[6]float64
	r1, r2 *optics.Matrix6

	rect    *optics.RectAperture
	ellipse *optics.EllipseAperture
}

// NewMultipole validates cfg and builds the element. All slices and
// optional blocks are copied.
func NewMultipole(cfg MultipoleConfig) (*Multipole, error) {
	if cfg.Steps < 1 {
		return nil, &ConfigError{Element: cfg.Name, Field: "Steps", Err: ErrBadSteps}
	}
	if math.IsNaN(cfg.Length) || math.IsInf(cfg.Length, 0) {
		return nil, &ConfigError{Element: cfg.Name, Field: "Length", Err: ErrBadLength}
	}
	if cfg.MaxOrder < 0 || len(cfg.PolyA) <= cfg.MaxOrder || len(cfg.PolyB) <= cfg.MaxOrder {
		return nil, &ConfigError{Element: cfg.Name, Field: "PolyA/PolyB", Err: ErrPolynomLength}
	}
	if cfg.FringeEntrance < FringeNone || cfg.FringeEntrance > FringeLinear {
		return nil, &ConfigError{Element: cfg.Name, Field: "FringeEntrance", Err: ErrBadFringeMode}
	}
	if cfg.FringeExit < FringeNone || cfg.FringeExit > FringeLinear {
		return nil, &ConfigError{Element: cfg.Name, Field: "FringeExit", Err: ErrBadFringeMode}
	}
	if cfg.FringeEntrance == FringeLinear || cfg.FringeExit == FringeLinear {
		if cfg.FringeIntM == nil || cfg.FringeIntP == nil {
			return nil, &ConfigError{Element: cfg.Name, Field: "FringeIntM/FringeIntP", Err: ErrFringeIntegrals}
		}
	}
	if cfg.Ellipse != nil && (cfg.Ellipse[0] <= 0 || cfg.Ellipse[1] <= 0) {
		return nil, &ConfigError{Element: cfg.Name, Field: "Ellipse", Err: ErrBadAperture}
	}

	m := &Multipole{
		name:        cfg.Name,
		length:      cfg.Length,
		polyA:       append([]float64(nil), cfg.PolyA...),
		polyB:       append([]float64(nil), cfg.PolyB...),
		maxOrder:    cfg.MaxOrder,
		steps:       cfg.Steps,
		coeff:       optics.Slice(cfg.Length, cfg.Steps),
		fringeEnter: cfg.FringeEntrance,
		fringeExit:  cfg.FringeExit,
	}
	if len(m.polyB) > 1 {
		m.b2 = m.polyB[1]
	}
	if cfg.FringeIntM != nil {
		v := *cfg.FringeIntM
		m.intM = &v
	}
	if cfg.FringeIntP != nil {
		v := *cfg.FringeIntP
		m.intP = &v
	}
	if cfg.EntranceShift != nil {
		v := *cfg.EntranceShift
		m.t1 = &v
	}
	if cfg.ExitShift != nil {
		v := *cfg.ExitShift
		m.t2 = &v
	}
	if cfg.EntranceRot != nil {
		v := *cfg.EntranceRot
		m.r1 = &v
	}
	if cfg.ExitRot != nil {
		v := *cfg.ExitRot
		m.r2 = &v
	}
	if cfg.Rect != nil {
		v := *cfg.Rect
		m.rect = &v
	}
	if cfg.Ellipse != nil {
		v := *cfg.Ellipse
		m.ellipse = &v
	}
	return m, nil
}

func (m *Multipole) Name() string    { return m.name }
func (m *Multipole) Length() float64 { return m.length }

// MaxOrder returns the highest multipole index the kicks evaluate.
func (m *Multipole) MaxOrder() int { return m.maxOrder }

// Steps returns the number of integration slices.
func (m *Multipole) Steps() int { return m.steps }

// PolyB returns a copy of the normal field coefficients.
func (m *Multipole) PolyB() []float64 {
	return append([]float64(nil), m.polyB...)
}

// PolyA returns a copy of the skew field coefficients.
func (m *Multipole) PolyA() []float64 {
	return append([]float64(nil), m.polyA...)
}

func (m *Multipole) Track(ps beam.Bunch) {
	for i := range ps {
		r := &ps[i]
		if r.Lost() {
			continue
		}
		if !m.enter(r) {
			continue
		}
		for s := 0; s < m.steps; s++ {
			m.slice(r)
		}
		m.exit(r)
	}
}

// slice integrates one drift-kick-drift period. The drift lengths are
// rescaled by the particle's momentum deviation, which the kicks inside
// a slice never change.
func (m *Multipole) slice(r *beam.Coords) {
	norm := 1 / (1 + r[beam.Delta])
	l1 := m.coeff.L1 * norm
	l2 := m.coeff.L2 * norm
	optics.Drift(r, l1)
	optics.ThinKick(r, m.polyA, m.polyB, m.coeff.K1, m.maxOrder)
	optics.Drift(r, l2)
	optics.ThinKick(r, m.polyA, m.polyB, m.coeff.K2, m.maxOrder)
	optics.Drift(r, l2)
	optics.ThinKick(r, m.polyA, m.polyB, m.coeff.K1, m.maxOrder)
	optics.Drift(r, l1)
}

// enter applies the upstream stages: alignment into the magnet frame,
// aperture checks, entrance fringe. It reports false when the particle
// was stopped by an aperture, in which case nothing further may touch it.
func (m *Multipole) enter(r *beam.Coords) bool {
	if m.t1 != nil {
		optics.ApplyShift(r, m.t1)
	}
	if m.r1 != nil {
		optics.ApplyMatrix(r, m.r1)
	}
	if m.rect != nil {
		m.rect.Check(r)
	}
	if m.ellipse != nil {
		m.ellipse.Check(r)
	}
	if r.Lost() {
		return false
	}
	if m.fringeEnter != FringeNone && m.b2 != 0 {
		if m.fringeEnter == FringeLinear {
			optics.LinearFringeEnter(r, m.b2, m.intM, m.intP)
		} else {
			optics.QuadFringeEnter(r, m.b2)
		}
	}
	return true
}

// exit applies the downstream stages: exit fringe, aperture checks,
// alignment back to the lab frame. A particle stopped at the exit
// aperture keeps the coordinates it had there.
func (m *Multipole) exit(r *beam.Coords) {
	if m.fringeExit != FringeNone && m.b2 != 0 {
		if m.fringeExit == FringeLinear {
			optics.LinearFringeExit(r, m.b2, m.intM, m.intP)
		} else {
			optics.QuadFringeExit(r, m.b2)
		}
	}
	if m.rect != nil {
		m.rect.Check(r)
	}
	if m.ellipse != nil {
		m.ellipse.Check(r)
	}
	if r.Lost() {
		return
	}
	if m.r2 != nil {
		optics.ApplyMatrix(r, m.r2)
	}
	if m.t2 != nil {
		optics.ApplyShift(r, m.t2)
	}
}

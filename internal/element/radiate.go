package element

import (
	"math"
	"math/rand/v2"
	"sync/atomic"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/beamkit/beamkit/internal/beam"
	"github.com/beamkit/beamkit/internal/optics"
)

// Physical constants, SI units except energies carried in eV.
const (
	qe       = 1.60217733e-19  // elementary charge, C
	epsilon0 = 8.854187817e-12 // vacuum permittivity, F/m
	clight   = 2.99792458e8    // speed of light, m/s
	hbar     = 1.054571726e-34 // reduced Planck constant, J s
)

// fine-structure constant
var alpha0 = qe * qe / (4 * math.Pi * epsilon0 * hbar * clight)

// mean photon energy of the synchrotron spectrum as a fraction of the
// critical energy
var meanPhotonFraction = 8 / (15 * math.Sqrt(3))

// RadiatingConfig extends a multipole with stochastic photon emission.
// KickX and KickY fold a steering angle into the dipole coefficients,
// which requires a nonzero length.
type RadiatingConfig struct {
	MultipoleConfig

	Energy  float64      // design energy, eV
	Species beam.Species // zero value defaults to electrons
	KickX   float64      // horizontal steering angle, rad
	KickY   float64      // vertical steering angle, rad
	Seed    uint64
}

// RadiatingMultipole is the drift-kick pass with quantum radiation: after
// every slice the bending angle accumulated in that slice sets a local
// curvature, photons are drawn from the synchrotron spectrum, and the
// particle's momentum deviation is reduced accordingly.
//
// Emission is sampled from a stream derived from the seed and a call
// counter, so repeated runs of a single-goroutine tracker reproduce
// exactly. Concurrent trackers stay statistically correct but not
// bitwise reproducible, because chunk boundaries pick different streams.
type RadiatingMultipole struct {
	mp      *Multipole
	energy  float64
	species beam.Species
	seed    uint64
	calls   atomic.Uint64
}

func NewRadiatingMultipole(cfg RadiatingConfig) (*RadiatingMultipole, error) {
	if cfg.Energy <= 0 || math.IsNaN(cfg.Energy) || math.IsInf(cfg.Energy, 0) {
		return nil, &ConfigError{Element: cfg.Name, Field: "Energy", Err: ErrBadEnergy}
	}
	sp := cfg.Species
	if sp.RestEnergy == 0 {
		sp = beam.Electron
	}
	mcfg := cfg.MultipoleConfig
	if cfg.KickX != 0 || cfg.KickY != 0 {
		if cfg.Length == 0 {
			return nil, &ConfigError{Element: cfg.Name, Field: "KickX/KickY", Err: ErrZeroLength}
		}
		pa := append([]float64(nil), mcfg.PolyA...)
		pb := append([]float64(nil), mcfg.PolyB...)
		if len(pa) == 0 || len(pb) == 0 {
			return nil, &ConfigError{Element: cfg.Name, Field: "PolyA/PolyB", Err: ErrPolynomLength}
		}
		pb[0] -= math.Sin(cfg.KickX) / cfg.Length
		pa[0] += math.Sin(cfg.KickY) / cfg.Length
		mcfg.PolyA, mcfg.PolyB = pa, pb
	}
	mp, err := NewMultipole(mcfg)
	if err != nil {
		return nil, err
	}
	return &RadiatingMultipole{
		mp:      mp,
		energy:  cfg.Energy,
		species: sp,
		seed:    cfg.Seed,
	}, nil
}

func (e *RadiatingMultipole) Name() string    { return e.mp.name }
func (e *RadiatingMultipole) Length() float64 { return e.mp.length }

// Energy returns the design energy in eV.
func (e *RadiatingMultipole) Energy() float64 { return e.energy }

func (e *RadiatingMultipole) Track(ps beam.Bunch) {
	src := rand.NewPCG(e.seed, e.calls.Add(1))
	for i := range ps {
		r := &ps[i]
		if r.Lost() {
			continue
		}
		if !e.mp.enter(r) {
			continue
		}
		for s := 0; s < e.mp.steps; s++ {
			e.radiatingSlice(r, src)
		}
		e.mp.exit(r)
	}
}

func (e *RadiatingMultipole) radiatingSlice(r *beam.Coords, src rand.Source) {
	pNorm := 1 / (1 + r[beam.Delta])
	xp0 := r[beam.PX] * pNorm
	yp0 := r[beam.PY] * pNorm
	dpp0 := r[beam.Delta]
	s0 := r[beam.CT]

	e.mp.slice(r)

	// Curvature from the net deflection over this slice.
	dxp := r[beam.PX]*pNorm - xp0
	dyp := r[beam.PY]*pNorm - yp0
	bend := math.Sqrt(dxp*dxp + dyp*dyp)
	if bend == 0 {
		return
	}
	path := e.mp.coeff.SL + (r[beam.CT] - s0)
	rho := path / bend

	energy := (1 + dpp0) * e.energy
	gamma := e.species.Gamma(energy)
	ec := 1.5 * gamma * gamma * gamma * clight * hbar / qe / rho
	ng := 5 * math.Sqrt(3) * alpha0 * gamma / 6 / rho * path
	if ng <= 0 {
		return
	}

	nph := int(distuv.Poisson{Lambda: ng, Src: src}.Rand())
	if nph == 0 {
		return
	}
	spectrum := distuv.Exponential{Rate: 1 / (meanPhotonFraction * ec), Src: src}
	var de float64
	for n := 0; n < nph; n++ {
		de += spectrum.Rand()
	}
	r[beam.Delta] -= de / e.energy
	r[beam.PX] *= pNorm * (1 + r[beam.Delta])
	r[beam.PY] *= pNorm * (1 + r[beam.Delta])
}

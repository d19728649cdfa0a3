package lattice

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/beamkit/beamkit/internal/element"
	"github.com/beamkit/beamkit/internal/optics"
)

// ShiftPair builds the entrance and exit translation vectors for a
// magnet displaced by (dx, dy) in the lab frame. The entrance block
// moves particles into the magnet frame, the exit block moves them back.
func ShiftPair(dx, dy float64) (t1, t2 [6]float64) {
	t1 = [6]float64{-dx, 0, -dy, 0, 0, 0}
	t2 = [6]float64{dx, 0, dy, 0, 0, 0}
	return t1, t2
}

// TiltPair builds the entrance and exit rotations for a magnet rolled
// by psi radians about the beam axis. The exit matrix is the transpose.
func TiltPair(psi float64) (r1, r2 optics.Matrix6) {
	c := math.Cos(psi)
	s := math.Sin(psi)

	r1 = optics.Identity6()
	r1.Set(0, 0, c)
	r1.Set(0, 2, s)
	r1.Set(2, 0, -s)
	r1.Set(2, 2, c)
	r1.Set(1, 1, c)
	r1.Set(1, 3, s)
	r1.Set(3, 1, -s)
	r1.Set(3, 3, c)

	r2 = optics.Identity6()
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			r2.Set(i, j, r1.At(j, i))
		}
	}
	return r1, r2
}

// Misalign fills the alignment blocks of cfg for a transverse shift and
// a roll about the beam axis. Zero arguments leave the matching blocks
// unset so the element skips them entirely.
func Misalign(cfg *element.MultipoleConfig, dx, dy, tilt float64) {
	if dx != 0 || dy != 0 {
		t1, t2 := ShiftPair(dx, dy)
		cfg.EntranceShift = &t1
		cfg.ExitShift = &t2
	}
	if tilt != 0 {
		r1, r2 := TiltPair(tilt)
		cfg.EntranceRot = &r1
		cfg.ExitRot = &r2
	}
}

// ErrorModel draws random alignment errors for a set of magnets. Values
// come from a truncated normal distribution: draws beyond Cut standard
// deviations are rejected and retried, keeping outliers out of the
// machine the same way survey teams would.
type ErrorModel struct {
	SigmaX    float64 // rms horizontal shift, m
	SigmaY    float64 // rms vertical shift, m
	SigmaTilt float64 // rms roll, rad
	Cut       float64 // truncation, standard deviations; 0 means 2
	Seed      uint64
}

// Apply draws one error set per config and installs the alignment
// blocks in place.
func (em ErrorModel) Apply(cfgs []*element.MultipoleConfig) {
	cut := em.Cut
	if cut == 0 {
		cut = 2
	}
	src := rand.NewPCG(em.Seed, em.Seed^0x5851f42d4c957f2d)
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	draw := func(sigma float64) float64 {
		if sigma == 0 {
			return 0
		}
		z := norm.Rand()
		for math.Abs(z) > cut {
			z = norm.Rand()
		}
		return sigma * z
	}

	for _, cfg := range cfgs {
		dx := draw(em.SigmaX)
		dy := draw(em.SigmaY)
		tilt := draw(em.SigmaTilt)
		Misalign(cfg, dx, dy, tilt)
	}
}

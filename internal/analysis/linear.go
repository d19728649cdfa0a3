package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PlaneOptics carries the linear lattice functions of one transverse
// plane at the observation point.
type PlaneOptics struct {
	Stable bool
	Tune   float64 // fractional tune, NaN when unstable
	Beta   float64 // m
	Alpha  float64
}

// LinearOptics reads stability, tune, and Twiss parameters off the 2x2
// diagonal blocks of a one-turn matrix.
func LinearOptics(m *mat.Dense) (hor, ver PlaneOptics, err error) {
	r, c := m.Dims()
	if r != 6 || c != 6 {
		return hor, ver, fmt.Errorf("analysis: expected a 6x6 matrix, got %dx%d", r, c)
	}
	hor = planeOptics(m.At(0, 0), m.At(0, 1), m.At(1, 0), m.At(1, 1))
	ver = planeOptics(m.At(2, 2), m.At(2, 3), m.At(3, 2), m.At(3, 3))
	return hor, ver, nil
}

func planeOptics(a, b, _, d float64) PlaneOptics {
	tr := a + d
	if math.Abs(tr) >= 2 {
		return PlaneOptics{Stable: false, Tune: math.NaN(), Beta: math.NaN(), Alpha: math.NaN()}
	}

	mu := math.Acos(tr / 2)
	// The sign of the focusing term resolves which branch of acos the
	// phase advance sits on.
	if b < 0 {
		mu = 2*math.Pi - mu
	}
	sin := math.Sin(mu)

	return PlaneOptics{
		Stable: true,
		Tune:   mu / (2 * math.Pi),
		Beta:   b / sin,
		Alpha:  (a - d) / (2 * sin),
	}
}

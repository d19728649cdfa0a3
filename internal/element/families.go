package element

import "math"

// DefaultSteps is the slice count used when a family constructor or
// config file leaves it unset.
const DefaultSteps = 10

// NewQuadrupole builds a normal quadrupole of integrated gradient
// k1 (1/m^2).
func NewQuadrupole(name string, length, k1 float64, steps int) (*Multipole, error) {
	if steps == 0 {
		steps = DefaultSteps
	}
	return NewMultipole(MultipoleConfig{
		Name:     name,
		Length:   length,
		PolyA:    []float64{0, 0},
		PolyB:    []float64{0, k1},
		MaxOrder: 1,
		Steps:    steps,
	})
}

// NewSextupole builds a normal sextupole of strength k2 (1/m^3).
func NewSextupole(name string, length, k2 float64, steps int) (*Multipole, error) {
	if steps == 0 {
		steps = DefaultSteps
	}
	return NewMultipole(MultipoleConfig{
		Name:     name,
		Length:   length,
		PolyA:    []float64{0, 0, 0},
		PolyB:    []float64{0, 0, k2},
		MaxOrder: 2,
		Steps:    steps,
	})
}

// NewOctupole builds a normal octupole of strength k3 (1/m^4).
func NewOctupole(name string, length, k3 float64, steps int) (*Multipole, error) {
	if steps == 0 {
		steps = DefaultSteps
	}
	return NewMultipole(MultipoleConfig{
		Name:     name,
		Length:   length,
		PolyA:    []float64{0, 0, 0, 0},
		PolyB:    []float64{0, 0, 0, k3},
		MaxOrder: 3,
		Steps:    steps,
	})
}

// NewCorrector builds a steering magnet that bends by kickX and kickY
// radians. The angles are folded into the dipole field coefficients, so
// the element needs a nonzero length.
func NewCorrector(name string, length, kickX, kickY float64, steps int) (*Multipole, error) {
	if length == 0 {
		return nil, &ConfigError{Element: name, Field: "Length", Err: ErrZeroLength}
	}
	if steps == 0 {
		steps = DefaultSteps
	}
	return NewMultipole(MultipoleConfig{
		Name:     name,
		Length:   length,
		PolyA:    []float64{math.Sin(kickY) / length},
		PolyB:    []float64{-math.Sin(kickX) / length},
		MaxOrder: 0,
		Steps:    steps,
	})
}

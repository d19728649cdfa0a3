package beam

import "math"

// Phase-space coordinate indices: transverse positions in meters,
// transverse momenta normalized to the reference momentum, relative
// momentum deviation, and path-length lag in meters.
const (
	X = iota
	PX
	Y
	PY
	Delta
	CT
)

// Coords is one particle's 6D phase-space state. A NaN in the X slot
// marks the particle lost; the remaining coordinates keep their last
// values and must not be touched again.
type Coords [6]float64

func (c *Coords) Lost() bool {
	return math.IsNaN(c[X])
}

func (c *Coords) MarkLost() {
	c[X] = math.NaN()
}

func (c *Coords) IsFinite() bool {
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

package optics

import (
	"math"

	"github.com/beamkit/beamkit/internal/beam"
)

// FringeInts holds the five field-integral moments of one magnet edge
// used by the linear fringe model: I0, I1, I2, I3 and Lambda2, each
// normalized by the quadrupole strength.
type FringeInts [5]float64

// QuadFringeEnter applies the hard-edge (Lee-Whiting) quadrupole fringe
// map at the upstream face. b2 is the quadrupole coefficient.
func QuadFringeEnter(r *beam.Coords, b2 float64) {
	u := b2 / (12 * (1 + r[beam.Delta]))
	x2 := r[beam.X] * r[beam.X]
	y2 := r[beam.Y] * r[beam.Y]
	xy := r[beam.X] * r[beam.Y]
	gx := u * (x2 + 3*y2) * r[beam.X]
	gy := u * (y2 + 3*x2) * r[beam.Y]
	dpx := 3 * u * (2*xy*r[beam.PY] - (x2+y2)*r[beam.PX])
	dpy := 3 * u * (2*xy*r[beam.PX] - (x2+y2)*r[beam.PY])

	r[beam.X] += gx
	r[beam.Y] -= gy
	r[beam.CT] -= (gy*r[beam.PY] - gx*r[beam.PX]) / (1 + r[beam.Delta])
	r[beam.PX] += dpx
	r[beam.PY] -= dpy
}

// QuadFringeExit is the downstream hard-edge map. It is the sign-flipped
// expansion, not a reuse of the entrance map.
func QuadFringeExit(r *beam.Coords, b2 float64) {
	u := b2 / (12 * (1 + r[beam.Delta]))
	x2 := r[beam.X] * r[beam.X]
	y2 := r[beam.Y] * r[beam.Y]
	xy := r[beam.X] * r[beam.Y]
	gx := u * (x2 + 3*y2) * r[beam.X]
	gy := u * (y2 + 3*x2) * r[beam.Y]
	dpx := 3 * u * (2*xy*r[beam.PY] - (x2+y2)*r[beam.PX])
	dpy := 3 * u * (2*xy*r[beam.PX] - (x2+y2)*r[beam.PY])

	r[beam.X] -= gx
	r[beam.Y] += gy
	r[beam.CT] += (gy*r[beam.PY] - gx*r[beam.PX]) / (1 + r[beam.Delta])
	r[beam.PX] -= dpx
	r[beam.PY] += dpy
}

// partialFringe builds the per-plane 2x2 blocks of one linear fringe
// half-map from the edge integrals. The vertical plane is the k1 -> -k1
// image of the horizontal one. second selects the outer half-map, whose
// I1 term carries the I0*I2 cross correction.
func partialFringe(k1, inSign float64, fi *FringeInts, second bool) (rx, ry [4]float64) {
	k1sq := k1 * k1

	i1 := fi[1]
	if second {
		i1 = fi[1] + fi[0]*fi[2]
	}

	j1x := inSign * (k1*i1 - 2*k1sq*fi[3]/3)
	j2x := inSign * k1 * fi[2]
	j3x := inSign * k1sq * (fi[2] + fi[4])

	j1y := inSign * (-k1*i1 - 2*k1sq*fi[3]/3)
	j2y := -j2x
	j3y := j3x

	ex := math.Exp(j1x)
	rx = [4]float64{ex, j2x / ex, ex * j3x, (1 + j2x*j3x) / ex}

	ey := math.Exp(j1y)
	ry = [4]float64{ey, j2y / ey, ey * j3y, (1 + j2y*j3y) / ey}
	return rx, ry
}

// applyPlanes applies the two 2x2 blocks as a sequential update. The
// momentum rows deliberately read the already-updated positions, making
// each block a shear-ordered composition rather than a plain matrix
// multiply.
func applyPlanes(r *beam.Coords, rx, ry [4]float64) {
	r[beam.X] = rx[0]*r[beam.X] + rx[1]*r[beam.PX]
	r[beam.PX] = rx[2]*r[beam.X] + rx[3]*r[beam.PX]
	r[beam.Y] = ry[0]*r[beam.Y] + ry[1]*r[beam.PY]
	r[beam.PY] = ry[2]*r[beam.Y] + ry[3]*r[beam.PY]
}

// LinearFringeEnter applies the integral-based entrance fringe: a linear
// half-map, the hard-edge kick, then the second half-map re-evaluated at
// the possibly changed momentum deviation. On entry the two integral
// vectors act in swapped roles relative to the exit side.
func LinearFringeEnter(r *beam.Coords, b2 float64, intM, intP *FringeInts) {
	k1 := b2 / (1 + r[beam.Delta])
	rx, ry := partialFringe(k1, -1, intP, false)
	applyPlanes(r, rx, ry)

	QuadFringeEnter(r, b2)

	k1 = b2 / (1 + r[beam.Delta])
	rx, ry = partialFringe(k1, -1, intM, true)
	applyPlanes(r, rx, ry)
}

// LinearFringeExit is the downstream integral-based fringe.
func LinearFringeExit(r *beam.Coords, b2 float64, intM, intP *FringeInts) {
	k1 := b2 / (1 + r[beam.Delta])
	rx, ry := partialFringe(k1, 1, intM, false)
	applyPlanes(r, rx, ry)

	QuadFringeExit(r, b2)

	k1 = b2 / (1 + r[beam.Delta])
	rx, ry = partialFringe(k1, 1, intP, true)
	applyPlanes(r, rx, ry)
}

package optics

import "github.com/beamkit/beamkit/internal/beam"

// ThinKick applies the instantaneous momentum change of the multipole
// field B + iA evaluated at (x, y), scaled by the integrated length k.
// The field sum is the Horner recurrence over the complex polynomial
// sum_n (b[n] + i*a[n]) * (x + iy)^n up to maxOrder.
func ThinKick(r *beam.Coords, a, b []float64, k float64, maxOrder int) {
	reSum := b[maxOrder]
	imSum := a[maxOrder]
	for i := maxOrder - 1; i >= 0; i-- {
		reTmp := reSum*r[beam.X] - imSum*r[beam.Y] + b[i]
		imSum = imSum*r[beam.X] + reSum*r[beam.Y] + a[i]
		reSum = reTmp
	}
	r[beam.PX] -= k * reSum
	r[beam.PY] += k * imSum
}

package optics

import "github.com/beamkit/beamkit/internal/beam"

// RectAperture is the rectangular vacuum-chamber limit
// [xmin, xmax, ymin, ymax] in meters.
type RectAperture [4]float64

// Check marks the particle lost when its transverse position is outside
// the limits. Coordinates other than the loss marker stay untouched.
func (ap *RectAperture) Check(r *beam.Coords) {
	if r[beam.X] < ap[0] || r[beam.X] > ap[1] || r[beam.Y] < ap[2] || r[beam.Y] > ap[3] {
		r.MarkLost()
	}
}

// EllipseAperture is the elliptical chamber limit given by the two
// semi-axes [rx, ry] in meters.
type EllipseAperture [2]float64

func (ap *EllipseAperture) Check(r *beam.Coords) {
	xn := r[beam.X] / ap[0]
	yn := r[beam.Y] / ap[1]
	if xn*xn+yn*yn >= 1 {
		r.MarkLost()
	}
}

package optics

import (
	"math"

	"github.com/beamkit/beamkit/internal/beam"
)

// Drift advances the transverse positions over a field-free gap in the
// paraxial approximation. normL is the geometric length already divided
// by (1+delta); the caller precomputes it once per slice.
func Drift(r *beam.Coords, normL float64) {
	r[beam.X] += normL * r[beam.PX]
	r[beam.Y] += normL * r[beam.PY]
	r[beam.CT] += normL * (r[beam.PX]*r[beam.PX] + r[beam.PY]*r[beam.PY]) / (2 * (1 + r[beam.Delta]))
}

// Pz returns the longitudinal momentum sqrt((1+delta)^2 - px^2 - py^2).
func Pz(r *beam.Coords) float64 {
	d := 1 + r[beam.Delta]
	return math.Sqrt(d*d - r[beam.PX]*r[beam.PX] - r[beam.PY]*r[beam.PY])
}

// ExactDrift advances positions over length l without the small-angle
// expansion. The path-length term is relative to the reference particle.
func ExactDrift(r *beam.Coords, l float64) {
	normL := l / Pz(r)
	r[beam.X] += r[beam.PX] * normL
	r[beam.Y] += r[beam.PY] * normL
	r[beam.CT] += normL*(1+r[beam.Delta]) - l
}

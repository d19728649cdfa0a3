package optics

import "github.com/beamkit/beamkit/internal/beam"

// MultipoleFringe applies the generalized hard-edge fringe map of the
// full multipole expansion (Forest 13.29), summed over every field
// component up to maxOrder. entrance selects the upstream edge; the
// downstream edge is its sign image.
func MultipoleFringe(r *beam.Coords, a, b []float64, maxOrder int, entrance bool) {
	sign := 1.0
	if !entrance {
		sign = -1.0
	}

	var fx, fy, fxx, fxy, fyx, fyy float64

	// re + i*im carries (x + iy)^(n+1) across orders.
	re, im := 1.0, 0.0
	for n := 0; n <= maxOrder; n++ {
		bn := b[n]
		an := a[n]
		j := float64(n + 1)

		dre, dim := re, im
		re = dre*r[beam.X] - dim*r[beam.Y]
		im = dre*r[beam.Y] + dim*r[beam.X]

		f1 := -sign / (4 * (j + 1))
		u := f1 * (bn*re - an*im)
		v := f1 * (bn*im + an*re)
		du := f1 * (bn*dre - an*dim)
		dv := f1 * (bn*dim + an*dre)

		dux := j * du
		dvx := j * dv
		duy := -j * dv
		dvy := j * du

		nf := (j + 2) / j

		fx += u*r[beam.X] + nf*v*r[beam.Y]
		fy += u*r[beam.Y] - nf*v*r[beam.X]

		fxx += dux*r[beam.X] + u + nf*r[beam.Y]*dvx
		fxy += duy*r[beam.X] + nf*v + nf*r[beam.Y]*dvy
		fyx += dux*r[beam.Y] - nf*v - nf*r[beam.X]*dvx
		fyy += duy*r[beam.Y] + u - nf*r[beam.X]*dvy
	}

	del := 1 / (1 + r[beam.Delta])

	ma := 1 - fxx*del
	mb := -fyx * del
	mc := -fxy * del
	md := 1 - fyy*del
	det := ma*md - mb*mc

	r[beam.X] -= fx * del
	r[beam.Y] -= fy * del

	px := (md*r[beam.PX] - mb*r[beam.PY]) / det
	py := (ma*r[beam.PY] - mc*r[beam.PX]) / det
	r[beam.PX] = px
	r[beam.PY] = py
	r[beam.CT] -= (px*fx + py*fy) * del * del
}

package optics

import "github.com/beamkit/beamkit/internal/beam"

// Matrix6 is a 6x6 phase-space transform in row-major order.
type Matrix6 [36]float64

func Identity6() Matrix6 {
	var m Matrix6
	for i := 0; i < 6; i++ {
		m[i*6+i] = 1
	}
	return m
}

func (m *Matrix6) At(i, j int) float64 {
	return m[i*6+j]
}

func (m *Matrix6) Set(i, j int, v float64) {
	m[i*6+j] = v
}

// ApplyShift adds a fixed 6-vector offset to the particle state.
func ApplyShift(r *beam.Coords, t *[6]float64) {
	for i := 0; i < 6; i++ {
		r[i] += t[i]
	}
}

// ApplyMatrix replaces the state with m*r.
func ApplyMatrix(r *beam.Coords, m *Matrix6) {
	var tmp beam.Coords
	for i := 0; i < 6; i++ {
		s := 0.0
		for j := 0; j < 6; j++ {
			s += m[i*6+j] * r[j]
		}
		tmp[i] = s
	}
	*r = tmp
}

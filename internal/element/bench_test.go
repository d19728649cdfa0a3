package element

import (
	"testing"

	"github.com/beamkit/beamkit/internal/beam"
)

func benchBunch(n int) beam.Bunch {
	ps := beam.NewBunch(n)
	for i := range ps {
		ps[i][beam.X] = 1e-3
		ps[i][beam.PY] = 1e-4
	}
	return ps
}

func BenchmarkQuadrupoleTrack(b *testing.B) {
	quad, err := NewQuadrupole("qf", 0.5, 1.2, 10)
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}
	ps := benchBunch(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		quad.Track(ps)
	}
}

func BenchmarkSextupoleTrack(b *testing.B) {
	sx, err := NewSextupole("sd", 0.2, 30.0, 10)
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}
	ps := benchBunch(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sx.Track(ps)
	}
}

func BenchmarkExactMultipoleTrack(b *testing.B) {
	ex, err := NewExactMultipole(ExactMultipoleConfig{
		Name:     "qf",
		Length:   0.5,
		PolyA:    []float64{0, 0},
		PolyB:    []float64{0, 1.2},
		MaxOrder: 1,
		Steps:    10,
		Fringe:   true,
	})
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}
	ps := benchBunch(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ex.Track(ps)
	}
}

func BenchmarkRadiatingTrack(b *testing.B) {
	rad, err := NewRadiatingMultipole(RadiatingConfig{
		MultipoleConfig: MultipoleConfig{
			Name:     "qrad",
			Length:   0.5,
			PolyA:    []float64{0, 0},
			PolyB:    []float64{0, 1.2},
			MaxOrder: 1,
			Steps:    10,
		},
		Energy: 3e9,
		Seed:   1,
	})
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}
	ps := benchBunch(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rad.Track(ps)
	}
}

package monitor

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/beamkit/beamkit/internal/beam"
)

// BeamStats accumulates per-turn centroid, size, and emittance of the
// live part of the bunch.
type BeamStats struct {
	MeanX []float64
	MeanY []float64
	StdX  []float64
	StdY  []float64
	EmitX []float64
	EmitY []float64
}

func NewBeamStats() *BeamStats {
	return &BeamStats{}
}

func (s *BeamStats) OnTurn(turn int, ps beam.Bunch) {
	var xs, pxs, ys, pys []float64
	for i := range ps {
		if ps[i].Lost() {
			continue
		}
		xs = append(xs, ps[i][beam.X])
		pxs = append(pxs, ps[i][beam.PX])
		ys = append(ys, ps[i][beam.Y])
		pys = append(pys, ps[i][beam.PY])
	}
	if len(xs) == 0 {
		s.MeanX = append(s.MeanX, math.NaN())
		s.MeanY = append(s.MeanY, math.NaN())
		s.StdX = append(s.StdX, math.NaN())
		s.StdY = append(s.StdY, math.NaN())
		s.EmitX = append(s.EmitX, math.NaN())
		s.EmitY = append(s.EmitY, math.NaN())
		return
	}

	s.MeanX = append(s.MeanX, stat.Mean(xs, nil))
	s.MeanY = append(s.MeanY, stat.Mean(ys, nil))
	s.StdX = append(s.StdX, stat.StdDev(xs, nil))
	s.StdY = append(s.StdY, stat.StdDev(ys, nil))
	s.EmitX = append(s.EmitX, Emittance(xs, pxs))
	s.EmitY = append(s.EmitY, Emittance(ys, pys))
}

// Turns returns the number of accumulated turns.
func (s *BeamStats) Turns() int {
	return len(s.MeanX)
}

// Emittance returns the statistical emittance sqrt(<u^2><u'^2>-<uu'>^2)
// of one transverse plane, with the centroid removed.
func Emittance(us, pus []float64) float64 {
	if len(us) < 2 || len(us) != len(pus) {
		return math.NaN()
	}
	vu := stat.Variance(us, nil)
	vp := stat.Variance(pus, nil)
	cov := stat.Covariance(us, pus, nil)

	det := vu*vp - cov*cov
	if det <= 0 {
		return 0
	}
	return math.Sqrt(det)
}

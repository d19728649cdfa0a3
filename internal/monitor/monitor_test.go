package monitor

import (
	"math"
	"testing"

	"github.com/beamkit/beamkit/internal/beam"
)

func TestTurnRecorderFollowsOneParticle(t *testing.T) {
	r := NewTurnRecorder(1)
	ps := beam.Bunch{
		{1, 2, 3, 4, 0, 0},
		{5, 6, 7, 8, 0, 0},
	}

	r.OnTurn(0, ps)
	ps[1][beam.X] = 9
	r.OnTurn(1, ps)

	if r.Turns() != 2 {
		t.Fatalf("expected 2 recorded turns, got %d", r.Turns())
	}
	if r.X[0] != 5 || r.X[1] != 9 {
		t.Errorf("expected x history [5 9], got %v", r.X)
	}
	if r.PY[0] != 8 {
		t.Errorf("expected py 8, got %v", r.PY[0])
	}
}

func TestTurnRecorderStopsAtLoss(t *testing.T) {
	r := NewTurnRecorder(0)
	ps := beam.Bunch{{1e-3, 0, 0, 0, 0, 0}}

	r.OnTurn(0, ps)
	ps[0].MarkLost()
	r.OnTurn(1, ps)
	r.OnTurn(2, ps)

	if r.Turns() != 1 {
		t.Errorf("expected recording to stop at loss, got %d turns", r.Turns())
	}
}

func TestTurnRecorderOutOfRange(t *testing.T) {
	r := NewTurnRecorder(5)
	r.OnTurn(0, beam.NewBunch(2))

	if r.Turns() != 0 {
		t.Errorf("expected no samples for an out-of-range particle, got %d", r.Turns())
	}
}

func TestBeamStatsCentroidAndSize(t *testing.T) {
	s := NewBeamStats()
	ps := beam.Bunch{
		{1e-3, 0, 2e-3, 0, 0, 0},
		{3e-3, 0, 2e-3, 0, 0, 0},
	}
	s.OnTurn(0, ps)

	if s.Turns() != 1 {
		t.Fatalf("expected 1 turn, got %d", s.Turns())
	}
	if math.Abs(s.MeanX[0]-2e-3) > 1e-15 {
		t.Errorf("expected mean x 2e-3, got %v", s.MeanX[0])
	}
	if math.Abs(s.MeanY[0]-2e-3) > 1e-15 {
		t.Errorf("expected mean y 2e-3, got %v", s.MeanY[0])
	}
	// Sample standard deviation of {1e-3, 3e-3} is sqrt(2)*1e-3.
	want := math.Sqrt2 * 1e-3
	if math.Abs(s.StdX[0]-want) > 1e-15 {
		t.Errorf("expected std x %v, got %v", want, s.StdX[0])
	}
	if s.StdY[0] != 0 {
		t.Errorf("expected zero vertical spread, got %v", s.StdY[0])
	}
}

func TestBeamStatsIgnoresLost(t *testing.T) {
	s := NewBeamStats()
	ps := beam.Bunch{
		{1e-3, 0, 0, 0, 0, 0},
		{9e-3, 0, 0, 0, 0, 0},
	}
	ps[1].MarkLost()
	s.OnTurn(0, ps)

	if s.MeanX[0] != 1e-3 {
		t.Errorf("expected the lost particle to be excluded, got mean %v", s.MeanX[0])
	}
}

func TestBeamStatsAllLost(t *testing.T) {
	s := NewBeamStats()
	ps := beam.NewBunch(2)
	ps[0].MarkLost()
	ps[1].MarkLost()
	s.OnTurn(0, ps)

	if !math.IsNaN(s.MeanX[0]) {
		t.Errorf("expected NaN stats for an empty bunch, got %v", s.MeanX[0])
	}
}

func TestEmittance(t *testing.T) {
	// A perfectly correlated line has zero area.
	us := []float64{1e-3, 2e-3, 3e-3, 4e-3}
	pus := []float64{1e-4, 2e-4, 3e-4, 4e-4}
	if e := Emittance(us, pus); math.Abs(e) > 1e-12 {
		t.Errorf("expected near-zero emittance for a line, got %v", e)
	}

	// An uncorrelated cross gives sqrt(var_u*var_pu).
	us = []float64{-1e-3, 1e-3, 0, 0}
	pus = []float64{0, 0, -1e-4, 1e-4}
	vu := (2 * 1e-6) / 3 // sample variance of {-1e-3,1e-3,0,0}
	vp := (2 * 1e-8) / 3
	want := math.Sqrt(vu * vp)
	if e := Emittance(us, pus); math.Abs(e-want) > 1e-12 {
		t.Errorf("expected emittance %v, got %v", want, e)
	}

	if !math.IsNaN(Emittance([]float64{1}, []float64{1})) {
		t.Error("expected NaN for fewer than two samples")
	}
}

func TestLossMonitor(t *testing.T) {
	m := NewLossMonitor()
	ps := beam.NewBunch(4)

	m.OnTurn(0, ps)
	ps[0].MarkLost()
	m.OnTurn(1, ps)
	ps[3].MarkLost()
	m.OnTurn(2, ps)

	want := []int{4, 3, 2}
	for i, n := range want {
		if m.Alive[i] != n {
			t.Errorf("turn %d: expected %d alive, got %d", i, n, m.Alive[i])
		}
	}
	if tr := m.Transmission(4); math.Abs(tr-0.5) > 1e-15 {
		t.Errorf("expected transmission 0.5, got %v", tr)
	}
	if NewLossMonitor().Transmission(4) != 0 {
		t.Error("expected zero transmission with no data")
	}
}

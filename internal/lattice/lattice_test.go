package lattice

import (
	"testing"

	"github.com/beamkit/beamkit/internal/beam"
	"github.com/beamkit/beamkit/internal/element"
	"github.com/beamkit/beamkit/internal/optics"
)

func TestLatticeLength(t *testing.T) {
	quad, err := element.NewQuadrupole("qf", 0.5, 1.2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := New("cell",
		element.NewDrift("d1", 1.0),
		quad,
		element.NewMarker("bpm"),
	)

	if l.Len() != 3 {
		t.Errorf("expected 3 elements, got %d", l.Len())
	}
	if l.Length() != 1.5 {
		t.Errorf("expected length 1.5, got %v", l.Length())
	}
}

func TestLatticeByName(t *testing.T) {
	q1, err := element.NewQuadrupole("qf", 0.5, 1.2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q2, err := element.NewQuadrupole("qd", 0.5, -1.2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q3, err := element.NewQuadrupole("qf", 0.5, 1.2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := New("cell", q1, q2, q3)

	idx := l.ByName("qf")
	if len(idx) != 2 || idx[0] != 0 || idx[1] != 2 {
		t.Errorf("expected indices [0 2], got %v", idx)
	}
	if got := l.ByName("missing"); got != nil {
		t.Errorf("expected nil for an unknown name, got %v", got)
	}
}

func TestPropagateRunsInOrder(t *testing.T) {
	cor, err := element.NewCorrector("ch", 0.5, 2e-3, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scraper := element.NewCollimator("scraper", optics.RectAperture{-1e-3, 1e-3, -1e-3, 1e-3})
	drift := element.NewDrift("d1", 1.0)

	// Kick before the scraper: the deflected particle walks past the jaw.
	kicked := New("a", cor, drift, scraper)
	ps := beam.Bunch{{0, 0, 0, 0, 0, 0}}
	kicked.Propagate(ps)
	if !ps[0].Lost() {
		t.Error("expected the kicked particle to hit the downstream scraper")
	}

	// Scraper first: the particle passes it on axis and survives.
	safe := New("b", scraper, cor, drift)
	ps = beam.Bunch{{0, 0, 0, 0, 0, 0}}
	safe.Propagate(ps)
	if ps[0].Lost() {
		t.Error("expected the particle to survive when the scraper comes first")
	}
}

func TestAppend(t *testing.T) {
	l := New("line")
	l.Append(element.NewMarker("m1"), element.NewMarker("m2"))
	l.Append(element.NewDrift("d1", 0.25))

	if l.Len() != 3 {
		t.Errorf("expected 3 elements, got %d", l.Len())
	}
	if l.Length() != 0.25 {
		t.Errorf("expected length 0.25, got %v", l.Length())
	}
}

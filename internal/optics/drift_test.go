package optics

import (
	"math"
	"testing"

	"github.com/beamkit/beamkit/internal/beam"
)

func TestDrift(t *testing.T) {
	r := beam.Coords{0, 1e-3, 0, -2e-3, 0, 0}
	Drift(&r, 2.0)

	if math.Abs(r[beam.X]-2e-3) > 1e-18 {
		t.Errorf("expected x 2e-3, got %g", r[beam.X])
	}
	if math.Abs(r[beam.Y]+4e-3) > 1e-18 {
		t.Errorf("expected y -4e-3, got %g", r[beam.Y])
	}

	wantCT := 2.0 * (1e-6 + 4e-6) / 2
	if math.Abs(r[beam.CT]-wantCT) > 1e-18 {
		t.Errorf("expected ct %g, got %g", wantCT, r[beam.CT])
	}
}

func TestDriftOnAxis(t *testing.T) {
	r := beam.Coords{1e-3, 0, -1e-3, 0, 0.01, 0}
	Drift(&r, 5.0)

	if r[beam.X] != 1e-3 || r[beam.Y] != -1e-3 || r[beam.CT] != 0 {
		t.Errorf("zero-momentum particle should not move, got %v", r)
	}
}

func TestExactDriftOnMomentum(t *testing.T) {
	r := beam.Coords{0, 0, 0, 0, 0, 0}
	ExactDrift(&r, 3.0)

	if r[beam.CT] != 0 {
		t.Errorf("reference particle should have zero path lag, got %g", r[beam.CT])
	}
}

func TestExactDriftMatchesParaxial(t *testing.T) {
	// For small angles the exact map and the expanded map agree to
	// higher order than the angle squared.
	px := 1e-4
	l := 2.0

	exact := beam.Coords{0, px, 0, 0, 0, 0}
	ExactDrift(&exact, l)

	par := beam.Coords{0, px, 0, 0, 0, 0}
	Drift(&par, l)

	if math.Abs(exact[beam.X]-par[beam.X]) > 1e-11 {
		t.Errorf("position maps diverge: exact %g, paraxial %g", exact[beam.X], par[beam.X])
	}
	if math.Abs(exact[beam.CT]-par[beam.CT]) > 1e-11 {
		t.Errorf("path-length maps diverge: exact %g, paraxial %g", exact[beam.CT], par[beam.CT])
	}
}

func TestPz(t *testing.T) {
	r := beam.Coords{0, 0.3, 0, 0.4, 0, 0}
	got := Pz(&r)

	want := math.Sqrt(1 - 0.09 - 0.16)
	if math.Abs(got-want) > 1e-15 {
		t.Errorf("expected pz %g, got %g", want, got)
	}
}

package element

import (
	"errors"
	"math"
	"testing"

	"github.com/beamkit/beamkit/internal/beam"
	"github.com/beamkit/beamkit/internal/optics"
)

func TestQuadrupoleAgainstAnalyticMap(t *testing.T) {
	const (
		k1     = 1.2
		length = 0.5
		x0     = 1e-3
		y0     = 0.5e-3
	)
	quad, err := NewQuadrupole("qf", length, k1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ps := beam.Bunch{{x0, 0, y0, 0, 0, 0}}
	quad.Track(ps)

	omega := math.Sqrt(k1)
	wantX := x0 * math.Cos(omega*length)
	wantPX := -x0 * omega * math.Sin(omega*length)
	wantY := y0 * math.Cosh(omega*length)
	wantPY := y0 * omega * math.Sinh(omega*length)

	const tol = 1e-10
	if math.Abs(ps[0][beam.X]-wantX) > tol {
		t.Errorf("expected x %v, got %v", wantX, ps[0][beam.X])
	}
	if math.Abs(ps[0][beam.PX]-wantPX) > tol {
		t.Errorf("expected px %v, got %v", wantPX, ps[0][beam.PX])
	}
	if math.Abs(ps[0][beam.Y]-wantY) > tol {
		t.Errorf("expected y %v, got %v", wantY, ps[0][beam.Y])
	}
	if math.Abs(ps[0][beam.PY]-wantPY) > tol {
		t.Errorf("expected py %v, got %v", wantPY, ps[0][beam.PY])
	}
}

func TestQuadrupoleFourthOrderConvergence(t *testing.T) {
	track := func(steps int) float64 {
		quad, err := NewQuadrupole("qf", 1.0, 5.0, steps)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ps := beam.Bunch{{1e-3, 0, 0, 0, 0, 0}}
		quad.Track(ps)
		return ps[0][beam.X]
	}

	ref := track(256)
	err4 := math.Abs(track(4) - ref)
	err8 := math.Abs(track(8) - ref)
	err16 := math.Abs(track(16) - ref)

	// A fourth-order scheme shrinks the error by 16 per halving of the
	// slice width. A factor of 10 cleanly separates it from second order.
	if err8 >= err4/10 {
		t.Errorf("expected err(8) well below err(4)/10, got %v vs %v", err8, err4)
	}
	if err16 >= err8/10 {
		t.Errorf("expected err(16) well below err(8)/10, got %v vs %v", err16, err8)
	}
}

func TestMultipoleReversible(t *testing.T) {
	cfg := MultipoleConfig{
		Name:     "sx",
		Length:   0.3,
		PolyA:    []float64{0, 0.05, 0.2},
		PolyB:    []float64{0.01, 1.1, 8.0},
		MaxOrder: 2,
		Steps:    7,
	}
	fwd, err := NewMultipole(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Length = -cfg.Length
	bwd, err := NewMultipole(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := beam.Coords{1e-3, -2e-4, -5e-4, 1e-4, 2e-3, 0}
	ps := beam.Bunch{start}
	fwd.Track(ps)
	bwd.Track(ps)

	for i := 0; i < 6; i++ {
		if math.Abs(ps[0][i]-start[i]) > 1e-12 {
			t.Errorf("coordinate %d: expected %v after round trip, got %v", i, start[i], ps[0][i])
		}
	}
}

func TestMultipoleDeltaAndLossBitsUntouched(t *testing.T) {
	quad, err := NewQuadrupole("qf", 0.5, 1.2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lost := beam.Coords{math.NaN(), 1e-3, 2e-3, 3e-3, 4e-3, 5e-3}
	live := beam.Coords{1e-4, 0, 0, 0, 1e-3, 0}
	ps := beam.Bunch{lost, live}
	quad.Track(ps)

	if !ps[0].Lost() {
		t.Error("expected first particle to stay lost")
	}
	for i := 1; i < 6; i++ {
		if ps[0][i] != lost[i] {
			t.Errorf("lost particle coordinate %d: expected %v, got %v", i, lost[i], ps[0][i])
		}
	}
	if ps[1][beam.Delta] != live[beam.Delta] {
		t.Errorf("expected momentum deviation %v to survive, got %v", live[beam.Delta], ps[1][beam.Delta])
	}
}

func TestMultipoleEntranceLossStopsPipeline(t *testing.T) {
	rect := optics.RectAperture{-1e-3, 1e-3, -1e-3, 1e-3}
	mp, err := NewMultipole(MultipoleConfig{
		Name:     "q",
		Length:   1.0,
		PolyA:    []float64{0},
		PolyB:    []float64{0},
		MaxOrder: 0,
		Steps:    10,
		Rect:     &rect,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ps := beam.Bunch{{2e-3, 1e-3, 1e-4, 5e-4, 0, 0}}
	mp.Track(ps)

	if !ps[0].Lost() {
		t.Fatal("expected particle outside the aperture to be lost")
	}
	// Loss happens before any slice runs, so the remaining coordinates
	// are exactly the entrance values.
	if ps[0][beam.PX] != 1e-3 || ps[0][beam.Y] != 1e-4 || ps[0][beam.PY] != 5e-4 {
		t.Errorf("expected entrance coordinates to be frozen, got %v", ps[0])
	}
}

func TestMultipoleExitLossSkipsExitAlignment(t *testing.T) {
	rect := optics.RectAperture{-1e-3, 1e-3, -1e-3, 1e-3}
	shift := [6]float64{0, 0, 0, 100, 0, 0}
	mp, err := NewMultipole(MultipoleConfig{
		Name:      "q",
		Length:    0.1,
		PolyA:     []float64{0},
		PolyB:     []float64{0},
		MaxOrder:  0,
		Steps:     10,
		Rect:      &rect,
		ExitShift: &shift,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Drifts from x = 0.9 mm to 1.1 mm, crossing the limit at the exit.
	ps := beam.Bunch{{0.9e-3, 2e-3, 0, 0, 0, 0}}
	mp.Track(ps)

	if !ps[0].Lost() {
		t.Fatal("expected particle to be lost at the exit aperture")
	}
	if ps[0][beam.PY] != 0 {
		t.Errorf("expected exit shift to be skipped for a lost particle, got py %v", ps[0][beam.PY])
	}
}

func TestMultipoleEntranceShiftFeedsAperture(t *testing.T) {
	rect := optics.RectAperture{-1e-3, 1e-3, -1e-3, 1e-3}
	shift := [6]float64{-1.5e-3, 0, 0, 0, 0, 0}
	mp, err := NewMultipole(MultipoleConfig{
		Name:          "q",
		Length:        0.1,
		PolyA:         []float64{0},
		PolyB:         []float64{0},
		MaxOrder:      0,
		Steps:         1,
		Rect:          &rect,
		EntranceShift: &shift,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// On axis in the lab frame, but the misaligned magnet sees -1.5 mm.
	ps := beam.Bunch{{0, 0, 0, 0, 0, 0}}
	mp.Track(ps)

	if !ps[0].Lost() {
		t.Error("expected shifted particle to hit the aperture")
	}
}

func TestMultipoleFringeGatedOnQuadComponent(t *testing.T) {
	base := MultipoleConfig{
		Name:     "sx",
		Length:   0.2,
		PolyA:    []float64{0, 0, 0},
		PolyB:    []float64{0, 0, 12.0}, // no quadrupole component
		MaxOrder: 2,
		Steps:    10,
	}
	plain, err := NewMultipole(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base.FringeEntrance = FringeHard
	base.FringeExit = FringeHard
	fringed, err := NewMultipole(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := beam.Coords{1e-3, 0, -2e-3, 0, 0, 0}
	a := beam.Bunch{start}
	b := beam.Bunch{start}
	plain.Track(a)
	fringed.Track(b)

	for i := 0; i < 6; i++ {
		if a[0][i] != b[0][i] {
			t.Errorf("coordinate %d: fringe should be inert without a quadrupole term, got %v vs %v", i, a[0][i], b[0][i])
		}
	}
}

func TestMultipoleHardFringeShiftsTrajectory(t *testing.T) {
	base := MultipoleConfig{
		Name:     "qf",
		Length:   0.5,
		PolyA:    []float64{0, 0},
		PolyB:    []float64{0, 1.2},
		MaxOrder: 1,
		Steps:    10,
	}
	plain, err := NewMultipole(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base.FringeEntrance = FringeHard
	base.FringeExit = FringeHard
	fringed, err := NewMultipole(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := beam.Coords{2e-3, 0, 1e-3, 0, 0, 0}
	a := beam.Bunch{start}
	b := beam.Bunch{start}
	plain.Track(a)
	fringed.Track(b)

	if a[0][beam.X] == b[0][beam.X] && a[0][beam.PX] == b[0][beam.PX] {
		t.Error("expected the hard-edge fringe to move an off-axis trajectory")
	}
}

func TestMultipoleConfigValidation(t *testing.T) {
	intM := optics.FringeInts{}
	valid := MultipoleConfig{
		Name:     "q",
		Length:   0.5,
		PolyA:    []float64{0, 0},
		PolyB:    []float64{0, 1.0},
		MaxOrder: 1,
		Steps:    10,
	}

	cases := []struct {
		name   string
		mutate func(*MultipoleConfig)
		want   error
	}{
		{"zero steps", func(c *MultipoleConfig) { c.Steps = 0 }, ErrBadSteps},
		{"negative steps", func(c *MultipoleConfig) { c.Steps = -3 }, ErrBadSteps},
		{"nan length", func(c *MultipoleConfig) { c.Length = math.NaN() }, ErrBadLength},
		{"infinite length", func(c *MultipoleConfig) { c.Length = math.Inf(1) }, ErrBadLength},
		{"order beyond polynomials", func(c *MultipoleConfig) { c.MaxOrder = 2 }, ErrPolynomLength},
		{"negative order", func(c *MultipoleConfig) { c.MaxOrder = -1 }, ErrPolynomLength},
		{"unknown fringe mode", func(c *MultipoleConfig) { c.FringeEntrance = FringeModel(7) }, ErrBadFringeMode},
		{"linear fringe without integrals", func(c *MultipoleConfig) { c.FringeExit = FringeLinear }, ErrFringeIntegrals},
		{"linear fringe with one integral", func(c *MultipoleConfig) {
			c.FringeEntrance = FringeLinear
			c.FringeIntM = &intM
		}, ErrFringeIntegrals},
		{"degenerate ellipse", func(c *MultipoleConfig) { c.Ellipse = &optics.EllipseAperture{0, 1e-3} }, ErrBadAperture},
	}

	for _, tc := range cases {
		cfg := valid
		tc.mutate(&cfg)
		_, err := NewMultipole(cfg)
		if err == nil {
			t.Errorf("%s: expected an error", tc.name)
			continue
		}
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		var cerr *ConfigError
		if !errors.As(err, &cerr) {
			t.Errorf("%s: expected a ConfigError, got %T", tc.name, err)
		} else if cerr.Element != "q" {
			t.Errorf("%s: expected element name %q, got %q", tc.name, "q", cerr.Element)
		}
	}

	if _, err := NewMultipole(valid); err != nil {
		t.Errorf("expected valid config to build, got %v", err)
	}
}

func TestMultipoleOwnsItsConfig(t *testing.T) {
	cfg := MultipoleConfig{
		Name:     "q",
		Length:   0.5,
		PolyA:    []float64{0, 0},
		PolyB:    []float64{0, 1.0},
		MaxOrder: 1,
		Steps:    10,
	}
	mp, err := NewMultipole(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := beam.Bunch{{1e-3, 0, 0, 0, 0, 0}}
	mp.Track(before)

	// Mutating the caller's slices must not leak into the element.
	cfg.PolyB[1] = -3.0
	after := beam.Bunch{{1e-3, 0, 0, 0, 0, 0}}
	mp.Track(after)

	if before[0] != after[0] {
		t.Error("expected the element to be unaffected by config mutation")
	}
}

func TestMultipoleZeroLengthIsIdentity(t *testing.T) {
	mp, err := NewQuadrupole("q0", 0, 2.0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	start := beam.Coords{1e-3, 2e-3, -1e-3, 0.5e-3, 1e-2, 0.3}
	ps := beam.Bunch{start}
	mp.Track(ps)

	if ps[0] != start {
		t.Errorf("expected zero-length element to leave %v unchanged, got %v", start, ps[0])
	}
}

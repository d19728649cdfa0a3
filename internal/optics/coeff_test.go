package optics

import (
	"math"
	"testing"
)

func TestCoefficientIdentities(t *testing.T) {
	// One slice applies drifts D1,D2,D2,D1 and kicks K1,K2,K1, so the
	// weights must cover the slice exactly once.
	if math.Abs(2*Drift1+2*Drift2-1) > 1e-15 {
		t.Errorf("drift coefficients must sum to 1, got %.17g", 2*Drift1+2*Drift2)
	}
	if math.Abs(2*Kick1+Kick2-1) > 1e-15 {
		t.Errorf("kick coefficients must sum to 1, got %.17g", 2*Kick1+Kick2)
	}
}

func TestSlice(t *testing.T) {
	k := Slice(2.0, 10)

	if math.Abs(k.SL-0.2) > 1e-15 {
		t.Errorf("expected slice length 0.2, got %g", k.SL)
	}
	if math.Abs(k.L1-0.2*Drift1) > 1e-16 {
		t.Errorf("expected L1 %g, got %g", 0.2*Drift1, k.L1)
	}
	if math.Abs(2*k.L1+2*k.L2-k.SL) > 1e-15 {
		t.Errorf("drift segments should add up to the slice length")
	}
	if math.Abs(2*k.K1+k.K2-k.SL) > 1e-15 {
		t.Errorf("kick weights should add up to the slice length")
	}
}

func TestSliceZeroLength(t *testing.T) {
	k := Slice(0, 5)

	if k.SL != 0 || k.L1 != 0 || k.L2 != 0 || k.K1 != 0 || k.K2 != 0 {
		t.Errorf("zero length should give all-zero coefficients, got %+v", k)
	}
}

func TestSliceNegativeLength(t *testing.T) {
	fwd := Slice(1.5, 4)
	bwd := Slice(-1.5, 4)

	if bwd.L1 != -fwd.L1 || bwd.K2 != -fwd.K2 {
		t.Error("negative length should negate every coefficient")
	}
}

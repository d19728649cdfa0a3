package optics

// Fourth-order symplectic composition coefficients (Forest/Ruth).
// They satisfy 2*Drift1 + 2*Drift2 = 1 and 2*Kick1 + 2*Kick2 = 1 and
// are fixed constants of the scheme, not tunable parameters.
const (
	Drift1 = 0.6756035959798286638
	Drift2 = -0.1756035959798286639
	Kick1  = 1.351207191959657328
	Kick2  = -1.702414383919314656
)

// SliceCoeffs holds the drift lengths and kick weights applied by one
// integration slice of an element of the given length cut into n slices.
type SliceCoeffs struct {
	SL float64
	L1 float64
	L2 float64
	K1 float64
	K2 float64
}

func Slice(length float64, n int) SliceCoeffs {
	sl := length / float64(n)
	return SliceCoeffs{
		SL: sl,
		L1: sl * Drift1,
		L2: sl * Drift2,
		K1: sl * Kick1,
		K2: sl * Kick2,
	}
}

package beam

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Bunch is a batch of particles tracked together. Particles are
// independent; the slice may be partitioned freely across workers.
type Bunch []Coords

func NewBunch(n int) Bunch {
	return make(Bunch, n)
}

func (b Bunch) Clone() Bunch {
	c := make(Bunch, len(b))
	copy(c, b)
	return c
}

func (b Bunch) Alive() int {
	n := 0
	for i := range b {
		if !b[i].Lost() {
			n++
		}
	}
	return n
}

func (b Bunch) LostCount() int {
	return len(b) - b.Alive()
}

// Gaussian fills a bunch of n particles with independent normal draws,
// one sigma per coordinate. A zero sigma pins that coordinate to zero.
func Gaussian(n int, sigma Coords, seed uint64) Bunch {
	b := make(Bunch, n)
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	for k := 0; k < 6; k++ {
		if sigma[k] == 0 {
			continue
		}
		dist := distuv.Normal{Mu: 0, Sigma: sigma[k], Src: src}
		for i := range b {
			b[i][k] = dist.Rand()
		}
	}
	return b
}

// Line spreads n particles uniformly along one coordinate axis
// between lo and hi, all other coordinates zero.
func Line(n int, coord int, lo, hi float64) Bunch {
	b := make(Bunch, n)
	if n == 1 {
		b[0][coord] = lo
		return b
	}
	step := (hi - lo) / float64(n-1)
	for i := range b {
		b[i][coord] = lo + float64(i)*step
	}
	return b
}

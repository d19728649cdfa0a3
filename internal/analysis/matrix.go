package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/beamkit/beamkit/internal/beam"
	"github.com/beamkit/beamkit/internal/lattice"
)

// DefaultProbeStep is the finite-difference step used when none is given.
const DefaultProbeStep = 1e-8

// probeScale shrinks the momentum probes relative to the position
// probes, matching the conditioning of typical transverse maps.
var probeScale = [6]float64{1, 0.1, 1, 0.1, 1, 1}

// TransferMatrix estimates the 6x6 linear map of one pass through the
// lattice around the given reference orbit, by central differences with
// two probe particles per coordinate.
func TransferMatrix(lat *lattice.Lattice, orbit beam.Coords, step float64) (*mat.Dense, error) {
	if step <= 0 {
		step = DefaultProbeStep
	}

	m := mat.NewDense(6, 6, nil)
	for j := 0; j < 6; j++ {
		h := step * probeScale[j]
		plus := orbit
		minus := orbit
		plus[j] += h
		minus[j] -= h

		ps := beam.Bunch{plus, minus}
		lat.Propagate(ps)
		if ps[0].Lost() || ps[1].Lost() {
			return nil, fmt.Errorf("analysis: probe for coordinate %d lost in %q", j, lat.Name())
		}

		for i := 0; i < 6; i++ {
			m.Set(i, j, (ps[0][i]-ps[1][i])/(2*h))
		}
	}
	return m, nil
}

package analysis

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/beamkit/beamkit/internal/beam"
	"github.com/beamkit/beamkit/internal/lattice"
)

// DAConfig describes a dynamic-aperture scan.
type DAConfig struct {
	Turns  int     // turns each probe must survive
	Angles int     // polar rays over [0, pi]
	RMax   float64 // largest radius probed, m
	RStep  float64 // radial resolution, m
	Delta  float64 // momentum offset given to every probe
}

/// DAPoint is the survival boundary along one ray: the largest scanned
// radius whose probe lived through every turn.
type DAPoint struct {
	Angle  float64
	Radius float64
}

// DynamicAperture walks each polar ray outward in RStep increments,
// tracking a fresh probe for cfg.Turns turns, and records the last
// surviving radius. Rays run concurrently.
func DynamicAperture(ctx context.Context, lat *lattice.Lattice, cfg DAConfig) ([]DAPoint, error) {
	if cfg.Turns < 1 {
		return nil, fmt.Errorf("analysis: turns must be positive, got %d", cfg.Turns)
	}
	if cfg.Angles < 2 {
		return nil, fmt.Errorf("analysis: need at least 2 rays, got %d", cfg.Angles)
	}
	if cfg.RMax <= 0 || cfg.RStep <= 0 || cfg.RStep > cfg.RMax {
		return nil, fmt.Errorf("analysis: invalid radial range %g by %g", cfg.RMax, cfg.RStep)
	}

	points := make([]DAPoint, cfg.Angles)
	g, ctx := errgroup.WithContext(ctx)

	for k := 0; k < cfg.Angles; k++ {
		g.Go(func() error {
			angle := math.Pi * float64(k) / float64(cfg.Angles-1)
			points[k] = DAPoint{Angle: angle}

			for r := cfg.RStep; r <= cfg.RMax; r += cfg.RStep {
				if err := ctx.Err(); err != nil {
					return err
				}
				if survives(lat, r, angle, cfg.Delta, cfg.Turns) {
					points[k].Radius = r
				} else {
					break
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

func survives(lat *lattice.Lattice, r, angle, delta float64, turns int) bool {
	ps := beam.Bunch{{r * math.Cos(angle), 0, r * math.Sin(angle), 0, delta, 0}}
	for t := 0; t < turns; t++ {
		lat.Propagate(ps)
		if ps[0].Lost() {
			return false
		}
	}
	return true
}

package viz

import (
	"fmt"
	"math"

	"github.com/beamkit/beamkit/internal/beam"
)

// Plane selects a 2D projection of the 6D phase space.
type Plane int

const (
	PlaneXPX Plane = iota
	PlaneYPY
	PlaneXY
	PlaneCTDelta
)

var planeNames = [...]string{"x / px", "y / py", "x / y", "ct / delta"}

func (p Plane) String() string {
	if p < 0 || int(p) >= len(planeNames) {
		return "?"
	}
	return planeNames[p]
}

// Next cycles to the following plane.
func (p Plane) Next() Plane {
	return (p + 1) % Plane(len(planeNames))
}

func (p Plane) axes() (h, v int) {
	switch p {
	case PlaneXPX:
		return beam.X, beam.PX
	case PlaneYPY:
		return beam.Y, beam.PY
	case PlaneXY:
		return beam.X, beam.Y
	default:
		return beam.CT, beam.Delta
	}
}

// Project extracts the live particles of a bunch onto a plane.
func Project(ps beam.Bunch, plane Plane) (hs, vs []float64) {
	h, v := plane.axes()
	for i := range ps {
		if ps[i].Lost() {
			continue
		}
		hs = append(hs, ps[i][h])
		vs = append(vs, ps[i][v])
	}
	return hs, vs
}

// Scatter renders points on a braille canvas, auto-scaled to a
// symmetric window around the origin.
func Scatter(hs, vs []float64, cols, rows int) string {
	return ScatterRange(hs, vs, HalfRange(hs), HalfRange(vs), cols, rows)
}

// ScatterRange renders points with a fixed symmetric window of
// +-hr horizontally and +-vr vertically.
func ScatterRange(hs, vs []float64, hr, vr float64, cols, rows int) string {
	c := NewCanvas(cols, rows)
	dw, dh := float64(c.DotWidth()-1), float64(c.DotHeight()-1)
	for i := range hs {
		x := int((hs[i] + hr) / (2 * hr) * dw)
		y := int((vr - vs[i]) / (2 * vr) * dh)
		c.Set(x, y)
	}
	return c.String()
}

// PhasePlot renders one plane of a bunch with a range caption.
func PhasePlot(ps beam.Bunch, plane Plane, cols, rows int) string {
	hs, vs := Project(ps, plane)
	plot := Scatter(hs, vs, cols, rows)
	return plot + fmt.Sprintf("%s  (±%.3g, ±%.3g)\n", plane, HalfRange(hs), HalfRange(vs))
}

// HalfRange returns a symmetric half-width covering all finite values,
// padded slightly so edge points stay visible.
func HalfRange(vals []float64) float64 {
	r := 0.0
	for _, v := range vals {
		a := math.Abs(v)
		if a > r && !math.IsInf(a, 0) && !math.IsNaN(a) {
			r = a
		}
	}
	if r == 0 {
		return 1e-9
	}
	return r * 1.05
}

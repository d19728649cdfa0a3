// Package monitor collects per-turn beam data during tracking. Every
// type here plugs into the tracker as an observer.
package monitor

import "github.com/beamkit/beamkit/internal/beam"

// TurnRecorder stores the transverse coordinates of one particle on
// every turn, the raw material for tune analysis. Recording stops when
// the particle is lost.
type TurnRecorder struct {
	particle int
	X        []float64
	PX       []float64
	Y        []float64
	PY       []float64
}

func NewTurnRecorder(particle int) *TurnRecorder {
	return &TurnRecorder{particle: particle}
}

func (r *TurnRecorder) OnTurn(turn int, ps beam.Bunch) {
	if r.particle < 0 || r.particle >= len(ps) {
		return
	}
	p := &ps[r.particle]
	if p.Lost() {
		return
	}
	r.X = append(r.X, p[beam.X])
	r.PX = append(r.PX, p[beam.PX])
	r.Y = append(r.Y, p[beam.Y])
	r.PY = append(r.PY, p[beam.PY])
}

// Turns returns the number of recorded turns.
func (r *TurnRecorder) Turns() int {
	return len(r.X)
}

func (r *TurnRecorder) Reset() {
	r.X = r.X[:0]
	r.PX = r.PX[:0]
	r.Y = r.Y[:0]
	r.PY = r.PY[:0]
}

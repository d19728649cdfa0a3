package monitor

import "github.com/beamkit/beamkit/internal/beam"

// LossMonitor counts live particles after every turn.
type LossMonitor struct {
	Alive []int
}

func NewLossMonitor() *LossMonitor {
	return &LossMonitor{}
}

func (m *LossMonitor) OnTurn(turn int, ps beam.Bunch) {
	n := 0
	for i := range ps {
		if !ps[i].Lost() {
			n++
		}
	}
	m.Alive = append(m.Alive, n)
}

// Transmission returns the fraction of the initial population still
// alive on the last recorded turn.
func (m *LossMonitor) Transmission(initial int) float64 {
	if len(m.Alive) == 0 || initial <= 0 {
		return 0
	}
	return float64(m.Alive[len(m.Alive)-1]) / float64(initial)
}

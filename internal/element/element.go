package element

import (
	"github.com/beamkit/beamkit/internal/beam"
	"github.com/beamkit/beamkit/internal/optics"
)

// Element is a single beamline component. Track advances every particle
// of the bunch through the element in place. Implementations must leave
// lost particles untouched and must not retain the slice.
type Element interface {
	Name() string
	Length() float64
	Track(ps beam.Bunch)
}

// Marker is a zero-length element with no effect on the beam. It exists
// so observation points keep their position in the lattice.
type Marker struct {
	name string
}

func NewMarker(name string) *Marker {
	return &Marker{name: name}
}

func (m *Marker) Name() string    { return m.name }
func (m *Marker) Length() float64 { return 0 }

func (m *Marker) Track(beam.Bunch) {}

// Drift is a field-free region. The default map is the small-angle
// expansion; NewExactDrift selects the exact square-root Hamiltonian.
type Drift struct {
	name   string
	length float64
	exact  bool
}

func NewDrift(name string, length float64) *Drift {
	return &Drift{name: name, length: length}
}

func NewExactDrift(name string, length float64) *Drift {
	return &Drift{name: name, length: length, exact: true}
}

func (d *Drift) Name() string    { return d.name }
func (d *Drift) Length() float64 { return d.length }

func (d *Drift) Track(ps beam.Bunch) {
	for i := range ps {
		r := &ps[i]
		if r.Lost() {
			continue
		}
		if d.exact {
			optics.ExactDrift(r, d.length)
		} else {
			optics.Drift(r, d.length/(1+r[beam.Delta]))
		}
	}
}

// Collimator is a zero-length rectangular aperture restriction.
type Collimator struct {
	name string
	rect optics.RectAperture
}

func NewCollimator(name string, limits optics.RectAperture) *Collimator {
	return &Collimator{name: name, rect: limits}
}

func (c *Collimator) Name() string    { return c.name }
func (c *Collimator) Length() float64 { return 0 }

func (c *Collimator) Track(ps beam.Bunch) {
	for i := range ps {
		r := &ps[i]
		if r.Lost() {
			continue
		}
		c.rect.Check(r)
	}
}

// Package lattice arranges elements into an ordered beamline and builds
// the alignment-error blocks elements consume.
package lattice

import (
	"github.com/beamkit/beamkit/internal/beam"
	"github.com/beamkit/beamkit/internal/element"
)

// Lattice is an ordered sequence of beamline elements.
type Lattice struct {
	name     string
	elements []element.Element
}

func New(name string, elems ...element.Element) *Lattice {
	return &Lattice{
		name:     name,
		elements: append([]element.Element(nil), elems...),
	}
}

func (l *Lattice) Name() string { return l.name }

// Append adds elements to the end of the line.
func (l *Lattice) Append(elems ...element.Element) {
	l.elements = append(l.elements, elems...)
}

// Elements returns the beamline in order. The slice is shared; callers
// must not modify it.
func (l *Lattice) Elements() []element.Element {
	return l.elements
}

// Len returns the number of elements.
func (l *Lattice) Len() int {
	return len(l.elements)
}

// Length returns the summed path length in meters.
func (l *Lattice) Length() float64 {
	var sum float64
	for _, e := range l.elements {
		sum += e.Length()
	}
	return sum
}

// ByName returns the indices of all elements with the given name.
func (l *Lattice) ByName(name string) []int {
	var idx []int
	for i, e := range l.elements {
		if e.Name() == name {
			idx = append(idx, i)
		}
	}
	return idx
}

// Propagate tracks the bunch once through every element in order.
func (l *Lattice) Propagate(ps beam.Bunch) {
	for _, e := range l.elements {
		e.Track(ps)
	}
}

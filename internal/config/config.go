// Package config reads and writes YAML descriptions of a beamline and
// its tracking run, and builds the runtime lattice and bunch from them.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/beamkit/beamkit/internal/beam"
	"github.com/beamkit/beamkit/internal/element"
	"github.com/beamkit/beamkit/internal/lattice"
	"github.com/beamkit/beamkit/internal/optics"
)

const (
	DefaultTurns     = 256
	DefaultParticles = 128
	DefaultSeed      = 1
)

// Config is one complete run description: the beamline, the beam, and
// the tracking parameters.
type Config struct {
	Name    string        `yaml:"name"`
	Energy  float64       `yaml:"energy,omitempty"`  // design energy, eV
	Species string        `yaml:"species,omitempty"` // electron, positron, proton
	Lattice []ElementSpec `yaml:"lattice"`
	Track   TrackConfig   `yaml:"track"`
}

// ElementSpec is the YAML form of one beamline element. Which fields
// apply depends on Type; everything optional defaults to off.
type ElementSpec struct {
	Type   string  `yaml:"type"`
	Name   string  `yaml:"name"`
	Length float64 `yaml:"length,omitempty"`

	K1 float64 `yaml:"k1,omitempty"` // quadrupole gradient, 1/m^2
	K2 float64 `yaml:"k2,omitempty"` // sextupole strength, 1/m^3
	K3 float64 `yaml:"k3,omitempty"` // octupole strength, 1/m^4

	PolyA    []float64 `yaml:"poly_a,omitempty"` // skew coefficients (type multipole)
	PolyB    []float64 `yaml:"poly_b,omitempty"` // normal coefficients (type multipole)
	MaxOrder int       `yaml:"max_order,omitempty"`
	Steps    int       `yaml:"steps,omitempty"`

	// Quadrupole fringe models for the standard pass: none, hard, linear.
	FringeEntrance string    `yaml:"fringe_entrance,omitempty"`
	FringeExit     string    `yaml:"fringe_exit,omitempty"`
	FringeIntM     []float64 `yaml:"fringe_int_m,omitempty"` // 5 edge integrals, upstream
	FringeIntP     []float64 `yaml:"fringe_int_p,omitempty"` // 5 edge integrals, downstream

	DX   float64 `yaml:"dx,omitempty"`   // horizontal misalignment, m
	DY   float64 `yaml:"dy,omitempty"`   // vertical misalignment, m
	Tilt float64 `yaml:"tilt,omitempty"` // roll about the beam axis, rad

	RectAperture    []float64 `yaml:"rect_aperture,omitempty"`    // xmin xmax ymin ymax, m
	EllipseAperture []float64 `yaml:"ellipse_aperture,omitempty"` // rx ry semi-axes, m

	KickX float64 `yaml:"kick_x,omitempty"` // steering angle, rad
	KickY float64 `yaml:"kick_y,omitempty"`

	Exact   bool `yaml:"exact,omitempty"`   // exact square-root drift map
	Fringe  bool `yaml:"fringe,omitempty"`  // generalized multipole fringe (exact pass)
	Radiate bool `yaml:"radiate,omitempty"` // synchrotron emission, needs energy
}

// TrackConfig sets up the bunch and the multi-turn run.
type TrackConfig struct {
	Turns     int       `yaml:"turns"`
	Particles int       `yaml:"particles"`
	Workers   int       `yaml:"workers,omitempty"`
	Seed      uint64    `yaml:"seed,omitempty"`
	Sigma     []float64 `yaml:"sigma,omitempty"` // rms spread per coordinate, 6 values
}

// DefaultConfig is a stable FODO cell with a small Gaussian bunch.
func DefaultConfig() *Config {
	return &Config{
		Name: "fodo",
		Lattice: []ElementSpec{
			{Type: "quadrupole", Name: "qf", Length: 0.3, K1: 2.4},
			{Type: "drift", Name: "d1", Length: 1.2},
			{Type: "quadrupole", Name: "qd", Length: 0.3, K1: -2.4},
			{Type: "drift", Name: "d2", Length: 1.2},
		},
		Track: TrackConfig{
			Turns:     DefaultTurns,
			Particles: DefaultParticles,
			Seed:      DefaultSeed,
			Sigma:     []float64{1e-3, 1e-4, 1e-3, 1e-4, 1e-3, 0},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Lattice = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if len(cfg.Lattice) == 0 {
		return nil, fmt.Errorf("config: %s declares no lattice elements", path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildLattice constructs the beamline. Element validation errors are
// returned with the element name attached, before anything is tracked.
func (c *Config) BuildLattice() (*lattice.Lattice, error) {
	elems := make([]element.Element, 0, len(c.Lattice))
	for i := range c.Lattice {
		e, err := c.buildElement(&c.Lattice[i])
		if err != nil {
			return nil, fmt.Errorf("config: element %d: %w", i, err)
		}
		elems = append(elems, e)
	}
	return lattice.New(c.Name, elems...), nil
}

// BuildBunch draws the initial particle distribution.
func (c *Config) BuildBunch() (beam.Bunch, error) {
	n := c.Track.Particles
	if n < 1 {
		return nil, fmt.Errorf("config: particles must be positive, got %d", n)
	}
	if len(c.Track.Sigma) == 0 {
		return beam.NewBunch(n), nil
	}
	if len(c.Track.Sigma) != 6 {
		return nil, fmt.Errorf("config: sigma needs 6 values, got %d", len(c.Track.Sigma))
	}
	var sigma beam.Coords
	copy(sigma[:], c.Track.Sigma)
	return beam.Gaussian(n, sigma, c.Track.Seed), nil
}

func (c *Config) buildElement(spec *ElementSpec) (element.Element, error) {
	switch spec.Type {
	case "drift":
		if spec.Exact {
			return element.NewExactDrift(spec.Name, spec.Length), nil
		}
		return element.NewDrift(spec.Name, spec.Length), nil

	case "marker":
		return element.NewMarker(spec.Name), nil

	case "collimator":
		if len(spec.RectAperture) != 4 {
			return nil, fmt.Errorf("%s: collimator needs rect_aperture with 4 limits", spec.Name)
		}
		var rect optics.RectAperture
		copy(rect[:], spec.RectAperture)
		return element.NewCollimator(spec.Name, rect), nil

	case "quadrupole", "sextupole", "octupole", "multipole", "corrector":
		return c.buildMultipole(spec)

	default:
		return nil, fmt.Errorf("%s: unknown element type %q", spec.Name, spec.Type)
	}
}

func (c *Config) buildMultipole(spec *ElementSpec) (element.Element, error) {
	mcfg, err := spec.multipoleConfig()
	if err != nil {
		return nil, err
	}

	if spec.Radiate {
		if spec.Exact {
			return nil, fmt.Errorf("%s: radiate requires the standard pass, not exact", spec.Name)
		}
		sp, err := c.species()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Name, err)
		}
		return element.NewRadiatingMultipole(element.RadiatingConfig{
			MultipoleConfig: mcfg,
			Energy:          c.Energy,
			Species:         sp,
			KickX:           spec.KickX,
			KickY:           spec.KickY,
			Seed:            c.Track.Seed,
		})
	}

	if spec.KickX != 0 || spec.KickY != 0 {
		if spec.Length == 0 {
			return nil, fmt.Errorf("%s: steering kick requires a nonzero length", spec.Name)
		}
		mcfg.PolyB[0] -= math.Sin(spec.KickX) / spec.Length
		mcfg.PolyA[0] += math.Sin(spec.KickY) / spec.Length
	}

	if spec.Exact {
		return element.NewExactMultipole(element.ExactMultipoleConfig{
			Name:     mcfg.Name,
			Length:   mcfg.Length,
			PolyA:    mcfg.PolyA,
			PolyB:    mcfg.PolyB,
			MaxOrder: mcfg.MaxOrder,
			Steps:    mcfg.Steps,
			Fringe:   spec.Fringe,
			Rect:     mcfg.Rect,
			Ellipse:  mcfg.Ellipse,
		})
	}
	return element.NewMultipole(mcfg)
}

// multipoleConfig translates the YAML fields into an element config.
// Steering kicks are not folded here; the caller decides how.
func (spec *ElementSpec) multipoleConfig() (element.MultipoleConfig, error) {
	var polyA, polyB []float64
	var maxOrder int

	switch spec.Type {
	case "quadrupole":
		polyA = []float64{0, 0}
		polyB = []float64{0, spec.K1}
		maxOrder = 1
	case "sextupole":
		polyA = []float64{0, 0, 0}
		polyB = []float64{0, 0, spec.K2}
		maxOrder = 2
	case "octupole":
		polyA = []float64{0, 0, 0, 0}
		polyB = []float64{0, 0, 0, spec.K3}
		maxOrder = 3
	case "corrector":
		polyA = []float64{0}
		polyB = []float64{0}
		maxOrder = 0
	case "multipole":
		polyA = append([]float64(nil), spec.PolyA...)
		polyB = append([]float64(nil), spec.PolyB...)
		for len(polyA) < len(polyB) {
			polyA = append(polyA, 0)
		}
		for len(polyB) < len(polyA) {
			polyB = append(polyB, 0)
		}
		if len(polyB) == 0 {
			return element.MultipoleConfig{}, fmt.Errorf("%s: multipole needs poly_a or poly_b", spec.Name)
		}
		maxOrder = len(polyB) - 1
		if spec.MaxOrder != 0 {
			maxOrder = spec.MaxOrder
		}
	}

	steps := spec.Steps
	if steps == 0 {
		steps = element.DefaultSteps
	}

	cfg := element.MultipoleConfig{
		Name:     spec.Name,
		Length:   spec.Length,
		PolyA:    polyA,
		PolyB:    polyB,
		MaxOrder: maxOrder,
		Steps:    steps,
	}

	var err error
	if cfg.FringeEntrance, err = fringeModel(spec.FringeEntrance); err != nil {
		return cfg, fmt.Errorf("%s: fringe_entrance: %w", spec.Name, err)
	}
	if cfg.FringeExit, err = fringeModel(spec.FringeExit); err != nil {
		return cfg, fmt.Errorf("%s: fringe_exit: %w", spec.Name, err)
	}
	if spec.FringeIntM != nil {
		fi, err := fringeInts(spec.FringeIntM)
		if err != nil {
			return cfg, fmt.Errorf("%s: fringe_int_m: %w", spec.Name, err)
		}
		cfg.FringeIntM = fi
	}
	if spec.FringeIntP != nil {
		fi, err := fringeInts(spec.FringeIntP)
		if err != nil {
			return cfg, fmt.Errorf("%s: fringe_int_p: %w", spec.Name, err)
		}
		cfg.FringeIntP = fi
	}

	lattice.Misalign(&cfg, spec.DX, spec.DY, spec.Tilt)

	if spec.RectAperture != nil {
		if len(spec.RectAperture) != 4 {
			return cfg, fmt.Errorf("%s: rect_aperture needs 4 limits, got %d", spec.Name, len(spec.RectAperture))
		}
		var rect optics.RectAperture
		copy(rect[:], spec.RectAperture)
		cfg.Rect = &rect
	}
	if spec.EllipseAperture != nil {
		if len(spec.EllipseAperture) != 2 {
			return cfg, fmt.Errorf("%s: ellipse_aperture needs 2 semi-axes, got %d", spec.Name, len(spec.EllipseAperture))
		}
		var ell optics.EllipseAperture
		copy(ell[:], spec.EllipseAperture)
		cfg.Ellipse = &ell
	}

	return cfg, nil
}

func fringeModel(name string) (element.FringeModel, error) {
	switch name {
	case "", "none":
		return element.FringeNone, nil
	case "hard":
		return element.FringeHard, nil
	case "linear":
		return element.FringeLinear, nil
	}
	return element.FringeNone, fmt.Errorf("unknown fringe model %q", name)
}

func fringeInts(vals []float64) (*optics.FringeInts, error) {
	if len(vals) != 5 {
		return nil, fmt.Errorf("need 5 edge integrals, got %d", len(vals))
	}
	var fi optics.FringeInts
	copy(fi[:], vals)
	return &fi, nil
}

func (c *Config) species() (beam.Species, error) {
	if c.Species == "" {
		return beam.Electron, nil
	}
	sp, ok := beam.SpeciesByName(c.Species)
	if !ok {
		return beam.Species{}, fmt.Errorf("unknown species %q", c.Species)
	}
	return sp, nil
}

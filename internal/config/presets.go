package config

import "sort"

// Presets are ready-made run descriptions, keyed by name. They double
// as schema examples for hand-written lattice files.
var Presets = map[string]*Config{
	"fodo": DefaultConfig(),

	"chromatic": {
		Name: "chromatic",
		Lattice: []ElementSpec{
			{Type: "quadrupole", Name: "qf", Length: 0.3, K1: 2.4},
			{Type: "sextupole", Name: "sf", Length: 0.1, K2: 12.0},
			{Type: "drift", Name: "d1", Length: 1.1},
			{Type: "quadrupole", Name: "qd", Length: 0.3, K1: -2.4},
			{Type: "sextupole", Name: "sd", Length: 0.1, K2: -24.0},
			{Type: "drift", Name: "d2", Length: 1.1},
		},
		Track: TrackConfig{
			Turns:     DefaultTurns,
			Particles: DefaultParticles,
			Seed:      DefaultSeed,
			Sigma:     []float64{1e-3, 1e-4, 1e-3, 1e-4, 2e-3, 0},
		},
	},

	"collimated": {
		Name: "collimated",
		Lattice: []ElementSpec{
			{
				Type: "quadrupole", Name: "qf", Length: 0.3, K1: 2.4,
				EllipseAperture: []float64{20e-3, 15e-3},
			},
			{Type: "drift", Name: "d1", Length: 1.2},
			{
				Type: "quadrupole", Name: "qd", Length: 0.3, K1: -2.4,
				EllipseAperture: []float64{20e-3, 15e-3},
			},
			{Type: "drift", Name: "d2", Length: 1.2},
			{Type: "collimator", Name: "jaw", RectAperture: []float64{-10e-3, 10e-3, -8e-3, 8e-3}},
		},
		Track: TrackConfig{
			Turns:     DefaultTurns,
			Particles: 512,
			Seed:      DefaultSeed,
			Sigma:     []float64{3e-3, 3e-4, 3e-3, 3e-4, 1e-3, 0},
		},
	},

	"fringe": {
		Name: "fringe",
		Lattice: []ElementSpec{
			{
				Type: "quadrupole", Name: "qf", Length: 0.3, K1: 2.4,
				FringeEntrance: "hard", FringeExit: "hard",
			},
			{Type: "drift", Name: "d1", Length: 1.2},
			{
				Type: "quadrupole", Name: "qd", Length: 0.3, K1: -2.4,
				FringeEntrance: "hard", FringeExit: "hard",
			},
			{Type: "drift", Name: "d2", Length: 1.2},
		},
		Track: TrackConfig{
			Turns:     DefaultTurns,
			Particles: DefaultParticles,
			Seed:      DefaultSeed,
			Sigma:     []float64{1e-3, 1e-4, 1e-3, 1e-4, 0, 0},
		},
	},

	"radiating": {
		Name:    "radiating",
		Energy:  3e9,
		Species: "electron",
		Lattice: []ElementSpec{
			{Type: "quadrupole", Name: "qf", Length: 0.3, K1: 2.4, Radiate: true},
			{Type: "drift", Name: "d1", Length: 1.2},
			{Type: "quadrupole", Name: "qd", Length: 0.3, K1: -2.4, Radiate: true},
			{Type: "drift", Name: "d2", Length: 1.2},
		},
		Track: TrackConfig{
			Turns:     DefaultTurns,
			Particles: 64,
			Seed:      DefaultSeed,
			Sigma:     []float64{2e-3, 2e-4, 2e-3, 2e-4, 0, 0},
		},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package beam

// Species identifies the tracked particle type. RestEnergy is in eV,
// Charge in units of the elementary charge.
type Species struct {
	Name       string
	RestEnergy float64
	Charge     float64
}

var (
	Electron = Species{Name: "electron", RestEnergy: 510998.9461, Charge: -1}
	Positron = Species{Name: "positron", RestEnergy: 510998.9461, Charge: 1}
	Proton   = Species{Name: "proton", RestEnergy: 938.27208816e6, Charge: 1}
)

// Gamma returns the Lorentz factor at total energy e (eV).
func (s Species) Gamma(e float64) float64 {
	return e / s.RestEnergy
}

func SpeciesByName(name string) (Species, bool) {
	switch name {
	case "electron":
		return Electron, true
	case "positron":
		return Positron, true
	case "proton":
		return Proton, true
	}
	return Species{}, false
}

package element

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNotFound is returned by the lookup tables when a symbol or pair has no entry.
var ErrNotFound = errors.New("not found")

// Properties are the physical constants of one element.
type Properties struct {
	Symbol            string  `json:"symbol"`
	AtomicRadius      float64 `json:"atomic_radius"`     // angstrom
	MeltingPoint      float64 `json:"melting_point"`     // K
	Electronegativity float64 `json:"electronegativity"` // Pauling
	AtomicMass        float64 `json:"atomic_mass"`       // g/mol
	MolarVolume       float64 `json:"molar_volume"`      // cm^3/mol
	Shells            []Shell `json:"shells"`
}

// Missing returns the names of the properties that are absent.
// NaN marks an absent numeric value.
func (p *Properties) Missing() []string {
	var missing []string
	check := func(name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			missing = append(missing, name)
		}
	}

	check("atomic_radius", p.AtomicRadius)
	check("melting_point", p.MeltingPoint)
	check("electronegativity", p.Electronegativity)
	check("atomic_mass", p.AtomicMass)
	check("molar_volume", p.MolarVolume)
	if len(p.Shells) == 0 {
		missing = append(missing, "electronic_structure")
	}
	return missing
}

// Validate returns an error naming every missing property.
func (p *Properties) Validate() error {
	if m := p.Missing(); len(m) > 0 {
		return fmt.Errorf("element %s is missing %s", p.Symbol, strings.Join(m, ", "))
	}
	return nil
}

package descriptor

import (
	"math"

	"github.com/RoanBrand/AlloyCalc/element"
)

// alloy holds the resolved inputs of one computation.
type alloy struct {
	x  []float64 // mole fractions
	el []element.Properties
	h  [][]float64 // pair mixing enthalpies, kJ/mol
}

func (a *alloy) mean(v []float64) float64 {
	m := 0.0
	for i, xi := range a.x {
		m += xi * v[i]
	}
	return m
}

func (a *alloy) property(f func(*element.Properties) float64) []float64 {
	v := make([]float64, len(a.el))
	for i := range a.el {
		v[i] = f(&a.el[i])
	}
	return v
}

// relativeSpread is sqrt(sum x_i (1 - v_i/mean)^2).
func (a *alloy) relativeSpread(v []float64, mean float64) float64 {
	s := 0.0
	for i, xi := range a.x {
		d := 1 - v[i]/mean
		s += xi * d * d
	}
	return math.Sqrt(s)
}

// absoluteSpread is sqrt(sum x_i (v_i - mean)^2).
func (a *alloy) absoluteSpread(v []float64, mean float64) float64 {
	s := 0.0
	for i, xi := range a.x {
		d := v[i] - mean
		s += xi * d * d
	}
	return math.Sqrt(s)
}

func (a *alloy) radii() []float64 {
	return a.property(func(p *element.Properties) float64 { return p.AtomicRadius })
}

func (a *alloy) meanRadius() float64 {
	return a.mean(a.radii())
}

func (a *alloy) sizeMismatch(meanRadius float64) float64 {
	return a.relativeSpread(a.radii(), meanRadius)
}

func (a *alloy) meltingPoints() []float64 {
	return a.property(func(p *element.Properties) float64 { return p.MeltingPoint })
}

func (a *alloy) meanMeltingPoint() float64 {
	return a.mean(a.meltingPoints())
}

func (a *alloy) meltingPointSpread(tm float64) float64 {
	return a.relativeSpread(a.meltingPoints(), tm)
}

func (a *alloy) mixingEntropy() float64 {
	s := 0.0
	for _, xi := range a.x {
		if xi > 0 {
			s += xi * math.Log(xi)
		}
	}
	if s == 0 {
		// a single present element; avoid reporting -0
		return 0
	}
	return -GasConstant * s
}

// mixingEnthalpy sums 4*x_i*x_j*H_ij over unordered pairs.
func (a *alloy) mixingEnthalpy() float64 {
	h := 0.0
	for i := range a.x {
		for j := i + 1; j < len(a.x); j++ {
			h += 4 * a.x[i] * a.x[j] * a.h[i][j]
		}
	}
	return h
}

// enthalpySpread sums over ordered pairs i != j, so each unordered pair is
// counted twice before halving.
func (a *alloy) enthalpySpread(mixing float64) float64 {
	s := 0.0
	for i := range a.x {
		for j := range a.x {
			if i == j {
				continue
			}
			d := a.h[i][j] - mixing
			s += a.x[i] * a.x[j] * d * d
		}
	}
	return math.Sqrt(s / 2)
}

func (a *alloy) electronegativities() []float64 {
	return a.property(func(p *element.Properties) float64 { return p.Electronegativity })
}

func (a *alloy) meanElectronegativity() float64 {
	return a.mean(a.electronegativities())
}

// electronegativitySpread is the absolute spread divided by the mean.
func (a *alloy) electronegativitySpread(mean float64) float64 {
	return a.absoluteSpread(a.electronegativities(), mean) / mean
}

func (a *alloy) valenceElectrons() []float64 {
	return a.property(func(p *element.Properties) float64 {
		return float64(element.ValenceElectrons(p.Shells))
	})
}

func (a *alloy) vecSpread(ve []float64, vec float64) float64 {
	return a.absoluteSpread(ve, vec)
}

// density is the mean atomic mass over the mean molar volume.
func (a *alloy) density() float64 {
	mass := a.mean(a.property(func(p *element.Properties) float64 { return p.AtomicMass }))
	volume := a.mean(a.property(func(p *element.Properties) float64 { return p.MolarVolume }))
	return mass / volume
}

// Package descriptor computes empirical alloy descriptors (mixing enthalpy and
// entropy, atomic size mismatch, Omega, VEC, electronegativity and melting
// point statistics, density and price) from a composition and tabulated
// element data.
package descriptor

import (
	"errors"
	"fmt"
	"math"

	"github.com/RoanBrand/AlloyCalc/element"
)

// GasConstant is the molar gas constant in J/(K*mol).
const GasConstant = 8.31446261815324

// enthalpyFloor replaces a near zero mixing enthalpy in the Omega denominator.
const enthalpyFloor = 1e-6

// ElementSource resolves element symbols to their properties.
type ElementSource interface {
	Element(symbol string) (element.Properties, error)
}

// EnthalpySource returns binary mixing enthalpies in kJ/mol for a pair of
// distinct elements, in either order.
type EnthalpySource interface {
	MixingEnthalpy(a, b string) (float64, error)
}

// PriceSource returns market prices in USD/kg.
type PriceSource interface {
	Price(symbol string) (float64, bool)
}

// Result holds the descriptors of one composition. Spreads marked as
// fractions are not scaled to percent.
type Result struct {
	MeanRadius              float64 `json:"mean_radius"`              // angstrom
	SizeMismatch            float64 `json:"size_mismatch"`            // fraction
	MeanMeltingPoint        float64 `json:"mean_melting_point"`       // K
	MeltingPointSpread      float64 `json:"melting_point_spread"`     // fraction
	MixingEntropy           float64 `json:"mixing_entropy"`           // J/(K*mol)
	MixingEnthalpy          float64 `json:"mixing_enthalpy"`          // kJ/mol
	EnthalpySpread          float64 `json:"enthalpy_spread"`          // kJ/mol
	Omega                   float64 `json:"omega"`                    //
	MeanElectronegativity   float64 `json:"mean_electronegativity"`   // Pauling
	ElectronegativitySpread float64 `json:"electronegativity_spread"` // fraction
	MeanVEC                 float64 `json:"mean_vec"`                 //
	VECSpread               float64 `json:"vec_spread"`               // absolute
	Density                 float64 `json:"density"`                  // g/cm^3
	Price                   Price   `json:"price"`                    // USD/kg
}

// Engine computes descriptors. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	elements   ElementSource
	enthalpies EnthalpySource
	prices     PriceSource

	legacyGuard bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLegacyEnthalpyGuard makes the reported mixing enthalpy carry the value
// substituted in the Omega denominator when the enthalpy is near zero.
func WithLegacyEnthalpyGuard() Option {
	return func(e *Engine) { e.legacyGuard = true }
}

// NewEngine returns an engine over the given lookups. A nil price source makes
// every price unknown.
func NewEngine(elements ElementSource, enthalpies EnthalpySource, prices PriceSource, opts ...Option) *Engine {
	e := &Engine{
		elements:   elements,
		enthalpies: enthalpies,
		prices:     prices,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// NewEngineFromTables returns an engine over loaded tables.
func NewEngineFromTables(ts *element.Tables, opts ...Option) *Engine {
	return NewEngine(ts.Elements, ts.Enthalpies, ts.Prices, opts...)
}

// Compute normalizes the raw amounts (see NewComposition) and computes the
// descriptors of the composition.
func (e *Engine) Compute(symbols []string, amounts []float64) (Result, error) {
	c, err := NewComposition(symbols, amounts)
	if err != nil {
		return Result{}, err
	}
	return e.ComputeComposition(c)
}

// ComputeComposition computes the descriptors of a normalized composition.
// Fractions must be finite, non-negative and sum to 1.
func (e *Engine) ComputeComposition(c Composition) (Result, error) {
	if err := c.validate(); err != nil {
		return Result{}, err
	}

	a := alloy{x: c.Fractions}
	var err error
	if a.el, err = e.resolve(c.Symbols); err != nil {
		return Result{}, err
	}
	if a.h, err = e.enthalpyMatrix(c.Symbols); err != nil {
		return Result{}, err
	}

	var r Result
	r.MeanRadius = a.meanRadius()
	r.SizeMismatch = a.sizeMismatch(r.MeanRadius)
	r.MeanMeltingPoint = a.meanMeltingPoint()
	r.MeltingPointSpread = a.meltingPointSpread(r.MeanMeltingPoint)
	r.MixingEntropy = a.mixingEntropy()

	r.MixingEnthalpy = a.mixingEnthalpy()
	r.EnthalpySpread = a.enthalpySpread(r.MixingEnthalpy)

	var guarded float64
	r.Omega, guarded = omega(r.MeanMeltingPoint, r.MixingEntropy, r.MixingEnthalpy)
	if e.legacyGuard {
		r.MixingEnthalpy = guarded
	}

	r.MeanElectronegativity = a.meanElectronegativity()
	if r.MeanElectronegativity == 0 {
		return Result{}, fmt.Errorf("%w: mean electronegativity of %s is zero", ErrDivisionDegenerate, c)
	}
	r.ElectronegativitySpread = a.electronegativitySpread(r.MeanElectronegativity)

	ve := a.valenceElectrons()
	r.MeanVEC = a.mean(ve)
	r.VECSpread = a.vecSpread(ve, r.MeanVEC)

	r.Density = a.density()
	r.Price = e.price(&a, c.Symbols)

	return r, nil
}

func (e *Engine) resolve(symbols []string) ([]element.Properties, error) {
	props := make([]element.Properties, len(symbols))
	for i, s := range symbols {
		p, err := e.elements.Element(s)
		if err != nil {
			if errors.Is(err, element.ErrNotFound) {
				return nil, fmt.Errorf("%w: %w", ErrLookupNotFound, err)
			}
			return nil, fmt.Errorf("error looking up element %s: %w", s, err)
		}
		if err = p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingProperty, err)
		}
		props[i] = p
	}
	return props, nil
}

// enthalpyMatrix returns the symmetric matrix of pair coefficients. The
// diagonal, and any pair of repeated symbols, is zero.
func (e *Engine) enthalpyMatrix(symbols []string) ([][]float64, error) {
	n := len(symbols)
	h := make([][]float64, n)
	for i := range h {
		h[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if symbols[i] == symbols[j] {
				continue
			}
			v, err := e.enthalpies.MixingEnthalpy(symbols[i], symbols[j])
			if err != nil {
				if errors.Is(err, element.ErrNotFound) {
					return nil, fmt.Errorf("%w: %w", ErrLookupNotFound, err)
				}
				return nil, fmt.Errorf("error looking up mixing enthalpy %s-%s: %w", symbols[i], symbols[j], err)
			}
			h[i][j], h[j][i] = v, v
		}
	}
	return h, nil
}

func (e *Engine) price(a *alloy, symbols []string) Price {
	if e.prices == nil {
		return Unknown()
	}

	var mass, cost float64
	for i, s := range symbols {
		p, ok := e.prices.Price(s)
		if !ok {
			return Unknown()
		}
		m := a.el[i].AtomicMass * a.x[i]
		mass += m
		cost += m * p
	}
	return Known(cost / mass)
}

// omega returns Tm*S/(|H|*1000) and the enthalpy used in the denominator.
// H is in kJ/mol, hence the factor 1000.
func omega(tm, entropy, enthalpy float64) (float64, float64) {
	h := enthalpy
	if math.Abs(h) < enthalpyFloor {
		h = enthalpyFloor
	}
	return tm * entropy / (math.Abs(h) * 1000), h
}

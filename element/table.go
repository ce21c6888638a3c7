package element

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var data embed.FS

// Table holds element properties keyed by symbol.
type Table struct {
	elements map[string]Properties
	symbols  []string
}

// Element returns a copy of the properties stored for symbol.
func (t *Table) Element(symbol string) (Properties, error) {
	p, ok := t.elements[symbol]
	if !ok {
		return Properties{}, fmt.Errorf("element %q: %w", symbol, ErrNotFound)
	}
	p.Shells = append([]Shell(nil), p.Shells...)
	return p, nil
}

// Symbols returns all symbols in the table, sorted.
func (t *Table) Symbols() []string {
	return append([]string(nil), t.symbols...)
}

type elementEntry struct {
	Symbol            string   `yaml:"symbol"`
	AtomicRadius      *float64 `yaml:"atomic_radius"`
	MeltingPoint      *float64 `yaml:"melting_point"`
	Electronegativity *float64 `yaml:"electronegativity"`
	AtomicMass        *float64 `yaml:"atomic_mass"`
	MolarVolume       *float64 `yaml:"molar_volume"`
	Structure         string   `yaml:"electronic_structure"`
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// LoadElements reads an element table in YAML form. Absent numeric fields are
// stored as NaN so that they surface when an element is used, not at load time.
func LoadElements(r io.Reader) (*Table, error) {
	var doc struct {
		Elements []elementEntry `yaml:"elements"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("error decoding element table: %w", err)
	}

	t := &Table{elements: make(map[string]Properties, len(doc.Elements))}
	for _, e := range doc.Elements {
		if e.Symbol == "" {
			return nil, fmt.Errorf("element entry without symbol")
		}
		if _, dup := t.elements[e.Symbol]; dup {
			return nil, fmt.Errorf("duplicate element %s", e.Symbol)
		}

		p := Properties{
			Symbol:            e.Symbol,
			AtomicRadius:      orNaN(e.AtomicRadius),
			MeltingPoint:      orNaN(e.MeltingPoint),
			Electronegativity: orNaN(e.Electronegativity),
			AtomicMass:        orNaN(e.AtomicMass),
			MolarVolume:       orNaN(e.MolarVolume),
		}
		if e.Structure != "" {
			shells, err := ParseConfiguration(e.Structure)
			if err != nil {
				return nil, fmt.Errorf("element %s: %w", e.Symbol, err)
			}
			p.Shells = shells
		}

		t.elements[e.Symbol] = p
		t.symbols = append(t.symbols, e.Symbol)
	}

	sort.Strings(t.symbols)
	return t, nil
}

type pair [2]string

func pairKey(a, b string) pair {
	if b < a {
		a, b = b, a
	}
	return pair{a, b}
}

// EnthalpyTable holds binary mixing enthalpies (kJ/mol) keyed by unordered pair.
type EnthalpyTable struct {
	pairs map[pair]float64
}

// MixingEnthalpy returns the coefficient for the pair in either order.
func (t *EnthalpyTable) MixingEnthalpy(a, b string) (float64, error) {
	h, ok := t.pairs[pairKey(a, b)]
	if !ok {
		return 0, fmt.Errorf("mixing enthalpy %s-%s: %w", a, b, ErrNotFound)
	}
	return h, nil
}

// Len returns the number of pairs.
func (t *EnthalpyTable) Len() int {
	return len(t.pairs)
}

// LoadEnthalpies reads a YAML mapping of "A-B" pair keys to kJ/mol.
func LoadEnthalpies(r io.Reader) (*EnthalpyTable, error) {
	var doc struct {
		Pairs map[string]float64 `yaml:"pairs"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("error decoding enthalpy table: %w", err)
	}

	t := &EnthalpyTable{pairs: make(map[pair]float64, len(doc.Pairs))}
	for k, h := range doc.Pairs {
		a, b, ok := strings.Cut(k, "-")
		if !ok || a == "" || b == "" || a == b {
			return nil, fmt.Errorf("bad enthalpy pair %q", k)
		}
		key := pairKey(a, b)
		if _, dup := t.pairs[key]; dup {
			return nil, fmt.Errorf("duplicate enthalpy pair %q", k)
		}
		t.pairs[key] = h
	}
	return t, nil
}

// PriceTable holds market prices in USD/kg keyed by symbol.
type PriceTable struct {
	prices map[string]float64
}

// Price reports the price of symbol and whether the table has one.
func (t *PriceTable) Price(symbol string) (float64, bool) {
	p, ok := t.prices[symbol]
	return p, ok
}

// LoadPrices reads a YAML mapping of symbol to USD/kg.
func LoadPrices(r io.Reader) (*PriceTable, error) {
	var doc struct {
		Prices map[string]float64 `yaml:"prices"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("error decoding price table: %w", err)
	}
	for s, p := range doc.Prices {
		if p < 0 || math.IsNaN(p) {
			return nil, fmt.Errorf("bad price %v for %s", p, s)
		}
	}
	return &PriceTable{prices: doc.Prices}, nil
}

// Tables bundles the three lookups the descriptor engine needs.
type Tables struct {
	Elements   *Table
	Enthalpies *EnthalpyTable
	Prices     *PriceTable
}

// Default returns the tables shipped with the module.
func Default() (*Tables, error) {
	return Open("", "", "")
}

// Open loads the tables from the given YAML files. An empty path selects the
// embedded table.
func Open(elementsPath, enthalpyPath, pricePath string) (*Tables, error) {
	var ts Tables
	var err error

	r, err := source(elementsPath, "data/elements.yaml")
	if err != nil {
		return nil, err
	}
	if ts.Elements, err = LoadElements(r); err != nil {
		return nil, err
	}

	r, err = source(enthalpyPath, "data/mixing_enthalpy.yaml")
	if err != nil {
		return nil, err
	}
	if ts.Enthalpies, err = LoadEnthalpies(r); err != nil {
		return nil, err
	}

	r, err = source(pricePath, "data/prices.yaml")
	if err != nil {
		return nil, err
	}
	if ts.Prices, err = LoadPrices(r); err != nil {
		return nil, err
	}

	return &ts, nil
}

func source(path, embedded string) (io.Reader, error) {
	var b []byte
	var err error
	if path == "" {
		b, err = data.ReadFile(embedded)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading table: %w", err)
	}
	return bytes.NewReader(b), nil
}

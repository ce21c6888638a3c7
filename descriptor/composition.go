package descriptor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Composition is an ordered list of element symbols with mole fractions
// that sum to 1.
type Composition struct {
	Symbols   []string
	Fractions []float64
}

// NewComposition normalizes raw mole amounts.
//
// When amounts is empty every element gets the same weight. When both lists
// are given with different lengths, the longer one is cut to the length of the
// shorter one, keeping the leading entries: three symbols with two amounts
// give a two element composition. Callers that expect an error for mismatched
// input must check the lengths themselves.
func NewComposition(symbols []string, amounts []float64) (Composition, error) {
	if len(amounts) == 0 {
		amounts = make([]float64, len(symbols))
		for i := range amounts {
			amounts[i] = 1
		}
	}

	n := len(symbols)
	if len(amounts) < n {
		n = len(amounts)
	}
	if n == 0 {
		return Composition{}, fmt.Errorf("%w: no elements", ErrInvalidComposition)
	}

	sum := 0.0
	for i, a := range amounts[:n] {
		if a < 0 || math.IsNaN(a) || math.IsInf(a, 0) {
			return Composition{}, fmt.Errorf("%w: amount %v for %s", ErrInvalidComposition, a, symbols[i])
		}
		sum += a
	}
	if sum == 0 {
		return Composition{}, fmt.Errorf("%w: amounts sum to zero", ErrInvalidComposition)
	}

	c := Composition{
		Symbols:   make([]string, n),
		Fractions: make([]float64, n),
	}
	copy(c.Symbols, symbols[:n])
	for i, a := range amounts[:n] {
		c.Fractions[i] = a / sum
	}
	return c, nil
}

// fractionTolerance bounds how far the fractions of a composition may sum
// from 1.
const fractionTolerance = 1e-9

// validate checks a composition that may not come from NewComposition.
func (c Composition) validate() error {
	if c.Len() == 0 || len(c.Fractions) != c.Len() {
		return fmt.Errorf("%w: %d symbols with %d fractions", ErrInvalidComposition, c.Len(), len(c.Fractions))
	}

	sum := 0.0
	for i, f := range c.Fractions {
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: fraction %v for %s", ErrInvalidComposition, f, c.Symbols[i])
		}
		sum += f
	}
	if math.Abs(sum-1) > fractionTolerance {
		return fmt.Errorf("%w: fractions sum to %v", ErrInvalidComposition, sum)
	}
	return nil
}

// Len returns the number of elements.
func (c Composition) Len() int {
	return len(c.Symbols)
}

// String formats the composition as "Fe0.25-Ni0.25-...".
func (c Composition) String() string {
	var sb strings.Builder
	for i, s := range c.Symbols {
		if i > 0 {
			sb.WriteByte('-')
		}
		sb.WriteString(s)
		sb.WriteString(strconv.FormatFloat(c.Fractions[i], 'g', 4, 64))
	}
	return sb.String()
}

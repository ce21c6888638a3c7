package descriptor

import (
	"encoding/json"
	"strconv"
)

// Price is the alloy price in USD/kg. It is unknown when at least one of the
// elements has no market price.
type Price struct {
	value float64
	known bool
}

// Known returns a price with value v.
func Known(v float64) Price {
	return Price{value: v, known: true}
}

// Unknown returns the price of a composition with an unpriced element.
func Unknown() Price {
	return Price{}
}

// Value returns the price and whether it is known.
func (p Price) Value() (float64, bool) {
	return p.value, p.known
}

// IsKnown reports whether the price has a value.
func (p Price) IsKnown() bool {
	return p.known
}

func (p Price) String() string {
	if !p.known {
		return "unknown"
	}
	return strconv.FormatFloat(p.value, 'f', 2, 64)
}

// MarshalJSON encodes an unknown price as null.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.known {
		return []byte("null"), nil
	}
	return json.Marshal(p.value)
}

func (p *Price) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = Unknown()
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Known(v)
	return nil
}

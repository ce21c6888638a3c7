package mdb_spectro

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RoanBrand/AlloyCalc/sample"
)

func TestAddResult(t *testing.T) {
	var r sample.Record
	seen := map[string]struct{}{}

	addResult(&r, seen, "0x00000033-Fe", 70.1)
	addResult(&r, seen, "0x0000000B-Cr", 18.2)
	addResult(&r, seen, "0x00000033-Fe", 69.0) // second replicate
	addResult(&r, seen, "0x000000FF-Xx", 1)

	assert.Equal(t, []sample.ElementResult{
		{Element: "Fe", Value: 70.1},
		{Element: "Cr", Value: 18.2},
	}, r.Results)
}

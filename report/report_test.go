package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoanBrand/AlloyCalc/descriptor"
)

var testResult = descriptor.Result{
	MeanRadius:              1.25,
	SizeMismatch:            0.0125,
	MeanMeltingPoint:        1800,
	MeltingPointSpread:      0.1,
	MixingEntropy:           13.38,
	MixingEnthalpy:          -4.16,
	EnthalpySpread:          3.5,
	Omega:                   5.789,
	MeanElectronegativity:   1.8,
	ElectronegativitySpread: 0.05,
	MeanVEC:                 8,
	VECSpread:               1.414,
	Density:                 8.1,
	Price:                   descriptor.Known(12.345),
}

func TestRecord(t *testing.T) {
	in := descriptor.Input{Symbols: []string{"Fe", "Ni"}, Amounts: []float64{1, 0.5}}
	rec := Record(in, testResult)

	require.Len(t, rec, len(Header))
	assert.Equal(t, "Fe-Ni", rec[0])
	assert.Equal(t, "1-0.5", rec[1])
	assert.Equal(t, "-4.16", rec[2])
	assert.Equal(t, "1.25", rec[4]) // percent
	assert.Equal(t, "1800", rec[7]) // Tm stays in K
	assert.Equal(t, "10", rec[8])
	assert.Equal(t, "5", rec[10])
	assert.Equal(t, "12.35", rec[14])
}

func TestRecordUnknownPrice(t *testing.T) {
	r := testResult
	r.Price = descriptor.Unknown()

	rec := Record(descriptor.Input{Symbols: []string{"Fe"}}, r)
	assert.Equal(t, "", rec[1])
	assert.Equal(t, "unknown", rec[14])
}

func TestOpenBatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), BatchFileName)
	in := descriptor.Input{Symbols: []string{"Fe", "Ni"}}

	for i := 0; i < 2; i++ {
		bf, err := OpenBatchFile(path)
		require.NoError(t, err)
		require.NoError(t, bf.Write(in, testResult))
		require.NoError(t, bf.Close())
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3, "header is written once")
	assert.Equal(t, Header, recs[0])
	assert.Equal(t, "Fe-Ni", recs[1][0])
	assert.Equal(t, "Fe-Ni", recs[2][0])
}

func TestSummary(t *testing.T) {
	s := Summary(testResult)

	assert.Contains(t, s, "ΔH:      -4.16 kJ/mol\n")
	assert.Contains(t, s, "δ:       1.25 %\n")
	assert.Contains(t, s, "Ω:       5.79\n")
	assert.Contains(t, s, "price:   12.35 USD/kg\n")
	assert.Len(t, strings.Split(strings.TrimSpace(s), "\n"), 14)

	r := testResult
	r.Price = descriptor.Unknown()
	assert.Contains(t, Summary(r), "price:   unknown\n")
}

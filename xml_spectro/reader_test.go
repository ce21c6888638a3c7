package xml_spectro

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoanBrand/AlloyCalc/sample"
)

func TestGetResults(t *testing.T) {
	recs, err := GetResults("testdata", 10)
	require.NoError(t, err)

	// notes.xml is not a spectro file and the bad timestamp sample is dropped
	require.Len(t, recs, 2)

	assert.Equal(t, "H2001T", recs[0].SampleName)
	assert.Equal(t, "F2", recs[0].Furnace)
	assert.Equal(t, []sample.ElementResult{
		{Element: "Fe", Value: 70.5},
		{Element: "Cr", Value: 19.5},
		{Element: "Ni", Value: 10.0},
	}, recs[0].Results)

	assert.Equal(t, "H1001T", recs[1].SampleName)
	assert.True(t, recs[0].TimeStamp.After(recs[1].TimeStamp))
}

func TestGetResultsLimit(t *testing.T) {
	recs, err := GetResults("testdata", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "H2001T", recs[0].SampleName)
}

func TestGetResultsBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spectro_1.xml"), []byte("<SampleResults><SampleResult"), 0644))

	_, err := GetResults(dir, 5)
	assert.Error(t, err)
}

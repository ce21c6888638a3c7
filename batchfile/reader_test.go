package batchfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	in := `Elements,Ratios
"Fe,Ni,Co","1,1,0.5"
"Al,,Ti","2,9,1"

"Cr,Mn"
"Fe,Ni","1,x"
`
	rows, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, []string{"Fe", "Ni", "Co"}, rows[0].Input.Symbols)
	assert.Equal(t, []float64{1, 1, 0.5}, rows[0].Input.Amounts)
	assert.NoError(t, rows[0].Err)

	// the empty symbol takes its ratio with it
	assert.Equal(t, []string{"Al", "Ti"}, rows[1].Input.Symbols)
	assert.Equal(t, []float64{2, 1}, rows[1].Input.Amounts)

	assert.Equal(t, 5, rows[2].Line)
	assert.Equal(t, []string{"Cr", "Mn"}, rows[2].Input.Symbols)
	assert.Empty(t, rows[2].Input.Amounts)

	assert.Error(t, rows[3].Err)
}

func TestReadCSVLineNumbers(t *testing.T) {
	in := "\n\nElement,Ratio\n\"Fe,Ni\",\"1,1\"\n\n\n\"Al,Ti\",\"1,q\"\nW\n"
	rows, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// the header is the first record even after leading blank lines
	assert.Equal(t, 4, rows[0].Line)
	assert.Equal(t, 7, rows[1].Line)
	assert.Error(t, rows[1].Err)
	assert.Equal(t, 8, rows[2].Line)
}

func TestReadXLSXLineNumbers(t *testing.T) {
	wb := excelize.NewFile()
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]any{"Fe,Ni", "1,1"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A4", &[]any{"W"}))

	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ReadXLSX(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Line)
	assert.Equal(t, 4, rows[1].Line)
}

func TestReadCSVShortRatios(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(`"Fe,Ni,Co","1,2"` + "\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Fe", "Ni", "Co"}, rows[0].Input.Symbols)
	assert.Equal(t, []float64{1, 2}, rows[0].Input.Amounts)
}

func TestReadCSVHeaderOnlyFirstRow(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("Fe,1\nElement,2\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Element"}, rows[1].Input.Symbols)
}

func TestReadXLSX(t *testing.T) {
	wb := excelize.NewFile()
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]any{"Element", "Ratio"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]any{"Fe,Ni", "3,1"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A3", &[]any{"W", 1}))

	path := filepath.Join(t.TempDir(), "batch.xlsx")
	require.NoError(t, wb.SaveAs(path))

	rows, err := Read(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Fe", "Ni"}, rows[0].Input.Symbols)
	assert.Equal(t, []float64{3, 1}, rows[0].Input.Amounts)
	assert.Equal(t, []string{"W"}, rows[1].Input.Symbols)
	assert.Equal(t, []float64{1}, rows[1].Input.Amounts)
}

func TestReadUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.txt")
	require.NoError(t, os.WriteFile(path, []byte("Fe"), 0644))

	_, err := Read(path)
	assert.ErrorIs(t, err, ErrUnsupported)
}

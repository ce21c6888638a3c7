package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoanBrand/AlloyCalc/descriptor"
	"github.com/RoanBrand/AlloyCalc/report"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCalc(t *testing.T) {
	out, err := run(t, "calc", "--elements", "Co,Cr,Fe,Mn,Ni")
	require.NoError(t, err)
	assert.Contains(t, out, "ΔH:      -4.16 kJ/mol")
	assert.Contains(t, out, "VEC:     8.00")
}

func TestCalcJSON(t *testing.T) {
	out, err := run(t, "calc", "-e", "Fe,Ni", "-r", "1,1", "--json")
	require.NoError(t, err)

	var res descriptor.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, -2, res.MixingEnthalpy, 1e-9)
}

func TestCalcErrors(t *testing.T) {
	_, err := run(t, "calc")
	assert.Error(t, err, "elements is required")

	_, err = run(t, "calc", "-e", "Fe,Xx")
	assert.ErrorIs(t, err, descriptor.ErrLookupNotFound)
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "alloys.csv")
	require.NoError(t, os.WriteFile(in, []byte("Elements,Ratios\n\"Fe,Ni\",\"1,1\"\n\"Fe,Xx\"\n\"Al,Ti\",\"1,q\"\n"), 0644))

	out, err := run(t, "batch", "--in", in, "--out", dir, "-w", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "1 computed, 1 failed, 1 unreadable rows")

	f, err := os.Open(filepath.Join(dir, report.BatchFileName))
	require.NoError(t, err)
	defer f.Close()

	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, report.Header, recs[0])
	assert.Equal(t, "Fe-Ni", recs[1][0])
}

func TestBatchStoreNeedsDatabase(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "alloys.csv")
	require.NoError(t, os.WriteFile(in, []byte("\"Fe,Ni\"\n"), 0644))

	_, err := run(t, "batch", "--in", in, "--out", dir, "--store")
	assert.Error(t, err)
}

func TestElements(t *testing.T) {
	out, err := run(t, "elements")
	require.NoError(t, err)
	assert.Contains(t, out, "Fe  0.08 USD/kg\n")
	assert.Len(t, bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n")), 16)
}

func TestSpectro(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "config.json")
	src, err := filepath.Abs(filepath.Join("..", "..", "xml_spectro", "testdata"))
	require.NoError(t, err)
	data, err := json.Marshal(map[string]interface{}{
		"http_server_port":  "8080",
		"data_type":         "xml",
		"data_source":       src,
		"number_of_results": 5,
		"workers":           1,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(conf, data, 0644))

	out, err := run(t, "--config", conf, "spectro")
	require.NoError(t, err)
	assert.Contains(t, out, "H2001T  F2")
	assert.Contains(t, out, "H1001T  F1")
}

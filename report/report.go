// Package report formats descriptor results for people and for batch CSV
// output.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/RoanBrand/AlloyCalc/descriptor"
)

// BatchFileName is the file batch results are appended to.
const BatchFileName = "batch_calculation_results.csv"

// Header is the column order of batch CSV output.
var Header = []string{
	"Elements",
	"Molar_ratios",
	"Enthalpy(kJ/mol)",
	"std_enthalpy(kJ/mol)",
	"Delta(%)",
	"Omega",
	"Entropy(J/K*mol)",
	"Tm(K)",
	"std_Tm(%)",
	"X",
	"std_X(%)",
	"VEC",
	"std_VEC",
	"Density(g/cm^3)",
	"Price(USD/kg)",
}

// Record returns the CSV columns for one computed composition. Relative
// spreads are written as percent.
func Record(in descriptor.Input, r descriptor.Result) []string {
	return []string{
		strings.Join(in.Symbols, "-"),
		joinFloats(in.Amounts, "-"),
		formatFloat(r.MixingEnthalpy),
		formatFloat(r.EnthalpySpread),
		formatFloat(100 * r.SizeMismatch),
		formatFloat(r.Omega),
		formatFloat(r.MixingEntropy),
		formatFloat(r.MeanMeltingPoint),
		formatFloat(100 * r.MeltingPointSpread),
		formatFloat(r.MeanElectronegativity),
		formatFloat(100 * r.ElectronegativitySpread),
		formatFloat(r.MeanVEC),
		formatFloat(r.VECSpread),
		formatFloat(r.Density),
		r.Price.String(),
	}
}

// CSVWriter writes batch rows.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter returns a writer over w, writing the header first if asked.
func NewCSVWriter(w io.Writer, header bool) (*CSVWriter, error) {
	cw := &CSVWriter{w: csv.NewWriter(w)}
	if header {
		if err := cw.w.Write(Header); err != nil {
			return nil, err
		}
	}
	return cw, nil
}

func (cw *CSVWriter) Write(in descriptor.Input, r descriptor.Result) error {
	return cw.w.Write(Record(in, r))
}

func (cw *CSVWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

// BatchFile is a batch result file opened for appending.
type BatchFile struct {
	*CSVWriter
	f *os.File
}

// OpenBatchFile opens path for appending. The header is written when the file
// is new or empty.
func OpenBatchFile(path string) (*BatchFile, error) {
	fi, err := os.Stat(path)
	newFile := errors.Is(err, os.ErrNotExist) || (err == nil && fi.Size() == 0)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	cw, err := NewCSVWriter(f, newFile)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &BatchFile{CSVWriter: cw, f: f}, nil
}

// Close flushes pending rows and closes the file.
func (bf *BatchFile) Close() error {
	err := bf.Flush()
	if cErr := bf.f.Close(); err == nil {
		err = cErr
	}
	return err
}

// Summary returns one labelled line per descriptor.
func Summary(r descriptor.Result) string {
	var sb strings.Builder
	line := func(label, value, unit string) {
		fmt.Fprintf(&sb, "%-8s %s", label+":", value)
		if unit != "" {
			sb.WriteString(" " + unit)
		}
		sb.WriteByte('\n')
	}

	line("ΔS", f2(r.MixingEntropy), "J/(K*mol)")
	line("ΔH", f2(r.MixingEnthalpy), "kJ/mol")
	line("std H", f2(r.EnthalpySpread), "kJ/mol")
	line("a", f2(r.MeanRadius), "Å")
	line("δ", f2(100*r.SizeMismatch), "%")
	line("VEC", f2(r.MeanVEC), "")
	line("ΔVEC", f2(r.VECSpread), "")
	line("Ω", f2(r.Omega), "")
	line("Tm", f2(r.MeanMeltingPoint), "K")
	line("ΔTm", f2(100*r.MeltingPointSpread), "%")
	line("X", f2(r.MeanElectronegativity), "")
	line("ΔX", f2(100*r.ElectronegativitySpread), "%")
	line("density", f2(r.Density), "g/cm^3")
	if r.Price.IsKnown() {
		line("price", r.Price.String(), "USD/kg")
	} else {
		line("price", r.Price.String(), "")
	}
	return sb.String()
}

func f2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func joinFloats(vs []float64, sep string) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = formatFloat(v)
	}
	return strings.Join(s, sep)
}

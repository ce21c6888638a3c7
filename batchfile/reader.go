// Package batchfile reads compositions from CSV and XLSX batch files.
//
// Each row holds the element symbols in its first cell and the matching mole
// amounts in its second, both comma separated: "Fe,Ni,Co" and "1,1,0.5".
// A missing second cell means equal amounts. A first row whose first cell is
// "Element" or "Elements" is a header and skipped.
package batchfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/RoanBrand/AlloyCalc/descriptor"
)

// ErrUnsupported is returned for files that are neither CSV nor XLSX.
var ErrUnsupported = errors.New("unsupported batch file type")

// Row is one parsed line of a batch file. Line is 1 based.
type Row struct {
	Line  int
	Input descriptor.Input
	Err   error
}

// Read opens path and parses it according to its extension.
func Read(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(f)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

// ReadCSV parses CSV rows. Line numbers are file lines; blank lines are
// skipped by the CSV reader but still counted.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []Row
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		line, _ := cr.FieldPos(0)
		if row, ok := parseRow(rec, line, first); ok {
			rows = append(rows, row)
		}
	}
}

// ReadXLSX parses the first sheet of a workbook.
func ReadXLSX(r io.Reader) ([]Row, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	records, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	// GetRows keeps empty rows, so the index is the sheet row
	var rows []Row
	for i, rec := range records {
		if row, ok := parseRow(rec, i+1, i == 0); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// parseRow reports false for empty rows and for a header in the first row.
func parseRow(rec []string, line int, first bool) (Row, bool) {
	if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
		return Row{}, false
	}
	if first && isHeader(rec[0]) {
		return Row{}, false
	}

	row := Row{Line: line}
	row.Input, row.Err = parseComposition(rec)
	return row, true
}

func isHeader(cell string) bool {
	cell = strings.TrimSpace(cell)
	return strings.EqualFold(cell, "element") || strings.EqualFold(cell, "elements")
}

// parseComposition pairs symbol and amount cells by position. Empty symbol
// cells are dropped together with their amount.
func parseComposition(rec []string) (descriptor.Input, error) {
	symbols := strings.Split(rec[0], ",")
	var amounts []string
	if len(rec) > 1 && strings.TrimSpace(rec[1]) != "" {
		amounts = strings.Split(rec[1], ",")
	}

	var in descriptor.Input
	for j, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		in.Symbols = append(in.Symbols, s)

		if amounts == nil || j >= len(amounts) {
			continue
		}
		a, err := strconv.ParseFloat(strings.TrimSpace(amounts[j]), 64)
		if err != nil {
			return descriptor.Input{}, fmt.Errorf("bad ratio %q for %s", amounts[j], s)
		}
		in.Amounts = append(in.Amounts, a)
	}
	return in, nil
}

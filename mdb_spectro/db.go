package mdb_spectro

import (
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	"github.com/RoanBrand/AlloyCalc/sample"
	_ "github.com/mattn/go-adodb"
)

// Driver has problems with multiple connections.
// DB is a file on disk anyway.
var querySerializer sync.Mutex

// Database result key to element symbol.
var elementKeys = map[string]string{
	"0x00000001-C":  "C",
	"0x00000003-Si": "Si",
	"0x00000005-Mn": "Mn",
	"0x00000007-P":  "P",
	"0x00000009-S":  "S",
	"0x00000019-Cu": "Cu",
	"0x0000000B-Cr": "Cr",
	"0x00000015-Al": "Al",
	"0x0000001F-Ti": "Ti",
	"0x00000027-Sn": "Sn",
	"0x00000031-Zn": "Zn",
	"0x00000025-Pb": "Pb",
	"0x0000000E-Ni": "Ni",
	"0x00000011-Mo": "Mo",
	"0x00000017-Co": "Co",
	"0x0000001D-Nb": "Nb",
	"0x00000021-V":  "V",
	"0x00000023-W":  "W",
	"0x00000029-Mg": "Mg",
	"0x0000002B-Bi": "Bi",
	"0x0000002D-Ca": "Ca",
	"0x00000033-Fe": "Fe",
}

// GetResults returns the latest numResults samples, newest first, with their
// element results in weight percent.
func GetResults(dsn string, numResults int) ([]sample.Record, error) {
	querySerializer.Lock()
	defer querySerializer.Unlock()

	db, err := sql.Open("adodb", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening db: %w", err)
	}
	defer db.Close()

	sampleRows, err := db.Query(`
		SELECT TOP ` + strconv.Itoa(numResults) + `
		SampleResultID, SampleName, Quality, StoreDateTime
		FROM KSampleResultTbl
		ORDER BY SampleResultID DESC;`)
	if err != nil {
		return nil, fmt.Errorf("error querying 'KSampleResultTbl': %w", err)
	}

	recs := make([]sample.Record, 0, numResults)
	for sampleRows.Next() {
		var sampleName, furnace sql.NullString
		var r sample.Record

		if err := sampleRows.Scan(&r.SampleId, &sampleName, &furnace, &r.TimeStamp); err != nil {
			sampleRows.Close()
			return nil, fmt.Errorf("error scanning row from 'KSampleResultTbl': %w", err)
		}
		r.SampleName = sampleName.String
		r.Furnace = furnace.String
		recs = append(recs, r)
	}
	sampleRows.Close()
	if err = sampleRows.Err(); err != nil {
		return nil, fmt.Errorf("error reading 'KSampleResultTbl': %w", err)
	}

	for i := range recs {
		if err = readElementResults(db, &recs[i]); err != nil {
			return nil, err
		}
	}

	return recs, nil
}

func readElementResults(db *sql.DB, r *sample.Record) error {
	rows, err := db.Query(`
		SELECT m.Timestamp, r.ResultKey, r.Value
		FROM KMeasureResultTbl m
		LEFT JOIN KResultValueTbl r ON ((r.MeasureResultID = m.MeasureResultID) AND (r.ResultType = 2) AND (r.Value > 0.0))
		WHERE m.SampleResultID = ` + strconv.FormatInt(r.SampleId, 10) + ` AND m.ResultType = 1;`)
	if err != nil {
		return fmt.Errorf("error querying 'KMeasureResultTbl': %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{}, len(elementKeys))
	for rows.Next() {
		var key sql.NullString
		var value sql.NullFloat64

		if err := rows.Scan(&r.TimeStamp, &key, &value); err != nil {
			return fmt.Errorf("error scanning row from 'KMeasureResultTbl': %w", err)
		}
		if key.Valid && value.Valid {
			addResult(r, seen, key.String, value.Float64)
		}
	}
	return rows.Err()
}

// addResult keeps the first value per element and ignores unknown keys.
func addResult(r *sample.Record, seen map[string]struct{}, key string, value float64) {
	el, ok := elementKeys[key]
	if !ok {
		return
	}
	if _, dup := seen[el]; dup {
		return
	}
	seen[el] = struct{}{}
	r.Results = append(r.Results, sample.ElementResult{Element: el, Value: value})
}

package xml_spectro

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RoanBrand/AlloyCalc/sample"
	"github.com/RoanBrand/AlloyCalc/xml_spectro/fileparser"
)

// GetResults reads the newest numResults spectrometer result files in
// xmlFolder. Samples with an unreadable timestamp are skipped.
func GetResults(xmlFolder string, numResults int) ([]sample.Record, error) {
	files, err := filepath.Glob(filepath.Join(xmlFolder, "*.xml"))
	if err != nil {
		return nil, err
	}

	// filter out any non spectro result xml files.
	xmlFiles := files[:0]
	for _, file := range files {
		if strings.Contains(strings.ToLower(filepath.Base(file)), "spectro") {
			xmlFiles = append(xmlFiles, file)
		}
	}

	// spectro XML file names contain dates, so newest sorts last
	sort.Sort(sort.Reverse(sort.StringSlice(xmlFiles)))
	if len(xmlFiles) > numResults {
		xmlFiles = xmlFiles[:numResults]
	}

	recs := make([]sample.Record, 0, len(xmlFiles))
	for _, file := range xmlFiles {
		srs, err := readFile(file)
		if err != nil {
			return nil, err
		}

		for i := range srs {
			rec, err := srs[i].Record()
			if err != nil {
				continue
			}
			recs = append(recs, rec)
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].TimeStamp.After(recs[j].TimeStamp)
	})
	return recs, nil
}

func readFile(path string) ([]fileparser.SampleResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	srs, err := fileparser.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return srs, nil
}

package fileparser

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/RoanBrand/AlloyCalc/sample"
)

const timeLayout = "2006-01-02T15:04:05"

// Every file seems to contain only one sample result, but it may have more.
type sampleResultsXMLFile struct {
	SampleResults []SampleResult `xml:"SampleResult"`
}

type SampleResult struct {
	Timestamp string `xml:"RecalculationDateTime,attr"`
	Method    string `xml:"MethodName,attr"`

	SampleIDs             []SampleID    `xml:"SampleIDs>SampleID"`
	MeasurementStatistics []Measurement `xml:"MeasurementStatistics>Measurement"`
}

type SampleID struct {
	Name  string `xml:"IDName"`
	Value string `xml:"IDValue"`
}

type Measurement struct {
	CheckType string `xml:"CheckType,attr"`

	Elements []Element `xml:"Elements>Element"`
}

type Element struct {
	Name string `xml:"ElementName,attr"`
	Type string `xml:"Type,attr"`

	ElementResults []Result `xml:"ElementResult"`
}

type Result struct {
	Type     string `xml:"Type,attr"`
	Kind     string `xml:"Kind,attr"`
	Unit     string `xml:"Unit,attr"`
	StatType string `xml:"StatType,attr"` // 'Reported' seems to be the one we want

	ResultValue float64 `xml:"ResultValue"`
}

// Decode parses one spectrometer result file.
func Decode(r io.Reader) ([]SampleResult, error) {
	var f sampleResultsXMLFile
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	return f.SampleResults, nil
}

// Record converts the reported concentrations of the sample into a record.
func (sr *SampleResult) Record() (sample.Record, error) {
	rec := sample.Record{
		SampleName: sr.SampleID(),
		Furnace:    sr.Furnace(),
	}

	var err error
	rec.TimeStamp, err = time.ParseInLocation(timeLayout, sr.Timestamp, time.Local)
	if err != nil {
		return sample.Record{}, fmt.Errorf("sample %q: bad timestamp: %w", rec.SampleName, err)
	}
	if len(sr.MeasurementStatistics) == 0 {
		return rec, nil
	}

	for _, el := range sr.MeasurementStatistics[0].Elements {
		res := el.reportedResult()
		if res == nil || res.Unit != "%" {
			continue
		}
		rec.Results = append(rec.Results, sample.ElementResult{Element: el.Name, Value: res.ResultValue})
	}
	return rec, nil
}

// XML helper functions.
func (sr *SampleResult) findSampleId(id string) string {
	for _, sId := range sr.SampleIDs {
		if sId.Name == id {
			return sId.Value
		}
	}
	return ""
}

func (sr *SampleResult) SampleID() string {
	return sr.findSampleId("Sample ID")
}

func (sr *SampleResult) Furnace() string {
	return sr.findSampleId("Quality") // seems the operators enter into the wrong field
}

func (el *Element) reportedResult() *Result {
	for i := range el.ElementResults {
		if el.ElementResults[i].StatType == "Reported" {
			return &el.ElementResults[i]
		}
	}
	return nil
}

package sample

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoanBrand/AlloyCalc/descriptor"
	"github.com/RoanBrand/AlloyCalc/element"
)

// Record is one spectrometer sample.
type Record struct {
	SampleId   int64           `json:"-"`
	SampleName string          `json:"sample_name"`
	Furnace    string          `json:"furnace"`
	TimeStamp  time.Time       `json:"time_stamp"`
	Results    []ElementResult `json:"results,omitempty"` // weight percent

	Spectro int `json:"spectro,omitempty"` // spectro machine from which the sample was taken
}

type ElementResult struct {
	Element string  `json:"element"`
	Value   float64 `json:"value"`
}

// ElementSource resolves atomic masses.
type ElementSource interface {
	Element(symbol string) (element.Properties, error)
}

// Input converts the weight percent results into mole amounts (wt% / atomic
// mass). Elements unknown to src are left out and returned in skipped, since
// spectrometers report trace elements that element tables often lack.
func (r *Record) Input(src ElementSource) (in descriptor.Input, skipped []string, err error) {
	in.Name = r.SampleName

	for _, res := range r.Results {
		if res.Element == "" || res.Value <= 0 {
			continue
		}

		p, err := src.Element(res.Element)
		if errors.Is(err, element.ErrNotFound) {
			skipped = append(skipped, res.Element)
			continue
		}
		if err != nil {
			return descriptor.Input{}, nil, err
		}
		if !(p.AtomicMass > 0) {
			return descriptor.Input{}, nil, fmt.Errorf("%w: atomic mass of %s", descriptor.ErrMissingProperty, res.Element)
		}

		in.Symbols = append(in.Symbols, res.Element)
		in.Amounts = append(in.Amounts, res.Value/p.AtomicMass)
	}

	if len(in.Symbols) == 0 {
		return descriptor.Input{}, skipped, fmt.Errorf("%w: sample %q has no usable results", descriptor.ErrInvalidComposition, r.SampleName)
	}
	return in, skipped, nil
}

// Computed is a sample record with its descriptors. Error is set instead of
// Descriptors when the sample could not be computed.
type Computed struct {
	Record
	Descriptors *descriptor.Result `json:"descriptors,omitempty"`
	Skipped     []string           `json:"skipped_elements,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// Compute converts recs to compositions and computes them on up to workers
// goroutines. The order of recs is kept.
func Compute(ctx context.Context, engine *descriptor.Engine, src ElementSource, recs []Record, workers int) ([]Computed, error) {
	out := make([]Computed, len(recs))
	inputs := make([]descriptor.Input, 0, len(recs))
	idx := make([]int, 0, len(recs))

	for i := range recs {
		out[i].Record = recs[i]

		in, skipped, err := recs[i].Input(src)
		out[i].Skipped = skipped
		if err != nil {
			out[i].Error = err.Error()
			continue
		}
		inputs = append(inputs, in)
		idx = append(idx, i)
	}

	results, err := engine.ComputeBatch(ctx, inputs, workers)
	if err != nil {
		return nil, err
	}

	for j, br := range results {
		c := &out[idx[j]]
		if br.Err != nil {
			c.Error = br.Err.Error()
			continue
		}
		r := br.Result
		c.Descriptors = &r
	}
	return out, nil
}

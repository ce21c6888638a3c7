package descriptor

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Input is one composition of a batch.
type Input struct {
	Name    string    `json:"name,omitempty"`
	Symbols []string  `json:"elements"`
	Amounts []float64 `json:"ratios,omitempty"`
}

// BatchResult is the outcome for one batch input. Err is set when that input
// could not be computed; Result is then zero.
type BatchResult struct {
	Input  Input
	Result Result
	Err    error
}

// ComputeBatch computes every input on up to workers goroutines. Results keep
// the order of inputs. A bad composition only fails its own row; the batch as
// a whole fails only when ctx is done.
func (e *Engine) ComputeBatch(ctx context.Context, inputs []Input, workers int) ([]BatchResult, error) {
	if workers < 1 {
		workers = 1
	}

	out := make([]BatchResult, len(inputs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range inputs {
		if gCtx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			r, err := e.Compute(inputs[i].Symbols, inputs[i].Amounts)
			out[i] = BatchResult{Input: inputs[i], Result: r, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

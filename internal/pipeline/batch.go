package pipeline

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"

	"github.com/sandbars-surf/wavegrid/internal/grid"
)

// DefaultFailureThreshold is the failed-hour fraction above which a batch is
// reported as failed overall: isolated bad files are tolerated, systemic
// decoder or source problems are not.
const DefaultFailureThreshold = 0.10

// BatchOptions controls the batch run over many forecast-hour inputs.
type BatchOptions struct {
	// Workers is the number of concurrent hour processors. Hours are
	// independent, so they only share the read-only layer set. Defaults to
	// runtime.NumCPU().
	Workers int

	// FailureThreshold overrides DefaultFailureThreshold when positive.
	FailureThreshold float64

	// Progress, if set, is called after each hour finishes (in completion
	// order), with err nil on success.
	Progress func(done, total int, input string, err error)
}

// Result summarizes a batch run.
type Result struct {
	Succeeded    int
	Failed       int
	FailedInputs []string
	Errors       []*HourFailure
}

// OK reports whether the batch as a whole succeeded: the failed fraction must
// not exceed the threshold.
func (r Result) OK(threshold float64) bool {
	total := r.Succeeded + r.Failed
	if total == 0 {
		return false
	}
	return float64(r.Failed)/float64(total) <= threshold
}

// hourResult pairs a finished input with its failure, nil on success, so
// progress reporting can name the file either way.
type hourResult struct {
	input string
	fail  *HourFailure
}

// ProcessBatch decodes, renders and writes every input on a worker pool.
// Per-hour failures never abort the rest of the batch. The returned error is
// non-nil only when the batch fails overall per the failure threshold.
func (r *Renderer) ProcessBatch(ctx context.Context, inputs []string, dec grid.Decoder, outDir string, opts BatchOptions) (Result, error) {
	var res Result
	if len(inputs) == 0 {
		return res, fmt.Errorf("no inputs to process")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}
	threshold := opts.FailureThreshold
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}

	jobs := make(chan string, len(inputs))
	results := make(chan hourResult, len(inputs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for input := range jobs {
				results <- hourResult{input: input, fail: r.processOne(ctx, input, dec, outDir)}
			}
		}()
	}

	for _, input := range inputs {
		jobs <- input
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	done := 0
	for hr := range results {
		done++
		if hr.fail == nil {
			res.Succeeded++
			if opts.Progress != nil {
				opts.Progress(done, len(inputs), hr.input, nil)
			}
			continue
		}
		res.Failed++
		res.FailedInputs = append(res.FailedInputs, hr.fail.Input)
		res.Errors = append(res.Errors, hr.fail)
		log.Printf("forecast hour failed (%s): %v", hr.fail.Kind, hr.fail.Err)
		if opts.Progress != nil {
			opts.Progress(done, len(inputs), hr.input, hr.fail)
		}
	}
	sort.Strings(res.FailedInputs)

	if !res.OK(threshold) {
		return res, fmt.Errorf("batch failed: %d of %d hours failed (threshold %.0f%%)",
			res.Failed, len(inputs), threshold*100)
	}
	return res, nil
}

// processOne handles a single forecast-hour input end to end. A nil return
// means every artifact for the hour was written.
func (r *Renderer) processOne(ctx context.Context, input string, dec grid.Decoder, outDir string) *HourFailure {
	if err := ctx.Err(); err != nil {
		return &HourFailure{Input: input, Kind: DecodeFailure, Err: err}
	}

	fields, err := dec.Decode(ctx, input)
	if err != nil {
		return &HourFailure{Input: input, Kind: classify(err), Err: err}
	}

	product, err := r.RenderHour(fields)
	if err != nil {
		return &HourFailure{Input: input, Kind: classify(err), Err: err}
	}

	if err := WriteProduct(outDir, product); err != nil {
		return &HourFailure{Input: input, Kind: EncodingFailure, Err: err}
	}
	return nil
}

// Package fileproc runs a per-file function over a bounded worker pool.
package fileproc

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"

	"github.com/panbanda/codemetrics/pkg/parser"
	"github.com/sourcegraph/conc/pool"
)

// Failure is a file the per-file function could not process.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Failures are the failed files of one MapFiles call, ordered by path.
type Failures []Failure

func (fs Failures) Error() string {
	switch len(fs) {
	case 0:
		return "no errors"
	case 1:
		return fs[0].Error()
	default:
		return fmt.Sprintf("%d files failed to process (first: %v)", len(fs), fs[0])
	}
}

// DefaultWorkerMultiplier scales NumCPU into the default worker count.
// Parsing goes through cgo, so workers block often enough that 2x pays off.
const DefaultWorkerMultiplier = 2

// DefaultWorkers returns the worker count used when none is configured.
func DefaultWorkers() int {
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// ProgressFunc is called once per file, whether it succeeded or not.
type ProgressFunc func()

// MapFiles calls fn for every file on at most maxWorkers goroutines, each
// call with a parser of its own. Results of successful calls keep the order
// of files. Failed files are left out of the results and returned as
// Failures, which is nil when every call succeeded. Once ctx is done, files
// not yet started fail with the context error.
// A maxWorkers <= 0 means DefaultWorkers.
func MapFiles[T any](
	ctx context.Context,
	files []string,
	maxWorkers int,
	fn func(*parser.Parser, string) (T, error),
	onProgress ProgressFunc,
) ([]T, Failures) {
	if len(files) == 0 {
		return nil, nil
	}
	if maxWorkers <= 0 {
		maxWorkers = DefaultWorkers()
	}

	type slot struct {
		value T
		err   error
	}
	slots := make([]slot, len(files))

	// Each goroutine writes only its own slot, so no locking is needed.
	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			if onProgress != nil {
				defer onProgress()
			}
			if err := ctx.Err(); err != nil {
				slots[i].err = err
				return nil
			}

			psr := parser.New()
			defer psr.Close()
			slots[i].value, slots[i].err = fn(psr, path)
			return nil
		})
	}
	_ = p.Wait()

	results := make([]T, 0, len(files))
	var failed Failures
	for i, s := range slots {
		if s.err != nil {
			failed = append(failed, Failure{Path: files[i], Err: s.err})
			continue
		}
		results = append(results, s.value)
	}
	slices.SortStableFunc(failed, func(a, b Failure) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return results, failed
}

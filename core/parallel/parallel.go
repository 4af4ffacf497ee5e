// Package parallel runs index ranges across goroutines with a join-all barrier.
package parallel

import (
	"runtime"
	"sync"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// Workers resolves an n_jobs setting for the given number of items.
// Values <= 0 mean one worker per CPU. The result is never more than items.
func Workers(nJobs, items int) int {
	workers := nJobs
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > items {
		workers = items
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Parallelize divides items across one worker per CPU core and calls fn for
// each contiguous range [start, end).
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeN(0, items, fn)
}

// ParallelizeN divides items across at most nJobs workers and calls fn for
// each contiguous range [start, end). It returns when all ranges are done.
func ParallelizeN(nJobs, items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := Workers(nJobs, items)
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when items <= threshold and
// in parallel otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// ForEach calls fn(i) for every i in [0, items) using at most nJobs workers.
// A panic inside fn is converted into a PanicError. When several calls fail,
// the error of the lowest index is returned so results do not depend on
// scheduling.
func ForEach(nJobs, items int, op string, fn func(i int) error) error {
	if items == 0 {
		return nil
	}
	errs := make([]error, items)
	ParallelizeN(nJobs, items, func(start, end int) {
		for i := start; i < end; i++ {
			i := i
			errs[i] = errors.SafeExecute(op, func() error { return fn(i) })
		}
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

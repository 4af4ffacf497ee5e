package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

func TestWorkers(t *testing.T) {
	assert.Equal(t, 1, Workers(4, 1))
	assert.Equal(t, 3, Workers(3, 100))
	assert.Equal(t, min(runtime.NumCPU(), 100), Workers(0, 100))
	assert.Equal(t, 1, Workers(-1, 0))
}

func TestParallelizeNCoversEveryItemOnce(t *testing.T) {
	for _, nJobs := range []int{1, 2, 3, 7, 0} {
		counts := make([]int32, 101)
		ParallelizeN(nJobs, len(counts), func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&counts[i], 1)
			}
		})
		for i, c := range counts {
			require.Equal(t, int32(1), c, "nJobs=%d item=%d", nJobs, i)
		}
	}
}

func TestParallelizeWithThresholdRunsSequentiallyBelowThreshold(t *testing.T) {
	var calls int32
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, int32(1), calls)
}

func TestForEachReturnsLowestIndexError(t *testing.T) {
	err := ForEach(4, 20, "test.op", func(i int) error {
		if i == 5 || i == 15 {
			return errors.Newf("failed at %d", i)
		}
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed at 5")
}

func TestForEachRecoversPanics(t *testing.T) {
	err := ForEach(2, 4, "forest.build", func(i int) error {
		if i == 2 {
			panic("boom")
		}
		return nil
	})
	var panicErr *errors.PanicError
	require.True(t, errors.As(err, &panicErr))
	assert.Equal(t, "forest.build", panicErr.Operation)
}

func TestForEachNoItems(t *testing.T) {
	assert.NoError(t, ForEach(4, 0, "noop", func(int) error { return errors.New("never") }))
}

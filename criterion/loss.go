package criterion

import (
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// MeanSquaredError returns the mean squared deviation of values from their
// mean. Identical values give exactly 0.
func MeanSquaredError(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.NewValueError("MeanSquaredError", "values must not be empty")
	}
	if constant(values) {
		return 0, nil
	}
	mean := stat.Mean(values, nil)
	sse := 0.0
	for _, v := range values {
		d := v - mean
		sse += d * d
	}
	return sse / float64(len(values)), nil
}

// MSEFromSums computes the mean squared deviation from running sums, as used
// by the threshold sweep. Pass sums of centred values: raw sums of large
// targets cancel catastrophically. Rounding can push the raw value below
// zero; it is clamped.
func MSEFromSums(sum, sumSq, n float64) float64 {
	if n <= 0 {
		return 0
	}
	mean := sum / n
	v := sumSq/n - mean*mean
	if v < 0 {
		return 0
	}
	return v
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

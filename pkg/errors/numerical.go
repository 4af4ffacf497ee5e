package errors

import (
	"math"

	"github.com/samber/lo"
)

// Epsilon is the smallest denominator SafeDivide divides by.
const Epsilon = 1e-10

// maxReported caps how many offending values CheckMatrix collects.
const maxReported = 10

func unstable(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// CheckNumericalStability returns a NumericalInstabilityError carrying values
// when any of them is NaN or ±Inf. iteration is the boosting round or solver
// step that produced them.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	if lo.SomeBy(values, unstable) {
		return NewNumericalInstabilityError(operation, values, iteration)
	}
	return nil
}

// CheckMatrix scans the leading rows×cols block of m and reports up to
// maxReported NaN or ±Inf entries.
func CheckMatrix(operation string, m interface{ At(int, int) float64 }, rows, cols, iteration int) error {
	var bad []float64
	for i := 0; i < rows && len(bad) < maxReported; i++ {
		for j := 0; j < cols; j++ {
			if v := m.At(i, j); unstable(v) {
				bad = append(bad, v)
			}
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return NewNumericalInstabilityError(operation, bad, iteration)
}

// SafeDivide returns numerator/denominator, or 0 when |denominator| < Epsilon.
func SafeDivide(numerator, denominator float64) float64 {
	if math.Abs(denominator) < Epsilon {
		return 0
	}
	return numerator / denominator
}

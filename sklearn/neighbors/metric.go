// Package neighbors implements brute-force k-nearest-neighbour classification
// and regression.
package neighbors

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// Metric measures the distance between two points of equal length.
type Metric interface {
	Distance(a, b []float64) float64
}

// Euclidean is the L2 distance.
type Euclidean struct{}

func (Euclidean) Distance(a, b []float64) float64 { return floats.Distance(a, b, 2) }

// Manhattan is the L1 distance.
type Manhattan struct{}

func (Manhattan) Distance(a, b []float64) float64 { return floats.Distance(a, b, 1) }

// Chebyshev is the L∞ distance.
type Chebyshev struct{}

func (Chebyshev) Distance(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }

// Minkowski is the Lp distance for P >= 1.
type Minkowski struct {
	P float64
}

func (m Minkowski) Distance(a, b []float64) float64 { return floats.Distance(a, b, m.P) }

// MetricByName resolves "euclidean", "manhattan" or "chebyshev".
func MetricByName(name string) (Metric, error) {
	switch name {
	case "euclidean", "":
		return Euclidean{}, nil
	case "manhattan":
		return Manhattan{}, nil
	case "chebyshev":
		return Chebyshev{}, nil
	default:
		return nil, errors.NewValidationError("metric", "must be euclidean, manhattan or chebyshev", name)
	}
}

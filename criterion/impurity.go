// Package criterion implements the split criteria used to grow trees: class
// impurity (Gini, entropy), squared-error loss and the second-order gain used
// by gradient-Hessian boosting.
//
// All functions are pure. The count- and sum-level forms are what the tree
// builder evaluates during its threshold sweep; the sequence forms are their
// reference definitions.
package criterion

import (
	"math"

	"github.com/samber/lo"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// Impurity scores the class mix of a label sequence. 0 means pure.
type Impurity func(labels []float64) float64

// Names of the supported impurity functions.
const (
	GiniName    = "gini"
	EntropyName = "entropy"
)

// ImpurityByName resolves "gini" or "entropy".
func ImpurityByName(name string) (Impurity, error) {
	switch name {
	case GiniName:
		return Gini, nil
	case EntropyName:
		return Entropy, nil
	default:
		return nil, errors.NewValidationError("criterion", "must be one of [gini entropy]", name)
	}
}

// CountImpurityByName resolves the count-level form of "gini" or "entropy".
func CountImpurityByName(name string) (func(counts []float64, total float64) float64, error) {
	switch name {
	case GiniName:
		return GiniFromCounts, nil
	case EntropyName:
		return EntropyFromCounts, nil
	default:
		return nil, errors.NewValidationError("criterion", "must be one of [gini entropy]", name)
	}
}

// Gini returns 1 - Σ p_c² over the classes present in labels.
// An empty sequence is treated as pure.
func Gini(labels []float64) float64 {
	counts := classCounts(labels)
	return GiniFromCounts(counts, float64(len(labels)))
}

// Entropy returns -Σ p_c·log2(p_c) over the classes present in labels.
// An empty sequence is treated as pure.
func Entropy(labels []float64) float64 {
	counts := classCounts(labels)
	return EntropyFromCounts(counts, float64(len(labels)))
}

// GiniFromCounts computes Gini impurity from per-class counts (or weights)
// summing to total.
func GiniFromCounts(counts []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	sumSq := 0.0
	for _, c := range counts {
		p := c / total
		sumSq += p * p
	}
	return 1 - sumSq
}

// EntropyFromCounts computes entropy in bits from per-class counts summing to
// total. Empty classes contribute nothing.
func EntropyFromCounts(counts []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := c / total
		h -= p * math.Log2(p)
	}
	return h
}

// SplitImpurity is the size-weighted impurity of a candidate split:
// (|L|/N)·imp(L) + (|R|/N)·imp(R). It is symmetric in left and right and fails
// when both sides are empty.
func SplitImpurity(left, right []float64, impurity Impurity) (float64, error) {
	nl, nr := float64(len(left)), float64(len(right))
	n := nl + nr
	if n == 0 {
		return 0, errors.NewValueError("SplitImpurity", "left and right must not both be empty")
	}
	weighted := 0.0
	if nl > 0 {
		weighted += nl / n * impurity(left)
	}
	if nr > 0 {
		weighted += nr / n * impurity(right)
	}
	return weighted, nil
}

// classCounts tallies labels in first-seen order.
func classCounts(labels []float64) []float64 {
	classes := lo.Uniq(labels)
	index := make(map[float64]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	counts := make([]float64, len(classes))
	for _, l := range labels {
		counts[index[l]]++
	}
	return counts
}

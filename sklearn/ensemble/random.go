// Package ensemble combines decision trees into forests and boosted models:
// RandomForestClassifier and RandomForestRegressor (bagging),
// AdaBoostClassifier (reweighted stumps), GradientBoostingRegressor
// (first-order residual trees) and XGBoostRegressor (second-order
// gradient/Hessian trees).
//
// Every source of randomness is an explicit, seedable RandomSource so fitted
// ensembles are reproducible.
package ensemble

import (
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/samber/lo"
)

// RandomSource draws uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a PCG-backed source seeded with seed.
func NewRandomSource(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s))
}

// drawIndex maps one uniform draw to an index in [0, n).
func drawIndex(rs RandomSource, n int) int {
	return min(int(rs.Float64()*float64(n)), n-1)
}

// BootstrapIndices draws n indices in [0, n) with replacement, one uniform
// draw per index.
func BootstrapIndices(rs RandomSource, n int) []int {
	return lo.Times(n, func(int) int { return drawIndex(rs, n) })
}

// SubsampleIndices draws k distinct indices from [0, n) without replacement
// with a partial Fisher-Yates shuffle and returns them in ascending order.
func SubsampleIndices(rs RandomSource, n, k int) []int {
	k = max(1, min(k, n))
	perm := lo.Range(n)
	for i := 0; i < k; i++ {
		j := i + drawIndex(rs, n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	out := perm[:k]
	slices.Sort(out)
	return out
}

// WeightedIndices draws n indices with replacement, index i chosen with
// probability weights[i]/Σweights, by inverting the cumulative weights.
func WeightedIndices(rs RandomSource, weights []float64) []int {
	n := len(weights)
	cum := make([]float64, n)
	total := 0.0
	for i, w := range weights {
		total += w
		cum[i] = total
	}
	if total <= 0 {
		return BootstrapIndices(rs, n)
	}
	return lo.Times(n, func(int) int {
		u := rs.Float64() * total
		return min(sort.Search(n, func(i int) bool { return cum[i] > u }), n-1)
	})
}

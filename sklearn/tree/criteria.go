package tree

import (
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/treeml/criterion"
)

// classStats holds per-class counts of a sample set.
type classStats struct {
	counts []float64
	n      float64
}

// ClassificationCriterion splits on Gini or entropy impurity decrease. Labels
// are class indices in [0, NClasses).
type ClassificationCriterion struct {
	Labels   []int
	NClasses int
	Impurity func(counts []float64, total float64) float64
	// MinImpurityDecrease is the smallest gain a split must reach. Splits with
	// a gain of zero or less are always rejected.
	MinImpurityDecrease float64
}

// NewClassificationCriterion resolves the named impurity ("gini" or "entropy").
func NewClassificationCriterion(labels []int, nClasses int, name string, minDecrease float64) (*ClassificationCriterion, error) {
	imp, err := criterion.CountImpurityByName(name)
	if err != nil {
		return nil, err
	}
	return &ClassificationCriterion{
		Labels:              labels,
		NClasses:            nClasses,
		Impurity:            imp,
		MinImpurityDecrease: minDecrease,
	}, nil
}

func (c *ClassificationCriterion) Stats(samples []int) *classStats {
	s := c.Empty()
	for _, i := range samples {
		s.counts[c.Labels[i]]++
	}
	s.n = float64(len(samples))
	return s
}

func (c *ClassificationCriterion) Empty() *classStats {
	return &classStats{counts: make([]float64, c.NClasses)}
}

func (c *ClassificationCriterion) Clone(s *classStats) *classStats {
	return &classStats{counts: append([]float64(nil), s.counts...), n: s.n}
}

func (c *ClassificationCriterion) Move(left, right *classStats, sample int) {
	k := c.Labels[sample]
	left.counts[k]++
	left.n++
	right.counts[k]--
	right.n--
}

func (c *ClassificationCriterion) NodeImpurity(samples []int) float64 {
	s := c.Stats(samples)
	return c.Impurity(s.counts, s.n)
}

func (c *ClassificationCriterion) Gain(parent float64, left, right *classStats) float64 {
	n := left.n + right.n
	return parent - (left.n/n*c.Impurity(left.counts, left.n) + right.n/n*c.Impurity(right.counts, right.n))
}

func (c *ClassificationCriterion) Accept(gain float64) bool {
	return acceptGain(gain, c.MinImpurityDecrease)
}

func (c *ClassificationCriterion) Weight(samples []int) float64 {
	return float64(len(samples))
}

// Leaf returns the majority class index; ties go to the lowest index.
func (c *ClassificationCriterion) Leaf(_ []int, s *classStats) (float64, []float64) {
	_, majority := lo.MaxIndex(s.counts)
	dist := make([]float64, len(s.counts))
	if s.n > 0 {
		for k, count := range s.counts {
			dist[k] = count / s.n
		}
	}
	return float64(majority), dist
}

func (c *ClassificationCriterion) Inclusive() bool { return false }

// sumStats holds running sums of a regression target taken relative to shift,
// the mean of the node the sweep started from. Centring keeps sumSq/n − mean²
// from cancelling when the targets sit far from zero.
type sumStats struct {
	sum, sumSq, n float64
	shift         float64
}

// SquaredErrorCriterion splits on mean squared error reduction and predicts the
// target mean.
type SquaredErrorCriterion struct {
	Targets []float64
	// MinImpurityDecrease is the smallest gain a split must reach. Splits with
	// a gain of zero or less are always rejected.
	MinImpurityDecrease float64
}

func (c *SquaredErrorCriterion) Stats(samples []int) *sumStats {
	s := &sumStats{}
	if len(samples) > 0 {
		s.shift = stat.Mean(gather(c.Targets, samples), nil)
	}
	for _, i := range samples {
		d := c.Targets[i] - s.shift
		s.sum += d
		s.sumSq += d * d
	}
	s.n = float64(len(samples))
	return s
}

func (c *SquaredErrorCriterion) Empty() *sumStats { return &sumStats{} }

func (c *SquaredErrorCriterion) Clone(s *sumStats) *sumStats {
	cp := *s
	return &cp
}

// Move transfers sample from right to left. An empty left side adopts the
// shift of right so both sides stay comparable.
func (c *SquaredErrorCriterion) Move(left, right *sumStats, sample int) {
	if left.n == 0 {
		left.shift = right.shift
		left.sum, left.sumSq = 0, 0
	}
	d := c.Targets[sample] - right.shift
	left.sum += d
	left.sumSq += d * d
	left.n++
	right.sum -= d
	right.sumSq -= d * d
	right.n--
}

// NodeImpurity uses the two-pass MSE so a constant node scores exactly zero.
func (c *SquaredErrorCriterion) NodeImpurity(samples []int) float64 {
	mse, err := criterion.MeanSquaredError(gather(c.Targets, samples))
	if err != nil {
		return 0
	}
	return mse
}

func (c *SquaredErrorCriterion) Gain(parent float64, left, right *sumStats) float64 {
	n := left.n + right.n
	return parent - (left.n/n*criterion.MSEFromSums(left.sum, left.sumSq, left.n) +
		right.n/n*criterion.MSEFromSums(right.sum, right.sumSq, right.n))
}

func (c *SquaredErrorCriterion) Accept(gain float64) bool {
	return acceptGain(gain, c.MinImpurityDecrease)
}

func (c *SquaredErrorCriterion) Weight(samples []int) float64 {
	return float64(len(samples))
}

func (c *SquaredErrorCriterion) Leaf(samples []int, _ *sumStats) (float64, []float64) {
	return mean(gather(c.Targets, samples)), nil
}

func (c *SquaredErrorCriterion) Inclusive() bool { return false }

// gradStats holds gradient and Hessian sums.
type gradStats struct {
	g, h float64
}

// SecondOrderCriterion scores splits with the regularised gradient/Hessian
// gain and outputs −G/(H+λ) leaves. Rows equal to a threshold go left.
type SecondOrderCriterion struct {
	Grad   []float64
	Hess   []float64
	Lambda float64
	Gamma  float64
	// MinGain is the gain a split must exceed.
	MinGain float64
}

func (c *SecondOrderCriterion) Stats(samples []int) *gradStats {
	s := &gradStats{}
	for _, i := range samples {
		s.g += c.Grad[i]
		s.h += c.Hess[i]
	}
	return s
}

func (c *SecondOrderCriterion) Empty() *gradStats { return &gradStats{} }

func (c *SecondOrderCriterion) Clone(s *gradStats) *gradStats {
	cp := *s
	return &cp
}

func (c *SecondOrderCriterion) Move(left, right *gradStats, sample int) {
	left.g += c.Grad[sample]
	left.h += c.Hess[sample]
	right.g -= c.Grad[sample]
	right.h -= c.Hess[sample]
}

// NodeImpurity is the spread of the gradients; zero when every sample already
// receives the same correction.
func (c *SecondOrderCriterion) NodeImpurity(samples []int) float64 {
	mse, err := criterion.MeanSquaredError(gather(c.Grad, samples))
	if err != nil {
		return 0
	}
	return mse
}

func (c *SecondOrderCriterion) Gain(_ float64, left, right *gradStats) float64 {
	return criterion.SecondOrderGain(left.g, left.h, right.g, right.h, c.Lambda, c.Gamma)
}

func (c *SecondOrderCriterion) Accept(gain float64) bool {
	return gain > c.MinGain
}

// Weight is the Hessian sum, the usual min_child_weight measure.
func (c *SecondOrderCriterion) Weight(samples []int) float64 {
	return lo.SumBy(samples, func(i int) float64 { return c.Hess[i] })
}

func (c *SecondOrderCriterion) Leaf(_ []int, s *gradStats) (float64, []float64) {
	return criterion.LeafWeight(s.g, s.h, c.Lambda), nil
}

func (c *SecondOrderCriterion) Inclusive() bool { return true }

// acceptGain rejects splits that do not reduce impurity or reduce it by less
// than minDecrease.
func acceptGain(gain, minDecrease float64) bool {
	return gain > 0 && gain >= minDecrease
}

func gather(values []float64, samples []int) []float64 {
	return lo.Map(samples, func(i int, _ int) float64 { return values[i] })
}

// mean returns the arithmetic mean, or the common value when all values are
// identical so constant leaves reproduce their targets exactly.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	first := values[0]
	if lo.EveryBy(values, func(v float64) bool { return v == first }) {
		return first
	}
	return lo.Sum(values) / float64(len(values))
}

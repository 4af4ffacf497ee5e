package tree

import (
	"cmp"
	"math"
	"slices"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// Unlimited disables the depth limit.
const Unlimited = math.MaxInt32

// Criterion is the split strategy a Builder grows a tree with. S holds the
// sufficient statistics of a sample set (class counts, target sums or
// gradient/Hessian sums) and must be a reference type so Move can update it.
type Criterion[S any] interface {
	// Stats computes the statistics of samples.
	Stats(samples []int) S
	// Empty returns statistics of an empty set.
	Empty() S
	// Clone copies s.
	Clone(s S) S
	// Move transfers sample from right to left.
	Move(left, right S, sample int)
	// NodeImpurity is the impurity or loss of samples. A zero value stops growth.
	NodeImpurity(samples []int) float64
	// Gain scores a candidate split; higher is better.
	Gain(parentImpurity float64, left, right S) float64
	// Accept reports whether the best gain justifies a split.
	Accept(gain float64) bool
	// Weight is the child weight compared against MinChildWeight.
	Weight(samples []int) float64
	// Leaf computes the output value and, for classification, the class
	// proportions of a node.
	Leaf(samples []int, s S) (float64, []float64)
	// Inclusive reports whether rows equal to the threshold go left.
	Inclusive() bool
}

// Params are the growth limits shared by every criterion.
type Params struct {
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MinChildWeight  float64
	// MinLoss stops growth at nodes whose impurity is below it.
	MinLoss float64
}

// DefaultParams returns depth 5 with the loosest sample limits.
func DefaultParams() Params {
	return Params{MaxDepth: 5, MinSamplesSplit: 2, MinSamplesLeaf: 1}
}

// Builder grows a Tree over Rows using Criterion.
type Builder[S any] struct {
	Rows      [][]float64
	Criterion Criterion[S]
	Params    Params
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

// Build grows a tree over the given sample indices. Indices may repeat, which
// is how bootstrap samples are expressed.
func (b *Builder[S]) Build(samples []int) (*Tree, error) {
	if len(samples) == 0 {
		return nil, errors.NewModelError("Builder.Build", "empty data", errors.ErrEmptyData)
	}
	if len(b.Rows) == 0 {
		return nil, errors.NewModelError("Builder.Build", "empty data", errors.ErrEmptyData)
	}
	nFeatures := len(b.Rows[0])
	for i, row := range b.Rows {
		if len(row) != nFeatures {
			return nil, errors.NewInputShapeError("training", []int{i, nFeatures}, []int{i, len(row)})
		}
	}
	for _, s := range samples {
		if s < 0 || s >= len(b.Rows) {
			return nil, errors.NewValueError("Builder.Build", "sample index out of range")
		}
	}
	p := b.Params
	if p.MinSamplesSplit < 2 {
		p.MinSamplesSplit = 2
	}
	if p.MinSamplesLeaf < 1 {
		p.MinSamplesLeaf = 1
	}

	g := &grower[S]{
		rows:      b.Rows,
		crit:      b.Criterion,
		params:    p,
		nFeatures: nFeatures,
		order:     make([]int, len(samples)),
	}
	g.grow(slices.Clone(samples), 0)

	t := &Tree{
		Nodes:      g.nodes,
		Inclusive:  b.Criterion.Inclusive(),
		NFeatures:  nFeatures,
		MaxFeature: -1,
	}
	for i := range t.Nodes {
		t.MaxFeature = max(t.MaxFeature, t.Nodes[i].Feature)
	}
	return t, nil
}

type grower[S any] struct {
	rows      [][]float64
	crit      Criterion[S]
	params    Params
	nFeatures int
	nodes     []Node
	// scratch buffer for per-feature ordering, sized for the root
	order []int
}

func (g *grower[S]) grow(samples []int, depth int) int {
	stats := g.crit.Stats(samples)
	impurity := g.crit.NodeImpurity(samples)
	value, dist := g.crit.Leaf(samples, stats)

	id := len(g.nodes)
	g.nodes = append(g.nodes, Node{
		Feature:      -1,
		Left:         -1,
		Right:        -1,
		Value:        value,
		Distribution: dist,
		Samples:      len(samples),
		Impurity:     impurity,
	})

	p := g.params
	if depth >= p.MaxDepth || len(samples) < p.MinSamplesSplit || impurity == 0 || impurity < p.MinLoss {
		return id
	}

	best, ok := g.bestSplit(samples, stats, impurity)
	if !ok || !g.crit.Accept(best.gain) {
		return id
	}

	left, right := g.partition(samples, best)
	if len(left) < p.MinSamplesLeaf || len(right) < p.MinSamplesLeaf {
		return id
	}
	if g.crit.Weight(left) < p.MinChildWeight || g.crit.Weight(right) < p.MinChildWeight {
		return id
	}

	l := g.grow(left, depth+1)
	r := g.grow(right, depth+1)

	// g.nodes may have been reallocated by the recursive calls.
	n := &g.nodes[id]
	n.Feature = best.feature
	n.Threshold = best.threshold
	n.Left = l
	n.Right = r
	n.Gain = best.gain
	return id
}

// bestSplit scans every feature in order and every adjacent pair of distinct
// sorted values. Only a strictly greater gain replaces the current best.
func (g *grower[S]) bestSplit(samples []int, stats S, impurity float64) (split, bool) {
	best := split{feature: -1, gain: math.Inf(-1)}
	order := g.order[:len(samples)]

	for f := 0; f < g.nFeatures; f++ {
		copy(order, samples)
		slices.SortStableFunc(order, func(a, b int) int {
			return cmp.Compare(g.rows[a][f], g.rows[b][f])
		})
		if g.rows[order[0]][f] == g.rows[order[len(order)-1]][f] {
			continue
		}

		left := g.crit.Empty()
		right := g.crit.Clone(stats)
		for k := 0; k < len(order)-1; k++ {
			g.crit.Move(left, right, order[k])
			v, next := g.rows[order[k]][f], g.rows[order[k+1]][f]
			if v == next {
				continue
			}
			gain := g.crit.Gain(impurity, left, right)
			if gain > best.gain {
				best = split{feature: f, threshold: (v + next) / 2, gain: gain}
			}
		}
	}
	return best, best.feature >= 0
}

func (g *grower[S]) partition(samples []int, s split) (left, right []int) {
	inclusive := g.crit.Inclusive()
	for _, i := range samples {
		v := g.rows[i][s.feature]
		if v < s.threshold || (inclusive && v == s.threshold) {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

package tree

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// Node is one entry of a tree arena. A leaf has Feature, Left and Right set to
// -1; an internal node routes a row to Left when row[Feature] is below
// Threshold (or equal to it when the tree is inclusive).
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int

	// Value is the node output: a class index for classification trees, the
	// target mean for regression trees, or the leaf weight for gradient trees.
	// Internal nodes keep the value they would have had as a leaf.
	Value float64

	// Distribution holds class proportions for classification trees.
	Distribution []float64

	Samples  int
	Impurity float64
	// Gain is the score of the chosen split; zero for leaves.
	Gain float64
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

// Tree is a fitted binary split tree stored as an arena of nodes. The root is
// Nodes[0]; children are referenced by index and each node has exactly one
// parent.
type Tree struct {
	Nodes []Node

	// Inclusive sends rows with row[Feature] == Threshold to the left child.
	Inclusive bool

	// NFeatures is the row width the tree was fitted on.
	NFeatures int

	// MaxFeature is the highest feature index used by any split, or -1.
	MaxFeature int
}

func (t *Tree) leaf(row []float64) (*Node, error) {
	if len(t.Nodes) == 0 {
		return nil, errors.NewModelError("Tree.Predict", "empty tree", nil)
	}
	if len(row) <= t.MaxFeature {
		return nil, errors.NewInputShapeError("prediction", []int{t.MaxFeature + 1}, []int{len(row)})
	}
	n := &t.Nodes[0]
	for !n.IsLeaf() {
		v := row[n.Feature]
		if v < n.Threshold || (t.Inclusive && v == n.Threshold) {
			n = &t.Nodes[n.Left]
		} else {
			n = &t.Nodes[n.Right]
		}
	}
	return n, nil
}

// PredictRow returns the leaf value reached by row. Rows narrower than the
// widest feature referenced by a split fail with an InputShapeError.
func (t *Tree) PredictRow(row []float64) (float64, error) {
	n, err := t.leaf(row)
	if err != nil {
		return 0, err
	}
	return n.Value, nil
}

// DistributionRow returns the class proportions of the leaf reached by row.
func (t *Tree) DistributionRow(row []float64) ([]float64, error) {
	n, err := t.leaf(row)
	if err != nil {
		return nil, err
	}
	return n.Distribution, nil
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(i int) int
	walk = func(i int) int {
		n := &t.Nodes[i]
		if n.IsLeaf() {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}

// NLeaves returns the number of leaves.
func (t *Tree) NLeaves() int {
	leaves := 0
	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf() {
			leaves++
		}
	}
	return leaves
}

// FeatureImportances returns the sample-weighted split gain accumulated per
// feature, normalised to sum to 1. A tree without splits yields all zeros.
func (t *Tree) FeatureImportances() []float64 {
	imp := t.rawImportances()
	normalize(imp)
	return imp
}

func (t *Tree) rawImportances() []float64 {
	imp := make([]float64, t.NFeatures)
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.IsLeaf() || n.Gain <= 0 {
			continue
		}
		imp[n.Feature] += n.Gain * float64(n.Samples)
	}
	return imp
}

func normalize(values []float64) {
	total := 0.0
	for _, v := range values {
		total += v
	}
	for i := range values {
		values[i] = errors.SafeDivide(values[i], total)
	}
}

// Rules renders the tree as indented if/else text. featureNames may be nil;
// valueLabel formats leaf values and may be nil.
func (t *Tree) Rules(featureNames []string, valueLabel func(float64) string) string {
	if len(t.Nodes) == 0 {
		return ""
	}
	if valueLabel == nil {
		valueLabel = func(v float64) string { return fmt.Sprintf("%.6g", v) }
	}
	op := "<"
	if t.Inclusive {
		op = "<="
	}
	var sb strings.Builder
	var walk func(i, depth int)
	walk = func(i, depth int) {
		n := &t.Nodes[i]
		indent := strings.Repeat("|   ", depth)
		if n.IsLeaf() {
			fmt.Fprintf(&sb, "%svalue: %s (samples=%d)\n", indent, valueLabel(n.Value), n.Samples)
			return
		}
		name := FeatureName(featureNames, n.Feature)
		fmt.Fprintf(&sb, "%s%s %s %.6g\n", indent, name, op, n.Threshold)
		walk(n.Left, depth+1)
		fmt.Fprintf(&sb, "%s%s not %s %.6g\n", indent, name, op, n.Threshold)
		walk(n.Right, depth+1)
	}
	walk(0, 0)
	return sb.String()
}

// FeatureName returns names[i] when present and "x[i]" otherwise.
func FeatureName(names []string, i int) string {
	if i >= 0 && i < len(names) && names[i] != "" {
		return names[i]
	}
	return fmt.Sprintf("x[%d]", i)
}

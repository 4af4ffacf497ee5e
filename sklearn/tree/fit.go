package tree

import "github.com/YuminosukeSato/treeml/pkg/errors"

// ClassificationConfig configures FitClassificationTree.
type ClassificationConfig struct {
	Params
	Criterion           string
	MinImpurityDecrease float64
}

// RegressionConfig configures FitRegressionTree.
type RegressionConfig struct {
	Params
	MinImpurityDecrease float64
}

// GradientParams configures FitGradientTree.
type GradientParams struct {
	Params
	Lambda  float64
	Gamma   float64
	MinGain float64
}

// FitClassificationTree grows a Gini or entropy tree on rows[samples] with
// class-index labels. Leaf values are class indices.
func FitClassificationTree(rows [][]float64, labels []int, nClasses int, samples []int, cfg ClassificationConfig) (*Tree, error) {
	if len(labels) != len(rows) {
		return nil, errors.NewDimensionError("FitClassificationTree", len(rows), len(labels), 0)
	}
	crit, err := NewClassificationCriterion(labels, nClasses, cfg.Criterion, cfg.MinImpurityDecrease)
	if err != nil {
		return nil, err
	}
	b := Builder[*classStats]{Rows: rows, Criterion: crit, Params: cfg.Params}
	return b.Build(samples)
}

// FitRegressionTree grows a squared-error tree on rows[samples]. Leaf values
// are target means.
func FitRegressionTree(rows [][]float64, targets []float64, samples []int, cfg RegressionConfig) (*Tree, error) {
	if len(targets) != len(rows) {
		return nil, errors.NewDimensionError("FitRegressionTree", len(rows), len(targets), 0)
	}
	crit := &SquaredErrorCriterion{Targets: targets, MinImpurityDecrease: cfg.MinImpurityDecrease}
	b := Builder[*sumStats]{Rows: rows, Criterion: crit, Params: cfg.Params}
	return b.Build(samples)
}

// FitGradientTree grows a second-order tree from per-row gradients and
// Hessians, as used by XGBoost-style boosting. Leaves hold −ΣG/(ΣH+λ).
func FitGradientTree(rows [][]float64, grad, hess []float64, samples []int, cfg GradientParams) (*Tree, error) {
	if len(grad) != len(rows) || len(hess) != len(rows) {
		return nil, errors.NewDimensionError("FitGradientTree", len(rows), min(len(grad), len(hess)), 0)
	}
	crit := &SecondOrderCriterion{
		Grad:    grad,
		Hess:    hess,
		Lambda:  cfg.Lambda,
		Gamma:   cfg.Gamma,
		MinGain: cfg.MinGain,
	}
	b := Builder[*gradStats]{Rows: rows, Criterion: crit, Params: cfg.Params}
	return b.Build(samples)
}

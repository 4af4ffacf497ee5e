package tree

import (
	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/core/model"
	"github.com/YuminosukeSato/treeml/criterion"
	"github.com/YuminosukeSato/treeml/metrics"
	"github.com/YuminosukeSato/treeml/pkg/errors"
	"github.com/YuminosukeSato/treeml/pkg/log"
)

// DecisionTreeClassifier is a CART-style classification tree split on Gini
// impurity or entropy.
type DecisionTreeClassifier struct {
	config
	state *model.StateManager

	classes  []float64
	nClasses int
	tree     *Tree
}

// NewDecisionTreeClassifier creates a classifier. Defaults: gini, max depth 5,
// min_samples_split 2, min_samples_leaf 1.
func NewDecisionTreeClassifier(opts ...Option) (*DecisionTreeClassifier, error) {
	c := config{
		criterion:       criterion.GiniName,
		maxDepth:        5,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("tree").With(log.ModelNameKey, "DecisionTreeClassifier")
	}
	dt := &DecisionTreeClassifier{config: c, state: model.NewStateManager()}
	if err := dt.validate(); err != nil {
		return nil, err
	}
	return dt, nil
}

func (dt *DecisionTreeClassifier) validate() error {
	if _, err := criterion.CountImpurityByName(dt.criterion); err != nil {
		return err
	}
	return dt.config.validate()
}

// Fit grows the tree on X and class labels y. Labels may be any float values;
// they are mapped to sorted class indices.
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "DecisionTreeClassifier.Fit")

	rows, targets, err := model.CheckFitInput("DecisionTreeClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	classes, labels := EncodeLabels(targets)

	t, err := FitClassificationTree(rows, labels, len(classes), lo.Range(len(rows)), ClassificationConfig{
		Params:              dt.params(),
		Criterion:           dt.criterion,
		MinImpurityDecrease: dt.minImpurityDecrease,
	})
	if err != nil {
		return err
	}

	dt.tree = t
	dt.classes = classes
	dt.nClasses = len(classes)
	dt.state.SetFitted(len(rows[0]), len(rows))

	dt.logger.Debug("fit finished",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(rows),
		log.FeaturesKey, len(rows[0]),
		log.ClassesKey, len(classes),
		log.DepthKey, t.Depth(),
		log.LeavesKey, t.NLeaves(),
	)
	return nil
}

// Predict returns the predicted class label of each row as an n×1 matrix.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.state.RequireFitted("DecisionTreeClassifier", "Predict"); err != nil {
		return nil, err
	}
	nFeatures, _ := dt.state.GetDimensions()
	rows, err := model.CheckPredictInput("DecisionTreeClassifier.Predict", X, nFeatures)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		k, err := dt.tree.PredictRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = dt.classes[int(k)]
	}
	return model.ColumnVector(out), nil
}

// PredictProba returns the class proportions of the leaf each row reaches, one
// column per entry of Classes().
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.state.RequireFitted("DecisionTreeClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	nFeatures, _ := dt.state.GetDimensions()
	rows, err := model.CheckPredictInput("DecisionTreeClassifier.PredictProba", X, nFeatures)
	if err != nil {
		return nil, err
	}
	proba := mat.NewDense(len(rows), dt.nClasses, nil)
	for i, row := range rows {
		dist, err := dt.tree.DistributionRow(row)
		if err != nil {
			return nil, err
		}
		proba.SetRow(i, dist)
	}
	return proba, nil
}

// Score returns the mean accuracy on X and y.
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, pred)
}

// Classes returns the sorted class labels seen during Fit.
func (dt *DecisionTreeClassifier) Classes() []float64 {
	return append([]float64(nil), dt.classes...)
}

// Tree returns the fitted tree, or nil before Fit.
func (dt *DecisionTreeClassifier) Tree() *Tree {
	return dt.tree
}

// GetDepth returns the depth of the fitted tree.
func (dt *DecisionTreeClassifier) GetDepth() int {
	if dt.tree == nil {
		return 0
	}
	return dt.tree.Depth()
}

// GetNLeaves returns the number of leaves of the fitted tree.
func (dt *DecisionTreeClassifier) GetNLeaves() int {
	if dt.tree == nil {
		return 0
	}
	return dt.tree.NLeaves()
}

// GetFeatureImportances returns the normalised impurity decrease contributed by
// each feature.
func (dt *DecisionTreeClassifier) GetFeatureImportances() ([]float64, error) {
	if err := dt.state.RequireFitted("DecisionTreeClassifier", "GetFeatureImportances"); err != nil {
		return nil, err
	}
	return dt.tree.FeatureImportances(), nil
}

// IsFitted reports whether Fit has completed.
func (dt *DecisionTreeClassifier) IsFitted() bool {
	return dt.state.IsFitted()
}

// GetParams returns the hyperparameters.
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":             dt.criterion,
		"max_depth":             dt.maxDepth,
		"min_samples_split":     dt.minSamplesSplit,
		"min_samples_leaf":      dt.minSamplesLeaf,
		"min_impurity_decrease": dt.minImpurityDecrease,
	}
}

// SetParams updates hyperparameters. Values are validated together; on error
// the estimator keeps its previous configuration.
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	next := *dt
	for key, value := range params {
		if key == "min_loss" {
			return model.UnknownParam("DecisionTreeClassifier", key)
		}
		ok, err := next.setParam(key, value)
		if err != nil {
			return err
		}
		if !ok {
			return model.UnknownParam("DecisionTreeClassifier", key)
		}
	}
	if err := next.validate(); err != nil {
		return err
	}
	dt.config = next.config
	return nil
}

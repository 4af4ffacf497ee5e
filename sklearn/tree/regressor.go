package tree

import (
	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/core/model"
	"github.com/YuminosukeSato/treeml/metrics"
	"github.com/YuminosukeSato/treeml/pkg/errors"
	"github.com/YuminosukeSato/treeml/pkg/log"
)

// DecisionTreeRegressor is a regression tree split on mean squared error.
// Leaves predict the mean target of their samples.
type DecisionTreeRegressor struct {
	config
	state *model.StateManager
	tree  *Tree
}

// NewDecisionTreeRegressor creates a regressor. Defaults: max depth 5,
// min_loss 0.01, min_samples_split 2, min_samples_leaf 1.
func NewDecisionTreeRegressor(opts ...Option) (*DecisionTreeRegressor, error) {
	c := config{
		criterion:       SquaredErrorName,
		maxDepth:        5,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		minLoss:         0.01,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("tree").With(log.ModelNameKey, "DecisionTreeRegressor")
	}
	dt := &DecisionTreeRegressor{config: c, state: model.NewStateManager()}
	if err := dt.validate(); err != nil {
		return nil, err
	}
	return dt, nil
}

func (dt *DecisionTreeRegressor) validate() error {
	if dt.criterion != SquaredErrorName {
		return errors.NewValidationError("criterion", "must be one of [squared_error]", dt.criterion)
	}
	return dt.config.validate()
}

// Fit grows the tree on X and targets y.
func (dt *DecisionTreeRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.Fit")

	rows, targets, err := model.CheckFitInput("DecisionTreeRegressor.Fit", X, y)
	if err != nil {
		return err
	}
	t, err := FitRegressionTree(rows, targets, lo.Range(len(rows)), RegressionConfig{
		Params:              dt.params(),
		MinImpurityDecrease: dt.minImpurityDecrease,
	})
	if err != nil {
		return err
	}
	dt.tree = t
	dt.state.SetFitted(len(rows[0]), len(rows))

	dt.logger.Debug("fit finished",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(rows),
		log.FeaturesKey, len(rows[0]),
		log.DepthKey, t.Depth(),
		log.LeavesKey, t.NLeaves(),
	)
	return nil
}

// Predict returns the leaf mean reached by each row as an n×1 matrix.
func (dt *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.state.RequireFitted("DecisionTreeRegressor", "Predict"); err != nil {
		return nil, err
	}
	nFeatures, _ := dt.state.GetDimensions()
	rows, err := model.CheckPredictInput("DecisionTreeRegressor.Predict", X, nFeatures)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		if out[i], err = dt.tree.PredictRow(row); err != nil {
			return nil, err
		}
	}
	return model.ColumnVector(out), nil
}

// Score returns the coefficient of determination R² on X and y.
func (dt *DecisionTreeRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// Tree returns the fitted tree, or nil before Fit.
func (dt *DecisionTreeRegressor) Tree() *Tree {
	return dt.tree
}

// GetDepth returns the depth of the fitted tree.
func (dt *DecisionTreeRegressor) GetDepth() int {
	if dt.tree == nil {
		return 0
	}
	return dt.tree.Depth()
}

// GetNLeaves returns the number of leaves of the fitted tree.
func (dt *DecisionTreeRegressor) GetNLeaves() int {
	if dt.tree == nil {
		return 0
	}
	return dt.tree.NLeaves()
}

// GetFeatureImportances returns the normalised MSE reduction contributed by
// each feature.
func (dt *DecisionTreeRegressor) GetFeatureImportances() ([]float64, error) {
	if err := dt.state.RequireFitted("DecisionTreeRegressor", "GetFeatureImportances"); err != nil {
		return nil, err
	}
	return dt.tree.FeatureImportances(), nil
}

// IsFitted reports whether Fit has completed.
func (dt *DecisionTreeRegressor) IsFitted() bool {
	return dt.state.IsFitted()
}

// GetParams returns the hyperparameters.
func (dt *DecisionTreeRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":             dt.criterion,
		"max_depth":             dt.maxDepth,
		"min_samples_split":     dt.minSamplesSplit,
		"min_samples_leaf":      dt.minSamplesLeaf,
		"min_impurity_decrease": dt.minImpurityDecrease,
		"min_loss":              dt.minLoss,
	}
}

// SetParams updates hyperparameters; on error the previous configuration is
// kept.
func (dt *DecisionTreeRegressor) SetParams(params map[string]interface{}) error {
	next := *dt
	for key, value := range params {
		ok, err := next.setParam(key, value)
		if err != nil {
			return err
		}
		if !ok {
			return model.UnknownParam("DecisionTreeRegressor", key)
		}
	}
	if err := next.validate(); err != nil {
		return err
	}
	dt.config = next.config
	return nil
}

package tree

import (
	"github.com/YuminosukeSato/treeml/core/model"
	"github.com/YuminosukeSato/treeml/pkg/log"
)

// SquaredErrorName is the only criterion accepted by DecisionTreeRegressor.
const SquaredErrorName = "squared_error"

// config holds the hyperparameters shared by the tree estimators.
type config struct {
	criterion           string
	maxDepth            int
	minSamplesSplit     int
	minSamplesLeaf      int
	minImpurityDecrease float64
	minLoss             float64
	logger              log.Logger
}

// treeParams is the validated view of config.
type treeParams struct {
	MaxDepth            int     `param:"max_depth" validate:"gte=0"`
	MinSamplesSplit     int     `param:"min_samples_split" validate:"gte=2"`
	MinSamplesLeaf      int     `param:"min_samples_leaf" validate:"gte=1"`
	MinImpurityDecrease float64 `param:"min_impurity_decrease" validate:"gte=0"`
	MinLoss             float64 `param:"min_loss" validate:"gte=0"`
}

func (c *config) validate() error {
	return model.ValidateParams(treeParams{
		MaxDepth:            c.maxDepth,
		MinSamplesSplit:     c.minSamplesSplit,
		MinSamplesLeaf:      c.minSamplesLeaf,
		MinImpurityDecrease: c.minImpurityDecrease,
		MinLoss:             c.minLoss,
	})
}

func (c *config) params() Params {
	return Params{
		MaxDepth:        c.maxDepth,
		MinSamplesSplit: c.minSamplesSplit,
		MinSamplesLeaf:  c.minSamplesLeaf,
		MinLoss:         c.minLoss,
	}
}

// setParam applies one SetParams entry. ok is false for keys config does not
// own.
func (c *config) setParam(key string, value interface{}) (ok bool, err error) {
	switch key {
	case "criterion":
		c.criterion, err = model.StringParam(key, value)
	case "max_depth":
		c.maxDepth, err = model.IntParam(key, value)
	case "min_samples_split":
		c.minSamplesSplit, err = model.IntParam(key, value)
	case "min_samples_leaf":
		c.minSamplesLeaf, err = model.IntParam(key, value)
	case "min_impurity_decrease":
		c.minImpurityDecrease, err = model.FloatParam(key, value)
	case "min_loss":
		c.minLoss, err = model.FloatParam(key, value)
	default:
		return false, nil
	}
	return true, err
}

// Option configures a decision tree estimator.
type Option func(*config)

// WithCriterion sets the split criterion: "gini" or "entropy" for
// classification, "squared_error" for regression.
func WithCriterion(criterion string) Option {
	return func(c *config) {
		c.criterion = criterion
	}
}

// WithMaxDepth sets the maximum depth. Use Unlimited for unconstrained growth.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum number of samples a node needs to be
// split.
func WithMinSamplesSplit(n int) Option {
	return func(c *config) {
		c.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum number of samples on each side of a split.
func WithMinSamplesLeaf(n int) Option {
	return func(c *config) {
		c.minSamplesLeaf = n
	}
}

// WithMinImpurityDecrease rejects splits whose impurity decrease is smaller.
func WithMinImpurityDecrease(d float64) Option {
	return func(c *config) {
		c.minImpurityDecrease = d
	}
}

// WithMinLoss stops growing regression nodes whose MSE is below the floor.
func WithMinLoss(loss float64) Option {
	return func(c *config) {
		c.minLoss = loss
	}
}

// WithLogger replaces the estimator's logger.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

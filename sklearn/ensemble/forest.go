package ensemble

import (
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/core/model"
	"github.com/YuminosukeSato/treeml/core/parallel"
	"github.com/YuminosukeSato/treeml/criterion"
	"github.com/YuminosukeSato/treeml/metrics"
	"github.com/YuminosukeSato/treeml/pkg/errors"
	"github.com/YuminosukeSato/treeml/pkg/log"
	"github.com/YuminosukeSato/treeml/sklearn/tree"
)

type forestParams struct {
	NEstimators     int     `param:"n_estimators" validate:"gte=1"`
	MaxDepth        int     `param:"max_depth" validate:"gte=0"`
	MinSamplesSplit int     `param:"min_samples_split" validate:"gte=2"`
	MinSamplesLeaf  int     `param:"min_samples_leaf" validate:"gte=1"`
	MinLoss         float64 `param:"min_loss" validate:"gte=0"`
}

var forestDefaults = config{
	nEstimators:     10,
	maxDepth:        5,
	minSamplesSplit: 2,
	minSamplesLeaf:  1,
	criterion:       criterion.GiniName,
	randomState:     42,
}

// forest holds what the classifier and regressor share: bootstrap drawing,
// parallel tree construction and bookkeeping.
type forest struct {
	config
	name  string
	state *model.StateManager
	trees []*tree.Tree
}

func (f *forest) validate() error {
	return model.ValidateParams(forestParams{
		NEstimators:     f.nEstimators,
		MaxDepth:        f.maxDepth,
		MinSamplesSplit: f.minSamplesSplit,
		MinSamplesLeaf:  f.minSamplesLeaf,
		MinLoss:         f.minLoss,
	})
}

func (f *forest) treeParams() tree.Params {
	return tree.Params{
		MaxDepth:        f.maxDepth,
		MinSamplesSplit: f.minSamplesSplit,
		MinSamplesLeaf:  f.minSamplesLeaf,
		MinLoss:         f.minLoss,
	}
}

// grow draws every bootstrap sample sequentially from the random source, then
// builds the trees concurrently.
func (f *forest) grow(n int, build func(samples []int) (*tree.Tree, error)) error {
	rs := f.rng()
	draws := lo.Times(f.nEstimators, func(int) []int { return BootstrapIndices(rs, n) })

	trees := make([]*tree.Tree, f.nEstimators)
	err := parallel.ForEach(f.nJobs, f.nEstimators, f.name+".Fit", func(i int) error {
		t, err := build(draws[i])
		if err != nil {
			return err
		}
		trees[i] = t
		return nil
	})
	if err != nil {
		return err
	}
	f.trees = trees
	return nil
}

func (f *forest) predictRows(X mat.Matrix) ([][]float64, error) {
	if err := f.state.RequireFitted(f.name, "Predict"); err != nil {
		return nil, err
	}
	nFeatures, _ := f.state.GetDimensions()
	return model.CheckPredictInput(f.name+".Predict", X, nFeatures)
}

// Estimators returns the fitted trees in construction order.
func (f *forest) Estimators() []*tree.Tree {
	return f.trees
}

// GetFeatureImportances averages the per-tree importances and renormalises.
func (f *forest) GetFeatureImportances() ([]float64, error) {
	if err := f.state.RequireFitted(f.name, "GetFeatureImportances"); err != nil {
		return nil, err
	}
	nFeatures, _ := f.state.GetDimensions()
	imp := make([]float64, nFeatures)
	for _, t := range f.trees {
		floats.Add(imp, t.FeatureImportances())
	}
	if total := floats.Sum(imp); total > 0 {
		floats.Scale(1/total, imp)
	}
	return imp, nil
}

// IsFitted reports whether Fit has completed.
func (f *forest) IsFitted() bool {
	return f.state.IsFitted()
}

func (f *forest) baseParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      f.nEstimators,
		"max_depth":         f.maxDepth,
		"min_samples_split": f.minSamplesSplit,
		"min_samples_leaf":  f.minSamplesLeaf,
		"min_loss":          f.minLoss,
		"n_jobs":            f.nJobs,
		"random_state":      f.randomState,
	}
}

func (f *forest) setParam(key string, value interface{}) (ok bool, err error) {
	switch key {
	case "n_estimators":
		f.nEstimators, err = model.IntParam(key, value)
	case "max_depth":
		f.maxDepth, err = model.IntParam(key, value)
	case "min_samples_split":
		f.minSamplesSplit, err = model.IntParam(key, value)
	case "min_samples_leaf":
		f.minSamplesLeaf, err = model.IntParam(key, value)
	case "min_loss":
		f.minLoss, err = model.FloatParam(key, value)
	case "n_jobs":
		f.nJobs, err = model.IntParam(key, value)
	case "random_state":
		var seed int
		seed, err = model.IntParam(key, value)
		f.randomState = int64(seed)
	default:
		return false, nil
	}
	return true, err
}

func (f *forest) logFit(started time.Time, rows [][]float64) {
	f.logger.Debug("fit finished",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(rows),
		log.FeaturesKey, len(rows[0]),
		log.TreesKey, len(f.trees),
		log.WorkersKey, parallel.Workers(f.nJobs, f.nEstimators),
		log.DurationMsKey, time.Since(started).Milliseconds(),
	)
}

// RandomForestClassifier bags classification trees fitted on bootstrap
// samples and predicts by majority vote.
type RandomForestClassifier struct {
	forest
	classes []float64
}

// NewRandomForestClassifier creates a forest classifier. Defaults: 10 trees,
// gini, max depth 5, random state 42.
func NewRandomForestClassifier(opts ...Option) (*RandomForestClassifier, error) {
	c := newConfig(forestDefaults, "ensemble.random_forest", "RandomForestClassifier", opts)
	rf := &RandomForestClassifier{forest: forest{config: c, name: "RandomForestClassifier", state: model.NewStateManager()}}
	if err := rf.validate(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *RandomForestClassifier) validate() error {
	if _, err := criterion.CountImpurityByName(rf.criterion); err != nil {
		return err
	}
	return rf.forest.validate()
}

// Fit grows NEstimators trees, each on its own bootstrap sample.
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RandomForestClassifier.Fit")
	started := time.Now()

	rows, targets, err := model.CheckFitInput("RandomForestClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	classes, labels := tree.EncodeLabels(targets)
	cfg := tree.ClassificationConfig{Params: rf.treeParams(), Criterion: rf.criterion}

	err = rf.grow(len(rows), func(samples []int) (*tree.Tree, error) {
		return tree.FitClassificationTree(rows, labels, len(classes), samples, cfg)
	})
	if err != nil {
		return err
	}
	rf.classes = classes
	rf.state.SetFitted(len(rows[0]), len(rows))
	rf.logFit(started, rows)
	return nil
}

// Predict returns the majority vote of the trees. Ties go to the smallest
// class label.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	rows, err := rf.predictRows(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	votes := make([]int, len(rf.classes))
	for i, row := range rows {
		clear(votes)
		for _, t := range rf.trees {
			k, err := t.PredictRow(row)
			if err != nil {
				return nil, err
			}
			votes[int(k)]++
		}
		_, winner := lo.MaxIndex(votes)
		out[i] = rf.classes[winner]
	}
	return model.ColumnVector(out), nil
}

// PredictProba averages the leaf class proportions of the trees.
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	rows, err := rf.predictRows(X)
	if err != nil {
		return nil, err
	}
	proba := mat.NewDense(len(rows), len(rf.classes), nil)
	acc := make([]float64, len(rf.classes))
	for i, row := range rows {
		clear(acc)
		for _, t := range rf.trees {
			dist, err := t.DistributionRow(row)
			if err != nil {
				return nil, err
			}
			floats.Add(acc, dist)
		}
		floats.Scale(1/float64(len(rf.trees)), acc)
		proba.SetRow(i, acc)
	}
	return proba, nil
}

// Score returns the mean accuracy on X and y.
func (rf *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, pred)
}

// Classes returns the sorted class labels seen during Fit.
func (rf *RandomForestClassifier) Classes() []float64 {
	return append([]float64(nil), rf.classes...)
}

// GetParams returns the hyperparameters.
func (rf *RandomForestClassifier) GetParams() map[string]interface{} {
	p := rf.baseParams()
	p["criterion"] = rf.criterion
	return p
}

// SetParams updates hyperparameters; on error the previous configuration is
// kept.
func (rf *RandomForestClassifier) SetParams(params map[string]interface{}) error {
	next := *rf
	for key, value := range params {
		var ok bool
		var err error
		if key == "criterion" {
			ok = true
			next.criterion, err = model.StringParam(key, value)
		} else {
			ok, err = next.setParam(key, value)
		}
		if err != nil {
			return err
		}
		if !ok {
			return model.UnknownParam("RandomForestClassifier", key)
		}
	}
	if err := next.validate(); err != nil {
		return err
	}
	rf.config = next.config
	return nil
}

// RandomForestRegressor bags regression trees fitted on bootstrap samples and
// predicts their mean.
type RandomForestRegressor struct {
	forest
}

// NewRandomForestRegressor creates a forest regressor. Defaults: 10 trees,
// max depth 5, MSE floor 0.01, random state 42.
func NewRandomForestRegressor(opts ...Option) (*RandomForestRegressor, error) {
	defaults := forestDefaults
	defaults.minLoss = 0.01
	c := newConfig(defaults, "ensemble.random_forest", "RandomForestRegressor", opts)
	rf := &RandomForestRegressor{forest: forest{config: c, name: "RandomForestRegressor", state: model.NewStateManager()}}
	if err := rf.validate(); err != nil {
		return nil, err
	}
	return rf, nil
}

// Fit grows NEstimators regression trees, each on its own bootstrap sample.
func (rf *RandomForestRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RandomForestRegressor.Fit")
	started := time.Now()

	rows, targets, err := model.CheckFitInput("RandomForestRegressor.Fit", X, y)
	if err != nil {
		return err
	}
	cfg := tree.RegressionConfig{Params: rf.treeParams()}
	err = rf.grow(len(rows), func(samples []int) (*tree.Tree, error) {
		return tree.FitRegressionTree(rows, targets, samples, cfg)
	})
	if err != nil {
		return err
	}
	rf.state.SetFitted(len(rows[0]), len(rows))
	rf.logFit(started, rows)
	return nil
}

// Predict returns the mean tree prediction of each row.
func (rf *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	rows, err := rf.predictRows(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		sum := 0.0
		for _, t := range rf.trees {
			v, err := t.PredictRow(row)
			if err != nil {
				return nil, err
			}
			sum += v
		}
		out[i] = sum / float64(len(rf.trees))
	}
	return model.ColumnVector(out), nil
}

// Score returns R² on X and y.
func (rf *RandomForestRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// GetParams returns the hyperparameters.
func (rf *RandomForestRegressor) GetParams() map[string]interface{} {
	return rf.baseParams()
}

// SetParams updates hyperparameters; on error the previous configuration is
// kept.
func (rf *RandomForestRegressor) SetParams(params map[string]interface{}) error {
	next := *rf
	for key, value := range params {
		ok, err := next.setParam(key, value)
		if err != nil {
			return err
		}
		if !ok {
			return model.UnknownParam("RandomForestRegressor", key)
		}
	}
	if err := next.validate(); err != nil {
		return err
	}
	rf.config = next.config
	return nil
}

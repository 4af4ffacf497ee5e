package ensemble

import (
	"math"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/core/model"
	"github.com/YuminosukeSato/treeml/metrics"
	"github.com/YuminosukeSato/treeml/pkg/errors"
	"github.com/YuminosukeSato/treeml/pkg/log"
	"github.com/YuminosukeSato/treeml/sklearn/tree"
)

type boostingParams struct {
	NEstimators     int     `param:"n_estimators" validate:"gte=1"`
	MaxDepth        int     `param:"max_depth" validate:"gte=0"`
	MinSamplesSplit int     `param:"min_samples_split" validate:"gte=2"`
	MinSamplesLeaf  int     `param:"min_samples_leaf" validate:"gte=1"`
	MinLoss         float64 `param:"min_loss" validate:"gte=0"`
	LearningRate    float64 `param:"learning_rate" validate:"gt=0"`
	Subsample       float64 `param:"subsample" validate:"gt=0,lte=1"`
	Lambda          float64 `param:"lambda" validate:"gte=0"`
	Gamma           float64 `param:"gamma" validate:"gte=0"`
	MinGain         float64 `param:"min_gain" validate:"gte=0"`
	MinChildWeight  float64 `param:"min_child_weight" validate:"gte=0"`
	Objective       string  `param:"objective" validate:"oneof=squared_error absolute_error huber"`
}

// roundTree fits one boosting round's tree from the current gradients.
type roundTree func(rows [][]float64, grad, hess []float64, samples []int) (*tree.Tree, error)

// booster is the additive model shared by GradientBoostingRegressor and
// XGBoostRegressor: a constant base plus learning-rate-scaled trees.
type booster struct {
	config
	name  string
	state *model.StateManager

	base    float64
	trees   []*tree.Tree
	history map[string][]float64
}

func (b *booster) validate() error {
	return model.ValidateParams(b.params())
}

func (b *booster) params() boostingParams {
	return boostingParams{
		NEstimators:     b.nEstimators,
		MaxDepth:        b.maxDepth,
		MinSamplesSplit: b.minSamplesSplit,
		MinSamplesLeaf:  b.minSamplesLeaf,
		MinLoss:         b.minLoss,
		LearningRate:    b.learningRate,
		Subsample:       b.subsample,
		Lambda:          b.lambda,
		Gamma:           b.gamma,
		MinGain:         b.minGain,
		MinChildWeight:  b.minChildWeight,
		Objective:       b.objective,
	}
}

func (b *booster) treeParams() tree.Params {
	return tree.Params{
		MaxDepth:        b.maxDepth,
		MinSamplesSplit: b.minSamplesSplit,
		MinSamplesLeaf:  b.minSamplesLeaf,
		MinChildWeight:  b.minChildWeight,
		MinLoss:         b.minLoss,
	}
}

// boost runs the rounds sequentially. Each round computes gradients at the
// current predictions, optionally subsamples ⌈subsample·n⌉ rows without
// replacement, fits one tree and adds learningRate times its output.
func (b *booster) boost(X, y mat.Matrix, fit roundTree) error {
	started := time.Now()
	op := b.name + ".Fit"

	rows, targets, err := model.CheckFitInput(op, X, y)
	if err != nil {
		return err
	}
	obj, err := ObjectiveByName(b.objective)
	if err != nil {
		return err
	}
	var evalRows [][]float64
	var evalTargets []float64
	if b.evalX != nil && b.evalY != nil {
		if evalRows, evalTargets, err = model.CheckFitInput(op, b.evalX, b.evalY); err != nil {
			return err
		}
		if len(evalRows[0]) != len(rows[0]) {
			return errors.NewDimensionError(op, len(rows[0]), len(evalRows[0]), 1)
		}
	}

	n := len(rows)
	base := obj.InitScore(targets)
	pred := lo.Times(n, func(int) float64 { return base })
	evalPred := lo.Times(len(evalRows), func(int) float64 { return base })
	grad := make([]float64, n)
	hess := make([]float64, n)
	all := lo.Range(n)
	k := int(math.Ceil(b.subsample * float64(n)))
	rs := b.rng()

	b.logger.Debug("fit started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, len(rows[0]),
	)

	callbacks := NewCallbackList(b.name, b.callbacks...)
	history := make(map[string][]float64)
	trees := make([]*tree.Tree, 0, b.nEstimators)
	for round := 0; round < b.nEstimators; round++ {
		callbacks.BeforeIteration(round)
		for i := range rows {
			grad[i] = obj.Gradient(pred[i], targets[i])
			hess[i] = obj.Hessian(pred[i], targets[i])
		}
		samples := all
		if k < n {
			samples = SubsampleIndices(rs, n, k)
		}
		t, err := fit(rows, grad, hess, samples)
		if err != nil {
			return err
		}
		if err := b.step(t, rows, pred, op, round); err != nil {
			return err
		}
		if err := b.step(t, evalRows, evalPred, op, round); err != nil {
			return err
		}
		trees = append(trees, t)

		results := map[string]float64{TrainingLoss: meanLoss(obj, pred, targets)}
		if evalRows != nil {
			results[ValidationLoss] = meanLoss(obj, evalPred, evalTargets)
		}
		for name, value := range results {
			history[name] = append(history[name], value)
		}
		b.logger.Debug("boosting round",
			log.IterationKey, round,
			log.LossKey, results[TrainingLoss],
			log.LeavesKey, t.NLeaves(),
		)
		if err := callbacks.AfterIteration(round, results); err != nil {
			return err
		}
		if callbacks.ShouldStop() {
			break
		}
	}
	if best := callbacks.BestIteration(); best >= 0 && best+1 < len(trees) {
		trees = trees[:best+1]
	}

	b.base, b.trees, b.history = base, trees, history
	b.state.SetFitted(len(rows[0]), n)
	b.logger.Debug("fit finished",
		log.OperationKey, log.OperationFit,
		log.TreesKey, len(trees),
		log.DurationMsKey, time.Since(started).Milliseconds(),
	)
	return nil
}

// step adds learningRate·t(row) to every running prediction.
func (b *booster) step(t *tree.Tree, rows [][]float64, pred []float64, op string, round int) error {
	for i, row := range rows {
		v, err := t.PredictRow(row)
		if err != nil {
			return err
		}
		pred[i] += b.learningRate * v
	}
	return errors.CheckNumericalStability(op, pred, round)
}

func meanLoss(obj Objective, pred, targets []float64) float64 {
	return lo.SumBy(lo.Range(len(pred)), func(i int) float64 {
		return obj.Loss(pred[i], targets[i])
	}) / float64(len(pred))
}

// Predict returns base + Σ learningRate·tree(row) for each row of X.
func (b *booster) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := b.state.RequireFitted(b.name, "Predict"); err != nil {
		return nil, err
	}
	nFeatures, _ := b.state.GetDimensions()
	rows, err := model.CheckPredictInput(b.name+".Predict", X, nFeatures)
	if err != nil {
		return nil, err
	}
	out := lo.Times(len(rows), func(int) float64 { return b.base })
	for _, t := range b.trees {
		for i, row := range rows {
			v, err := t.PredictRow(row)
			if err != nil {
				return nil, err
			}
			out[i] += b.learningRate * v
		}
	}
	return model.ColumnVector(out), nil
}

// Score returns the R² of the predictions on X.
func (b *booster) Score(X, y mat.Matrix) (float64, error) {
	pred, err := b.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// BaseScore returns the constant the model starts from.
func (b *booster) BaseScore() float64 {
	return b.base
}

// Estimators returns the fitted trees in boosting order.
func (b *booster) Estimators() []*tree.Tree {
	return b.trees
}

// EvalHistory returns the per-round training_loss and, with an evaluation
// set, validation_loss.
func (b *booster) EvalHistory() map[string][]float64 {
	out := make(map[string][]float64, len(b.history))
	for name, values := range b.history {
		out[name] = append([]float64(nil), values...)
	}
	return out
}

// IsFitted reports whether Fit has completed.
func (b *booster) IsFitted() bool {
	return b.state.IsFitted()
}

// GetParams returns the hyperparameters.
func (b *booster) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      b.nEstimators,
		"max_depth":         b.maxDepth,
		"min_samples_split": b.minSamplesSplit,
		"min_samples_leaf":  b.minSamplesLeaf,
		"min_loss":          b.minLoss,
		"learning_rate":     b.learningRate,
		"subsample":         b.subsample,
		"lambda":            b.lambda,
		"gamma":             b.gamma,
		"min_gain":          b.minGain,
		"min_child_weight":  b.minChildWeight,
		"objective":         b.objective,
		"random_state":      b.randomState,
	}
}

// SetParams updates hyperparameters; on error the previous configuration is
// kept.
func (b *booster) SetParams(params map[string]interface{}) error {
	next := *b
	for key, value := range params {
		var err error
		switch key {
		case "n_estimators":
			next.nEstimators, err = model.IntParam(key, value)
		case "max_depth":
			next.maxDepth, err = model.IntParam(key, value)
		case "min_samples_split":
			next.minSamplesSplit, err = model.IntParam(key, value)
		case "min_samples_leaf":
			next.minSamplesLeaf, err = model.IntParam(key, value)
		case "min_loss":
			next.minLoss, err = model.FloatParam(key, value)
		case "learning_rate":
			next.learningRate, err = model.FloatParam(key, value)
		case "subsample":
			next.subsample, err = model.FloatParam(key, value)
		case "lambda":
			next.lambda, err = model.FloatParam(key, value)
		case "gamma":
			next.gamma, err = model.FloatParam(key, value)
		case "min_gain":
			next.minGain, err = model.FloatParam(key, value)
		case "min_child_weight":
			next.minChildWeight, err = model.FloatParam(key, value)
		case "objective":
			next.objective, err = model.StringParam(key, value)
		case "random_state":
			var seed int
			seed, err = model.IntParam(key, value)
			next.randomState = int64(seed)
		default:
			return model.UnknownParam(b.name, key)
		}
		if err != nil {
			return err
		}
	}
	if err := next.validate(); err != nil {
		return err
	}
	b.config = next.config
	return nil
}

// GradientBoostingRegressor fits each round's squared-error tree to the
// negative gradient, which for the squared-error objective is the residual
// y − prediction.
type GradientBoostingRegressor struct {
	booster
}

// NewGradientBoostingRegressor creates a first-order boosting regressor.
// Defaults: 10 rounds, learning rate 0.1, depth 20, MSE floor 0.01, no
// subsampling, squared-error objective.
func NewGradientBoostingRegressor(opts ...Option) (*GradientBoostingRegressor, error) {
	defaults := config{
		nEstimators:     10,
		maxDepth:        20,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		minLoss:         0.01,
		learningRate:    0.1,
		subsample:       1,
		objective:       SquaredError,
		randomState:     42,
	}
	c := newConfig(defaults, "ensemble.gradient_boosting", "GradientBoostingRegressor", opts)
	gb := &GradientBoostingRegressor{booster{config: c, name: "GradientBoostingRegressor", state: model.NewStateManager()}}
	if err := gb.validate(); err != nil {
		return nil, err
	}
	return gb, nil
}

// Fit runs the boosting rounds on X and y.
func (gb *GradientBoostingRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "GradientBoostingRegressor.Fit")
	cfg := tree.RegressionConfig{Params: gb.treeParams(), MinImpurityDecrease: gb.minGain}
	negative := []float64(nil)
	return gb.boost(X, y, func(rows [][]float64, grad, _ []float64, samples []int) (*tree.Tree, error) {
		if negative == nil {
			negative = make([]float64, len(grad))
		}
		for i, g := range grad {
			negative[i] = -g
		}
		return tree.FitRegressionTree(rows, negative, samples, cfg)
	})
}

// XGBoostRegressor fits second-order trees whose leaves are already the
// Newton step −G/(H+λ).
type XGBoostRegressor struct {
	booster
}

// NewXGBoostRegressor creates a second-order boosting regressor. Defaults:
// 100 rounds, learning rate 0.1, depth 3, λ 1, γ 0, minimum gain 0, minimum
// child weight 1,
// no subsampling, squared-error objective.
func NewXGBoostRegressor(opts ...Option) (*XGBoostRegressor, error) {
	defaults := config{
		nEstimators:     100,
		maxDepth:        3,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		learningRate:    0.1,
		subsample:       1,
		lambda:          1,
		minChildWeight:  1,
		objective:       SquaredError,
		randomState:     42,
	}
	c := newConfig(defaults, "ensemble.xgboost", "XGBoostRegressor", opts)
	xgb := &XGBoostRegressor{booster{config: c, name: "XGBoostRegressor", state: model.NewStateManager()}}
	if err := xgb.validate(); err != nil {
		return nil, err
	}
	return xgb, nil
}

// Fit runs the boosting rounds on X and y.
func (xgb *XGBoostRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "XGBoostRegressor.Fit")
	cfg := tree.GradientParams{
		Params: xgb.treeParams(),
		Lambda:  xgb.lambda,
		Gamma:   xgb.gamma,
		MinGain: xgb.minGain,
	}
	return xgb.boost(X, y, func(rows [][]float64, grad, hess []float64, samples []int) (*tree.Tree, error) {
		return tree.FitGradientTree(rows, grad, hess, samples, cfg)
	})
}

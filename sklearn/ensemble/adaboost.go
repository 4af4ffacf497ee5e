package ensemble

import (
	"math"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/core/model"
	"github.com/YuminosukeSato/treeml/criterion"
	"github.com/YuminosukeSato/treeml/metrics"
	"github.com/YuminosukeSato/treeml/pkg/errors"
	"github.com/YuminosukeSato/treeml/pkg/log"
	"github.com/YuminosukeSato/treeml/sklearn/tree"
)

// alphaEpsilon keeps the amount-of-say logarithm finite for perfect or
// useless stumps.
const alphaEpsilon = 1e-10

type adaBoostParams struct {
	NEstimators int `param:"n_estimators" validate:"gte=1"`
}

// AdaBoostClassifier boosts depth-1 trees on {0,1} labels. Each stump gets an
// amount of say α from its weighted error; prediction is the sign of the
// α-weighted vote.
type AdaBoostClassifier struct {
	config
	state *model.StateManager

	stumps []*tree.Tree
	alphas []float64
	errs   []float64
}

// NewAdaBoostClassifier creates an AdaBoost classifier. Defaults: 50 stumps,
// fitted on the unweighted data.
func NewAdaBoostClassifier(opts ...Option) (*AdaBoostClassifier, error) {
	c := newConfig(config{nEstimators: 50, randomState: 42}, "ensemble.adaboost", "AdaBoostClassifier", opts)
	ab := &AdaBoostClassifier{config: c, state: model.NewStateManager()}
	if err := ab.validate(); err != nil {
		return nil, err
	}
	return ab, nil
}

func (ab *AdaBoostClassifier) validate() error {
	return model.ValidateParams(adaBoostParams{NEstimators: ab.nEstimators})
}

// Fit runs NEstimators boosting rounds. Labels must be 0 or 1.
func (ab *AdaBoostClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "AdaBoostClassifier.Fit")
	started := time.Now()

	rows, targets, err := model.CheckFitInput("AdaBoostClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	if !lo.EveryBy(targets, func(v float64) bool { return v == 0 || v == 1 }) {
		return errors.NewValidationError("y", "labels must be 0 or 1", lo.Uniq(targets))
	}
	labels := lo.Map(targets, func(v float64, _ int) int { return int(v) })

	n := len(rows)
	weights := uniform(n)
	all := lo.Range(n)
	rs := ab.rng()
	cfg := tree.ClassificationConfig{
		Params:    tree.Params{MaxDepth: 1, MinSamplesSplit: 2, MinSamplesLeaf: 1},
		Criterion: criterion.GiniName,
	}

	stumps := make([]*tree.Tree, 0, ab.nEstimators)
	alphas := make([]float64, 0, ab.nEstimators)
	errs := make([]float64, 0, ab.nEstimators)
	pred := make([]float64, n)

	for round := 0; round < ab.nEstimators; round++ {
		samples := all
		if ab.resampling {
			samples = WeightedIndices(rs, weights)
		}
		stump, err := tree.FitClassificationTree(rows, labels, 2, samples, cfg)
		if err != nil {
			return err
		}

		var wrong float64
		for i, row := range rows {
			if pred[i], err = stump.PredictRow(row); err != nil {
				return err
			}
			if pred[i] != targets[i] {
				wrong += weights[i]
			}
		}
		e := wrong / lo.Sum(weights)
		alpha := 0.5 * math.Log((1-e+alphaEpsilon)/(e+alphaEpsilon))
		if math.IsNaN(alpha) {
			alpha = 0
		}
		if e >= 0.5 {
			errors.Warn(errors.NewWeakLearnerWarning("AdaBoostClassifier", round, e))
		}

		for i := range weights {
			weights[i] *= math.Exp(alpha * math.Abs(pred[i]-targets[i]))
		}
		normalizeWeights(weights)

		stumps = append(stumps, stump)
		alphas = append(alphas, alpha)
		errs = append(errs, e)

		ab.logger.Debug("boosting round",
			log.IterationKey, round,
			log.WeightedErrorKey, e,
			log.LearnerWeightKey, alpha,
		)
	}

	ab.stumps, ab.alphas, ab.errs = stumps, alphas, errs
	ab.state.SetFitted(len(rows[0]), n)
	ab.logger.Debug("fit finished",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.TreesKey, len(stumps),
		log.DurationMsKey, time.Since(started).Milliseconds(),
	)
	return nil
}

// DecisionFunction returns Σ α·(+1 if the stump predicts 1, −1 otherwise) for
// each row.
func (ab *AdaBoostClassifier) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	if err := ab.state.RequireFitted("AdaBoostClassifier", "DecisionFunction"); err != nil {
		return nil, err
	}
	nFeatures, _ := ab.state.GetDimensions()
	rows, err := model.CheckPredictInput("AdaBoostClassifier.DecisionFunction", X, nFeatures)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		for k, stump := range ab.stumps {
			v, err := stump.PredictRow(row)
			if err != nil {
				return nil, err
			}
			if v == 1 {
				out[i] += ab.alphas[k]
			} else {
				out[i] -= ab.alphas[k]
			}
		}
	}
	return model.ColumnVector(out), nil
}

// Predict returns 1 where the decision function is positive and 0 elsewhere.
func (ab *AdaBoostClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := ab.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	r, _ := scores.Dims()
	out := make([]float64, r)
	for i := range out {
		if scores.At(i, 0) > 0 {
			out[i] = 1
		}
	}
	return model.ColumnVector(out), nil
}

// Score returns the mean accuracy on X and y.
func (ab *AdaBoostClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := ab.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, pred)
}

// Classes returns the two labels AdaBoostClassifier supports.
func (ab *AdaBoostClassifier) Classes() []float64 {
	return []float64{0, 1}
}

// Estimators returns the fitted stumps.
func (ab *AdaBoostClassifier) Estimators() []*tree.Tree {
	return ab.stumps
}

// EstimatorWeights returns the amount of say α of each stump.
func (ab *AdaBoostClassifier) EstimatorWeights() []float64 {
	return append([]float64(nil), ab.alphas...)
}

// EstimatorErrors returns the weighted training error of each stump.
func (ab *AdaBoostClassifier) EstimatorErrors() []float64 {
	return append([]float64(nil), ab.errs...)
}

// IsFitted reports whether Fit has completed.
func (ab *AdaBoostClassifier) IsFitted() bool {
	return ab.state.IsFitted()
}

// GetParams returns the hyperparameters.
func (ab *AdaBoostClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators": ab.nEstimators,
		"resampling":   ab.resampling,
		"random_state": ab.randomState,
	}
}

// SetParams updates hyperparameters; on error the previous configuration is
// kept.
func (ab *AdaBoostClassifier) SetParams(params map[string]interface{}) error {
	next := ab.config
	for key, value := range params {
		var err error
		switch key {
		case "n_estimators":
			next.nEstimators, err = model.IntParam(key, value)
		case "resampling":
			next.resampling, err = model.BoolParam(key, value)
		case "random_state":
			var seed int
			seed, err = model.IntParam(key, value)
			next.randomState = int64(seed)
		default:
			return model.UnknownParam("AdaBoostClassifier", key)
		}
		if err != nil {
			return err
		}
	}
	if err := model.ValidateParams(adaBoostParams{NEstimators: next.nEstimators}); err != nil {
		return err
	}
	ab.config = next
	return nil
}

func uniform(n int) []float64 {
	return lo.Times(n, func(int) float64 { return 1 / float64(n) })
}

// normalizeWeights rescales w to sum to 1; a zero or non-finite total resets
// it to uniform.
func normalizeWeights(w []float64) {
	total := lo.Sum(w)
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		copy(w, uniform(len(w)))
		return
	}
	for i := range w {
		w[i] /= total
	}
}

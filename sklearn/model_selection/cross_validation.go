package model_selection

import (
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/treeml/core/model"
	"github.com/YuminosukeSato/treeml/core/parallel"
	"github.com/YuminosukeSato/treeml/pkg/errors"
	"github.com/YuminosukeSato/treeml/pkg/log"
)

// ScoredEstimator is an estimator that can score itself.
type ScoredEstimator interface {
	model.Fitter
	model.Scorer
}

// Factory builds a fresh, unfitted estimator for one fold.
type Factory func() (ScoredEstimator, error)

// CVResult holds per-fold scores. Scores are the estimator's own Score:
// accuracy for classifiers and R² for regressors.
type CVResult struct {
	TrainScores []float64
	TestScores  []float64
	FitTimes    []time.Duration
}

// Mean returns the mean test score.
func (r *CVResult) Mean() float64 {
	if len(r.TestScores) == 0 {
		return 0
	}
	return stat.Mean(r.TestScores, nil)
}

// Std returns the sample standard deviation of the test scores.
func (r *CVResult) Std() float64 {
	if len(r.TestScores) < 2 {
		return 0
	}
	return stat.StdDev(r.TestScores, nil)
}

// CrossValidate fits one estimator per fold, running up to nJobs folds at a
// time, and scores it on both sides of the split.
func CrossValidate(newEstimator Factory, X, y mat.Matrix, cv Splitter, nJobs int) (*CVResult, error) {
	folds, err := cv.Split(X, y)
	if err != nil {
		return nil, err
	}
	logger := log.GetLoggerWithName("model_selection")

	res := &CVResult{
		TrainScores: make([]float64, len(folds)),
		TestScores:  make([]float64, len(folds)),
		FitTimes:    make([]time.Duration, len(folds)),
	}
	err = parallel.ForEach(nJobs, len(folds), "CrossValidate", func(i int) error {
		est, err := newEstimator()
		if err != nil {
			return err
		}
		XTrain, yTrain := Subset(X, y, folds[i].TrainIndices)
		XTest, yTest := Subset(X, y, folds[i].TestIndices)

		start := time.Now()
		if err := est.Fit(XTrain, yTrain); err != nil {
			return errors.Wrapf(err, "fold %d", i)
		}
		res.FitTimes[i] = time.Since(start)

		if res.TrainScores[i], err = est.Score(XTrain, yTrain); err != nil {
			return errors.Wrapf(err, "fold %d", i)
		}
		if res.TestScores[i], err = est.Score(XTest, yTest); err != nil {
			return errors.Wrapf(err, "fold %d", i)
		}
		logger.Debug("fold finished",
			log.OperationKey, log.OperationCrossValidate,
			log.FoldKey, i,
			log.SamplesKey, len(folds[i].TrainIndices),
			log.DurationMsKey, res.FitTimes[i].Milliseconds(),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CrossValScore returns the test score of each fold.
func CrossValScore(newEstimator Factory, X, y mat.Matrix, cv Splitter) ([]float64, error) {
	res, err := CrossValidate(newEstimator, X, y, cv, 1)
	if err != nil {
		return nil, err
	}
	return res.TestScores, nil
}

package main

import (
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/core/model"
	"github.com/YuminosukeSato/treeml/linear"
	"github.com/YuminosukeSato/treeml/pkg/errors"
	"github.com/YuminosukeSato/treeml/preprocessing"
	"github.com/YuminosukeSato/treeml/sklearn/ensemble"
	"github.com/YuminosukeSato/treeml/sklearn/model_selection"
	"github.com/YuminosukeSato/treeml/sklearn/neighbors"
	"github.com/YuminosukeSato/treeml/sklearn/tree"
)

var (
	classifierModels = []string{"tree", "forest", "adaboost", "knn"}
	regressorModels  = []string{"tree-reg", "forest-reg", "gbm", "xgb", "knn-reg", "ols"}
)

func allModels() []string {
	return slices.Concat(classifierModels, regressorModels)
}

func isClassifier(name string) bool {
	return slices.Contains(classifierModels, name)
}

// estimator is what the commands drive: fit, predict and score.
type estimator interface {
	model.Estimator
	model.Scorer
}

type paramSetter interface {
	SetParams(map[string]interface{}) error
}

// buildOptions carries the runtime pieces that do not come from Params.
type buildOptions struct {
	evalX, evalY mat.Matrix
	callbacks    []ensemble.Callback
}

// newEstimator builds the model named by cfg.Model, applies cfg.Params and
// wraps it with a scaler when cfg.Scale is set.
func newEstimator(cfg *Config, bo buildOptions) (estimator, error) {
	est, err := newBareEstimator(cfg, bo)
	if err != nil {
		return nil, err
	}
	if len(cfg.Params) > 0 {
		ps, ok := est.(paramSetter)
		if !ok {
			return nil, errors.NewValidationError("params", "model has no parameters", cfg.Model)
		}
		if err := ps.SetParams(cfg.Params); err != nil {
			return nil, err
		}
	}

	switch cfg.Scale {
	case "":
		return est, nil
	case "standard":
		return &scaled{scaler: preprocessing.NewStandardScalerDefault(), est: est}, nil
	case "minmax":
		return &scaled{scaler: preprocessing.NewMinMaxScalerDefault(), est: est}, nil
	default:
		return nil, errors.NewValidationError("scale", "must be standard or minmax", cfg.Scale)
	}
}

func newBareEstimator(cfg *Config, bo buildOptions) (estimator, error) {
	ensembleOpts := []ensemble.Option{
		ensemble.WithRandomState(cfg.Seed),
		ensemble.WithNJobs(cfg.NJobs),
	}
	boostOpts := append(slices.Clone(ensembleOpts), ensemble.WithCallbacks(bo.callbacks...))
	if bo.evalX != nil {
		boostOpts = append(boostOpts, ensemble.WithEvalSet(bo.evalX, bo.evalY))
	}

	switch cfg.Model {
	case "tree":
		return tree.NewDecisionTreeClassifier()
	case "tree-reg":
		return tree.NewDecisionTreeRegressor()
	case "forest":
		return ensemble.NewRandomForestClassifier(ensembleOpts...)
	case "forest-reg":
		return ensemble.NewRandomForestRegressor(ensembleOpts...)
	case "adaboost":
		return ensemble.NewAdaBoostClassifier(ensembleOpts...)
	case "gbm":
		return ensemble.NewGradientBoostingRegressor(boostOpts...)
	case "xgb":
		return ensemble.NewXGBoostRegressor(boostOpts...)
	case "knn":
		return neighbors.NewKNeighborsClassifier(neighbors.WithNJobs(cfg.NJobs))
	case "knn-reg":
		return neighbors.NewKNeighborsRegressor(neighbors.WithNJobs(cfg.NJobs))
	case "ols":
		return linear.NewLinearRegression(), nil
	default:
		return nil, errors.NewValidationError("model",
			"must be one of "+strings.Join(allModels(), ", "), cfg.Model)
	}
}

// factory returns a builder of fresh estimators for cross validation.
func factory(cfg *Config) model_selection.Factory {
	return func() (model_selection.ScoredEstimator, error) {
		return newEstimator(cfg, buildOptions{})
	}
}

// scaled rescales features before handing them to est.
type scaled struct {
	scaler model.Transformer
	est    estimator
}

func (s *scaled) Fit(X, y mat.Matrix) error {
	Xs, err := s.scaler.FitTransform(X)
	if err != nil {
		return err
	}
	return s.est.Fit(Xs, y)
}

func (s *scaled) Predict(X mat.Matrix) (mat.Matrix, error) {
	Xs, err := s.scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	return s.est.Predict(Xs)
}

func (s *scaled) Score(X, y mat.Matrix) (float64, error) {
	Xs, err := s.scaler.Transform(X)
	if err != nil {
		return 0, err
	}
	return s.est.Score(Xs, y)
}

// unwrap returns the estimator behind any scaler.
func unwrap(est estimator) estimator {
	if s, ok := est.(*scaled); ok {
		return s.est
	}
	return est
}

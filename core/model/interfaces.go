package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is a model that can evaluate itself on labelled data.
// Classifiers report accuracy, regressors report R².
type Scorer interface {
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// Regressor combines interfaces for regression models.
type Regressor interface {
	Estimator
	Scorer
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Estimator
	Scorer

	// PredictProba returns one column per class, ordered as Classes.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the sorted distinct labels seen during fitting.
	Classes() []float64
}

// ParameterGetter is the interface for models that expose their hyperparameters.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models that allow hyperparameter changes.
// Implementations validate the result and leave the model unchanged on error.
type ParameterSetter interface {
	SetParams(params map[string]interface{}) error
}

// FeatureImportancer is implemented by tree-based models. Importances are
// normalised to sum to 1, or are all zero when no split was made.
type FeatureImportancer interface {
	GetFeatureImportances() ([]float64, error)
}

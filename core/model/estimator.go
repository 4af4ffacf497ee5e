package model

import "gonum.org/v1/gonum/mat"

// Fitter is a model that learns from a feature matrix and an n×1 target.
type Fitter interface {
	// Fit trains the model. Calling Fit again discards all learned state.
	Fit(X, y mat.Matrix) error
}

// Predictor is a model that predicts one value per input row.
type Predictor interface {
	// Predict returns an n×1 matrix aligned with the rows of X.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator is a supervised model.
type Estimator interface {
	Fitter
	Predictor
}

// LinearModel exposes the parameters of a fitted linear model.
type LinearModel interface {
	// Coefficients returns the learned coefficients, one per feature.
	Coefficients() []float64
	// Intercept returns the learned bias term.
	Intercept() float64
	// Score returns the coefficient of determination (R²).
	Score(X, y mat.Matrix) (float64, error)
}

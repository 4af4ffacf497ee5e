package model

import "gonum.org/v1/gonum/mat"

// Transformer learns a feature transformation and applies it.
type Transformer interface {
	// Fit learns the transformation parameters from X.
	Fit(X mat.Matrix) error

	// Transform applies the learned transformation.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform runs Fit and Transform on the same data.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// Rows copies X into a slice of row slices.
func Rows(X mat.Matrix) [][]float64 {
	r, c := X.Dims()
	rows := make([][]float64, r)
	if dense, ok := X.(mat.RawMatrixer); ok {
		raw := dense.RawMatrix()
		for i := 0; i < r; i++ {
			row := make([]float64, c)
			copy(row, raw.Data[i*raw.Stride:i*raw.Stride+c])
			rows[i] = row
		}
		return rows
	}
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = X.At(i, j)
		}
		rows[i] = row
	}
	return rows
}

// Column copies the single column of an n×1 matrix.
func Column(y mat.Matrix) []float64 {
	r, _ := y.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = y.At(i, 0)
	}
	return out
}

// ColumnVector wraps values as an n×1 matrix without copying.
func ColumnVector(values []float64) *mat.Dense {
	return mat.NewDense(len(values), 1, values)
}

// CheckFitInput validates a training pair and returns it as rows and targets.
// X must be non-empty and finite, y must be n×1 with the same row count.
func CheckFitInput(op string, X, y mat.Matrix) ([][]float64, []float64, error) {
	if X == nil || y == nil {
		return nil, nil, errors.NewValueError(op, "X and y must not be nil")
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	yr, yc := y.Dims()
	if yc != 1 {
		return nil, nil, errors.NewDimensionError(op, 1, yc, 1)
	}
	if yr != r {
		return nil, nil, errors.NewDimensionError(op, r, yr, 0)
	}
	if err := errors.CheckMatrix(op, X, r, c, 0); err != nil {
		return nil, nil, err
	}
	if err := errors.CheckMatrix(op, y, yr, 1, 0); err != nil {
		return nil, nil, err
	}
	return Rows(X), Column(y), nil
}

// CheckPredictInput validates X against the feature count seen during fitting
// and returns it as rows.
func CheckPredictInput(op string, X mat.Matrix, nFeatures int) ([][]float64, error) {
	if X == nil {
		return nil, errors.NewValueError(op, "X must not be nil")
	}
	r, c := X.Dims()
	if r == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if c != nFeatures {
		return nil, errors.NewDimensionError(op, nFeatures, c, 1)
	}
	return Rows(X), nil
}

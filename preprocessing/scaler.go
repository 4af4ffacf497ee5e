// Package preprocessing rescales feature columns before distance-based
// models such as k-nearest neighbours.
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/treeml/core/model"
	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// constantScale is the spread below which a column is treated as constant and
// left unscaled.
const constantScale = 1e-8

// StandardScaler maps each column to zero mean and unit population standard
// deviation.
type StandardScaler struct {
	state *model.StateManager

	// Mean and Scale hold the per-column statistics learned by Fit.
	Mean  []float64
	Scale []float64

	WithMean bool
	WithStd  bool
}

// NewStandardScaler creates a scaler.
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{WithMean: withMean, WithStd: withStd, state: model.NewStateManager()}
}

// NewStandardScalerDefault centres and scales.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit learns the column means and standard deviations of X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := checkFit(X)
	if r == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, std := stat.PopMeanStdDev(col, nil)
		if s.WithMean {
			s.Mean[j] = mean
		}
		s.Scale[j] = 1
		if s.WithStd && std >= constantScale {
			s.Scale[j] = std
		}
	}
	s.state.SetFitted(c, r)
	return nil
}

// Transform applies (x − mean) / scale column by column.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	return s.apply("Transform", X, func(v float64, j int) float64 { return (v - s.Mean[j]) / s.Scale[j] })
}

// FitTransform fits on X and transforms it.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform undoes Transform.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	return s.apply("InverseTransform", X, func(v float64, j int) float64 { return v*s.Scale[j] + s.Mean[j] })
}

func (s *StandardScaler) apply(method string, X mat.Matrix, fn func(v float64, j int) float64) (mat.Matrix, error) {
	if err := s.state.RequireFitted("StandardScaler", method); err != nil {
		return nil, err
	}
	nFeatures, _ := s.state.GetDimensions()
	return mapColumns("StandardScaler."+method, X, nFeatures, fn)
}

// IsFitted reports whether Fit has completed.
func (s *StandardScaler) IsFitted() bool {
	return s.state.IsFitted()
}

// GetParams returns the scaler's settings.
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

func (s *StandardScaler) String() string {
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
}

// MinMaxScaler maps each column linearly onto FeatureRange.
type MinMaxScaler struct {
	state *model.StateManager

	Min   []float64
	Scale []float64

	FeatureRange [2]float64
}

// NewMinMaxScaler creates a scaler onto featureRange.
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{FeatureRange: featureRange, state: model.NewStateManager()}
}

// NewMinMaxScalerDefault scales onto [0, 1].
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0, 1})
}

// Fit learns each column's minimum and range.
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	if m.FeatureRange[0] >= m.FeatureRange[1] {
		return errors.NewValidationError("feature_range", "minimum must be below maximum", m.FeatureRange)
	}
	r, c := checkFit(X)
	if r == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	m.Min = make([]float64, c)
	m.Scale = make([]float64, c)
	width := m.FeatureRange[1] - m.FeatureRange[0]
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		lo, hi := floats.Min(col), floats.Max(col)
		span := hi - lo
		if math.Abs(span) < constantScale {
			span = 1
		}
		m.Scale[j] = width / span
		m.Min[j] = m.FeatureRange[0] - lo*m.Scale[j]
	}
	m.state.SetFitted(c, r)
	return nil
}

// Transform applies x·scale + min column by column.
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	return m.apply("Transform", X, func(v float64, j int) float64 { return v*m.Scale[j] + m.Min[j] })
}

// FitTransform fits on X and transforms it.
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform undoes Transform.
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	return m.apply("InverseTransform", X, func(v float64, j int) float64 { return (v - m.Min[j]) / m.Scale[j] })
}

func (m *MinMaxScaler) apply(method string, X mat.Matrix, fn func(v float64, j int) float64) (mat.Matrix, error) {
	if err := m.state.RequireFitted("MinMaxScaler", method); err != nil {
		return nil, err
	}
	nFeatures, _ := m.state.GetDimensions()
	return mapColumns("MinMaxScaler."+method, X, nFeatures, fn)
}

// IsFitted reports whether Fit has completed.
func (m *MinMaxScaler) IsFitted() bool {
	return m.state.IsFitted()
}

// GetParams returns the scaler's settings.
func (m *MinMaxScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{"feature_range": m.FeatureRange}
}

func (m *MinMaxScaler) String() string {
	return fmt.Sprintf("MinMaxScaler(feature_range=[%g, %g])", m.FeatureRange[0], m.FeatureRange[1])
}

func checkFit(X mat.Matrix) (int, int) {
	if X == nil {
		return 0, 0
	}
	r, c := X.Dims()
	if c == 0 {
		return 0, 0
	}
	return r, c
}

func mapColumns(op string, X mat.Matrix, nFeatures int, fn func(v float64, j int) float64) (mat.Matrix, error) {
	rows, err := model.CheckPredictInput(op, X, nFeatures)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(rows), nFeatures, nil)
	for i, row := range rows {
		for j, v := range row {
			out.Set(i, j, fn(v, j))
		}
	}
	return out, nil
}

var (
	_ model.Transformer = (*StandardScaler)(nil)
	_ model.Transformer = (*MinMaxScaler)(nil)
)

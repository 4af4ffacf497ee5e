// Package linear provides ordinary least squares regression solved through the
// normal equation.
package linear

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/core/model"
	"github.com/YuminosukeSato/treeml/core/parallel"
	"github.com/YuminosukeSato/treeml/metrics"
	"github.com/YuminosukeSato/treeml/pkg/errors"
	"github.com/YuminosukeSato/treeml/pkg/log"
)

// parallelThreshold is the row count below which the design matrix is
// filled sequentially.
const parallelThreshold = 1000

// LinearRegression fits y = b + Xw by ordinary least squares:
// [b, w] = (AᵀA)⁻¹Aᵀy with A = [1, X].
type LinearRegression struct {
	fitIntercept bool
	logger       log.Logger
	state        *model.StateManager

	// weights holds the bias first when fitIntercept is set.
	weights *mat.VecDense
}

// NewLinearRegression creates an OLS model that fits an intercept.
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{fitIntercept: true, state: model.NewStateManager()}
	for _, opt := range opts {
		opt(lr)
	}
	if lr.logger == nil {
		lr.logger = log.GetLoggerWithName("linear")
	}
	lr.logger = lr.logger.With(log.ModelNameKey, "LinearRegression")
	return lr
}

// Fit solves the normal equation. A singular AᵀA is a ModelError wrapping
// ErrSingularMatrix.
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LinearRegression.Fit")
	started := time.Now()

	rows, targets, err := model.CheckFitInput("LinearRegression.Fit", X, y)
	if err != nil {
		return err
	}
	r, c := len(rows), len(rows[0])
	offset := 0
	if lr.fitIntercept {
		offset = 1
	}

	A := mat.NewDense(r, c+offset, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if offset == 1 {
				A.Set(i, 0, 1)
			}
			for j, v := range rows[i] {
				A.Set(i, j+offset, v)
			}
		}
	})

	var ata mat.Dense
	ata.Mul(A.T(), A)
	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	var aty mat.VecDense
	aty.MulVec(A.T(), mat.NewVecDense(r, targets))
	w := mat.NewVecDense(c+offset, nil)
	w.MulVec(&inv, &aty)
	if err := errors.CheckNumericalStability("LinearRegression.Fit", w.RawVector().Data, 0); err != nil {
		return err
	}

	lr.weights = w
	lr.state.SetFitted(c, r)
	lr.logger.Debug("fit finished",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.DurationMsKey, time.Since(started).Milliseconds(),
	)
	return nil
}

// Predict returns b + x·w for each row of X.
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequireFitted("LinearRegression", "Predict"); err != nil {
		return nil, err
	}
	nFeatures, _ := lr.state.GetDimensions()
	rows, err := model.CheckPredictInput("LinearRegression.Predict", X, nFeatures)
	if err != nil {
		return nil, err
	}
	coef := lr.Coefficients()
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = lr.Intercept() + mat.Dot(mat.NewVecDense(len(row), row), mat.NewVecDense(len(coef), coef))
	}
	return model.ColumnVector(out), nil
}

// Score returns R² on X and y.
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// GetWeights returns the solved vector: the bias first (when an intercept is
// fitted) followed by one weight per feature. Nil before Fit.
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.weights == nil {
		return nil
	}
	return append([]float64(nil), lr.weights.RawVector().Data...)
}

// Coefficients returns the per-feature weights without the bias.
func (lr *LinearRegression) Coefficients() []float64 {
	w := lr.GetWeights()
	if w == nil || !lr.fitIntercept {
		return w
	}
	return w[1:]
}

// Intercept returns the bias, or 0 without an intercept or before Fit.
func (lr *LinearRegression) Intercept() float64 {
	if lr.weights == nil || !lr.fitIntercept {
		return 0
	}
	return lr.weights.AtVec(0)
}

// IsFitted reports whether Fit has completed.
func (lr *LinearRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// GetParams returns the hyperparameters.
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{"fit_intercept": lr.fitIntercept}
}

// SetParams updates hyperparameters.
func (lr *LinearRegression) SetParams(params map[string]interface{}) error {
	next := lr.fitIntercept
	for key, value := range params {
		if key != "fit_intercept" {
			return model.UnknownParam("LinearRegression", key)
		}
		v, err := model.BoolParam(key, value)
		if err != nil {
			return err
		}
		next = v
	}
	lr.fitIntercept = next
	return nil
}

package linear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/pkg/errors"
	"github.com/YuminosukeSato/treeml/pkg/log"
)

func TestLinearRegressionExactLine(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 4})
	y := mat.NewDense(3, 1, []float64{2, 4, 8})

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	w := lr.GetWeights()
	require.Len(t, w, 2)
	assert.InDelta(t, 0.0, w[0], 1e-9)
	assert.InDelta(t, 2.0, w[1], 1e-9)
	assert.InDelta(t, 0.0, lr.Intercept(), 1e-9)
	assert.InDeltaSlice(t, []float64{2}, lr.Coefficients(), 1e-9)

	pred, err := lr.Predict(mat.NewDense(1, 1, []float64{1.5}))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, pred.At(0, 0), 1e-9)
}

func TestLinearRegressionMultiFeature(t *testing.T) {
	X, y := noisyPlane(200, 3)
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	assert.InDelta(t, 1.0, lr.Intercept(), 0.05)
	assert.InDeltaSlice(t, []float64{0.5, 1.0, 1.5}, lr.Coefficients(), 0.05)

	score, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.99)
}

func TestLinearRegressionWithoutIntercept(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{3, 6, 9})

	lr := NewLinearRegression(WithFitIntercept(false))
	require.NoError(t, lr.Fit(X, y))
	assert.Len(t, lr.GetWeights(), 1)
	assert.InDelta(t, 3.0, lr.GetWeights()[0], 1e-9)
	assert.Equal(t, 0.0, lr.Intercept())
	assert.Equal(t, false, lr.GetParams()["fit_intercept"])
}

func TestLinearRegressionSingularMatrix(t *testing.T) {
	// Two identical columns make AᵀA singular.
	X := mat.NewDense(3, 2, []float64{1, 1, 2, 2, 3, 3})
	y := mat.NewDense(3, 1, []float64{1, 2, 3})

	lr := NewLinearRegression()
	err := lr.Fit(X, y)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSingularMatrix))
	assert.False(t, lr.IsFitted())
}

func TestLinearRegressionErrors(t *testing.T) {
	lr := NewLinearRegression()

	_, err := lr.Predict(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Nil(t, lr.GetWeights())

	err = lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(2, 1, []float64{1, 2}))
	var dim *errors.DimensionError
	require.True(t, errors.As(err, &dim))

	require.NoError(t, lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(3, 1, []float64{1, 2, 3})))
	_, err = lr.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	require.True(t, errors.As(err, &dim))

	assert.Error(t, lr.SetParams(map[string]interface{}{"alpha": 1.0}))
	require.NoError(t, lr.SetParams(map[string]interface{}{"fit_intercept": false}))
	assert.Equal(t, false, lr.GetParams()["fit_intercept"])
}

func TestLinearRegressionLogsFit(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	lr := NewLinearRegression(WithLogger(logger))
	require.NoError(t, lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 4}), mat.NewDense(3, 1, []float64{2, 4, 8})))

	assert.True(t, logger.ContainsMessage("fit finished"))
	assert.True(t, logger.ContainsField(log.ModelNameKey, "LinearRegression"))
}

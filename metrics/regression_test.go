package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

func vec(values ...float64) *mat.VecDense {
	return mat.NewVecDense(len(values), values)
}

func col(values ...float64) *mat.Dense {
	return mat.NewDense(len(values), 1, values)
}

func TestRegressionScores(t *testing.T) {
	yTrue := vec(3, -0.5, 2, 7)
	yPred := vec(2.5, 0, 2, 8)

	tests := []struct {
		name string
		fn   func(yTrue, yPred *mat.VecDense) (float64, error)
		want float64
	}{
		{"mse", MSE, 0.375},
		{"rmse", RMSE, math.Sqrt(0.375)},
		{"mae", MAE, 0.5},
		{"r2", R2Score, 0.9486081370449679},
		{"explained variance", ExplainedVarianceScore, 0.9571734475374732},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(yTrue, yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestPerfectPrediction(t *testing.T) {
	y := vec(1, 2, 3, 4, 5)

	mse, err := MSE(y, y)
	require.NoError(t, err)
	assert.Equal(t, 0.0, mse)

	r2, err := R2Score(y, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, r2)
}

func TestMAPESkipsZeroTargets(t *testing.T) {
	got, err := MAPE(vec(0, 2, 4), vec(1, 1, 5))
	require.NoError(t, err)
	assert.InDelta(t, 37.5, got, 1e-12)

	_, err = MAPE(vec(0, 0), vec(1, 1))
	assert.Error(t, err)
}

func TestR2ScoreConstantTarget(t *testing.T) {
	_, err := R2Score(vec(2, 2, 2), vec(1, 2, 3))
	assert.Error(t, err)
}

func TestVectorInputErrors(t *testing.T) {
	_, err := MSE(vec(1, 2, 3), vec(1, 2))
	var dim *errors.DimensionError
	require.True(t, errors.As(err, &dim))
	assert.Equal(t, 3, dim.Expected)
	assert.Equal(t, 2, dim.Got)

	_, err = MAE(&mat.VecDense{}, &mat.VecDense{})
	var verr *errors.ValueError
	assert.True(t, errors.As(err, &verr))

	_, err = MSE(nil, vec(1))
	assert.True(t, errors.As(err, &verr))
}

func TestMatrixForms(t *testing.T) {
	mse, err := MSEMatrix(col(1, 2, 3, 4), col(1.5, 2.5, 2.5, 3.5))
	require.NoError(t, err)
	assert.InDelta(t, 0.25, mse, 1e-12)

	r2, err := R2ScoreMatrix(col(3, -0.5, 2, 7), col(2.5, 0, 2, 8))
	require.NoError(t, err)
	assert.InDelta(t, 0.9486081370449679, r2, 1e-12)

	_, err = MSEMatrix(col(1, 2, 3), col(1, 2))
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))

	wide := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	_, err = R2ScoreMatrix(wide, wide)
	var verr *errors.ValueError
	assert.True(t, errors.As(err, &verr))

	_, err = MSEMatrix(nil, col(1))
	assert.True(t, errors.As(err, &verr))
}

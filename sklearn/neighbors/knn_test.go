package neighbors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

var (
	pointsX = mat.NewDense(6, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		5, 5,
		5, 6,
		6, 5,
	})
	pointsY = mat.NewDense(6, 1, []float64{10, 10, 10, 20, 20, 20})
)

func TestMetrics(t *testing.T) {
	a, b := []float64{0, 0}, []float64{3, 4}
	assert.Equal(t, 5.0, Euclidean{}.Distance(a, b))
	assert.Equal(t, 7.0, Manhattan{}.Distance(a, b))
	assert.Equal(t, 4.0, Chebyshev{}.Distance(a, b))
	assert.InDelta(t, math.Cbrt(27+64), Minkowski{P: 3}.Distance(a, b), 1e-12)

	m, err := MetricByName("manhattan")
	require.NoError(t, err)
	assert.Equal(t, Manhattan{}, m)
	_, err = MetricByName("cosine")
	var verr *errors.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestKNeighborsClassifier(t *testing.T) {
	knn, err := NewKNeighborsClassifier(WithNNeighbors(3))
	require.NoError(t, err)
	require.NoError(t, knn.Fit(pointsX, pointsY))

	pred, err := knn.Predict(mat.NewDense(2, 2, []float64{0.2, 0.2, 5.5, 5.5}))
	require.NoError(t, err)
	assert.Equal(t, 10.0, pred.At(0, 0))
	assert.Equal(t, 20.0, pred.At(1, 0))
	assert.Equal(t, []float64{10, 20}, knn.Classes())

	score, err := knn.Score(pointsX, pointsY)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	proba, err := knn.PredictProba(mat.NewDense(1, 2, []float64{0, 0}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, proba.At(0, 0), 1e-12)
	assert.InDelta(t, 0.0, proba.At(0, 1), 1e-12)
}

func TestKNeighborsClassifierTieGoesToSmallestLabel(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{-1, 1})
	y := mat.NewDense(2, 1, []float64{7, 3})

	knn, err := NewKNeighborsClassifier(WithNNeighbors(2))
	require.NoError(t, err)
	require.NoError(t, knn.Fit(X, y))

	pred, err := knn.Predict(mat.NewDense(1, 1, []float64{0}))
	require.NoError(t, err)
	assert.Equal(t, 3.0, pred.At(0, 0))
}

func TestKNeighborsRegressor(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 10})
	y := mat.NewDense(4, 1, []float64{0, 2, 4, 20})

	knn, err := NewKNeighborsRegressor(WithNNeighbors(2), WithMetric(Manhattan{}), WithNJobs(2))
	require.NoError(t, err)
	require.NoError(t, knn.Fit(X, y))

	pred, err := knn.Predict(mat.NewDense(2, 1, []float64{0.4, 9}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, pred.At(0, 0), 1e-12)
	assert.InDelta(t, 12.0, pred.At(1, 0), 1e-12)
}

func TestKNeighbors(t *testing.T) {
	knn, err := NewKNeighborsRegressor(WithNNeighbors(2))
	require.NoError(t, err)
	require.NoError(t, knn.Fit(pointsX, pointsY))

	idx, dist, err := knn.KNeighbors(mat.NewDense(1, 2, []float64{0, 0}))
	require.NoError(t, err)
	// (0,1) and (1,0) are equally far; training order decides.
	assert.Equal(t, []int{0, 1}, idx[0])
	assert.Equal(t, []float64{0, 1}, dist[0])
}

func TestKNeighborsErrors(t *testing.T) {
	_, err := NewKNeighborsClassifier(WithNNeighbors(0))
	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))

	knn, err := NewKNeighborsClassifier(WithNNeighbors(10))
	require.NoError(t, err)
	_, err = knn.Predict(pointsX)
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))

	require.True(t, errors.As(knn.Fit(pointsX, pointsY), &verr))
	assert.False(t, knn.IsFitted())

	require.NoError(t, knn.SetParams(map[string]interface{}{"n_neighbors": 1}))
	require.NoError(t, knn.Fit(pointsX, pointsY))
	_, err = knn.Predict(mat.NewDense(1, 3, []float64{1, 2, 3}))
	var dim *errors.DimensionError
	require.True(t, errors.As(err, &dim))

	require.Error(t, knn.SetParams(map[string]interface{}{"n_neighbors": -1}))
	assert.Equal(t, 1, knn.GetParams()["n_neighbors"])
	require.Error(t, knn.SetParams(map[string]interface{}{"weights": "distance"}))
}

package errors

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "invalid input",
			err:     fmt.Errorf("test error"),
			wantMsg: "treeml: Fit: invalid input: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			wantMsg: "treeml: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)
			assert.Equal(t, tt.wantMsg, err.Error())

			formatted := fmt.Sprintf("%+v", err)
			assert.True(t, strings.Contains(formatted, "errors_test.go"), "stack trace should point at the caller")

			var modelErr *ModelError
			require.True(t, As(err, &modelErr))
			assert.Equal(t, tt.kind, modelErr.Kind)
		})
	}
}

func TestModelErrorUnwrapsSentinel(t *testing.T) {
	err := NewModelError("DecisionTreeClassifier.Fit", "empty data", ErrEmptyData)
	assert.True(t, Is(err, ErrEmptyData))
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 3, 2, 1)
	assert.Equal(t, "treeml: Predict: dimension mismatch on axis 1 (features). Expected 3, got 2", err.Error())

	var dimErr *DimensionError
	require.True(t, As(err, &dimErr))
	assert.Equal(t, 3, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("RandomForestClassifier", "Predict")
	assert.Equal(t, "treeml: RandomForestClassifier: this model is not fitted yet. Call Fit() before using Predict()", err.Error())

	var notFitted *NotFittedError
	assert.True(t, As(err, &notFitted))
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("max_depth", "must be >= 0", -1)
	assert.Equal(t, "treeml: validation failed for parameter 'max_depth': must be >= 0 (got: -1)", err.Error())

	var valErr *ValidationError
	require.True(t, As(err, &valErr))
	assert.Equal(t, "max_depth", valErr.ParamName)
	assert.Equal(t, -1, valErr.Value)
}

func TestNewValueError(t *testing.T) {
	err := NewValueError("MeanSquaredError", "values must not be empty")
	assert.Equal(t, "treeml: MeanSquaredError: values must not be empty", err.Error())

	var valErr *ValueError
	assert.True(t, As(err, &valErr))
}

func TestNewInputShapeError(t *testing.T) {
	err := NewInputShapeError("prediction", []int{3}, []int{2})
	assert.Equal(t, "treeml: input shape mismatch in prediction phase. Expected shape [3], got [2]", err.Error())

	var shapeErr *InputShapeError
	require.True(t, As(err, &shapeErr))
	assert.Equal(t, []int{2}, shapeErr.Got)
}

func TestNumericalInstabilityErrorTruncatesValues(t *testing.T) {
	err := NewNumericalInstabilityError("boosting_update", []float64{1, 2, 3, 4, 5, math.NaN(), 7}, 3)
	msg := err.Error()
	assert.Contains(t, msg, "boosting_update")
	assert.Contains(t, msg, "iteration 3")
	assert.Contains(t, msg, "...")
	assert.NotContains(t, msg, "7]")
}

func TestCheckNumericalStability(t *testing.T) {
	assert.NoError(t, CheckNumericalStability("op", []float64{0, 1, -2}, 0))
	assert.Error(t, CheckNumericalStability("op", []float64{0, math.Inf(1)}, 0))
	assert.Error(t, CheckNumericalStability("op", []float64{math.NaN()}, 1))

	m := mat.NewDense(2, 2, []float64{1, math.NaN(), math.Inf(-1), 4})
	err := CheckMatrix("op", m, 2, 2, 0)
	var nerr *NumericalInstabilityError
	require.True(t, As(err, &nerr))
	assert.Len(t, nerr.Values, 2)
	assert.NoError(t, CheckMatrix("op", m, 1, 1, 0))
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 2.0, SafeDivide(4, 2))
	assert.Equal(t, 0.0, SafeDivide(4, 0))
	assert.Equal(t, 0.0, SafeDivide(4, 1e-12))
}

func TestWarnUsesStructuredSinkWhenInstalled(t *testing.T) {
	var (
		mu        sync.Mutex
		plain     []error
		structure []error
	)
	SetWarningHandler(func(w error) {
		mu.Lock()
		defer mu.Unlock()
		plain = append(plain, w)
	})
	SetZerologWarnFunc(nil)
	t.Cleanup(func() {
		SetWarningHandler(func(w error) {})
		SetZerologWarnFunc(nil)
	})

	Warn(NewWeakLearnerWarning("AdaBoostClassifier", 2, 0.6))
	require.Len(t, plain, 1)
	assert.Contains(t, plain[0].Error(), "round 2")

	SetZerologWarnFunc(func(w error) {
		mu.Lock()
		defer mu.Unlock()
		structure = append(structure, w)
	})
	Warn(NewUndefinedMetricWarning("r2_score", "constant targets", 0))
	assert.Len(t, plain, 1)
	require.Len(t, structure, 1)

	var metricWarn *UndefinedMetricWarning
	require.True(t, As(structure[0], &metricWarn))
	assert.Equal(t, "r2_score", metricWarn.Metric)
}

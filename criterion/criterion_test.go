package criterion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

func TestPureSequencesHaveZeroImpurity(t *testing.T) {
	for _, labels := range [][]float64{{1}, {0, 0, 0}, {7, 7, 7, 7, 7}} {
		assert.Equal(t, 0.0, Gini(labels))
		assert.Equal(t, 0.0, Entropy(labels))
	}
}

func TestBalancedTwoClass(t *testing.T) {
	labels := []float64{0, 1, 0, 1}
	assert.Equal(t, 0.5, Gini(labels))
	assert.Equal(t, 1.0, Entropy(labels))
}

func TestImpurityValues(t *testing.T) {
	tests := []struct {
		name        string
		labels      []float64
		wantGini    float64
		wantEntropy float64
	}{
		{"three balanced classes", []float64{0, 1, 2}, 2.0 / 3.0, 1.584962500721156},
		{"three to one", []float64{1, 1, 1, 0}, 0.375, 0.8112781244591328},
		{"empty is pure", nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantGini, Gini(tt.labels), 1e-12)
			assert.InDelta(t, tt.wantEntropy, Entropy(tt.labels), 1e-12)
		})
	}
}

func TestCountFormsMatchSequenceForms(t *testing.T) {
	labels := []float64{2, 0, 2, 1, 2, 0}
	counts := []float64{3, 2, 1}
	assert.InDelta(t, Gini(labels), GiniFromCounts(counts, 6), 1e-12)
	assert.InDelta(t, Entropy(labels), EntropyFromCounts(counts, 6), 1e-12)
	assert.Equal(t, 0.0, EntropyFromCounts([]float64{4, 0}, 4))
}

func TestSplitImpurity(t *testing.T) {
	left := []float64{0, 0, 1}
	right := []float64{1, 1, 1, 0}

	lr, err := SplitImpurity(left, right, Gini)
	require.NoError(t, err)
	rl, err := SplitImpurity(right, left, Gini)
	require.NoError(t, err)
	assert.Equal(t, lr, rl)

	want := 3.0/7.0*Gini(left) + 4.0/7.0*Gini(right)
	assert.InDelta(t, want, lr, 1e-12)

	oneSided, err := SplitImpurity(nil, right, Entropy)
	require.NoError(t, err)
	assert.InDelta(t, Entropy(right), oneSided, 1e-12)

	_, err = SplitImpurity(nil, nil, Gini)
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestImpurityByName(t *testing.T) {
	imp, err := ImpurityByName("entropy")
	require.NoError(t, err)
	assert.Equal(t, 1.0, imp([]float64{0, 1}))

	counts, err := CountImpurityByName("gini")
	require.NoError(t, err)
	assert.Equal(t, 0.5, counts([]float64{1, 1}, 2))

	_, err = ImpurityByName("mse")
	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "criterion", valErr.ParamName)

	_, err = CountImpurityByName("")
	assert.Error(t, err)
}

func TestMeanSquaredError(t *testing.T) {
	mse, err := MeanSquaredError([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 1.25, mse, 1e-12)

	mse, err = MeanSquaredError([]float64{0.1, 0.1, 0.1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, mse)

	_, err = MeanSquaredError(nil)
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestMSEFromSums(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	sum, sumSq := 0.0, 0.0
	for _, v := range values {
		sum += v
		sumSq += v * v
	}
	want, err := MeanSquaredError(values)
	require.NoError(t, err)
	assert.InDelta(t, want, MSEFromSums(sum, sumSq, float64(len(values))), 1e-12)
	assert.Equal(t, 0.0, MSEFromSums(0, 0, 0))
	assert.Equal(t, 0.0, MSEFromSums(1, 0, 1))
}

func TestSecondOrderGain(t *testing.T) {
	assert.InDelta(t, 8.0, SecondOrderGain(-4, 2, 4, 2, 0, 0), 1e-6)
	assert.InDelta(t, 7.0, SecondOrderGain(-4, 2, 4, 2, 0, 2), 1e-6)

	// λ shrinks the gain of the same split
	assert.Less(t, SecondOrderGain(-4, 2, 4, 2, 1, 0), SecondOrderGain(-4, 2, 4, 2, 0, 0))

	// identical gradients on both sides never improve on the parent
	assert.LessOrEqual(t, SecondOrderGain(2, 2, 2, 2, 1, 0), 0.0)
}

func TestLeafWeight(t *testing.T) {
	assert.InDelta(t, 2.0, LeafWeight(-4, 2, 0), 1e-8)
	assert.InDelta(t, -1.0, LeafWeight(3, 2, 1), 1e-8)
	assert.Equal(t, 0.0, LeafWeight(0, 0, 0))
}

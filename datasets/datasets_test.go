package datasets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

func TestFromRows(t *testing.T) {
	X, y, err := FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}}, []float64{0, 1, 0})
	require.NoError(t, err)

	r, c := X.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 4.0, X.At(1, 1))
	assert.Equal(t, []float64{0, 1, 0}, mat.Col(nil, 0, y))
}

func TestFromRowsErrors(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]float64
		targets []float64
		check   func(t *testing.T, err error)
	}{
		{
			name: "empty",
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, errors.ErrEmptyData))
			},
		},
		{
			name:    "ragged",
			rows:    [][]float64{{1, 2}, {3}},
			targets: []float64{0, 1},
			check: func(t *testing.T, err error) {
				var shape *errors.InputShapeError
				assert.True(t, errors.As(err, &shape))
			},
		},
		{
			name:    "target length",
			rows:    [][]float64{{1}, {2}},
			targets: []float64{0},
			check: func(t *testing.T, err error) {
				var dim *errors.DimensionError
				assert.True(t, errors.As(err, &dim))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := FromRows(tt.rows, tt.targets)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestReadCSV(t *testing.T) {
	data := "a,label,b\n1,0,2\n3,1,4\n"

	X, y, names, err := ReadCSV(strings.NewReader(data), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
	assert.Equal(t, []float64{1, 2}, mat.Row(nil, 0, X))
	assert.Equal(t, []float64{0, 1}, mat.Col(nil, 0, y))

	X, y, names, err = ReadCSV(strings.NewReader(data), -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "label"}, names)
	assert.Equal(t, []float64{3, 1}, mat.Row(nil, 1, X))
	assert.Equal(t, []float64{2, 4}, mat.Col(nil, 0, y))
}

func TestReadCSVErrors(t *testing.T) {
	_, _, _, err := ReadCSV(strings.NewReader("a,b\n"), 0)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, _, _, err = ReadCSV(strings.NewReader("a,b\n1,x\n"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `line 2 column "b"`)

	_, _, _, err = ReadCSV(strings.NewReader("a,b\n1,2\n"), 5)
	var verr *errors.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n1,2\n2,4\n"), 0o600))

	X, y, _, err := LoadCSV(path, -1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, mat.Col(nil, 0, X))
	assert.Equal(t, []float64{2, 4}, mat.Col(nil, 0, y))

	_, _, _, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), 0)
	assert.Error(t, err)
}

func TestNPYRoundTrip(t *testing.T) {
	dir := t.TempDir()
	X, y := ToyClassification()
	xPath := filepath.Join(dir, "X.npy")
	yPath := filepath.Join(dir, "y.npy")
	require.NoError(t, SaveNPY(xPath, X))
	require.NoError(t, SaveNPY(yPath, y))

	gotX, gotY, err := LoadXY(xPath, yPath)
	require.NoError(t, err)
	assert.True(t, mat.Equal(X, gotX))
	assert.True(t, mat.Equal(y, gotY))
}

func TestToyData(t *testing.T) {
	X, y := ToyClassification()
	r, c := X.Dims()
	assert.Equal(t, 7, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 1.0, y.At(4, 0))

	X, y = ToyRegression()
	r, _ = X.Dims()
	require.Equal(t, 10, r)
	for i := 0; i < r; i++ {
		assert.Equal(t, 2*X.At(i, 0), y.At(i, 0))
	}
}

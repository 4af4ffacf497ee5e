// Package datasets turns Go slices, CSV files and NumPy arrays into the
// (X, y) matrix pairs accepted by every estimator, and ships the two small
// datasets used in the end-to-end checks.
package datasets

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/samber/lo"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// FromRows copies rows and targets into an n×d feature matrix and an n×1
// target matrix. Every row must have the same length and there must be one
// target per row.
func FromRows(rows [][]float64, targets []float64) (*mat.Dense, *mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil, errors.NewModelError("datasets.FromRows", "empty data", errors.ErrEmptyData)
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return nil, nil, errors.Wrapf(
				errors.NewInputShapeError("training", []int{width}, []int{len(row)}),
				"row %d", i)
		}
	}
	if len(targets) != len(rows) {
		return nil, nil, errors.NewDimensionError("datasets.FromRows", len(rows), len(targets), 0)
	}

	X := mat.NewDense(len(rows), width, nil)
	for i, row := range rows {
		X.SetRow(i, row)
	}
	return X, mat.NewDense(len(targets), 1, append([]float64(nil), targets...)), nil
}

// LoadCSV reads a numeric CSV file whose first line is a header. Column
// targetCol becomes y and the remaining columns become X, in file order. A
// negative targetCol selects the last column. The returned names are the
// header entries of the feature columns.
func LoadCSV(path string, targetCol int) (*mat.Dense, *mat.Dense, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return ReadCSV(f, targetCol)
}

// ReadCSV is LoadCSV for an already open reader.
func ReadCSV(r io.Reader, targetCol int) (*mat.Dense, *mat.Dense, []string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "read csv")
	}
	if len(records) < 2 {
		return nil, nil, nil, errors.NewModelError("datasets.ReadCSV", "empty data", errors.ErrEmptyData)
	}
	header := records[0]
	if targetCol < 0 {
		targetCol = len(header) - 1
	}
	if targetCol >= len(header) || len(header) < 2 {
		return nil, nil, nil, errors.NewValidationError("target_col", "must index a column and leave at least one feature", targetCol)
	}

	names := lo.Reject(header, func(_ string, j int) bool { return j == targetCol })
	rows := make([][]float64, 0, len(records)-1)
	targets := make([]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := make([]float64, 0, len(rec)-1)
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, nil, errors.Wrapf(err, "line %d column %q", i+2, header[j])
			}
			if j == targetCol {
				targets = append(targets, v)
			} else {
				row = append(row, v)
			}
		}
		rows = append(rows, row)
	}

	X, y, err := FromRows(rows, targets)
	if err != nil {
		return nil, nil, nil, err
	}
	return X, y, names, nil
}

// LoadNPY reads a two-dimensional float64 array from a .npy file.
func LoadNPY(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read npy header of %s", path)
	}
	m := &mat.Dense{}
	if err := r.Read(m); err != nil {
		return nil, errors.Wrapf(err, "read npy data of %s", path)
	}
	return m, nil
}

// SaveNPY writes m to path in .npy format.
func SaveNPY(path string, m mat.Matrix) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	if err := npyio.Write(f, m); err != nil {
		return errors.Wrapf(err, "write npy %s", path)
	}
	return nil
}

// LoadXY loads a feature file and a target file, both .npy.
func LoadXY(xPath, yPath string) (*mat.Dense, *mat.Dense, error) {
	X, err := LoadNPY(xPath)
	if err != nil {
		return nil, nil, err
	}
	y, err := LoadNPY(yPath)
	if err != nil {
		return nil, nil, err
	}
	// A 1-d target array may decode as a single row.
	if r, c := y.Dims(); r == 1 && c > 1 {
		y = mat.DenseCopyOf(y.T())
	}
	return X, y, nil
}

// ToyClassification returns seven three-feature rows with binary labels.
// A gini tree of depth 3 fitted on it classifies [1, 1, 38] as 1.
func ToyClassification() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(7, 3, []float64{
		1, 1, 7,
		1, 0, 12,
		0, 1, 18,
		0, 1, 35,
		1, 1, 38,
		1, 0, 50,
		0, 0, 83,
	})
	y := mat.NewDense(7, 1, []float64{0, 0, 1, 1, 1, 0, 0})
	return X, y
}

// ToyRegression returns the line y = 2x sampled at x = 0, -1, 2, 3, ..., 9.
func ToyRegression() (*mat.Dense, *mat.Dense) {
	xs := []float64{0, -1, 2, 3, 4, 5, 6, 7, 8, 9}
	ys := lo.Map(xs, func(x float64, _ int) float64 { return 2 * x })
	return mat.NewDense(len(xs), 1, xs), mat.NewDense(len(ys), 1, ys)
}

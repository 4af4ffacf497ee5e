// Package model_selection splits datasets into train and test parts and
// scores estimators with k-fold cross validation.
package model_selection

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/core/model"
	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// Fold holds the row indices of one train/test partition.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// Splitter produces cross-validation folds.
type Splitter interface {
	Split(X, y mat.Matrix) ([]Fold, error)
	GetNSplits() int
}

type splitParams struct {
	NSplits int `param:"n_splits" validate:"gte=2"`
}

func newRand(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s))
}

// KFold cuts the rows into NSplits contiguous folds; the first n % NSplits
// folds get one extra row. With Shuffle the rows are permuted first.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int64
}

// NewKFold creates a k-fold splitter. nSplits must be at least 2.
func NewKFold(nSplits int, shuffle bool, randomSeed int64) (*KFold, error) {
	if err := model.ValidateParams(splitParams{NSplits: nSplits}); err != nil {
		return nil, err
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle, RandomSeed: randomSeed}, nil
}

// GetNSplits returns the number of folds.
func (kf *KFold) GetNSplits() int {
	return kf.NSplits
}

// Split returns one fold per split. Every row is a test row exactly once.
func (kf *KFold) Split(X, _ mat.Matrix) ([]Fold, error) {
	n, err := checkSplit("KFold.Split", X, kf.NSplits)
	if err != nil {
		return nil, err
	}
	indices := lo.Range(n)
	if kf.Shuffle {
		r := newRand(kf.RandomSeed)
		r.Shuffle(n, func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
	}

	testOf := make([]int, n)
	start := 0
	for f := 0; f < kf.NSplits; f++ {
		size := foldSize(n, kf.NSplits, f)
		for _, idx := range indices[start : start+size] {
			testOf[idx] = f
		}
		start += size
	}
	return assemble(testOf, kf.NSplits), nil
}

// StratifiedKFold keeps each class's share roughly equal across folds by
// dealing every class out separately.
type StratifiedKFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int64
}

// NewStratifiedKFold creates a stratified splitter. nSplits must be at least 2.
func NewStratifiedKFold(nSplits int, shuffle bool, randomSeed int64) (*StratifiedKFold, error) {
	if err := model.ValidateParams(splitParams{NSplits: nSplits}); err != nil {
		return nil, err
	}
	return &StratifiedKFold{NSplits: nSplits, Shuffle: shuffle, RandomSeed: randomSeed}, nil
}

// GetNSplits returns the number of folds.
func (skf *StratifiedKFold) GetNSplits() int {
	return skf.NSplits
}

// Split groups rows by the label in y's first column and spreads each group
// over the folds.
func (skf *StratifiedKFold) Split(X, y mat.Matrix) ([]Fold, error) {
	n, err := checkSplit("StratifiedKFold.Split", X, skf.NSplits)
	if err != nil {
		return nil, err
	}
	if y == nil {
		return nil, errors.NewValueError("StratifiedKFold.Split", "y must not be nil")
	}
	if yr, _ := y.Dims(); yr != n {
		return nil, errors.NewDimensionError("StratifiedKFold.Split", n, yr, 0)
	}

	labels := model.Column(y)
	byClass := lo.GroupBy(lo.Range(n), func(i int) float64 { return labels[i] })
	classes := lo.Keys(byClass)
	slices.Sort(classes)

	r := newRand(skf.RandomSeed)
	testOf := make([]int, n)
	for _, c := range classes {
		members := byClass[c]
		if skf.Shuffle {
			r.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		}
		start := 0
		for f := 0; f < skf.NSplits; f++ {
			size := foldSize(len(members), skf.NSplits, f)
			for _, idx := range members[start : start+size] {
				testOf[idx] = f
			}
			start += size
		}
	}
	return assemble(testOf, skf.NSplits), nil
}

func checkSplit(op string, X mat.Matrix, nSplits int) (int, error) {
	if X == nil {
		return 0, errors.NewValueError(op, "X must not be nil")
	}
	n, _ := X.Dims()
	if n == 0 {
		return 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if nSplits > n {
		return 0, errors.NewValidationError("n_splits", "must not exceed the number of samples", nSplits)
	}
	return n, nil
}

func foldSize(n, k, f int) int {
	size := n / k
	if f < n%k {
		size++
	}
	return size
}

// assemble turns a fold number per row into folds with ascending indices.
func assemble(testOf []int, k int) []Fold {
	folds := make([]Fold, k)
	for i, f := range testOf {
		for g := range folds {
			if g == f {
				folds[g].TestIndices = append(folds[g].TestIndices, i)
			} else {
				folds[g].TrainIndices = append(folds[g].TrainIndices, i)
			}
		}
	}
	return folds
}

// Subset copies the listed rows of X and y, in the order given.
func Subset(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	_, xc := X.Dims()
	_, yc := y.Dims()
	xs := mat.NewDense(len(indices), xc, nil)
	ys := mat.NewDense(len(indices), yc, nil)
	for i, idx := range indices {
		for j := 0; j < xc; j++ {
			xs.Set(i, j, X.At(idx, j))
		}
		for j := 0; j < yc; j++ {
			ys.Set(i, j, y.At(idx, j))
		}
	}
	return xs, ys
}

// TrainTestSplit shuffles the rows with seed and holds out
// ceil(testSize·n) of them, at least one and at most n−1.
func TrainTestSplit(X, y mat.Matrix, testSize float64, seed int64) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}
	if X == nil || y == nil {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "X and y must not be nil")
	}
	n, _ := X.Dims()
	if yr, _ := y.Dims(); yr != n {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", n, yr, 0)
	}
	if n < 2 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "need at least two samples")
	}

	nTest := min(max(int(math.Ceil(testSize*float64(n))), 1), n-1)
	perm := newRand(seed).Perm(n)
	XTest, yTest = Subset(X, y, perm[:nTest])
	XTrain, yTrain = Subset(X, y, perm[nTest:])
	return XTrain, XTest, yTrain, yTest, nil
}

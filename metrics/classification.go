package metrics

import (
	"math"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// logLossEpsilon clips probabilities away from 0 and 1.
const logLossEpsilon = 1e-15

// Accuracy returns the fraction of exact label matches.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// AccuracyMatrix is Accuracy over n×1 matrices.
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := columnPair("AccuracyMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return Accuracy(t, p)
}

// ClassificationError returns 1 − Accuracy.
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// ConfusionMatrix counts (true, predicted) label pairs. Rows and columns follow
// labels, the sorted union of the labels present in either input.
func ConfusionMatrix(yTrue, yPred *mat.VecDense) (*mat.Dense, []float64, error) {
	n, err := checkPair("ConfusionMatrix", yTrue, yPred)
	if err != nil {
		return nil, nil, err
	}
	truth := lo.Times(n, yTrue.AtVec)
	pred := lo.Times(n, yPred.AtVec)
	labels := lo.Uniq(append(slices.Clone(truth), pred...))
	slices.Sort(labels)
	index := make(map[float64]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	cm := mat.NewDense(len(labels), len(labels), nil)
	for i := 0; i < n; i++ {
		r, c := index[truth[i]], index[pred[i]]
		cm.Set(r, c, cm.At(r, c)+1)
	}
	return cm, labels, nil
}

func requireBinary(op string, y *mat.VecDense, n int) error {
	for i := 0; i < n; i++ {
		if v := y.AtVec(i); v != 0 && v != 1 {
			return errors.NewValueError(op, "labels must be 0 or 1")
		}
	}
	return nil
}

// BinaryLogLoss returns the mean negative log-likelihood of {0,1} labels under
// predicted positive-class probabilities, clipped to [ε, 1−ε].
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("BinaryLogLoss", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if err := requireBinary("BinaryLogLoss", yTrue, n); err != nil {
		return 0, err
	}
	var loss float64
	for i := 0; i < n; i++ {
		p := math.Min(math.Max(yPred.AtVec(i), logLossEpsilon), 1-logLossEpsilon)
		if yTrue.AtVec(i) == 1 {
			loss -= math.Log(p)
		} else {
			loss -= math.Log(1 - p)
		}
	}
	return loss / float64(n), nil
}

// AUC returns the area under the ROC curve for {0,1} labels and real-valued
// scores, counting tied scores as half a correctly ordered pair. With a single
// class present the AUC is undefined; 0.5 is returned and a warning emitted.
func AUC(yTrue, yScore *mat.VecDense) (float64, error) {
	n, err := checkPair("AUC", yTrue, yScore)
	if err != nil {
		return 0, err
	}
	if err := requireBinary("AUC", yTrue, n); err != nil {
		return 0, err
	}

	order := lo.Range(n)
	slices.SortStableFunc(order, func(a, b int) int {
		switch sa, sb := yScore.AtVec(a), yScore.AtVec(b); {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	})

	// Mann-Whitney U with average ranks for ties.
	var rankSum float64
	nPos := 0
	for i := 0; i < n; {
		j := i
		for j+1 < n && yScore.AtVec(order[j+1]) == yScore.AtVec(order[i]) {
			j++
		}
		avgRank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			if yTrue.AtVec(order[k]) == 1 {
				rankSum += avgRank
				nPos++
			}
		}
		i = j + 1
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC", "only one class present in yTrue", 0.5))
		return 0.5, nil
	}
	u := rankSum - float64(nPos*(nPos+1))/2
	return u / float64(nPos*nNeg), nil
}

// AUCMatrix is AUC over the first column of two matrices.
func AUCMatrix(yTrue, yScore mat.Matrix) (float64, error) {
	if yTrue == nil || yScore == nil {
		return 0, errors.NewValueError("AUCMatrix", "nil matrix")
	}
	r, c := yTrue.Dims()
	rs, cs := yScore.Dims()
	if r == 0 || c == 0 || rs == 0 || cs == 0 {
		return 0, errors.NewValueError("AUCMatrix", "empty matrix")
	}
	if r != rs {
		return 0, errors.NewDimensionError("AUCMatrix", r, rs, 0)
	}
	return AUC(firstColumn(yTrue, r), firstColumn(yScore, rs))
}

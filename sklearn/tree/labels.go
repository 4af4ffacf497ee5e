package tree

import (
	"slices"

	"github.com/samber/lo"
)

// EncodeLabels maps each target to the index of its value among the sorted
// distinct targets. classes[labels[i]] == y[i].
func EncodeLabels(y []float64) (classes []float64, labels []int) {
	classes = lo.Uniq(y)
	slices.Sort(classes)
	index := make(map[float64]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	labels = make([]int, len(y))
	for i, v := range y {
		labels[i] = index[v]
	}
	return classes, labels
}

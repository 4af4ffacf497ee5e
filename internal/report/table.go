// Package report renders fitted models and their scores for people: metric
// tables on a terminal, learning curves as images and trees as Graphviz
// drawings.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/YuminosukeSato/treeml/pkg/errors"
	"github.com/YuminosukeSato/treeml/sklearn/model_selection"
)

// Metric is one named score.
type Metric struct {
	Name  string
	Value float64
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

// WriteMetrics prints one row per metric for the named model.
func WriteMetrics(w io.Writer, modelName string, metrics []Metric) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Model", "Metric", "Value"})
	for _, m := range metrics {
		if err := table.Append([]string{modelName, m.Name, formatScore(m.Value)}); err != nil {
			return errors.Wrap(err, "append metric row")
		}
	}
	return errors.Wrap(table.Render(), "render metrics table")
}

// WriteCrossValidation prints per-fold train and test scores followed by the
// mean and standard deviation of the test scores.
func WriteCrossValidation(w io.Writer, modelName string, res *model_selection.CVResult) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Fold", "Train", "Test", "Fit time"})
	for i := range res.TestScores {
		row := []string{
			fmt.Sprint(i + 1),
			formatScore(res.TrainScores[i]),
			formatScore(res.TestScores[i]),
			res.FitTimes[i].Round(time.Microsecond).String(),
		}
		if err := table.Append(row); err != nil {
			return errors.Wrap(err, "append fold row")
		}
	}
	total := lo.Sum(res.FitTimes)
	table.Footer([]string{modelName, "mean " + formatScore(res.Mean()), "std " + formatScore(res.Std()), total.Round(time.Microsecond).String()})
	return errors.Wrap(table.Render(), "render cross-validation table")
}

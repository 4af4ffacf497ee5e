package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/criterion"
	"github.com/YuminosukeSato/treeml/datasets"
	"github.com/YuminosukeSato/treeml/sklearn/ensemble"
	"github.com/YuminosukeSato/treeml/sklearn/tree"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Fit the bundled toy datasets and print the predictions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runDemo(cmd.OutOrStdout(), cfg.Seed)
		},
	}
}

func runDemo(w io.Writer, seed int64) error {
	X, y := datasets.ToyClassification()
	dt, err := tree.NewDecisionTreeClassifier(tree.WithMaxDepth(3), tree.WithCriterion(criterion.GiniName))
	if err != nil {
		return err
	}
	if err := dt.Fit(X, y); err != nil {
		return err
	}
	query := mat.NewDense(1, 3, []float64{1, 1, 38})
	pred, err := dt.Predict(query)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "decision tree (gini, depth 3): %v -> %g\n", mat.Row(nil, 0, query), pred.At(0, 0))
	fmt.Fprint(w, dt.Tree().Rules([]string{"x0", "x1", "x2"}, nil))

	X, y = datasets.ToyRegression()
	gb, err := ensemble.NewGradientBoostingRegressor(
		ensemble.WithNEstimators(50),
		ensemble.WithMaxDepth(8),
		ensemble.WithLearningRate(0.1),
		ensemble.WithRandomState(seed),
	)
	if err != nil {
		return err
	}
	if err := gb.Fit(X, y); err != nil {
		return err
	}
	query = mat.NewDense(2, 1, []float64{1, 10})
	pred, err = gb.Predict(query)
	if err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		fmt.Fprintf(w, "gradient boosting (50 rounds, depth 8): x=%g -> %.4f\n", query.At(i, 0), pred.At(i, 0))
	}
	return nil
}

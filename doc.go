// Package treeml provides decision trees, tree ensembles and a few baseline
// models for Go, with a scikit-learn-like API over gonum matrices.
//
// # Features
//
//   - Binary split trees for classification (gini, entropy) and regression
//   - Random forests, AdaBoost, gradient boosting and second-order
//     (XGBoost-style) boosting with callbacks and early stopping
//   - k-nearest neighbours, ordinary least squares and feature scalers
//   - Typed errors with stack traces and structured zerolog logging
//   - Seeded randomness everywhere, so fitted ensembles are reproducible
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/treeml/datasets"
//	    "github.com/YuminosukeSato/treeml/sklearn/tree"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X, y := datasets.ToyClassification()
//
//	    dt, err := tree.NewDecisionTreeClassifier(tree.WithMaxDepth(3))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := dt.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pred, err := dt.Predict(mat.NewDense(1, 3, []float64{1, 1, 38}))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("Prediction:", pred.At(0, 0))
//	}
//
// # Packages
//
//   - criterion: impurity, gain and loss functions
//   - sklearn/tree: DecisionTreeClassifier, DecisionTreeRegressor and the tree builder
//   - sklearn/ensemble: forests, AdaBoost, gradient and XGBoost-style boosting
//   - sklearn/neighbors: k-nearest-neighbour classifier and regressor
//   - sklearn/model_selection: train/test split, k-fold and cross validation
//   - linear: ordinary least squares
//   - preprocessing: StandardScaler and MinMaxScaler
//   - metrics: regression and classification scores
//   - datasets: slices, CSV and .npy loading, toy datasets
//   - core/model, core/parallel: shared interfaces, input checks and workers
//   - pkg/errors, pkg/log: error types and logging
//
// The treeml command in cmd/treeml fits, cross-validates and renders models
// from the command line.
package treeml

package main

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/datasets"
	"github.com/YuminosukeSato/treeml/internal/report"
	"github.com/YuminosukeSato/treeml/metrics"
	"github.com/YuminosukeSato/treeml/pkg/errors"
	"github.com/YuminosukeSato/treeml/pkg/log"
	"github.com/YuminosukeSato/treeml/sklearn/model_selection"
	"github.com/YuminosukeSato/treeml/sklearn/tree"
)

func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "tree", "Model: "+strings.Join(allModels(), ", ")+".")
	cmd.Flags().StringP("data", "d", "", "Training data: a .csv file with a header row or a .npy feature matrix.")
	cmd.Flags().String("target", "", "Target .npy file, required with .npy data.")
	cmd.Flags().Int("target-col", -1, "Target column of a CSV file; negative means the last column.")
	cmd.Flags().String("scale", "", "Rescale features first: standard or minmax.")
}

func newFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a model and report its scores on a held-out split",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runFit(cmd, cfg)
		},
	}
	addDataFlags(cmd)
	cmd.Flags().Float64("test-size", 0.25, "Share of rows held out for scoring; 0 scores on the training rows.")
	cmd.Flags().String("curve", "", "Save the boosting learning curve to this image.")
	cmd.Flags().String("render", "", "Render the (first) fitted tree to this .svg, .png, .jpg or .dot file.")
	cmd.Flags().String("predictions", "", "Save test-set predictions to this .npy file.")
	cmd.Flags().Bool("progress", false, "Show a progress bar while boosting.")
	return cmd
}

// loadData reads cfg.Data (and cfg.Target for .npy data).
func loadData(cfg *Config) (*mat.Dense, *mat.Dense, []string, error) {
	switch strings.ToLower(filepath.Ext(cfg.Data)) {
	case "":
		return nil, nil, nil, errors.NewValidationError("data", "a data file is required", cfg.Data)
	case ".npy":
		if cfg.Target == "" {
			return nil, nil, nil, errors.NewValidationError("target", "required with .npy data", cfg.Target)
		}
		X, y, err := datasets.LoadXY(cfg.Data, cfg.Target)
		return X, y, nil, err
	default:
		return datasets.LoadCSV(cfg.Data, cfg.TargetCol)
	}
}

func runFit(cmd *cobra.Command, cfg *Config) error {
	logger := log.GetLoggerWithName("treeml").With(log.ModelNameKey, cfg.Model)

	X, y, names, err := loadData(cfg)
	if err != nil {
		return err
	}
	XTrain, XTest, yTrain, yTest := X, X, y, y
	if cfg.TestSize > 0 {
		if XTrain, XTest, yTrain, yTest, err = model_selection.TrainTestSplit(X, y, cfg.TestSize, cfg.Seed); err != nil {
			return err
		}
	}

	var bo buildOptions
	if cfg.Model == "gbm" || cfg.Model == "xgb" {
		if cfg.TestSize > 0 {
			bo.evalX, bo.evalY = XTest, yTest
		}
		if cfg.Progress {
			probe, err := newEstimator(cfg, buildOptions{})
			if err != nil {
				return err
			}
			rounds, _ := unwrap(probe).(paramGetter).GetParams()["n_estimators"].(int)
			bo.callbacks = append(bo.callbacks, progressCallback(cmd.ErrOrStderr(), rounds))
		}
	}

	est, err := newEstimator(cfg, bo)
	if err != nil {
		return err
	}
	if err := est.Fit(XTrain, yTrain); err != nil {
		return err
	}
	pred, err := est.Predict(XTest)
	if err != nil {
		return err
	}

	scores, err := scoreSet(cfg.Model, yTest, pred)
	if err != nil {
		return err
	}
	logger.Info("fit finished", log.OperationKey, log.OperationFit, log.SamplesKey, rows(XTrain))
	if err := report.WriteMetrics(cmd.OutOrStdout(), cfg.Model, scores); err != nil {
		return err
	}

	if cfg.Predictions != "" {
		if err := datasets.SaveNPY(cfg.Predictions, pred); err != nil {
			return err
		}
	}
	if cfg.Curve != "" {
		if err := saveCurve(cfg, est); err != nil {
			return err
		}
	}
	if cfg.Render != "" {
		t := firstTree(est)
		if t == nil {
			return errors.NewValidationError("render", "model has no trees", cfg.Model)
		}
		if err := report.RenderTree(t, names, cfg.Render); err != nil {
			return err
		}
	}
	return nil
}

type paramGetter interface {
	GetParams() map[string]interface{}
}

func rows(m mat.Matrix) int {
	r, _ := m.Dims()
	return r
}

// scoreSet reports accuracy for classifiers and R², MSE and RMSE for
// regressors.
func scoreSet(modelName string, yTrue, yPred mat.Matrix) ([]report.Metric, error) {
	if isClassifier(modelName) {
		acc, err := metrics.AccuracyMatrix(yTrue, yPred)
		if err != nil {
			return nil, err
		}
		return []report.Metric{{Name: "accuracy", Value: acc}}, nil
	}
	r2, err := metrics.R2ScoreMatrix(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	mse, err := metrics.MSEMatrix(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	return []report.Metric{
		{Name: "r2", Value: r2},
		{Name: "mse", Value: mse},
		{Name: "rmse", Value: math.Sqrt(mse)},
	}, nil
}

func saveCurve(cfg *Config, est estimator) error {
	h, ok := unwrap(est).(interface {
		EvalHistory() map[string][]float64
	})
	if !ok {
		return errors.NewValidationError("curve", "only boosted models record a learning curve", cfg.Model)
	}
	return report.SaveLearningCurve(cfg.Curve, cfg.Model+" learning curve", h.EvalHistory())
}

// firstTree returns the single tree of a decision tree, or the first member
// of an ensemble.
func firstTree(est estimator) *tree.Tree {
	switch m := unwrap(est).(type) {
	case interface{ Tree() *tree.Tree }:
		return m.Tree()
	case interface{ Estimators() []*tree.Tree }:
		if ts := m.Estimators(); len(ts) > 0 {
			return ts[0]
		}
	}
	return nil
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/treeml/internal/report"
	"github.com/YuminosukeSato/treeml/sklearn/model_selection"
)

func newCVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cv",
		Short: "Cross-validate a model with k folds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runCV(cmd, cfg)
		},
	}
	addDataFlags(cmd)
	cmd.Flags().IntP("folds", "k", 5, "Number of folds; classifiers use stratified folds.")
	return cmd
}

func runCV(cmd *cobra.Command, cfg *Config) error {
	X, y, _, err := loadData(cfg)
	if err != nil {
		return err
	}
	// Validate the model name and params once before any fold runs.
	if _, err := newEstimator(cfg, buildOptions{}); err != nil {
		return err
	}

	var splitter model_selection.Splitter
	if isClassifier(cfg.Model) {
		splitter, err = model_selection.NewStratifiedKFold(cfg.Folds, true, cfg.Seed)
	} else {
		splitter, err = model_selection.NewKFold(cfg.Folds, true, cfg.Seed)
	}
	if err != nil {
		return err
	}

	res, err := model_selection.CrossValidate(factory(cfg), X, y, splitter, cfg.NJobs)
	if err != nil {
		return err
	}
	return report.WriteCrossValidation(cmd.OutOrStdout(), cfg.Model, res)
}

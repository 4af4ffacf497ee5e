package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/YuminosukeSato/treeml/sklearn/ensemble"
)

// progressCallback advances a bar of rounds steps after every boosting round
// and shows the latest training loss.
func progressCallback(w io.Writer, rounds int) ensemble.Callback {
	bar := progressbar.NewOptions(rounds,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("boosting"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return func(env *ensemble.CallbackEnv) error {
		if loss, ok := env.EvalResults[ensemble.TrainingLoss]; ok {
			bar.Describe(fmt.Sprintf("boosting loss=%.4f", loss))
		}
		if err := bar.Add(1); err != nil {
			return err
		}
		if env.StopTraining || env.Iteration+1 == rounds {
			return bar.Finish()
		}
		return nil
	}
}

package report

import (
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// SaveLearningCurve draws one line per series of history (as returned by a
// boosted model's EvalHistory) against the boosting round and saves it to
// path. The image format follows the file extension.
func SaveLearningCurve(path, title string, history map[string][]float64) error {
	if len(history) == 0 {
		return errors.NewValueError("SaveLearningCurve", "history is empty")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Round"
	p.Y.Label.Text = "Loss"

	names := lo.Keys(history)
	slices.Sort(names)
	lines := make([]interface{}, 0, 2*len(names))
	for _, name := range names {
		losses := history[name]
		pts := make(plotter.XYs, len(losses))
		for i, v := range losses {
			pts[i].X = float64(i + 1)
			pts[i].Y = v
		}
		lines = append(lines, name, pts)
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return errors.Wrap(err, "add learning curve lines")
	}
	return errors.Wrapf(p.Save(8*vg.Inch, 4*vg.Inch, path), "save %s", path)
}

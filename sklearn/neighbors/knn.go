package neighbors

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/core/model"
	"github.com/YuminosukeSato/treeml/core/parallel"
	"github.com/YuminosukeSato/treeml/metrics"
	"github.com/YuminosukeSato/treeml/pkg/errors"
	"github.com/YuminosukeSato/treeml/pkg/log"
	"github.com/YuminosukeSato/treeml/sklearn/tree"
)

type knnParams struct {
	NNeighbors int `param:"n_neighbors" validate:"gte=1"`
}

type config struct {
	nNeighbors int
	metric     Metric
	nJobs      int
	logger     log.Logger
}

// Option configures a k-nearest-neighbour estimator.
type Option func(*config)

// WithNNeighbors sets k.
func WithNNeighbors(k int) Option {
	return func(c *config) {
		c.nNeighbors = k
	}
}

// WithMetric sets the distance. Euclidean is the default.
func WithMetric(m Metric) Option {
	return func(c *config) {
		c.metric = m
	}
}

// WithNJobs sets the number of goroutines answering queries. Values <= 0 use
// one per CPU.
func WithNJobs(n int) Option {
	return func(c *config) {
		c.nJobs = n
	}
}

// WithLogger replaces the estimator's logger.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func newConfig(name string, opts []Option) (config, error) {
	c := config{nNeighbors: 3, metric: Euclidean{}}
	for _, opt := range opts {
		opt(&c)
	}
	if c.metric == nil {
		c.metric = Euclidean{}
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("neighbors")
	}
	c.logger = c.logger.With(log.ModelNameKey, name)
	return c, model.ValidateParams(knnParams{NNeighbors: c.nNeighbors})
}

// index is the memorised training set shared by both estimators.
type index struct {
	config
	name  string
	state *model.StateManager
	rows  [][]float64
}

func (ix *index) fit(X, y mat.Matrix) ([]float64, error) {
	rows, targets, err := model.CheckFitInput(ix.name+".Fit", X, y)
	if err != nil {
		return nil, err
	}
	if ix.nNeighbors > len(rows) {
		return nil, errors.NewValidationError("n_neighbors", "must not exceed the number of training samples", ix.nNeighbors)
	}
	ix.rows = rows
	ix.state.SetFitted(len(rows[0]), len(rows))
	ix.logger.Debug("fit finished",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(rows),
		log.FeaturesKey, len(rows[0]),
	)
	return targets, nil
}

// nearest returns the k training indices closest to row and their distances.
// Equal distances keep training order.
func (ix *index) nearest(row []float64) ([]int, []float64) {
	dist := lo.Map(ix.rows, func(r []float64, _ int) float64 { return ix.metric.Distance(row, r) })
	order := lo.Range(len(ix.rows))
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(dist[a], dist[b]) })
	order = order[:min(ix.nNeighbors, len(order))]
	return order, lo.Map(order, func(i int, _ int) float64 { return dist[i] })
}

// queryRows validates X for a fitted estimator.
func (ix *index) queryRows(X mat.Matrix, method string) ([][]float64, error) {
	if err := ix.state.RequireFitted(ix.name, method); err != nil {
		return nil, err
	}
	nFeatures, _ := ix.state.GetDimensions()
	return model.CheckPredictInput(ix.name+"."+method, X, nFeatures)
}

// each hands every row's neighbours to fn, spreading rows over goroutines.
func (ix *index) each(rows [][]float64, fn func(i int, neighbours []int)) {
	parallel.ParallelizeN(ix.nJobs, len(rows), func(start, end int) {
		for i := start; i < end; i++ {
			nb, _ := ix.nearest(rows[i])
			fn(i, nb)
		}
	})
}

// KNeighbors returns, for each row of X, the indices of its k nearest
// training rows and the distances to them, nearest first.
func (ix *index) KNeighbors(X mat.Matrix) ([][]int, [][]float64, error) {
	rows, err := ix.queryRows(X, "KNeighbors")
	if err != nil {
		return nil, nil, err
	}
	indices := make([][]int, len(rows))
	distances := make([][]float64, len(rows))
	for i, row := range rows {
		indices[i], distances[i] = ix.nearest(row)
	}
	return indices, distances, nil
}

// IsFitted reports whether Fit has completed.
func (ix *index) IsFitted() bool {
	return ix.state.IsFitted()
}

// GetParams returns the hyperparameters.
func (ix *index) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": ix.nNeighbors,
		"n_jobs":      ix.nJobs,
	}
}

// SetParams updates n_neighbors or n_jobs; on error nothing changes.
func (ix *index) SetParams(params map[string]interface{}) error {
	next := ix.config
	for key, value := range params {
		var err error
		switch key {
		case "n_neighbors":
			next.nNeighbors, err = model.IntParam(key, value)
		case "n_jobs":
			next.nJobs, err = model.IntParam(key, value)
		default:
			return model.UnknownParam(ix.name, key)
		}
		if err != nil {
			return err
		}
	}
	if err := model.ValidateParams(knnParams{NNeighbors: next.nNeighbors}); err != nil {
		return err
	}
	ix.config = next
	return nil
}

// KNeighborsClassifier predicts the majority label of the k nearest training
// rows. Ties go to the smallest label.
type KNeighborsClassifier struct {
	index
	classes []float64
	labels  []int
}

// NewKNeighborsClassifier creates a classifier with k = 3 and the Euclidean
// metric by default.
func NewKNeighborsClassifier(opts ...Option) (*KNeighborsClassifier, error) {
	c, err := newConfig("KNeighborsClassifier", opts)
	if err != nil {
		return nil, err
	}
	return &KNeighborsClassifier{index: index{config: c, name: "KNeighborsClassifier", state: model.NewStateManager()}}, nil
}

// Fit memorises the training set.
func (knn *KNeighborsClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "KNeighborsClassifier.Fit")
	targets, err := knn.fit(X, y)
	if err != nil {
		return err
	}
	knn.classes, knn.labels = tree.EncodeLabels(targets)
	return nil
}

// Predict returns the majority label among each row's neighbours.
func (knn *KNeighborsClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := knn.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := make([]float64, r)
	for i := range out {
		_, k := lo.MaxIndex(mat.Row(nil, i, proba))
		out[i] = knn.classes[k]
	}
	return model.ColumnVector(out), nil
}

// PredictProba returns the share of neighbours in each class, with columns in
// Classes order.
func (knn *KNeighborsClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	rows, err := knn.queryRows(X, "Predict")
	if err != nil {
		return nil, err
	}
	proba := mat.NewDense(len(rows), len(knn.classes), nil)
	knn.each(rows, func(i int, nb []int) {
		for _, j := range nb {
			proba.Set(i, knn.labels[j], proba.At(i, knn.labels[j])+1/float64(len(nb)))
		}
	})
	return proba, nil
}

// Score returns the mean accuracy on X and y.
func (knn *KNeighborsClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := knn.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, pred)
}

// Classes returns the sorted labels seen during Fit.
func (knn *KNeighborsClassifier) Classes() []float64 {
	return append([]float64(nil), knn.classes...)
}

// KNeighborsRegressor predicts the mean target of the k nearest training
// rows.
type KNeighborsRegressor struct {
	index
	targets []float64
}

// NewKNeighborsRegressor creates a regressor with k = 3 and the Euclidean
// metric by default.
func NewKNeighborsRegressor(opts ...Option) (*KNeighborsRegressor, error) {
	c, err := newConfig("KNeighborsRegressor", opts)
	if err != nil {
		return nil, err
	}
	return &KNeighborsRegressor{index: index{config: c, name: "KNeighborsRegressor", state: model.NewStateManager()}}, nil
}

// Fit memorises the training set.
func (knn *KNeighborsRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "KNeighborsRegressor.Fit")
	targets, err := knn.fit(X, y)
	if err != nil {
		return err
	}
	knn.targets = targets
	return nil
}

// Predict returns the mean neighbour target of each row.
func (knn *KNeighborsRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	rows, err := knn.queryRows(X, "Predict")
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	knn.each(rows, func(i int, nb []int) {
		out[i] = lo.SumBy(nb, func(j int) float64 { return knn.targets[j] }) / float64(len(nb))
	})
	return model.ColumnVector(out), nil
}

// Score returns R² on X and y.
func (knn *KNeighborsRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := knn.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

package ensemble

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treeml/pkg/log"
)

// config holds the hyperparameters of every ensemble estimator. Each
// estimator reads and validates the fields it uses.
type config struct {
	nEstimators     int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	criterion       string
	minLoss         float64

	learningRate   float64
	subsample      float64
	lambda         float64
	gamma          float64
	minGain        float64
	minChildWeight float64
	objective      string

	resampling bool

	nJobs       int
	randomState int64
	source      RandomSource

	evalX, evalY mat.Matrix
	callbacks    []Callback

	logger log.Logger
}

func (c *config) rng() RandomSource {
	if c.source != nil {
		return c.source
	}
	return NewRandomSource(c.randomState)
}

// Option configures an ensemble estimator.
type Option func(*config)

// WithNEstimators sets the number of trees, stumps or boosting rounds.
func WithNEstimators(n int) Option {
	return func(c *config) {
		c.nEstimators = n
	}
}

// WithMaxDepth sets the depth limit of each tree.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum node size that may be split.
func WithMinSamplesSplit(n int) Option {
	return func(c *config) {
		c.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum number of samples per leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(c *config) {
		c.minSamplesLeaf = n
	}
}

// WithCriterion sets the forest classifier's impurity: "gini" or "entropy".
func WithCriterion(name string) Option {
	return func(c *config) {
		c.criterion = name
	}
}

// WithMinLoss sets the MSE floor below which regression trees stop growing.
func WithMinLoss(loss float64) Option {
	return func(c *config) {
		c.minLoss = loss
	}
}

// WithLearningRate sets the shrinkage applied to each boosted tree.
func WithLearningRate(lr float64) Option {
	return func(c *config) {
		c.learningRate = lr
	}
}

// WithSubsample trains each boosting round on a fraction of the rows drawn
// without replacement. 1 uses every row.
func WithSubsample(fraction float64) Option {
	return func(c *config) {
		c.subsample = fraction
	}
}

// WithLambda sets the L2 regularisation on second-order leaf weights.
func WithLambda(lambda float64) Option {
	return func(c *config) {
		c.lambda = lambda
	}
}

// WithGamma sets the minimum-gain penalty of second-order splits.
func WithGamma(gamma float64) Option {
	return func(c *config) {
		c.gamma = gamma
	}
}

// WithMinGain sets the smallest gain a boosted split may have: the MSE
// decrease for first-order trees, the γ-penalised gain for second-order trees.
// Splits with no positive gain are rejected either way.
func WithMinGain(gain float64) Option {
	return func(c *config) {
		c.minGain = gain
	}
}

// WithMinChildWeight sets the minimum Hessian sum of a second-order child.
func WithMinChildWeight(w float64) Option {
	return func(c *config) {
		c.minChildWeight = w
	}
}

// WithObjective selects the boosting loss: "squared_error", "absolute_error"
// or "huber".
func WithObjective(name string) Option {
	return func(c *config) {
		c.objective = name
	}
}

// WithResampling makes AdaBoost fit each stump on a bootstrap drawn from the
// current sample weights instead of the raw data.
func WithResampling(enabled bool) Option {
	return func(c *config) {
		c.resampling = enabled
	}
}

// WithNJobs sets the number of goroutines building forest trees. Values <= 0
// use one per CPU.
func WithNJobs(n int) Option {
	return func(c *config) {
		c.nJobs = n
	}
}

// WithRandomState seeds the default random source.
func WithRandomState(seed int64) Option {
	return func(c *config) {
		c.randomState = seed
	}
}

// WithRandomSource replaces the seeded source. It takes precedence over
// WithRandomState.
func WithRandomSource(rs RandomSource) Option {
	return func(c *config) {
		c.source = rs
	}
}

// WithEvalSet reports validation_loss on (X, y) after every boosting round.
func WithEvalSet(X, y mat.Matrix) Option {
	return func(c *config) {
		c.evalX, c.evalY = X, y
	}
}

// WithCallbacks registers per-round boosting callbacks.
func WithCallbacks(callbacks ...Callback) Option {
	return func(c *config) {
		c.callbacks = append(c.callbacks, callbacks...)
	}
}

// WithLogger replaces the estimator's logger.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func newConfig(defaults config, component, modelName string, opts []Option) config {
	c := defaults
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName(component)
	}
	c.logger = c.logger.With(log.ModelNameKey, modelName)
	return c
}

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "DecisionTreeClassifier", "XGBoostRegressor"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "cross_validate"
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	// SamplesKey is the number of rows in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of columns in the dataset.
	FeaturesKey = "data.features"

	// ClassesKey is the number of distinct class labels seen during fit.
	ClassesKey = "data.classes"

	// SubsampleKey is the number of rows drawn for one ensemble member.
	SubsampleKey = "data.subsample"
)

// Performance and training progress.
const (
	// DurationMsKey is the wall time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey is a classification accuracy in [0, 1].
	AccuracyKey = "metrics.accuracy"

	// LossKey is a training or validation loss value.
	LossKey = "metrics.loss"

	// R2ScoreKey is the coefficient of determination.
	R2ScoreKey = "metrics.r2_score"

	// IterationKey is the current boosting round.
	IterationKey = "training.iteration"

	// FoldKey is the current cross-validation fold.
	FoldKey = "training.fold"
)

// Tree and ensemble structure.
const (
	// DepthKey is the depth of a fitted tree.
	DepthKey = "tree.depth"

	// LeavesKey is the number of leaves in a fitted tree.
	LeavesKey = "tree.leaves"

	// NodesKey is the number of nodes in a fitted tree.
	NodesKey = "tree.nodes"

	// TreesKey is the number of trees in an ensemble.
	TreesKey = "ensemble.trees"

	// LearnerWeightKey is the vote weight (alpha) of a boosted learner.
	LearnerWeightKey = "ensemble.learner_weight"

	// WeightedErrorKey is the weighted training error of a boosted learner.
	WeightedErrorKey = "ensemble.weighted_error"
)

// Error context.
const (
	// ErrorKey holds the error message of a failed operation.
	ErrorKey = "error"

	// ErrorDetailKey holds the structured fields of a typed error.
	ErrorDetailKey = "error.detail"

	// StacktraceKey holds the stack trace recorded by cockroachdb/errors.
	StacktraceKey = "error.stacktrace"
)

// Hyperparameters.
const (
	// HyperParamsKey holds the full parameter map of an estimator.
	HyperParamsKey = "model.hyperparams"

	// LearningRateKey is the shrinkage applied to boosted trees.
	LearningRateKey = "hyperparams.learning_rate"

	// MaxDepthKey is the configured maximum tree depth.
	MaxDepthKey = "hyperparams.max_depth"

	// RandomSeedKey is the seed of the random source.
	RandomSeedKey = "config.random_seed"

	// WorkersKey is the number of goroutines used for parallel work.
	WorkersKey = "config.workers"
)

// Standard attribute values.
const (
	OperationFit           = "fit"
	OperationPredict       = "predict"
	OperationScore         = "score"
	OperationTransform     = "transform"
	OperationCrossValidate = "cross_validate"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseInference  = "inference"
)

package ensemble

import (
	"math"
	"time"

	"github.com/YuminosukeSato/treeml/pkg/log"
)

// Evaluation result names reported to callbacks after every boosting round.
const (
	TrainingLoss   = "training_loss"
	ValidationLoss = "validation_loss"
)

// CallbackEnv is what a callback sees after a boosting round.
type CallbackEnv struct {
	Model        string
	Iteration    int
	BeginTime    time.Time
	EndTime      time.Time
	EvalResults  map[string]float64
	StopTraining bool
	// BestIteration, when >= 0 at the end of training, truncates the model to
	// the trees up to and including that round.
	BestIteration int
}

// Callback is invoked after each boosting round. Returning an error aborts
// Fit.
type Callback func(env *CallbackEnv) error

// RecordEvaluation appends every round's evaluation results to history.
func RecordEvaluation(history map[string][]float64) Callback {
	return func(env *CallbackEnv) error {
		for name, value := range env.EvalResults {
			history[name] = append(history[name], value)
		}
		return nil
	}
}

// LogEvaluation logs the evaluation results every period rounds.
func LogEvaluation(period int, logger log.Logger) Callback {
	if period < 1 {
		period = 1
	}
	return func(env *CallbackEnv) error {
		if env.Iteration%period != 0 {
			return nil
		}
		args := []any{log.ModelNameKey, env.Model, log.IterationKey, env.Iteration}
		for _, name := range []string{TrainingLoss, ValidationLoss} {
			if value, ok := env.EvalResults[name]; ok {
				args = append(args, name, value)
			}
		}
		logger.Info("evaluation", args...)
		return nil
	}
}

// EarlyStopping stops training once metric has not decreased for rounds
// consecutive rounds and keeps only the trees up to the best round. A metric
// that is never reported has no effect.
func EarlyStopping(rounds int, metric string) Callback {
	best := math.Inf(1)
	bestIteration := -1
	stale := 0
	return func(env *CallbackEnv) error {
		value, ok := env.EvalResults[metric]
		if !ok {
			return nil
		}
		if env.Iteration == 0 {
			best, bestIteration, stale = math.Inf(1), -1, 0
		}
		if value < best {
			best, bestIteration, stale = value, env.Iteration, 0
		} else {
			stale++
		}
		if stale >= rounds {
			env.StopTraining = true
			env.BestIteration = bestIteration
		}
		return nil
	}
}

// TimeLimit stops training once maxDuration has elapsed since the first round
// began.
func TimeLimit(maxDuration time.Duration) Callback {
	var started time.Time
	return func(env *CallbackEnv) error {
		if env.Iteration == 0 || started.IsZero() {
			started = env.BeginTime
		}
		if env.EndTime.Sub(started) > maxDuration {
			env.StopTraining = true
		}
		return nil
	}
}

// CallbackList runs callbacks in registration order over one shared
// environment.
type CallbackList struct {
	callbacks []Callback
	env       *CallbackEnv
}

// NewCallbackList creates a list for the named model.
func NewCallbackList(modelName string, callbacks ...Callback) *CallbackList {
	return &CallbackList{
		callbacks: callbacks,
		env: &CallbackEnv{
			Model:         modelName,
			EvalResults:   make(map[string]float64),
			BestIteration: -1,
		},
	}
}

// BeforeIteration marks the start of a round.
func (cl *CallbackList) BeforeIteration(iteration int) {
	cl.env.Iteration = iteration
	cl.env.BeginTime = time.Now()
}

// AfterIteration hands the round's results to every callback.
func (cl *CallbackList) AfterIteration(iteration int, evalResults map[string]float64) error {
	cl.env.Iteration = iteration
	cl.env.EndTime = time.Now()
	cl.env.EvalResults = evalResults

	for _, cb := range cl.callbacks {
		if err := cb(cl.env); err != nil {
			return err
		}
	}
	return nil
}

// ShouldStop reports whether a callback asked to stop.
func (cl *CallbackList) ShouldStop() bool {
	return cl.env.StopTraining
}

// BestIteration returns the round to truncate to, or -1 to keep every tree.
func (cl *CallbackList) BestIteration() int {
	return cl.env.BestIteration
}
